package output

import (
	"encoding/json"
	"io"

	"github.com/bgricker/layoutguard/internal/report"
)

// JSONRenderer emits structured execution data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Report captures JSON output schema.
type Report struct {
	RunID   string              `json:"run_id,omitempty"`
	Mode    string              `json:"mode,omitempty"`
	Results []report.TestResult `json:"results,omitempty"`
	Tests   []ListItem          `json:"tests,omitempty"`
	Summary *report.Summary     `json:"summary,omitempty"`
}

// Render encodes the report as JSON.
func (j *JSONRenderer) Render(report Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
