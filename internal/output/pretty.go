package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bgricker/layoutguard/internal/report"
)

// ListItem describes a resolved test for list mode.
type ListItem struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Slug     string `json:"slug"`
	Baseline bool   `json:"baseline"`
}

// PrettyRenderer renders execution results in a human-friendly format.
type PrettyRenderer struct {
	out io.Writer
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	return &PrettyRenderer{out: out}
}

// RenderList renders resolved tests in list mode.
func (p *PrettyRenderer) RenderList(items []ListItem) error {
	for _, item := range items {
		mark := "·"
		if item.Baseline {
			mark = "✓"
		}
		if _, err := fmt.Fprintf(p.out, "%s %s (%s) [%s]\n", mark, item.Name, item.Path, item.Slug); err != nil {
			return err
		}
	}
	return nil
}

// StartTest announces the test about to run.
func (p *PrettyRenderer) StartTest(name string) error {
	_, err := fmt.Fprintf(p.out, "→ Running: %s\n", name)
	return err
}

// CompleteTest prints the outcome line for a test, plus details on failure.
func (p *PrettyRenderer) CompleteTest(res report.TestResult) error {
	duration := formatDuration(res.Duration)

	var line string
	switch res.Status {
	case report.StatusPassed:
		if res.Mode == report.ModeApprove {
			line = fmt.Sprintf("%s %s approved (%s)", statusGlyph(res.Status), res.Name, duration)
		} else {
			line = fmt.Sprintf("%s %s passed, mismatch %s (%s)", statusGlyph(res.Status), res.Name, formatRatio(res), duration)
		}
	case report.StatusFailed:
		if res.Total > 0 {
			line = fmt.Sprintf("%s %s failed, mismatch %s (%s)", statusGlyph(res.Status), res.Name, formatRatio(res), duration)
		} else {
			line = fmt.Sprintf("%s %s failed (%s)", statusGlyph(res.Status), res.Name, duration)
		}
	default:
		line = fmt.Sprintf("%s %s errored (%s)", statusGlyph(res.Status), res.Name, duration)
	}

	if _, err := fmt.Fprintln(p.out, line); err != nil {
		return err
	}
	if res.Status != report.StatusPassed && res.Message != "" {
		if _, err := fmt.Fprintln(p.out, indent(res.Message, "   ")); err != nil {
			return err
		}
	}
	if res.Status == report.StatusFailed && res.DiffPath != "" {
		if _, err := fmt.Fprintf(p.out, "   diff: %s\n", res.DiffPath); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary shows the final counts and the names of failing tests.
func (p *PrettyRenderer) RenderSummary(summary report.Summary) error {
	var b strings.Builder
	b.WriteString("\nSummary\n-------\n")
	fmt.Fprintf(&b, "%s Passed:  %d\n", statusGlyph(report.StatusPassed), summary.Passed)
	fmt.Fprintf(&b, "%s Failed:  %d\n", statusGlyph(report.StatusFailed), summary.Failed)
	fmt.Fprintf(&b, "%s Errored: %d\n", statusGlyph(report.StatusErrored), summary.Errored)
	fmt.Fprintf(&b, "ℹ️  Total:   %d (%s)\n", summary.Total, formatDuration(summary.Duration))
	if len(summary.FailedTests) > 0 {
		b.WriteString("\nFailed tests:\n")
		for _, name := range summary.FailedTests {
			fmt.Fprintf(&b, "  %s %s\n", statusGlyph(report.StatusFailed), name)
		}
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

func formatRatio(res report.TestResult) string {
	return fmt.Sprintf("%.4f (threshold %v)", res.MismatchRatio, res.Threshold)
}

func statusGlyph(status string) string {
	switch status {
	case report.StatusPassed:
		return "✅"
	case report.StatusFailed:
		return "❌"
	case report.StatusErrored:
		return "⚠️ "
	default:
		return "❓"
	}
}

func indent(s, pad string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
