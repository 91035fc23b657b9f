package report

import "time"

// Test outcomes.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusErrored = "errored"
)

// Run modes.
const (
	ModeCheck   = "check"
	ModeApprove = "approve"
)

// TestResult captures the outcome of a single visual test.
type TestResult struct {
	Name          string        `json:"name"`
	Path          string        `json:"path"`
	Slug          string        `json:"slug"`
	Mode          string        `json:"mode"`
	Status        string        `json:"status"`
	Message       string        `json:"message,omitempty"`
	Mismatched    int           `json:"mismatched_pixels"`
	Total         int           `json:"total_pixels"`
	MismatchRatio float64       `json:"mismatch_ratio"`
	Threshold     float64       `json:"threshold"`
	DiffPath      string        `json:"diff_path,omitempty"`
	Duration      time.Duration `json:"-"`
	DurationMS    int64         `json:"duration_ms"`
}

// Summary aggregates the results of a run.
type Summary struct {
	RunID       string        `json:"run_id"`
	Mode        string        `json:"mode"`
	Total       int           `json:"total"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Errored     int           `json:"errored"`
	FailedTests []string      `json:"failed_tests"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration_ms"`
	ExitCode    int           `json:"exit_code"`
}

// Add folds a result into the summary. Failed and errored tests are both
// listed in FailedTests in the order they were added.
func (s *Summary) Add(result TestResult) {
	s.Total++
	switch result.Status {
	case StatusPassed:
		s.Passed++
	case StatusFailed:
		s.Failed++
		s.FailedTests = append(s.FailedTests, result.Name)
	default:
		s.Errored++
		s.FailedTests = append(s.FailedTests, result.Name)
	}
}

// Finish stamps the duration and derives the exit code. A check run fails
// when any test failed or errored; an approve run only fails on fatal
// errors, which never reach the summary.
func (s *Summary) Finish(d time.Duration) {
	s.Duration = d
	s.DurationMS = d.Milliseconds()
	s.ExitCode = 0
	if s.Mode == ModeCheck && (s.Failed > 0 || s.Errored > 0) {
		s.ExitCode = 1
	}
}
