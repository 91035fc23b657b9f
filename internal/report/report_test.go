package report

import (
	"testing"
	"time"
)

func TestSummaryCheck(t *testing.T) {
	s := Summary{Mode: ModeCheck}
	s.Add(TestResult{Name: "a", Status: StatusPassed})
	s.Add(TestResult{Name: "b", Status: StatusErrored})
	s.Add(TestResult{Name: "c", Status: StatusFailed})
	s.Finish(1500 * time.Millisecond)

	if s.Total != 3 || s.Passed != 1 || s.Failed != 1 || s.Errored != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if len(s.FailedTests) != 2 || s.FailedTests[0] != "b" || s.FailedTests[1] != "c" {
		t.Fatalf("unexpected failed tests %v", s.FailedTests)
	}
	if s.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", s.ExitCode)
	}
	if s.DurationMS != 1500 {
		t.Fatalf("unexpected duration %d", s.DurationMS)
	}
}

func TestSummaryApproveIgnoresFailures(t *testing.T) {
	s := Summary{Mode: ModeApprove}
	s.Add(TestResult{Name: "a", Status: StatusErrored})
	s.Finish(0)

	if s.ExitCode != 0 {
		t.Fatalf("approve should exit 0, got %d", s.ExitCode)
	}
}

func TestSummaryAllPassed(t *testing.T) {
	s := Summary{Mode: ModeCheck}
	s.Add(TestResult{Name: "a", Status: StatusPassed})
	s.Finish(time.Second)

	if s.ExitCode != 0 || len(s.FailedTests) != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
}
