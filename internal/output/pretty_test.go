package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bgricker/layoutguard/internal/report"
)

func TestPrettyRenderList(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	err := renderer.RenderList([]ListItem{
		{Name: "Home page", Path: "home.spec.yaml", Slug: "home-page", Baseline: true},
		{Name: "Cart", Path: "cart.spec.yaml", Slug: "cart"},
	})
	if err != nil {
		t.Fatalf("render list: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "✓ Home page (home.spec.yaml) [home-page]") {
		t.Fatalf("expected baseline marker, got %q", out)
	}
	if !strings.Contains(out, "· Cart (cart.spec.yaml) [cart]") {
		t.Fatalf("expected missing baseline marker, got %q", out)
	}
}

func TestPrettyCompleteAndSummary(t *testing.T) {
	results := []report.TestResult{
		{
			Name:          "Home page",
			Mode:          report.ModeCheck,
			Status:        report.StatusPassed,
			MismatchRatio: 0.001,
			Total:         100,
			Threshold:     0.01,
			Duration:      123456789,
		},
		{
			Name:          "Cart",
			Mode:          report.ModeCheck,
			Status:        report.StatusFailed,
			Mismatched:    5,
			Total:         100,
			MismatchRatio: 0.05,
			Threshold:     0.01,
			DiffPath:      ".layoutguard/failures/cart/diff.png",
		},
		{
			Name:    "Menu",
			Mode:    report.ModeCheck,
			Status:  report.StatusErrored,
			Message: "step 1 (click #nav): element not found",
		},
	}

	summary := report.Summary{Mode: report.ModeCheck, Total: 3, Passed: 1, Failed: 1, Errored: 1, FailedTests: []string{"Cart", "Menu"}, Duration: time.Second}

	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	for _, res := range results {
		if err := renderer.CompleteTest(res); err != nil {
			t.Fatalf("complete test: %v", err)
		}
	}
	if err := renderer.RenderSummary(summary); err != nil {
		t.Fatalf("render summary: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"✅ Home page passed, mismatch 0.0010 (threshold 0.01)",
		"❌ Cart failed, mismatch 0.0500 (threshold 0.01)",
		"diff: .layoutguard/failures/cart/diff.png",
		"Menu errored",
		"element not found",
		"Passed:  1",
		"Errored: 1",
		"Failed tests:\n  ❌ Cart\n  ❌ Menu\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestPrettyStartAndApprove(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	if err := renderer.StartTest("Home page"); err != nil {
		t.Fatalf("start test: %v", err)
	}
	if err := renderer.CompleteTest(report.TestResult{Name: "Home page", Mode: report.ModeApprove, Status: report.StatusPassed}); err != nil {
		t.Fatalf("complete test: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "→ Running: Home page\n") || !strings.Contains(out, "✅ Home page approved") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPrettyFailedWithoutBaseline(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	err := renderer.CompleteTest(report.TestResult{
		Name:    "Home page",
		Mode:    report.ModeCheck,
		Status:  report.StatusFailed,
		Message: `no baseline; run: layoutguard approve "Home page"`,
	})
	if err != nil {
		t.Fatalf("complete test: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "mismatch") {
		t.Fatalf("no ratio expected without comparison, got %q", out)
	}
	if !strings.Contains(out, "layoutguard approve") {
		t.Fatalf("expected approve hint, got %q", out)
	}
}
