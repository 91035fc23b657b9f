package filter

import (
	"testing"

	"github.com/bgricker/layoutguard/internal/suite"
)

func TestEntriesBySubstring(t *testing.T) {
	entries := sampleEntries()

	patterns, err := Compile([]string{"CHECKOUT"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	filtered := Entries(entries, patterns)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(filtered), filtered)
	}
	if filtered[0].Test.Name != "Checkout summary" || filtered[1].Path != "checkout/pay.spec.yaml" {
		t.Fatalf("unexpected entries %+v", filtered)
	}
}

func TestEntriesByRegex(t *testing.T) {
	patterns, err := Compile([]string{"/^Home/", "  "})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected blank pattern dropped, got %d", len(patterns))
	}

	filtered := Entries(sampleEntries(), patterns)
	if len(filtered) != 1 || filtered[0].Test.Name != "Home page" {
		t.Fatalf("unexpected entries %+v", filtered)
	}
}

func TestEntriesWithoutPatterns(t *testing.T) {
	entries := sampleEntries()
	if got := Entries(entries, nil); len(got) != len(entries) {
		t.Fatalf("expected all entries kept, got %d", len(got))
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile([]string{"/(/"}); err == nil {
		t.Fatalf("expected compile error")
	}
}

func sampleEntries() []suite.Entry {
	return []suite.Entry{
		{Path: "home.spec.yaml", Test: suite.Test{Name: "Home page"}},
		{Path: "summary.spec.yaml", Test: suite.Test{Name: "Checkout summary"}},
		{Path: "checkout/pay.spec.yaml", Test: suite.Test{Name: "Payment form"}},
	}
}
