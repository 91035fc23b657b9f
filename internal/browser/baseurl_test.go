package browser

import (
	"testing"
	"time"
)

type recordingPage struct {
	visited []string
}

func (p *recordingPage) Goto(url string) error {
	p.visited = append(p.visited, url)
	return nil
}

func (p *recordingPage) Click(string) error                { return nil }
func (p *recordingPage) Hover(string) error                { return nil }
func (p *recordingPage) Fill(string, string) error         { return nil }
func (p *recordingPage) Press(string, string) error        { return nil }
func (p *recordingPage) WaitFor(string) error              { return nil }
func (p *recordingPage) Wait(time.Duration) error          { return nil }
func (p *recordingPage) Evaluate(string) error             { return nil }
func (p *recordingPage) Screenshot(string) ([]byte, error) { return nil, nil }

func TestWithBaseURL(t *testing.T) {
	cases := []struct {
		base   string
		target string
		want   string
	}{
		{"http://localhost:3000", "/dashboard", "http://localhost:3000/dashboard"},
		{"http://localhost:3000/", "/dashboard", "http://localhost:3000/dashboard"},
		{"http://localhost:3000/app/", "/", "http://localhost:3000/app/"},
		{"http://localhost:3000", "https://example.com/x", "https://example.com/x"},
		{"http://localhost:3000", "about:blank", "about:blank"},
		{"http://localhost:3000", "relative/path", "relative/path"},
	}
	for _, c := range cases {
		inner := &recordingPage{}
		page := WithBaseURL(inner, c.base)
		if err := page.Goto(c.target); err != nil {
			t.Fatalf("Goto(%q): %v", c.target, err)
		}
		if len(inner.visited) != 1 || inner.visited[0] != c.want {
			t.Fatalf("base %q target %q: visited %v, want %q", c.base, c.target, inner.visited, c.want)
		}
	}
}

func TestWithBaseURLLeavesInnerPageUntouched(t *testing.T) {
	inner := &recordingPage{}
	_ = WithBaseURL(inner, "http://localhost:3000")

	if err := inner.Goto("/direct"); err != nil {
		t.Fatalf("Goto: %v", err)
	}
	if inner.visited[0] != "/direct" {
		t.Fatalf("inner page was rewritten: %v", inner.visited)
	}
}

func TestLaunchRejectsUnknownDriver(t *testing.T) {
	if _, err := Launch(t.Context(), Options{Driver: "selenium"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := Launch(t.Context(), Options{Driver: DriverChromedp, Browser: Firefox}); err == nil {
		t.Fatalf("expected error for firefox on chromedp")
	}
}
