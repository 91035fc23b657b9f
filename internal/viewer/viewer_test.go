package viewer

import (
	"errors"
	"testing"
)

func TestOpenerFunc(t *testing.T) {
	var got string
	var opener Opener = OpenerFunc(func(path string) error {
		got = path
		return errors.New("no display")
	})

	err := opener.Open("/tmp/diff.png")
	if err == nil || err.Error() != "no display" {
		t.Fatalf("expected wrapped function error, got %v", err)
	}
	if got != "/tmp/diff.png" {
		t.Fatalf("unexpected path %q", got)
	}
}
