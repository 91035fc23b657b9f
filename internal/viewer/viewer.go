// Package viewer opens diff images for interactive review.
package viewer

import (
	"fmt"
	"io"

	pkgbrowser "github.com/pkg/browser"
)

// Opener displays the image at path.
type Opener interface {
	Open(path string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) error

// Open calls f(path).
func (f OpenerFunc) Open(path string) error { return f(path) }

// System opens files with the platform's default application.
type System struct {
	// Stdout and Stderr receive the output of the launched command. Both
	// default to io.Discard so the viewer never interleaves with run output.
	Stdout io.Writer
	Stderr io.Writer
}

// Open launches the default viewer for path.
func (s System) Open(path string) error {
	pkgbrowser.Stdout = orDiscard(s.Stdout)
	pkgbrowser.Stderr = orDiscard(s.Stderr)
	if err := pkgbrowser.OpenFile(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
