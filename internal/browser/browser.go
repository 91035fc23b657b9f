package browser

import (
	"context"
	"fmt"
	"time"
)

const (
	// DriverPlaywright drives chromium, firefox or webkit through playwright.
	DriverPlaywright = "playwright"
	// DriverChromedp drives chromium over the DevTools protocol.
	DriverChromedp = "chromedp"

	Chromium = "chromium"
	Firefox  = "firefox"
	WebKit   = "webkit"
)

// Page is the navigable handle a scenario drives. Selectors are CSS selectors.
type Page interface {
	Goto(url string) error
	Click(selector string) error
	Hover(selector string) error
	Fill(selector, value string) error
	Press(selector, key string) error
	WaitFor(selector string) error
	Wait(d time.Duration) error
	Evaluate(expression string) error
	// Screenshot returns PNG bytes of the element matching selector, or of the
	// entire scrollable page when selector is empty.
	Screenshot(selector string) ([]byte, error)
}

// Session is an isolated browsing context with its own cookies and storage.
type Session interface {
	Page() Page
	Close() error
}

// Engine is a launched browser shared by all sessions of a run.
type Engine interface {
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// Viewport sets the initial page size of every session.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Options select and configure the browser engine.
type Options struct {
	Driver   string
	Browser  string
	Headless bool
	// CDPURL attaches the chromedp driver to an already running browser.
	CDPURL   string
	Viewport *Viewport
}

// LaunchFunc starts an engine. It is swapped out in tests.
type LaunchFunc func(ctx context.Context, opts Options) (Engine, error)

// Launch starts the engine described by opts.
func Launch(ctx context.Context, opts Options) (Engine, error) {
	switch opts.Driver {
	case "", DriverPlaywright:
		return launchPlaywright(opts)
	case DriverChromedp:
		if opts.Browser != "" && opts.Browser != Chromium {
			return nil, fmt.Errorf("driver %q supports only %s, got %q", DriverChromedp, Chromium, opts.Browser)
		}
		return launchChromedp(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}
}
