// Package browsertest provides an in-memory browser engine for tests.
package browsertest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
	"time"

	"github.com/bgricker/layoutguard/internal/browser"
)

// Engine is a fake browser.Engine whose pages render a fixed image.
type Engine struct {
	mu sync.Mutex

	image      image.Image
	sessionErr error
	closeErr   error
	shotErr    error
	gotoErrs   map[string]error

	launches       int
	opened         int
	closedSessions int
	closed         bool
	visited        []string
	selectors      []string
}

// New returns an engine whose screenshots render img.
func New(img image.Image) *Engine {
	return &Engine{image: img}
}

// Launch satisfies browser.LaunchFunc by returning e itself, reopened if a
// previous run closed it.
func (e *Engine) Launch(context.Context, browser.Options) (browser.Engine, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.launches++
	e.closed = false
	return e, nil
}

// SetImage changes what subsequent screenshots render.
func (e *Engine) SetImage(img image.Image) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.image = img
}

// FailSessions makes NewSession return err.
func (e *Engine) FailSessions(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionErr = err
}

// FailSessionClose makes Session.Close return err.
func (e *Engine) FailSessionClose(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeErr = err
}

// FailScreenshots makes Page.Screenshot return err.
func (e *Engine) FailScreenshots(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shotErr = err
}

// FailGoto makes Goto return err when navigating to url.
func (e *Engine) FailGoto(url string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gotoErrs == nil {
		e.gotoErrs = make(map[string]error)
	}
	e.gotoErrs[url] = err
}

// NewSession opens a fake isolated session.
func (e *Engine) NewSession(ctx context.Context) (browser.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.New("engine closed")
	}
	if e.sessionErr != nil {
		return nil, e.sessionErr
	}
	e.opened++
	return &session{engine: e}, nil
}

// Close marks the engine closed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Launches returns how many times Launch was called.
func (e *Engine) Launches() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.launches
}

// Sessions returns how many sessions were opened and closed.
func (e *Engine) Sessions() (opened, closed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opened, e.closedSessions
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Visited returns every URL passed to Goto, in order.
func (e *Engine) Visited() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.visited...)
}

// Selectors returns every selector passed to Screenshot, in order.
func (e *Engine) Selectors() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.selectors...)
}

type session struct {
	engine *Engine
}

func (s *session) Page() browser.Page {
	return &page{engine: s.engine}
}

func (s *session) Close() error {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	s.engine.closedSessions++
	return s.engine.closeErr
}

type page struct {
	engine *Engine
}

func (p *page) Goto(url string) error {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.engine.visited = append(p.engine.visited, url)
	return p.engine.gotoErrs[url]
}

func (p *page) Click(string) error         { return nil }
func (p *page) Hover(string) error         { return nil }
func (p *page) Fill(string, string) error  { return nil }
func (p *page) Press(string, string) error { return nil }
func (p *page) WaitFor(string) error       { return nil }
func (p *page) Wait(time.Duration) error   { return nil }
func (p *page) Evaluate(string) error      { return nil }

func (p *page) Screenshot(selector string) ([]byte, error) {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.engine.selectors = append(p.engine.selectors, selector)
	if p.engine.shotErr != nil {
		return nil, p.engine.shotErr
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.engine.image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// WithPixels returns a copy of base with the given points painted black.
func WithPixels(base *image.RGBA, points ...image.Point) *image.RGBA {
	out := image.NewRGBA(base.Bounds())
	draw.Draw(out, out.Bounds(), base, base.Bounds().Min, draw.Src)
	for _, pt := range points {
		out.Set(pt.X, pt.Y, color.Black)
	}
	return out
}
