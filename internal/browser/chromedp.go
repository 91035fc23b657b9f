package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

type chromedpEngine struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	viewport      *Viewport
}

func launchChromedp(ctx context.Context, opts Options) (Engine, error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.CDPURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.CDPURL)
	} else {
		allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		allocOpts = append(allocOpts, chromedp.Flag("headless", opts.Headless))
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, allocOpts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	// The first Run on a fresh context starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	return &chromedpEngine{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		viewport:      opts.Viewport,
	}, nil
}

func (e *chromedpEngine) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(e.browserCtx, chromedp.WithNewBrowserContext())
	var actions []chromedp.Action
	if e.viewport != nil {
		actions = append(actions, chromedp.EmulateViewport(int64(e.viewport.Width), int64(e.viewport.Height)))
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		cancel()
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	return &chromedpSession{page: &chromedpPage{ctx: tabCtx}, cancel: cancel}, nil
}

func (e *chromedpEngine) Close() error {
	err := chromedp.Cancel(e.browserCtx)
	e.browserCancel()
	e.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type chromedpSession struct {
	page   *chromedpPage
	cancel context.CancelFunc
}

func (s *chromedpSession) Page() Page {
	return s.page
}

func (s *chromedpSession) Close() error {
	err := chromedp.Cancel(s.page.ctx)
	s.cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type chromedpPage struct {
	ctx context.Context
}

func (p *chromedpPage) run(actions ...chromedp.Action) error {
	return chromedp.Run(p.ctx, actions...)
}

func (p *chromedpPage) Goto(url string) error {
	return p.run(chromedp.Navigate(url))
}

func (p *chromedpPage) Click(selector string) error {
	return p.run(chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (p *chromedpPage) Hover(selector string) error {
	var nodes []*cdp.Node
	return p.run(
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(nodes) == 0 {
				return fmt.Errorf("no node matches %q", selector)
			}
			box, err := dom.GetBoxModel().WithNodeID(nodes[0].NodeID).Do(ctx)
			if err != nil {
				return err
			}
			x, y := quadCenter(box.Content)
			return chromedp.MouseEvent(input.MouseMoved, x, y).Do(ctx)
		}),
	)
}

func (p *chromedpPage) Fill(selector, value string) error {
	return p.run(
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (p *chromedpPage) Press(selector, key string) error {
	return p.run(chromedp.SendKeys(selector, keyName(key), chromedp.ByQuery))
}

func (p *chromedpPage) WaitFor(selector string) error {
	return p.run(chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *chromedpPage) Wait(d time.Duration) error {
	return p.run(chromedp.Sleep(d))
}

func (p *chromedpPage) Evaluate(expression string) error {
	return p.run(chromedp.ActionFunc(func(ctx context.Context) error {
		_, exp, err := runtime.Evaluate(expression).WithAwaitPromise(true).Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return exp
		}
		return nil
	}))
}

func (p *chromedpPage) Screenshot(selector string) ([]byte, error) {
	var buf []byte
	var action chromedp.Action
	if selector != "" {
		action = chromedp.Screenshot(selector, &buf, chromedp.ByQuery, chromedp.NodeVisible)
	} else {
		// Quality 100 selects PNG encoding.
		action = chromedp.FullScreenshot(&buf, 100)
	}
	if err := p.run(action); err != nil {
		return nil, err
	}
	return buf, nil
}

var namedKeys = map[string]string{
	"Enter":      kb.Enter,
	"Tab":        kb.Tab,
	"Escape":     kb.Escape,
	"Backspace":  kb.Backspace,
	"Delete":     kb.Delete,
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"Home":       kb.Home,
	"End":        kb.End,
	"PageUp":     kb.PageUp,
	"PageDown":   kb.PageDown,
}

func keyName(key string) string {
	if v, ok := namedKeys[key]; ok {
		return v
	}
	return key
}

func quadCenter(q dom.Quad) (float64, float64) {
	if len(q) < 8 {
		return 0, 0
	}
	return (q[0] + q[2] + q[4] + q[6]) / 4, (q[1] + q[3] + q[5] + q[7]) / 4
}
