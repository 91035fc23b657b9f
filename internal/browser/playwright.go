package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

type playwrightEngine struct {
	pw       *playwright.Playwright
	browser  playwright.Browser
	viewport *Viewport
}

func launchPlaywright(opts Options) (Engine, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright (run `layoutguard install` first?): %w", err)
	}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case "", Chromium:
		browserType = pw.Chromium
	case Firefox:
		browserType = pw.Firefox
	case WebKit:
		browserType = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unsupported browser %q", opts.Browser)
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", browserType.Name(), err)
	}

	return &playwrightEngine{pw: pw, browser: browser, viewport: opts.Viewport}, nil
}

func (e *playwrightEngine) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ctxOpts playwright.BrowserNewContextOptions
	if e.viewport != nil {
		ctxOpts.Viewport = &playwright.Size{Width: e.viewport.Width, Height: e.viewport.Height}
	}
	bctx, err := e.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	return &playwrightSession{ctx: bctx, page: &playwrightPage{page: page}}, nil
}

func (e *playwrightEngine) Close() error {
	return errors.Join(e.browser.Close(), e.pw.Stop())
}

type playwrightSession struct {
	ctx  playwright.BrowserContext
	page *playwrightPage
}

func (s *playwrightSession) Page() Page {
	return s.page
}

func (s *playwrightSession) Close() error {
	return s.ctx.Close()
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string) error {
	_, err := p.page.Goto(url)
	return err
}

func (p *playwrightPage) Click(selector string) error {
	return p.page.Locator(selector).Click()
}

func (p *playwrightPage) Hover(selector string) error {
	return p.page.Locator(selector).Hover()
}

func (p *playwrightPage) Fill(selector, value string) error {
	return p.page.Locator(selector).Fill(value)
}

func (p *playwrightPage) Press(selector, key string) error {
	return p.page.Locator(selector).Press(key)
}

func (p *playwrightPage) WaitFor(selector string) error {
	return p.page.Locator(selector).WaitFor()
}

func (p *playwrightPage) Wait(d time.Duration) error {
	p.page.WaitForTimeout(float64(d.Milliseconds()))
	return nil
}

func (p *playwrightPage) Evaluate(expression string) error {
	_, err := p.page.Evaluate(expression)
	return err
}

func (p *playwrightPage) Screenshot(selector string) ([]byte, error) {
	if selector != "" {
		return p.page.Locator(selector).Screenshot(playwright.LocatorScreenshotOptions{
			Type: playwright.ScreenshotTypePng,
		})
	}
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypePng,
	})
}

// Install downloads the playwright driver and the named browser.
func Install(browserName string) error {
	if browserName == "" {
		browserName = Chromium
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{browserName}}); err != nil {
		return fmt.Errorf("install %s: %w", browserName, err)
	}
	return nil
}
