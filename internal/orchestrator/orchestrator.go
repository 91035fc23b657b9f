package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bgricker/layoutguard/internal/artifact"
	"github.com/bgricker/layoutguard/internal/browser"
	"github.com/bgricker/layoutguard/internal/compare"
	"github.com/bgricker/layoutguard/internal/config"
	"github.com/bgricker/layoutguard/internal/discovery"
	"github.com/bgricker/layoutguard/internal/filter"
	"github.com/bgricker/layoutguard/internal/report"
	"github.com/bgricker/layoutguard/internal/runner"
	"github.com/bgricker/layoutguard/internal/suite"
	"github.com/bgricker/layoutguard/internal/viewer"
	"github.com/google/uuid"
)

var (
	// ErrTestNotFound indicates that no discovered test carries the requested name.
	ErrTestNotFound = errors.New("test not found")
	// ErrNoTestsResolved indicates that resolution produced an empty test set.
	ErrNoTestsResolved = errors.New("no tests to run")
	// ErrSlugCollision indicates that two distinct tests map to the same artifacts.
	ErrSlugCollision = errors.New("tests share a slug")
)

// Observer receives per-test progress. output.PrettyRenderer implements it.
type Observer interface {
	StartTest(name string) error
	CompleteTest(result report.TestResult) error
}

// Options configure a single invocation.
type Options struct {
	Root     string
	Config   config.Config
	Selector string
	ShowDiff bool
	Launch   browser.LaunchFunc
	Viewer   viewer.Opener
	Logger   *slog.Logger
	Observer Observer
	Now      func() time.Time
	RunID    string
}

// Orchestrator resolves tests and drives them through the runner one at a time.
type Orchestrator struct {
	opts   Options
	store  *artifact.Store
	logger *slog.Logger
}

// New creates an orchestrator with the supplied options.
func New(opts Options) *Orchestrator {
	if opts.Launch == nil {
		opts.Launch = browser.Launch
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Orchestrator{
		opts:   opts,
		store:  artifact.New(opts.Root),
		logger: opts.Logger.With("run_id", opts.RunID),
	}
}

// RunID identifies this invocation in logs and reports.
func (o *Orchestrator) RunID() string {
	return o.opts.RunID
}

// Store exposes the artifact store the orchestrator writes to.
func (o *Orchestrator) Store() *artifact.Store {
	return o.store
}

// Resolve determines which tests this invocation covers. A selector that
// looks like a path loads that file; any other selector is matched by exact
// name against the discovered tests; no selector selects every test.
func (o *Orchestrator) Resolve(ctx context.Context) ([]suite.Entry, error) {
	selector := strings.TrimSpace(o.opts.Selector)

	var entries []suite.Entry
	var err error
	switch {
	case selector == "":
		entries, err = o.discover(ctx)
	case looksLikePath(selector):
		entries, err = o.explicit(selector)
	default:
		entries, err = o.byName(ctx, selector)
	}
	if err != nil {
		return nil, err
	}

	patterns, err := filter.Compile(o.opts.Config.Grep)
	if err != nil {
		return nil, err
	}
	entries = filter.Entries(entries, patterns)

	if len(entries) == 0 {
		return nil, ErrNoTestsResolved
	}
	return entries, nil
}

func (o *Orchestrator) explicit(selector string) ([]suite.Entry, error) {
	path, err := discovery.Explicit(o.opts.Root, selector)
	if err != nil {
		return nil, err
	}
	test, err := suite.Load(discovery.Abs(o.opts.Root, path))
	if err != nil {
		return nil, err
	}
	return []suite.Entry{{Path: path, Test: test}}, nil
}

func (o *Orchestrator) byName(ctx context.Context, name string) ([]suite.Entry, error) {
	all, err := o.discover(ctx)
	if err != nil {
		return nil, err
	}

	// Names are compared without surrounding whitespace on either side.
	// discover has already dropped later files whose slug repeats, so at
	// most one entry can match.
	for _, entry := range all {
		if strings.TrimSpace(entry.Test.Name) == name {
			return []suite.Entry{entry}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTestNotFound, name)
}

// discover loads every test file matching testMatch. Files that fail to load
// are logged and skipped, as are files whose slug was already claimed by a
// test earlier in path order.
func (o *Orchestrator) discover(ctx context.Context) ([]suite.Entry, error) {
	paths, err := discovery.Tests(o.opts.Root, o.opts.Config.TestMatch)
	if err != nil {
		return nil, err
	}

	entries := make([]suite.Entry, 0, len(paths))
	claimed := make(map[string]suite.Entry, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		test, err := suite.Load(discovery.Abs(o.opts.Root, path))
		if err != nil {
			o.logger.Warn("skipping test file", "path", path, "error", err)
			continue
		}
		slug := test.Slug()
		if prev, ok := claimed[slug]; ok {
			o.logger.Warn("skipping test file", "path", path,
				"error", fmt.Errorf("%w %q with %q (%s)", ErrSlugCollision, slug, prev.Test.Name, prev.Path))
			continue
		}
		entry := suite.Entry{Path: path, Test: test}
		claimed[slug] = entry
		entries = append(entries, entry)
	}
	o.logger.Debug("discovered tests", "files", len(paths), "loaded", len(entries))
	return entries, nil
}

// Run resolves the tests, launches the engine once and runs every test in
// order. The returned error is non-nil only for failures that abort the
// whole invocation.
func (o *Orchestrator) Run(ctx context.Context, mode runner.Mode) (report.Summary, []report.TestResult, error) {
	start := o.opts.Now()
	summary := report.Summary{RunID: o.opts.RunID, Mode: string(mode)}

	entries, err := o.Resolve(ctx)
	if err != nil {
		return summary, nil, err
	}
	if err := o.store.EnsureDirectories(); err != nil {
		return summary, nil, err
	}

	cfg := o.opts.Config
	o.logger.Debug("launching browser", "driver", cfg.Driver, "browser", cfg.BrowserName, "tests", len(entries))
	engine, err := o.opts.Launch(ctx, cfg.BrowserOptions())
	if err != nil {
		return summary, nil, fmt.Errorf("launch %s: %w", cfg.BrowserName, err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			o.logger.Warn("close browser", "error", err)
		}
	}()

	r := runner.New(runner.Options{
		Store:         o.store,
		Comparator:    compare.New(cfg.PixelThreshold),
		BaseURL:       cfg.BaseURL,
		DiffThreshold: cfg.DiffThreshold,
		ShowDiff:      o.opts.ShowDiff,
		Viewer:        o.opts.Viewer,
		Logger:        o.logger,
		Now:           o.opts.Now,
	})

	results := make([]report.TestResult, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, results, err
		}
		o.startTest(entry.Test.Name)
		res := r.Run(ctx, engine, entry, mode)
		o.completeTest(res)
		results = append(results, res)
		summary.Add(res)
	}

	summary.Finish(o.opts.Now().Sub(start))
	return summary, results, nil
}

// Promote accepts the captures left behind by a previous check without
// launching a browser. With no selector, tests without a pending capture
// are skipped; an explicitly selected test without one is errored.
func (o *Orchestrator) Promote(ctx context.Context) (report.Summary, []report.TestResult, error) {
	start := o.opts.Now()
	summary := report.Summary{RunID: o.opts.RunID, Mode: report.ModeApprove}

	entries, err := o.Resolve(ctx)
	if err != nil {
		return summary, nil, err
	}
	explicit := strings.TrimSpace(o.opts.Selector) != ""

	results := make([]report.TestResult, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, results, err
		}
		slug := entry.Test.Slug()
		if !explicit {
			if _, err := o.store.ReadCapture(slug); errors.Is(err, artifact.ErrMissingCapture) {
				o.logger.Debug("no pending capture", "test", entry.Test.Name)
				continue
			}
		}

		o.startTest(entry.Test.Name)
		testStart := o.opts.Now()
		res := report.TestResult{
			Name:   entry.Test.Name,
			Path:   entry.Path,
			Slug:   slug,
			Mode:   report.ModeApprove,
			Status: report.StatusPassed,
		}
		if err := o.store.PromoteToBaseline(slug); err != nil {
			res.Status = report.StatusErrored
			res.Message = err.Error()
			if errors.Is(err, artifact.ErrMissingCapture) {
				res.Message = "no failed capture to promote; run: layoutguard check first"
			}
			o.logger.Warn("promote failed", "test", entry.Test.Name, "error", err)
		}
		res.Duration = o.opts.Now().Sub(testStart)
		res.DurationMS = res.Duration.Milliseconds()

		o.completeTest(res)
		results = append(results, res)
		summary.Add(res)
	}

	summary.Finish(o.opts.Now().Sub(start))
	return summary, results, nil
}

func (o *Orchestrator) startTest(name string) {
	if o.opts.Observer == nil {
		return
	}
	if err := o.opts.Observer.StartTest(name); err != nil {
		o.logger.Warn("render progress", "error", err)
	}
}

func (o *Orchestrator) completeTest(res report.TestResult) {
	if o.opts.Observer == nil {
		return
	}
	if err := o.opts.Observer.CompleteTest(res); err != nil {
		o.logger.Warn("render result", "error", err)
	}
}

func looksLikePath(selector string) bool {
	return strings.ContainsAny(selector, `/\`) || suite.HasTestExtension(selector)
}
