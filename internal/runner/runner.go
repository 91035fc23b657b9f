package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bgricker/layoutguard/internal/artifact"
	"github.com/bgricker/layoutguard/internal/browser"
	"github.com/bgricker/layoutguard/internal/compare"
	"github.com/bgricker/layoutguard/internal/report"
	"github.com/bgricker/layoutguard/internal/suite"
	"github.com/bgricker/layoutguard/internal/viewer"
)

// Mode selects what happens to a capture.
type Mode string

const (
	// Check compares the capture against the baseline.
	Check Mode = report.ModeCheck
	// Approve stores the capture as the new baseline.
	Approve Mode = report.ModeApprove
)

// Options configure how the runner executes tests.
type Options struct {
	Store         *artifact.Store
	Comparator    *compare.Comparator
	BaseURL       string
	DiffThreshold float64
	ShowDiff      bool
	Viewer        viewer.Opener
	Logger        *slog.Logger
	Now           func() time.Time
}

// Runner executes one visual test at a time against a shared engine.
type Runner struct {
	opts Options
}

// New creates a runner with the supplied options.
func New(opts Options) *Runner {
	if opts.Comparator == nil {
		opts.Comparator = compare.New(compare.DefaultPixelThreshold)
	}
	if opts.Viewer == nil {
		opts.Viewer = viewer.System{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}
}

// Run executes a single test in its own session and classifies the outcome.
// Errors scoped to the test never escape: they become an errored result.
func (r *Runner) Run(ctx context.Context, engine browser.Engine, entry suite.Entry, mode Mode) report.TestResult {
	test := entry.Test
	slug := test.Slug()
	logger := r.opts.Logger.With("test", test.Name, "slug", slug)

	result := report.TestResult{
		Name:      test.Name,
		Path:      entry.Path,
		Slug:      slug,
		Mode:      string(mode),
		Threshold: r.opts.DiffThreshold,
	}

	start := r.opts.Now()
	logger.Debug("test started", "path", entry.Path, "mode", mode)

	err := guard(func() error {
		return r.run(ctx, engine, test, slug, mode, &result, logger)
	})

	result.Duration = r.opts.Now().Sub(start)
	result.DurationMS = result.Duration.Milliseconds()

	if err != nil {
		result.Status = report.StatusErrored
		result.Message = err.Error()
		logger.Warn("test errored", "error", err)
		return result
	}

	logger.Debug("test finished", "status", result.Status, "ratio", result.MismatchRatio)
	return result
}

func (r *Runner) run(ctx context.Context, engine browser.Engine, test suite.Test, slug string, mode Mode, result *report.TestResult, logger *slog.Logger) error {
	session, err := engine.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("close session", "error", cerr)
		}
	}()

	page := browser.WithBaseURL(session.Page(), r.opts.BaseURL)
	if test.Scenario != nil {
		if err := test.Scenario(page); err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
	}

	captured, err := page.Screenshot(test.Selector)
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}

	if mode == Approve {
		return r.approve(slug, captured, result)
	}
	return r.check(test, slug, captured, result, logger)
}

func (r *Runner) approve(slug string, captured []byte, result *report.TestResult) error {
	store := r.opts.Store
	if err := store.WriteBaselineDirectly(slug, captured); err != nil {
		return err
	}
	if err := store.ClearLegacyBundle(slug); err != nil {
		return err
	}
	result.Status = report.StatusPassed
	return nil
}

func (r *Runner) check(test suite.Test, slug string, captured []byte, result *report.TestResult, logger *slog.Logger) error {
	store := r.opts.Store
	// Every file in the bundle must describe this run.
	if err := store.ClearBundle(slug); err != nil {
		return err
	}
	if err := store.WriteCapture(slug, captured); err != nil {
		return err
	}

	exists, err := store.BaselineExists(slug)
	if err != nil {
		return err
	}
	if !exists {
		result.Status = report.StatusFailed
		result.Message = fmt.Sprintf("no baseline; run: layoutguard approve %q", test.Name)
		return nil
	}

	if err := store.SnapshotOriginalIntoBundle(slug); err != nil {
		return err
	}
	baselineData, err := store.ReadBaseline(slug)
	if err != nil {
		return err
	}
	baseline, err := compare.Decode(baselineData)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	current, err := compare.Decode(captured)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	cmp, err := r.opts.Comparator.Compare(baseline, current)
	if err != nil {
		return err
	}
	diff, err := compare.Encode(cmp.Diff)
	if err != nil {
		return err
	}
	if err := store.WriteDiff(slug, diff); err != nil {
		return err
	}

	result.Mismatched = cmp.Mismatched
	result.Total = cmp.Total
	result.MismatchRatio = cmp.Ratio()

	if result.MismatchRatio > r.opts.DiffThreshold {
		result.Status = report.StatusFailed
		result.Message = fmt.Sprintf("%d of %d pixels differ", cmp.Mismatched, cmp.Total)
		result.DiffPath = store.DiffPath(slug)
		if r.opts.ShowDiff {
			if err := r.opts.Viewer.Open(result.DiffPath); err != nil {
				logger.Warn("open diff viewer", "path", result.DiffPath, "error", err)
			}
		}
		return nil
	}

	result.Status = report.StatusPassed
	return store.ClearBundle(slug)
}

// guard converts a panic in fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}
