package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bgricker/layoutguard/internal/config"
	"github.com/bgricker/layoutguard/internal/orchestrator"
	"github.com/bgricker/layoutguard/internal/output"
	"github.com/bgricker/layoutguard/internal/report"
	"github.com/bgricker/layoutguard/internal/runner"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [test]",
		Short: "Compare fresh screenshots against the approved baselines",
		Long: "Runs every discovered test, or the one named by [test]. A test is selected by\n" +
			"file path when the argument contains a path separator or ends in .yaml/.yml,\n" +
			"and by exact name otherwise.",
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().Bool("show-diff", false, "open the diff image of each failing test")
	return cmd
}

func newApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve [test]",
		Short: "Capture screenshots and accept them as the new baselines",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runApprove,
	}
	cmd.Flags().Bool("from-failures", false, "accept the captures of the last failed check instead of taking new ones")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	showDiff, err := cmd.Flags().GetBool("show-diff")
	if err != nil {
		return fmt.Errorf("parse --show-diff: %w", err)
	}
	return execute(cmd, args, runner.Check, showDiff, false)
}

func runApprove(cmd *cobra.Command, args []string) error {
	fromFailures, err := cmd.Flags().GetBool("from-failures")
	if err != nil {
		return fmt.Errorf("parse --from-failures: %w", err)
	}
	return execute(cmd, args, runner.Approve, false, fromFailures)
}

func execute(cmd *cobra.Command, args []string, mode runner.Mode, showDiff, fromFailures bool) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := orchestrator.Options{
		Root:     root,
		Config:   cfg,
		Selector: selectorArg(args),
		ShowDiff: showDiff,
		Launch:   launchEngine,
		Viewer:   diffViewer,
		Logger:   newLogger(cmd.ErrOrStderr(), cfg.Verbose),
	}

	format := strings.ToLower(cfg.Format)
	var pretty *output.PrettyRenderer
	if format != config.FormatJSON {
		pretty = output.NewPretty(cmd.OutOrStdout())
		opts.Observer = pretty
	}

	o := orchestrator.New(opts)
	var summary report.Summary
	var results []report.TestResult
	if fromFailures {
		summary, results, err = o.Promote(cmd.Context())
	} else {
		summary, results, err = o.Run(cmd.Context(), mode)
	}
	if err != nil {
		return err
	}

	if pretty != nil {
		if err := pretty.RenderSummary(summary); err != nil {
			return err
		}
	} else {
		jsonReport := output.Report{
			RunID:   summary.RunID,
			Mode:    summary.Mode,
			Results: results,
			Summary: &summary,
		}
		if err := output.NewJSON(cmd.OutOrStdout()).Render(jsonReport); err != nil {
			return err
		}
	}

	if summary.ExitCode != 0 {
		return errors.New("one or more tests failed")
	}
	return nil
}

func selectorArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
