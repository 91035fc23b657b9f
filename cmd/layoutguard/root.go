package main

import (
	"github.com/bgricker/layoutguard/internal/browser"
	"github.com/bgricker/layoutguard/internal/viewer"
	"github.com/spf13/cobra"
)

// Swapped out in tests.
var (
	launchEngine   browser.LaunchFunc = browser.Launch
	installBrowser func(string) error = browser.Install
	diffViewer     viewer.Opener      = viewer.System{}
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "layoutguard",
		Short:         "Layoutguard catches visual regressions by comparing page screenshots",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("base-url", "", "base URL prefixed to root-relative navigation targets")
	persistent.String("browser", "", "browser to drive (chromium|firefox|webkit)")
	persistent.Float64("diff-threshold", 0, "largest mismatched pixel ratio that still passes")
	persistent.StringArray("grep", nil, "only include tests whose name or path matches (repeatable, /regex/ allowed)")
	persistent.BoolP("verbose", "v", false, "enable debug logging on stderr")
	persistent.String("format", "pretty", "output format (pretty|json)")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newApproveCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
