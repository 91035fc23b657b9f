package main

import (
	"fmt"

	"github.com/bgricker/layoutguard/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print layoutguard, driver and local Chrome versions",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, info := range version.Detect() {
		fmt.Fprintf(out, "%s %s\n", info.Name, info.Version)
	}

	chrome, err := version.DetectChrome()
	switch {
	case err == nil:
		fmt.Fprintf(out, "%s %s\n", chrome.Name, chrome.Version)
	case version.Missing(err):
		fmt.Fprintln(out, "chrome not found on PATH (needed by the chromedp driver without cdpUrl)")
	default:
		return fmt.Errorf("detect chrome: %w", err)
	}
	return nil
}
