package main

import (
	"fmt"

	"github.com/bgricker/layoutguard/internal/browser"
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download the playwright driver and the configured browser",
		Args:  cobra.NoArgs,
		RunE:  runInstall,
	}
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfigOrDefault(cmd)
	if err != nil {
		return err
	}
	if cfg.Driver != browser.DriverPlaywright {
		return fmt.Errorf("install only manages playwright browsers; driver %q uses a locally installed Chrome", cfg.Driver)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Installing %s...\n", cfg.BrowserName)
	if err := installBrowser(cfg.BrowserName); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s\n", cfg.BrowserName)
	return nil
}
