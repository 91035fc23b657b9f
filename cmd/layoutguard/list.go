package main

import (
	"fmt"
	"strings"

	"github.com/bgricker/layoutguard/internal/config"
	"github.com/bgricker/layoutguard/internal/orchestrator"
	"github.com/bgricker/layoutguard/internal/output"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [test]",
		Short: "List the tests a run would cover and whether each has a baseline",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	o := orchestrator.New(orchestrator.Options{
		Root:     root,
		Config:   cfg,
		Selector: selectorArg(args),
		Logger:   newLogger(cmd.ErrOrStderr(), cfg.Verbose),
	})
	entries, err := o.Resolve(cmd.Context())
	if err != nil {
		return err
	}

	items := make([]output.ListItem, 0, len(entries))
	for _, entry := range entries {
		slug := entry.Test.Slug()
		exists, err := o.Store().BaselineExists(slug)
		if err != nil {
			return err
		}
		items = append(items, output.ListItem{
			Name:     entry.Test.Name,
			Path:     entry.Path,
			Slug:     slug,
			Baseline: exists,
		})
	}

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		return output.NewPretty(cmd.OutOrStdout()).RenderList(items)
	case config.FormatJSON:
		return output.NewJSON(cmd.OutOrStdout()).Render(output.Report{Tests: items})
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}
