package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bgricker/layoutguard/internal/config"
	"github.com/spf13/cobra"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("base-url") {
		v, err := flags.GetString("base-url")
		if err != nil {
			return values, fmt.Errorf("parse --base-url: %w", err)
		}
		values.BaseURL = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("browser") {
		v, err := flags.GetString("browser")
		if err != nil {
			return values, fmt.Errorf("parse --browser: %w", err)
		}
		values.BrowserName = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("diff-threshold") {
		v, err := flags.GetFloat64("diff-threshold")
		if err != nil {
			return values, fmt.Errorf("parse --diff-threshold: %w", err)
		}
		values.DiffThreshold = config.FloatFlag{Value: v, Set: true}
	}

	if flags.Changed("grep") {
		v, err := flags.GetStringArray("grep")
		if err != nil {
			return values, fmt.Errorf("parse --grep: %w", err)
		}
		values.Grep = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("format") {
		v, err := flags.GetString("format")
		if err != nil {
			return values, fmt.Errorf("parse --format: %w", err)
		}
		values.Format = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return values, fmt.Errorf("parse --verbose: %w", err)
		}
		values.Verbose = config.BoolFlag{Value: v, Set: true}
	}

	return values, nil
}

func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	return load(cmd, false)
}

// loadConfigOrDefault is loadConfig for commands that work without a config file.
func loadConfigOrDefault(cmd *cobra.Command) (config.Config, string, error) {
	return load(cmd, true)
}

func load(cmd *cobra.Command, allowMissing bool) (config.Config, string, error) {
	root, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		if !allowMissing || !errors.Is(err, config.ErrNotFound) {
			return config.Config{}, "", err
		}
		cfg = config.Default()
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, "", err
	}
	config.ApplyFlags(&cfg, flags)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, "", err
	}

	return cfg, root, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
