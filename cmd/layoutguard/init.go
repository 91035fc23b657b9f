package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bgricker/layoutguard/internal/artifact"
	"github.com/bgricker/layoutguard/internal/config"
	"github.com/spf13/cobra"
)

const exampleTestPath = "examples/example.spec.yaml"

const exampleTest = `# Navigation targets starting with "/" are resolved against baseUrl.
name: Example home page
# selector: "#main"
scenario:
  - goto: /
  - waitFor: body
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the layoutguard directories, a default config and an example test",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Initializing layoutguard...")
	if err := artifact.New(root).EnsureDirectories(); err != nil {
		return err
	}
	fmt.Fprintln(out, "  Prepared .layoutguard/snapshots and .layoutguard/failures")

	cfgData, err := config.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("render default config: %w", err)
	}
	if err := createFile(out, root, config.FileName, cfgData); err != nil {
		return err
	}
	if err := createFile(out, root, exampleTestPath, []byte(exampleTest)); err != nil {
		return err
	}

	fmt.Fprintln(out, "Initialization complete. Review "+config.FileName+" and run `layoutguard install` to fetch a browser.")
	return nil
}

// createFile writes data to rel under root unless the file already exists.
func createFile(out io.Writer, root, rel string, data []byte) error {
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %q: %w", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			fmt.Fprintf(out, "  Kept existing %s\n", rel)
			return nil
		}
		return fmt.Errorf("create %q: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	fmt.Fprintf(out, "  Created %s\n", rel)
	return nil
}
