package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bgricker/layoutguard/internal/browser"
	"github.com/bgricker/layoutguard/internal/browser/browsertest"
	"github.com/bgricker/layoutguard/internal/config"
)

func TestInitCommandIdempotent(t *testing.T) {
	root := t.TempDir()
	chdir(t, root)

	out, err := execCmd(t, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Created "+config.FileName) || !strings.Contains(out, "Created "+exampleTestPath) {
		t.Fatalf("unexpected init output:\n%s", out)
	}

	custom := []byte(`{"baseUrl": "http://127.0.0.1:9000"}`)
	if err := os.WriteFile(filepath.Join(root, config.FileName), custom, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err = execCmd(t, "init")
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !strings.Contains(out, "Kept existing "+config.FileName) {
		t.Fatalf("expected existing config kept, got:\n%s", out)
	}
	data, err := os.ReadFile(filepath.Join(root, config.FileName))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !bytes.Equal(data, custom) {
		t.Fatalf("config overwritten: %s", data)
	}
	for _, dir := range []string{".layoutguard/snapshots", ".layoutguard/failures"} {
		if info, err := os.Stat(filepath.Join(root, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestCheckCommandRequiresConfig(t *testing.T) {
	chdir(t, t.TempDir())
	launches := stubLaunch(t, nil)

	_, err := execCmd(t, "check")
	if !errors.Is(err, config.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if *launches != 0 {
		t.Fatalf("browser launched without config")
	}
}

func TestCheckCommandUnknownTestSkipsLaunch(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := execCmd(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	launches := stubLaunch(t, nil)

	_, err := execCmd(t, "check", "Does not exist")
	if err == nil || !strings.Contains(err.Error(), "test not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if *launches != 0 {
		t.Fatalf("browser launched for unresolvable test")
	}
}

func TestApproveThenCheckCommands(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := execCmd(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	engine := browsertest.New(browsertest.Solid(6, 6, color.White))
	stubLaunch(t, engine)

	out, err := execCmd(t, "approve")
	if err != nil {
		t.Fatalf("approve: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Example home page approved") {
		t.Fatalf("unexpected approve output:\n%s", out)
	}

	out, err = execCmd(t, "check", "--format", "json")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	var rep struct {
		RunID   string `json:"run_id"`
		Mode    string `json:"mode"`
		Results []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"results"`
		Summary struct {
			Passed   int `json:"passed"`
			ExitCode int `json:"exit_code"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, out)
	}
	if rep.RunID == "" || rep.Mode != "check" || len(rep.Results) != 1 || rep.Results[0].Status != "passed" {
		t.Fatalf("unexpected report %+v", rep)
	}

	engine.SetImage(browsertest.Solid(6, 6, color.Black))
	out, err = execCmd(t, "check")
	if err == nil || err.Error() != "one or more tests failed" {
		t.Fatalf("expected failing check, got %v", err)
	}
	if !strings.Contains(out, "Failed tests:") || !strings.Contains(out, "Example home page") {
		t.Fatalf("unexpected check output:\n%s", out)
	}

	out, err = execCmd(t, "approve", "--from-failures")
	if err != nil {
		t.Fatalf("approve --from-failures: %v\n%s", err, out)
	}
	if _, err := execCmd(t, "check", "examples/example.spec.yaml"); err != nil {
		t.Fatalf("check after promotion: %v", err)
	}
}

func TestListCommand(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := execCmd(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := execCmd(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := "· Example home page (" + filepath.FromSlash(exampleTestPath) + ") [example-home-page]\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s", diffStrings(want, out))
	}
}

func TestInstallCommand(t *testing.T) {
	chdir(t, t.TempDir())

	var installed []string
	prev := installBrowser
	installBrowser = func(name string) error {
		installed = append(installed, name)
		return nil
	}
	t.Cleanup(func() { installBrowser = prev })

	if _, err := execCmd(t, "install", "--browser", "firefox"); err != nil {
		t.Fatalf("install: %v", err)
	}
	if len(installed) != 1 || installed[0] != "firefox" {
		t.Fatalf("unexpected installs %v", installed)
	}

	if err := os.WriteFile(config.FileName, []byte(`{"driver": "chromedp"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := execCmd(t, "install"); err == nil {
		t.Fatalf("expected chromedp install to be rejected")
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := execCmd(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := execCmd(t, "list", "--diff-threshold", "2"); err == nil {
		t.Fatalf("expected out-of-range flag to be rejected")
	}
	if _, err := execCmd(t, "list", "--grep", "nothing-matches"); err == nil {
		t.Fatalf("expected empty selection error")
	}
}

func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)

	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	return stdout.String(), err
}

// stubLaunch replaces the engine launcher; a nil engine fails the launch.
func stubLaunch(t *testing.T, engine *browsertest.Engine) *int {
	t.Helper()
	count := 0
	prev := launchEngine
	launchEngine = func(ctx context.Context, opts browser.Options) (browser.Engine, error) {
		count++
		if engine == nil {
			return nil, errors.New("no browser in tests")
		}
		return engine.Launch(ctx, opts)
	}
	t.Cleanup(func() { launchEngine = prev })
	return &count
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %q: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore dir: %v", err)
		}
	})
}

func diffStrings(want, got string) string {
	if want == got {
		return ""
	}
	return "--- want\n" + want + "\n--- got\n" + got
}
