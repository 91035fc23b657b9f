package version

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"runtime/debug"
	"strings"
)

// Info captures the version of a component.
type Info struct {
	Name    string
	Version string
}

// driverModules are the browser driver libraries worth reporting.
var driverModules = []string{
	"github.com/playwright-community/playwright-go",
	"github.com/chromedp/chromedp",
}

// chromeCandidates are the executable names tried when looking for a local Chrome.
var chromeCandidates = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}

var chromeRegex = regexp.MustCompile(`(?i)(?:chrome|chromium)\s+(\d+(?:\.\d+)+)`)

// Detect reports the layoutguard version and the driver libraries linked
// into the running binary.
func Detect() []Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return []Info{{Name: "layoutguard", Version: "(unknown)"}}
	}
	return fromBuildInfo(bi)
}

func fromBuildInfo(bi *debug.BuildInfo) []Info {
	current := bi.Main.Version
	if current == "" {
		current = "(devel)"
	}
	infos := []Info{{Name: "layoutguard", Version: current}}

	for _, want := range driverModules {
		for _, dep := range bi.Deps {
			if dep.Path != want {
				continue
			}
			v := dep.Version
			if dep.Replace != nil {
				v = dep.Replace.Version
			}
			infos = append(infos, Info{Name: shortName(dep.Path), Version: v})
		}
	}
	return infos
}

// DetectChrome returns the version of the first Chrome or Chromium found on PATH.
// The chromedp driver launches it when no cdpUrl is configured.
func DetectChrome() (Info, error) {
	var lastErr error
	for _, name := range chromeCandidates {
		out, err := runCommand(name, "--version")
		if err != nil {
			lastErr = err
			continue
		}
		v, err := parseChrome(out)
		if err != nil {
			return Info{}, err
		}
		return Info{Name: name, Version: v}, nil
	}
	return Info{}, lastErr
}

func parseChrome(out string) (string, error) {
	match := chromeRegex.FindStringSubmatch(out)
	if len(match) < 2 {
		return "", fmt.Errorf("unable to parse chrome version from %q", out)
	}
	return match[1], nil
}

func runCommand(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func shortName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Missing reports whether executing the command returns a not-found error.
func Missing(cmdErr error) bool {
	return errors.Is(cmdErr, exec.ErrNotFound)
}
