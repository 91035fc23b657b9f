package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bgricker/layoutguard/internal/browser"
)

// FileName is the configuration file looked up in the project root.
const FileName = "layoutguard.config.json"

// legacyFileName is accepted when FileName is absent.
const legacyFileName = "layout-guard.config.json"

// ErrNotFound indicates that no configuration file exists in the root.
var ErrNotFound = errors.New("configuration file not found")

// Config captures options sourced from the config file and CLI flags.
type Config struct {
	TestMatch      []string          `json:"testMatch"`
	BaseURL        string            `json:"baseUrl"`
	BrowserName    string            `json:"browserName"`
	DiffThreshold  float64           `json:"diffThreshold"`
	PixelThreshold float64           `json:"pixelThreshold"`
	Driver         string            `json:"driver"`
	CDPURL         string            `json:"cdpUrl,omitempty"`
	Headless       bool              `json:"headless"`
	Viewport       *browser.Viewport `json:"viewport,omitempty"`

	Format  string   `json:"-"`
	Verbose bool     `json:"-"`
	Grep    []string `json:"-"`
}

// Default returns the configuration used for any field the file leaves out.
func Default() Config {
	return Config{
		TestMatch:      []string{"**/*.spec.yaml"},
		BaseURL:        "http://localhost:3000",
		BrowserName:    browser.Chromium,
		DiffThreshold:  0.01,
		PixelThreshold: 0.01,
		Driver:         browser.DriverPlaywright,
		Headless:       true,
		Format:         FormatPretty,
	}
}

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"
)

// fileConfig mirrors the JSON file. Pointers distinguish absent fields from
// zero values so that "diffThreshold": 0 is honoured.
type fileConfig struct {
	TestMatch      []string          `json:"testMatch"`
	BaseURL        *string           `json:"baseUrl"`
	BrowserName    *string           `json:"browserName"`
	DiffThreshold  *float64          `json:"diffThreshold"`
	PixelThreshold *float64          `json:"pixelThreshold"`
	Driver         *string           `json:"driver"`
	CDPURL         *string           `json:"cdpUrl"`
	Headless       *bool             `json:"headless"`
	Viewport       *browser.Viewport `json:"viewport"`
	Playwright     *struct {
		BrowserName *string `json:"browserName"`
	} `json:"playwright"`
}

// Path returns the config file path that Load would read under root.
func Path(root string) string {
	primary := filepath.Join(root, FileName)
	if _, err := os.Stat(primary); err == nil {
		return primary
	}
	legacy := filepath.Join(root, legacyFileName)
	if _, err := os.Stat(legacy); err == nil {
		return legacy
	}
	return primary
}

// Load reads the configuration file from root and applies defaults.
func Load(root string) (Config, error) {
	cfg := Default()
	path := Path(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s (run `layoutguard init` first)", ErrNotFound, path)
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg fileConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, fileCfg)
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func merge(base Config, override fileConfig) Config {
	out := base

	if len(override.TestMatch) > 0 {
		out.TestMatch = append([]string{}, override.TestMatch...)
	}
	if override.BaseURL != nil && *override.BaseURL != "" {
		out.BaseURL = *override.BaseURL
	}
	if override.Playwright != nil && override.Playwright.BrowserName != nil && *override.Playwright.BrowserName != "" {
		out.BrowserName = *override.Playwright.BrowserName
	}
	if override.BrowserName != nil && *override.BrowserName != "" {
		out.BrowserName = *override.BrowserName
	}
	if override.DiffThreshold != nil {
		out.DiffThreshold = *override.DiffThreshold
	}
	if override.PixelThreshold != nil {
		out.PixelThreshold = *override.PixelThreshold
	}
	if override.Driver != nil && *override.Driver != "" {
		out.Driver = *override.Driver
	}
	if override.CDPURL != nil {
		out.CDPURL = *override.CDPURL
	}
	if override.Headless != nil {
		out.Headless = *override.Headless
	}
	if override.Viewport != nil {
		vp := *override.Viewport
		out.Viewport = &vp
	}

	return out
}

// Validate rejects values the runner cannot work with.
func Validate(cfg Config) error {
	if len(cfg.TestMatch) == 0 {
		return errors.New("testMatch must list at least one pattern")
	}
	if cfg.DiffThreshold < 0 || cfg.DiffThreshold > 1 {
		return fmt.Errorf("diffThreshold must be within [0,1], got %v", cfg.DiffThreshold)
	}
	if cfg.PixelThreshold < 0 || cfg.PixelThreshold > 1 {
		return fmt.Errorf("pixelThreshold must be within [0,1], got %v", cfg.PixelThreshold)
	}
	switch cfg.BrowserName {
	case browser.Chromium, browser.Firefox, browser.WebKit:
	default:
		return fmt.Errorf("unsupported browserName %q (chromium|firefox|webkit)", cfg.BrowserName)
	}
	switch cfg.Driver {
	case browser.DriverPlaywright:
	case browser.DriverChromedp:
		if cfg.BrowserName != browser.Chromium {
			return fmt.Errorf("driver %q supports only chromium, got %q", cfg.Driver, cfg.BrowserName)
		}
	default:
		return fmt.Errorf("unsupported driver %q (playwright|chromedp)", cfg.Driver)
	}
	if cfg.Viewport != nil && (cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0) {
		return fmt.Errorf("viewport must have positive width and height, got %dx%d", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	switch strings.ToLower(cfg.Format) {
	case "", FormatPretty, FormatJSON:
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
	return nil
}

// BrowserOptions converts the configuration into engine launch options.
func (c Config) BrowserOptions() browser.Options {
	return browser.Options{
		Driver:   c.Driver,
		Browser:  c.BrowserName,
		Headless: c.Headless,
		CDPURL:   c.CDPURL,
		Viewport: c.Viewport,
	}
}

// Marshal renders cfg as the indented JSON written by `layoutguard init`.
func Marshal(cfg Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.BaseURL.Set {
		cfg.BaseURL = flags.BaseURL.Value
	}
	if flags.BrowserName.Set {
		cfg.BrowserName = flags.BrowserName.Value
	}
	if flags.DiffThreshold.Set {
		cfg.DiffThreshold = flags.DiffThreshold.Value
	}
	if len(flags.Grep.Values) > 0 {
		cfg.Grep = append([]string{}, flags.Grep.Values...)
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	BaseURL       StringFlag
	BrowserName   StringFlag
	DiffThreshold FloatFlag
	Grep          SliceFlag
	Format        StringFlag
	Verbose       BoolFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

// FloatFlag represents a float flag and whether it was set.
type FloatFlag struct {
	Value float64
	Set   bool
}
