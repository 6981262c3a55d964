// Package config loads file-based defaults for the web2pdf command line.
// Values from a config file seed the flag defaults; flags given on the
// command line always win.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/porticus-lab/web2pdf"
)

// maxInputSize limits config input to prevent memory exhaustion.
const maxInputSize = 1 << 20

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrConfigTooLarge = errors.New("config file exceeds maximum size")
)

// Config holds all file-configurable conversion settings.
type Config struct {
	Page          PageConfig        `yaml:"page"`
	Viewport      ViewportConfig    `yaml:"viewport"`
	Browser       BrowserConfig     `yaml:"browser"`
	Headers       map[string]string `yaml:"headers"`
	HideSelectors []string          `yaml:"hideSelectors"`
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Format            string       `yaml:"format"` // "Letter", "A4", ... (default: "A4")
	Scale             float64      `yaml:"scale"`  // 0.1 to 2.0 (default: 1.0)
	Landscape         bool         `yaml:"landscape"`
	Background        bool         `yaml:"background"`        // render CSS backgrounds (default: true)
	PreferCSSPageSize bool         `yaml:"preferCSSPageSize"` // honor @page size rules (default: true)
	Margin            MarginConfig `yaml:"margin"`
}

// MarginConfig holds the page margins as CSS-style lengths ("0.5in",
// "12.7mm", "48px").
type MarginConfig struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

// ViewportConfig defines the browser viewport used during rendering.
type ViewportConfig struct {
	Width  int `yaml:"width"`  // pixels (default: 1200)
	Height int `yaml:"height"` // pixels (default: 800)
}

// BrowserConfig defines how the browser is launched and driven.
type BrowserConfig struct {
	ChromePath      string `yaml:"chromePath"` // empty = auto-detect
	Proxy           string `yaml:"proxy"`      // proxy URI, e.g. "socks5://127.0.0.1:9050"
	NoSandbox       bool   `yaml:"noSandbox"`
	AutoDownload    bool   `yaml:"autoDownload"`
	TimeoutMS       int    `yaml:"timeoutMs"`       // per-page budget (default: 30000)
	WaitNetworkIdle bool   `yaml:"waitNetworkIdle"` // wait for network idle after load (default: true)
}

// DefaultConfig returns the built-in defaults. Load unmarshals on top of
// this, so fields absent from the file keep their default.
func DefaultConfig() *Config {
	return &Config{
		Page: PageConfig{
			Format:            "A4",
			Scale:             1.0,
			Background:        true,
			PreferCSSPageSize: true,
			Margin: MarginConfig{
				Top:    "0.5in",
				Right:  "0.5in",
				Bottom: "0.5in",
				Left:   "0.5in",
			},
		},
		Viewport: ViewportConfig{Width: 1200, Height: 800},
		Browser: BrowserConfig{
			TimeoutMS:       30000,
			WaitNetworkIdle: true,
		},
	}
}

// Load reads a YAML config file, rejecting unknown fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > maxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, len(data), maxInputSize)
	}

	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field consistency.
func (c *Config) Validate() error {
	if c.Page.Format != "" {
		if _, err := web2pdf.FormatByName(c.Page.Format); err != nil {
			return fmt.Errorf("page.format: %v", err)
		}
	}
	if c.Page.Scale < 0.1 || c.Page.Scale > 2.0 {
		return fmt.Errorf("page.scale: must be between 0.1 and 2.0, got %g", c.Page.Scale)
	}
	for _, m := range []struct {
		field string
		value string
	}{
		{"page.margin.top", c.Page.Margin.Top},
		{"page.margin.right", c.Page.Margin.Right},
		{"page.margin.bottom", c.Page.Margin.Bottom},
		{"page.margin.left", c.Page.Margin.Left},
	} {
		if m.value == "" {
			continue
		}
		if _, err := web2pdf.ParseLength(m.value); err != nil {
			return fmt.Errorf("%s: %v", m.field, err)
		}
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport: dimensions must be positive, got %dx%d",
			c.Viewport.Width, c.Viewport.Height)
	}
	if c.Browser.TimeoutMS <= 0 {
		return fmt.Errorf("browser.timeoutMs: must be positive, got %d", c.Browser.TimeoutMS)
	}
	return nil
}
