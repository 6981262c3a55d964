package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "web2pdf.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("err = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadDefaultsPreserved(t *testing.T) {
	// A file that sets only one field keeps the defaults for the rest.
	path := writeConfig(t, "page:\n  landscape: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Page.Landscape {
		t.Error("page.landscape should be true")
	}
	if cfg.Page.Format != "A4" {
		t.Errorf("page.format = %q, want default %q", cfg.Page.Format, "A4")
	}
	if cfg.Page.Scale != 1.0 {
		t.Errorf("page.scale = %g, want default 1.0", cfg.Page.Scale)
	}
	if !cfg.Page.Background {
		t.Error("page.background should default to true")
	}
	if !cfg.Browser.WaitNetworkIdle {
		t.Error("browser.waitNetworkIdle should default to true")
	}
	if cfg.Page.Margin.Top != "0.5in" {
		t.Errorf("page.margin.top = %q, want default %q", cfg.Page.Margin.Top, "0.5in")
	}
	if cfg.Viewport.Width != 1200 || cfg.Viewport.Height != 800 {
		t.Errorf("viewport = %dx%d, want default 1200x800", cfg.Viewport.Width, cfg.Viewport.Height)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
page:
  format: Letter
  scale: 0.8
  landscape: true
  background: false
  preferCSSPageSize: false
  margin:
    top: 1in
    right: 2cm
    bottom: 10mm
    left: 96px
viewport:
  width: 1920
  height: 1080
browser:
  chromePath: /usr/bin/chromium
  proxy: socks5://127.0.0.1:9050
  noSandbox: true
  timeoutMs: 60000
  waitNetworkIdle: false
headers:
  Authorization: "Bearer token"
  X-Test: "1"
hideSelectors:
  - ".cookie-banner"
  - "#ads"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Page.Format != "Letter" {
		t.Errorf("page.format = %q, want Letter", cfg.Page.Format)
	}
	if cfg.Page.Scale != 0.8 {
		t.Errorf("page.scale = %g, want 0.8", cfg.Page.Scale)
	}
	if cfg.Page.Background || cfg.Page.PreferCSSPageSize {
		t.Error("background and preferCSSPageSize should be false")
	}
	if cfg.Browser.Proxy != "socks5://127.0.0.1:9050" {
		t.Errorf("browser.proxy = %q", cfg.Browser.Proxy)
	}
	if cfg.Browser.TimeoutMS != 60000 {
		t.Errorf("browser.timeoutMs = %d, want 60000", cfg.Browser.TimeoutMS)
	}
	if cfg.Headers["Authorization"] != "Bearer token" {
		t.Errorf("headers = %v", cfg.Headers)
	}
	if len(cfg.HideSelectors) != 2 || cfg.HideSelectors[0] != ".cookie-banner" {
		t.Errorf("hideSelectors = %v", cfg.HideSelectors)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "page:\n  sideways: true\n")
	_, err := Load(path)
	if !errors.Is(err, ErrConfigParse) {
		t.Fatalf("err = %v, want ErrConfigParse", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Page.Format = "A9" },
			wantErr: "page.format",
		},
		{
			name:    "scale too small",
			mutate:  func(c *Config) { c.Page.Scale = 0.05 },
			wantErr: "page.scale",
		},
		{
			name:    "scale too large",
			mutate:  func(c *Config) { c.Page.Scale = 3 },
			wantErr: "page.scale",
		},
		{
			name:    "bad margin unit",
			mutate:  func(c *Config) { c.Page.Margin.Left = "2furlongs" },
			wantErr: "page.margin.left",
		},
		{
			name:    "zero viewport",
			mutate:  func(c *Config) { c.Viewport.Width = 0 },
			wantErr: "viewport",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Browser.TimeoutMS = -1 },
			wantErr: "browser.timeoutMs",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
