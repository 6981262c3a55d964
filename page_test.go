package web2pdf

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestFormatByName(t *testing.T) {
	tests := []struct {
		name string
		want PageFormat
	}{
		{"A4", A4},
		{"a4", A4},
		{"Letter", Letter},
		{"LETTER", Letter},
		{"ledger", Ledger},
		{"A0", A0},
	}
	for _, tt := range tests {
		got, err := FormatByName(tt.name)
		if err != nil {
			t.Errorf("FormatByName(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatByName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFormatByName_Unknown(t *testing.T) {
	_, err := FormatByName("A9")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	var ufe *UnknownFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("err = %T, want *UnknownFormatError", err)
	}
	if ufe.Name != "A9" {
		t.Errorf("ufe.Name = %q, want A9", ufe.Name)
	}
}

func TestFormatNames(t *testing.T) {
	names := FormatNames()
	if len(names) != 11 {
		t.Fatalf("FormatNames() has %d entries, want 11", len(names))
	}
	found := false
	for _, n := range names {
		if n == "A4" {
			found = true
		}
	}
	if !found {
		t.Error("FormatNames() missing A4")
	}
}

func TestDefaultPageConfig(t *testing.T) {
	d := DefaultPageConfig()
	if d.Format != A4 {
		t.Errorf("default format = %v, want A4", d.Format)
	}
	if d.Orientation != Portrait {
		t.Errorf("default orientation = %v, want Portrait", d.Orientation)
	}
	if d.Scale != 1.0 {
		t.Errorf("default scale = %v, want 1.0", d.Scale)
	}
	if !d.PrintBackground {
		t.Error("default PrintBackground = false, want true")
	}
	if !d.PreferCSSPageSize {
		t.Error("default PreferCSSPageSize = false, want true")
	}
	if !d.WaitNetworkIdle {
		t.Error("default WaitNetworkIdle = false, want true")
	}
	if d.Margin != UniformMargin(0.5) {
		t.Errorf("default margin = %v, want uniform 0.5", d.Margin)
	}
	if d.ViewportWidth != 1200 || d.ViewportHeight != 800 {
		t.Errorf("default viewport = %dx%d, want 1200x800", d.ViewportWidth, d.ViewportHeight)
	}
}

func TestUniformMargin(t *testing.T) {
	m := UniformMargin(2.5)
	if m.Top != 2.5 || m.Right != 2.5 || m.Bottom != 2.5 || m.Left != 2.5 {
		t.Errorf("UniformMargin(2.5) = %+v, want all 2.5", m)
	}
}

func TestPageConfigResolved_Nil(t *testing.T) {
	var pc *PageConfig
	r := pc.resolved()
	d := DefaultPageConfig()
	if r.Format != d.Format || r.Scale != d.Scale || r.Margin != d.Margin ||
		r.ViewportWidth != d.ViewportWidth || r.ViewportHeight != d.ViewportHeight {
		t.Errorf("nil resolved = %+v, want defaults %+v", r, d)
	}
}

func TestPageConfigResolved_ZeroValues(t *testing.T) {
	pc := &PageConfig{}
	r := pc.resolved()
	if r.Format != A4 {
		t.Errorf("zero format resolved to %v, want A4", r.Format)
	}
	if r.Scale != 1.0 {
		t.Errorf("zero scale resolved to %v, want 1.0", r.Scale)
	}
	if r.Margin != UniformMargin(0.5) {
		t.Errorf("zero margin resolved to %v, want uniform 0.5", r.Margin)
	}
	if r.ViewportWidth != 1200 || r.ViewportHeight != 800 {
		t.Errorf("zero viewport resolved to %dx%d, want 1200x800", r.ViewportWidth, r.ViewportHeight)
	}
	// Unlike a nil config, false booleans on a non-nil config stay false.
	if r.PrintBackground || r.PreferCSSPageSize || r.WaitNetworkIdle {
		t.Error("boolean fields on a non-nil config must not be rewritten to true")
	}
}

func TestPageConfigResolved_PreservesExplicit(t *testing.T) {
	pc := &PageConfig{
		Format:      Letter,
		Orientation: Landscape,
		Scale:       0.5,
		Margin:      Margin{Top: 2, Right: 3, Bottom: 2, Left: 3},
	}
	r := pc.resolved()
	if r.Format != Letter {
		t.Errorf("format = %v, want Letter", r.Format)
	}
	if r.Orientation != Landscape {
		t.Errorf("orientation = %v, want Landscape", r.Orientation)
	}
	if r.Scale != 0.5 {
		t.Errorf("scale = %v, want 0.5", r.Scale)
	}
	if r.Margin.Top != 2 {
		t.Errorf("margin top = %v, want 2", r.Margin.Top)
	}
}

func TestPaperDimensions_Portrait(t *testing.T) {
	pc := &PageConfig{Format: A4, Orientation: Portrait}
	w, h := pc.paperDimensions()
	if !almostEqual(w, 8.27, 0.01) {
		t.Errorf("portrait width = %v, want ~8.27", w)
	}
	if !almostEqual(h, 11.7, 0.01) {
		t.Errorf("portrait height = %v, want ~11.7", h)
	}
}

func TestPaperDimensions_Landscape(t *testing.T) {
	pc := &PageConfig{Format: A4, Orientation: Landscape}
	w, h := pc.paperDimensions()
	// Landscape swaps width and height.
	if !almostEqual(w, 11.7, 0.01) {
		t.Errorf("landscape width = %v, want ~11.7", w)
	}
	if !almostEqual(h, 8.27, 0.01) {
		t.Errorf("landscape height = %v, want ~8.27", h)
	}
}

func TestPaperDimensions_LedgerIsLandscapeLetterTabloid(t *testing.T) {
	// Ledger is Tabloid rotated; its portrait dimensions are already wide.
	pc := &PageConfig{Format: Ledger}
	w, h := pc.paperDimensions()
	if w != 17 || h != 11 {
		t.Errorf("ledger = %gx%g, want 17x11", w, h)
	}
}
