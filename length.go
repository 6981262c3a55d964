package web2pdf

import (
	"fmt"
	"strconv"
	"strings"
)

// Inches per supported CSS-style unit. Bare numbers are pixels, matching
// the browser engine's own convention for print margins.
var unitInches = map[string]float64{
	"in": 1,
	"cm": 1 / 2.54,
	"mm": 1 / 25.4,
	"px": 1.0 / 96,
}

// ParseLength converts a length string with an optional unit suffix
// ("0.5in", "2cm", "15mm", "96px", "12") to inches.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("web2pdf: empty length")
	}

	factor := unitInches["px"]
	num := s
	for unit, f := range unitInches {
		if strings.HasSuffix(s, unit) {
			factor = f
			num = strings.TrimSpace(strings.TrimSuffix(s, unit))
			break
		}
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("web2pdf: invalid length %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("web2pdf: negative length %q", s)
	}
	return v * factor, nil
}

// ParseMargins converts the four margin strings to a Margin in inches.
func ParseMargins(top, right, bottom, left string) (Margin, error) {
	var m Margin
	var err error
	if m.Top, err = ParseLength(top); err != nil {
		return Margin{}, fmt.Errorf("margin-top: %w", err)
	}
	if m.Right, err = ParseLength(right); err != nil {
		return Margin{}, fmt.Errorf("margin-right: %w", err)
	}
	if m.Bottom, err = ParseLength(bottom); err != nil {
		return Margin{}, fmt.Errorf("margin-bottom: %w", err)
	}
	if m.Left, err = ParseLength(left); err != nil {
		return Margin{}, fmt.Errorf("margin-left: %w", err)
	}
	return m, nil
}
