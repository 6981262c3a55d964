package main

import (
	"bytes"
	"strings"
	"testing"
)

func mustParse(t *testing.T, args ...string) *convertFlags {
	t.Helper()
	f, err := parseFlags(args, new(bytes.Buffer))
	if err != nil {
		t.Fatalf("parseFlags(%v): %v", args, err)
	}
	return f
}

func TestParseFlagsShorthands(t *testing.T) {
	f := mustParse(t, "-i", "https://example.com", "-o", "out.pdf", "-d", ".ads,.banner")

	if f.url != "https://example.com" {
		t.Errorf("url = %q", f.url)
	}
	if f.output != "out.pdf" {
		t.Errorf("output = %q", f.output)
	}
	if len(f.hideSelectors) != 2 || f.hideSelectors[0] != ".ads" || f.hideSelectors[1] != ".banner" {
		t.Errorf("hideSelectors = %v, want [.ads .banner]", f.hideSelectors)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	f := mustParse(t)

	if f.page.format != "A4" {
		t.Errorf("format = %q, want A4", f.page.format)
	}
	if f.page.scale != 1.0 {
		t.Errorf("scale = %g, want 1.0", f.page.scale)
	}
	if f.page.marginTop != "0.5in" {
		t.Errorf("margin-top = %q, want 0.5in", f.page.marginTop)
	}
	if f.network.timeoutMS != 30000 {
		t.Errorf("timeout = %d, want 30000", f.network.timeoutMS)
	}
	if f.network.viewportWidth != 1200 || f.network.viewportHeight != 800 {
		t.Errorf("viewport = %dx%d, want 1200x800", f.network.viewportWidth, f.network.viewportHeight)
	}
	if f.page.landscape || f.page.noBackground || f.network.noWaitNetwork {
		t.Error("boolean flags should default to false")
	}
}

func TestParseFlagsRepeatableHeaders(t *testing.T) {
	f := mustParse(t,
		"--header", "Authorization: Bearer abc",
		"--header", "X-Custom: a, b, c")

	// StringArray keeps each occurrence whole; commas are not separators.
	if len(f.network.headers) != 2 {
		t.Fatalf("headers = %v, want 2 entries", f.network.headers)
	}
	if f.network.headers[1] != "X-Custom: a, b, c" {
		t.Errorf("headers[1] = %q", f.network.headers[1])
	}
}

func TestParseFlagsRepeatableHideSelectors(t *testing.T) {
	f := mustParse(t, "-d", ".ads", "-d", "#cookie-banner")

	if len(f.hideSelectors) != 2 || f.hideSelectors[1] != "#cookie-banner" {
		t.Errorf("hideSelectors = %v", f.hideSelectors)
	}
}

func TestParseFlagsChanged(t *testing.T) {
	f := mustParse(t, "--scale", "0.75")

	if !f.changed("scale") {
		t.Error("scale should report changed")
	}
	if f.changed("format") {
		t.Error("format should not report changed")
	}
}

func TestParseFlagsUnknownFlag(t *testing.T) {
	var usage bytes.Buffer
	_, err := parseFlags([]string{"--bogus"}, &usage)
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestUsageListsCoreFlags(t *testing.T) {
	var usage bytes.Buffer
	f := mustParse(t)
	printUsage(&usage, f.fs)

	for _, want := range []string{"--url", "--output", "--hide-selector", "--format", "--proxy", "--header"} {
		if !strings.Contains(usage.String(), want) {
			t.Errorf("usage missing %s", want)
		}
	}
}
