package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/porticus-lab/web2pdf"
	"github.com/porticus-lab/web2pdf/internal/config"
	"github.com/porticus-lab/web2pdf/internal/pdfinspect"
)

// settings is the fully merged conversion request: config file values
// overridden by any flag set on the command line.
type settings struct {
	page    web2pdf.PageConfig
	options []web2pdf.Option
	timeout time.Duration
}

func formatChoices() []string {
	return web2pdf.FormatNames()
}

// run performs one conversion and reports the outcome the way the tool
// always has: a success line on stdout, warnings and errors on stderr.
func run(f *convertFlags, stdout, stderr io.Writer) error {
	if f.url == "" {
		return errors.New("missing required flag: -i/--url")
	}
	if f.output == "" {
		return errors.New("missing required flag: -o/--output")
	}

	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	st, warnings, err := mergeSettings(f, cfg)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	ctx, cancel := context.WithTimeout(context.Background(), st.timeout)
	defer cancel()

	result, err := web2pdf.ConvertURL(ctx, f.url, &st.page, st.options...)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings() {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	if err := result.WriteToFile(f.output, 0o644); err != nil {
		return err
	}

	if f.verbose {
		describePDF(stderr, result.Bytes())
	}
	fmt.Fprintf(stdout, "Successfully converted %s to %s\n", f.url, f.output)
	return nil
}

// mergeSettings combines the config file with command line flags. A flag
// explicitly set on the command line wins over the file; otherwise the
// file value (or built-in default) applies.
func mergeSettings(f *convertFlags, cfg *config.Config) (settings, []string, error) {
	var st settings
	var warnings []string

	formatName := cfg.Page.Format
	if f.changed("format") {
		formatName = f.page.format
	}
	format, err := web2pdf.FormatByName(formatName)
	if err != nil {
		return st, nil, err
	}

	scale := cfg.Page.Scale
	if f.changed("scale") {
		scale = f.page.scale
	}
	if scale < 0.1 || scale > 2.0 {
		return st, nil, fmt.Errorf("scale must be between 0.1 and 2.0, got %g", scale)
	}

	marginTop, marginRight := cfg.Page.Margin.Top, cfg.Page.Margin.Right
	marginBottom, marginLeft := cfg.Page.Margin.Bottom, cfg.Page.Margin.Left
	if f.changed("margin-top") {
		marginTop = f.page.marginTop
	}
	if f.changed("margin-right") {
		marginRight = f.page.marginRight
	}
	if f.changed("margin-bottom") {
		marginBottom = f.page.marginBottom
	}
	if f.changed("margin-left") {
		marginLeft = f.page.marginLeft
	}
	margin, err := web2pdf.ParseMargins(marginTop, marginRight, marginBottom, marginLeft)
	if err != nil {
		return st, nil, err
	}

	orientation := web2pdf.Portrait
	if cfg.Page.Landscape || f.page.landscape {
		orientation = web2pdf.Landscape
	}

	background := cfg.Page.Background
	if f.page.noBackground {
		background = false
	}
	preferCSSPageSize := cfg.Page.PreferCSSPageSize
	if f.page.noPreferCSSPageSize {
		preferCSSPageSize = false
	}
	waitNetworkIdle := cfg.Browser.WaitNetworkIdle
	if f.network.noWaitNetwork {
		waitNetworkIdle = false
	}

	viewportWidth, viewportHeight := cfg.Viewport.Width, cfg.Viewport.Height
	if f.changed("viewport-width") {
		viewportWidth = f.network.viewportWidth
	}
	if f.changed("viewport-height") {
		viewportHeight = f.network.viewportHeight
	}
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return st, nil, fmt.Errorf("viewport dimensions must be positive, got %dx%d",
			viewportWidth, viewportHeight)
	}

	hideSelectors := cfg.HideSelectors
	if f.changed("hide-selector") {
		hideSelectors = f.hideSelectors
	}

	headers := make(map[string]string, len(cfg.Headers)+len(f.network.headers))
	for name, value := range cfg.Headers {
		headers[name] = value
	}
	for _, entry := range f.network.headers {
		name, value, err := web2pdf.ParseHeader(entry)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping malformed header %q", entry))
			continue
		}
		headers[name] = value
	}

	timeoutMS := cfg.Browser.TimeoutMS
	if f.changed("timeout") {
		timeoutMS = f.network.timeoutMS
	}
	if timeoutMS <= 0 {
		return st, nil, fmt.Errorf("timeout must be positive, got %d", timeoutMS)
	}
	st.timeout = time.Duration(timeoutMS) * time.Millisecond

	st.page = web2pdf.PageConfig{
		Format:            format,
		Orientation:       orientation,
		Margin:            margin,
		Scale:             scale,
		PrintBackground:   background,
		PreferCSSPageSize: preferCSSPageSize,
		ViewportWidth:     viewportWidth,
		ViewportHeight:    viewportHeight,
		WaitNetworkIdle:   waitNetworkIdle,
		HideSelectors:     hideSelectors,
		ExtraHeaders:      headers,
	}

	st.options = append(st.options, web2pdf.WithTimeout(st.timeout))
	chromePath := cfg.Browser.ChromePath
	if f.changed("chrome-path") {
		chromePath = f.browser.chromePath
	}
	if chromePath != "" {
		st.options = append(st.options, web2pdf.WithChromePath(chromePath))
	}
	proxy := cfg.Browser.Proxy
	if f.changed("proxy") {
		proxy = f.network.proxy
	}
	if proxy != "" {
		st.options = append(st.options, web2pdf.WithProxy(proxy))
	}
	if cfg.Browser.NoSandbox || f.browser.noSandbox {
		st.options = append(st.options, web2pdf.WithNoSandbox())
	}
	if cfg.Browser.AutoDownload || f.browser.autoDownload {
		st.options = append(st.options, web2pdf.WithAutoDownload())
	}

	return st, warnings, nil
}

// describePDF prints page count and geometry of the generated document.
// Failures here never fail the conversion; the PDF is already written.
func describePDF(w io.Writer, data []byte) {
	doc, err := pdfinspect.Load(data)
	if err != nil {
		fmt.Fprintf(w, "inspect: %v\n", err)
		return
	}
	count, err := doc.PageCount()
	if err != nil {
		fmt.Fprintf(w, "inspect: %v\n", err)
		return
	}
	fmt.Fprintf(w, "PDF version %s, %d page(s), %d bytes\n", doc.Version(), count, len(data))
	for i := 0; i < count; i++ {
		info, err := doc.Page(i)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  page %d: %.2f x %.2f in\n", i+1, info.Width/72, info.Height/72)
	}
}
