package web2pdf

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Converter renders web pages to PDF documents.
//
// A Converter manages a headless browser instance that is reused across
// multiple conversions for performance. It is safe for concurrent use.
//
// Call [Converter.Close] when the Converter is no longer needed to release
// browser resources. For one-shot conversions with a browser scoped to the
// single request, use the package-level [ConvertURL], [ConvertHTML], and
// [ConvertFile] functions instead.
type Converter struct {
	cfg           converterConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// New creates a Converter with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Converter.Close] when finished.
func New(opts ...Option) (*Converter, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
	)
	if cfg.headless != "" {
		allocOpts = append(allocOpts, chromedp.Flag("headless", cfg.headless))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}
	if cfg.proxyServer != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(cfg.proxyServer))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("web2pdf: starting browser: %w", err)
	}

	return &Converter{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Converter, including the
// browser process. Close is idempotent.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

func (c *Converter) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// ConvertURL renders the web page at rawURL to a PDF document.
// If pg is nil, [DefaultPageConfig] values are used.
func (c *Converter) ConvertURL(ctx context.Context, rawURL string, pg *PageConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("web2pdf: invalid URL %q: %w", rawURL, err)
	}
	return c.convert(ctx, rawURL, pg)
}

// ConvertHTML renders an HTML string to a PDF document.
// If pg is nil, [DefaultPageConfig] values are used.
func (c *Converter) ConvertHTML(ctx context.Context, html string, pg *PageConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "web2pdf-*.html")
	if err != nil {
		return nil, fmt.Errorf("web2pdf: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("web2pdf: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("web2pdf: closing temp file: %w", err)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("web2pdf: resolving path: %w", err)
	}
	return c.convert(ctx, "file://"+abs, pg)
}

// ConvertFile renders a local HTML file to a PDF document.
// If pg is nil, [DefaultPageConfig] values are used.
func (c *Converter) ConvertFile(ctx context.Context, path string, pg *PageConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("web2pdf: resolving path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("web2pdf: %w", err)
	}
	return c.convert(ctx, "file://"+abs, pg)
}

// convert performs the navigation, waits, DOM mutations, and PDF printing.
func (c *Converter) convert(ctx context.Context, targetURL string, pg *PageConfig) (*Result, error) {
	resolved := pg.resolved()

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()

	lc := watchLifecycle(tabCtx)

	width, height := resolved.paperDimensions()
	userAgent, acceptLanguage, extra := splitAgentHeaders(mergeDefaultHeaders(resolved.ExtraHeaders))

	var warnings []string
	var buf []byte
	if err := chromedp.Run(tabCtx,
		network.Enable(),
		page.Enable(),
		page.SetLifecycleEventsEnabled(true),
		chromedp.EmulateViewport(int64(resolved.ViewportWidth), int64(resolved.ViewportHeight)),
		emulation.SetUserAgentOverride(userAgent).WithAcceptLanguage(acceptLanguage),
		setExtraHeaders(extra),
		emulation.SetEmulatedMedia().WithMedia("print"),
		navigateAndWait(lc, targetURL, resolved.WaitNetworkIdle),
		hideSelectors(resolved.HideSelectors, &warnings),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(resolved.Margin.Top).
				WithMarginRight(resolved.Margin.Right).
				WithMarginBottom(resolved.Margin.Bottom).
				WithMarginLeft(resolved.Margin.Left).
				WithScale(resolved.Scale).
				WithPrintBackground(resolved.PrintBackground).
				WithLandscape(resolved.Orientation == Landscape).
				WithPreferCSSPageSize(resolved.PreferCSSPageSize).
				WithDisplayHeaderFooter(resolved.DisplayHeaderFooter)

			if resolved.HeaderTemplate != "" {
				params = params.WithHeaderTemplate(resolved.HeaderTemplate)
			}
			if resolved.FooterTemplate != "" {
				params = params.WithFooterTemplate(resolved.FooterTemplate)
			}

			var err error
			buf, _, err = params.Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("web2pdf: conversion failed: %w", err)
	}

	return &Result{data: buf, warnings: warnings}, nil
}

// setExtraHeaders injects the given headers into every request the page
// makes. A no-op when headers is empty.
func setExtraHeaders(headers map[string]string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if len(headers) == 0 {
			return nil
		}
		h := make(network.Headers, len(headers))
		for name, value := range headers {
			h[name] = value
		}
		return network.SetExtraHTTPHeaders(h).Do(ctx)
	})
}

// navigateAndWait navigates to targetURL, waits for the requested
// lifecycle milestone (networkIdle or load), then waits for network idle
// unconditionally so late resources such as web fonts settle. The second
// wait returns immediately when the idle event has already fired for
// this navigation.
func navigateAndWait(lc *lifecycleWatcher, targetURL string, waitNetworkIdle bool) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, loaderID, errorText, _, err := page.Navigate(targetURL).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("navigating to %s: %s", targetURL, errorText)
		}

		milestone := lifecycleLoad
		if waitNetworkIdle {
			milestone = lifecycleNetworkIdle
		}
		if err := lc.wait(ctx, loaderID, milestone); err != nil {
			return err
		}
		return lc.wait(ctx, loaderID, lifecycleNetworkIdle)
	})
}

// hideSelectors applies display:none to every element matching each
// selector. Failures are per-selector and best-effort: the warning is
// recorded and the remaining selectors still run.
func hideSelectors(selectors []string, warnings *[]string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, sel := range selectors {
			sel = strings.TrimSpace(sel)
			if sel == "" {
				continue
			}
			if err := hideSelector(ctx, sel); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				*warnings = append(*warnings, fmt.Sprintf("hiding selector %q: %v", sel, err))
			}
		}
		return nil
	})
}

// hideSelector runs the DOM mutation for a single selector.
func hideSelector(ctx context.Context, selector string) error {
	expr := fmt.Sprintf(
		`document.querySelectorAll(%s).forEach((el) => { el.style.display = "none"; });`,
		strconv.Quote(selector),
	)
	return evaluate(ctx, expr)
}

// --- Package-level convenience functions ---

// ConvertURL renders a web page to PDF using a temporary [Converter]. The
// browser process is scoped to this single conversion and is torn down
// when the function returns, on success and on failure alike. For
// repeated conversions, create a [Converter] with [New] to reuse the
// browser instance.
func ConvertURL(ctx context.Context, rawURL string, pg *PageConfig, opts ...Option) (*Result, error) {
	conv, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertURL(ctx, rawURL, pg)
}

// ConvertHTML renders an HTML string to PDF using a temporary [Converter].
func ConvertHTML(ctx context.Context, html string, pg *PageConfig, opts ...Option) (*Result, error) {
	conv, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertHTML(ctx, html, pg)
}

// ConvertFile renders a local HTML file to PDF using a temporary [Converter].
func ConvertFile(ctx context.Context, path string, pg *PageConfig, opts ...Option) (*Result, error) {
	conv, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertFile(ctx, path, pg)
}
