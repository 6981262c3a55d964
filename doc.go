// Package web2pdf renders web pages to paginated PDF documents using
// headless Chrome via the Chrome DevTools Protocol.
//
// # One-shot conversions
//
// The package-level helpers launch a browser, convert, and always tear
// the browser down when they return:
//
//	res, err := web2pdf.ConvertURL(ctx, "https://example.com", nil)
//
// For repeated conversions create a [Converter], which reuses the browser
// process across calls:
//
//	c, err := web2pdf.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.ConvertURL(ctx, "https://example.com", nil)
//	res, err  = c.ConvertHTML(ctx, "<h1>Hello</h1>", nil)
//	res, err  = c.ConvertFile(ctx, "report.html", nil)
//
// # Page setup
//
// [PageConfig] controls paper format, orientation, margins, scale,
// viewport, navigation waits, extra request headers, and CSS selectors
// to hide before printing:
//
//	page := &web2pdf.PageConfig{
//	    Format:          web2pdf.A4,
//	    Orientation:     web2pdf.Landscape,
//	    Margin:          web2pdf.UniformMargin(0.5),
//	    HideSelectors:   []string{".ad", ".cookie-banner"},
//	    ExtraHeaders:    map[string]string{"X-Test": "1"},
//	    PrintBackground: true,
//	}
//	res, err := c.ConvertURL(ctx, url, page)
//
// Pages are loaded with print media emulation, so CSS rules scoped to
// @media print apply. Navigation waits for the network-idle signal by
// default; set WaitNetworkIdle to false to wait only for the load event.
//
// A [Result] gives flexible access to the generated PDF bytes:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteTo(w)                    // io.WriterTo
//	res.WriteToFile("out.pdf", 0o644) // write to disk
//	res.Warnings()                    // non-fatal selector failures
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	c, err := web2pdf.New(web2pdf.WithAutoDownload())
//
// Traffic can be routed through a proxy with [WithProxy]. The
// cmd/web2pdf command exposes all of the above as a CLI.
package web2pdf
