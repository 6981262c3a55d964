package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// pageFlags holds page layout flags.
type pageFlags struct {
	format              string
	scale               float64
	marginTop           string
	marginRight         string
	marginBottom        string
	marginLeft          string
	landscape           bool
	noBackground        bool
	noPreferCSSPageSize bool
}

// networkFlags holds navigation and request flags.
type networkFlags struct {
	viewportWidth  int
	viewportHeight int
	timeoutMS      int
	noWaitNetwork  bool
	proxy          string
	headers        []string
}

// browserFlags holds browser launch flags.
type browserFlags struct {
	chromePath   string
	noSandbox    bool
	autoDownload bool
}

// convertFlags holds all flags for the web2pdf command.
type convertFlags struct {
	url           string
	output        string
	hideSelectors []string
	page          pageFlags
	network       networkFlags
	browser       browserFlags
	configPath    string
	verbose       bool
	showVersion   bool

	fs *flag.FlagSet
}

// changed reports whether the named flag was set on the command line.
func (f *convertFlags) changed(name string) bool {
	return f.fs.Changed(name)
}

// parseFlags parses the command line into a convertFlags.
func parseFlags(args []string, usageOut io.Writer) (*convertFlags, error) {
	fs := flag.NewFlagSet("web2pdf", flag.ContinueOnError)
	f := &convertFlags{fs: fs}

	fs.StringVarP(&f.url, "url", "i", "", "input URL of the webpage")
	fs.StringVarP(&f.output, "output", "o", "", "output PDF file path")
	fs.StringSliceVarP(&f.hideSelectors, "hide-selector", "d", nil,
		"CSS selectors to hide before printing (comma separated, repeatable)")

	fs.StringVar(&f.page.format, "format", "A4",
		"page format: "+strings.Join(formatChoices(), ", "))
	fs.Float64Var(&f.page.scale, "scale", 1.0, "scale of the webpage (0.1-2.0)")
	fs.StringVar(&f.page.marginTop, "margin-top", "0.5in", "top margin (in, cm, mm, px)")
	fs.StringVar(&f.page.marginRight, "margin-right", "0.5in", "right margin")
	fs.StringVar(&f.page.marginBottom, "margin-bottom", "0.5in", "bottom margin")
	fs.StringVar(&f.page.marginLeft, "margin-left", "0.5in", "left margin")
	fs.BoolVar(&f.page.landscape, "landscape", false, "use landscape orientation")
	fs.BoolVar(&f.page.noBackground, "no-background", false, "do not print background graphics")
	fs.BoolVar(&f.page.noPreferCSSPageSize, "no-prefer-css-page-size", false,
		"do not prefer page size from CSS @page")

	fs.IntVar(&f.network.viewportWidth, "viewport-width", 1200, "width of the viewport")
	fs.IntVar(&f.network.viewportHeight, "viewport-height", 800, "height of the viewport")
	fs.IntVar(&f.network.timeoutMS, "timeout", 30000,
		"maximum time to wait for page load in milliseconds")
	fs.BoolVar(&f.network.noWaitNetwork, "no-wait-network", false,
		"do not wait for network requests to complete")
	fs.StringVar(&f.network.proxy, "proxy", "", "proxy URI (e.g. socks5://127.0.0.1:9050)")
	fs.StringArrayVar(&f.network.headers, "header", nil,
		"extra HTTP header as \"Name: Value\" (repeatable)")

	fs.StringVar(&f.browser.chromePath, "chrome-path", "", "path to the Chrome or Chromium binary")
	fs.BoolVar(&f.browser.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
	fs.BoolVar(&f.browser.autoDownload, "auto-download", false,
		"download a compatible Chromium if no browser is found")

	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file path")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print details about the generated PDF")
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")

	fs.Usage = func() { printUsage(usageOut, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Convert a webpage to PDF using a headless browser.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  web2pdf -i <url> -o <output.pdf> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
