package web2pdf

import "strings"

// PageFormat represents a named paper format with dimensions in inches.
type PageFormat struct {
	Name   string
	Width  float64 // Width in inches.
	Height float64 // Height in inches.
}

// Standard paper formats.
var (
	Letter  = PageFormat{Name: "Letter", Width: 8.5, Height: 11}
	Legal   = PageFormat{Name: "Legal", Width: 8.5, Height: 14}
	Tabloid = PageFormat{Name: "Tabloid", Width: 11, Height: 17}
	Ledger  = PageFormat{Name: "Ledger", Width: 17, Height: 11}
	A0      = PageFormat{Name: "A0", Width: 33.1, Height: 46.8}
	A1      = PageFormat{Name: "A1", Width: 23.4, Height: 33.1}
	A2      = PageFormat{Name: "A2", Width: 16.54, Height: 23.4}
	A3      = PageFormat{Name: "A3", Width: 11.7, Height: 16.54}
	A4      = PageFormat{Name: "A4", Width: 8.27, Height: 11.7}
	A5      = PageFormat{Name: "A5", Width: 5.83, Height: 8.27}
	A6      = PageFormat{Name: "A6", Width: 4.13, Height: 5.83}
)

// formats lists every named format, in the order the CLI documents them.
var formats = []PageFormat{Letter, Legal, Tabloid, Ledger, A0, A1, A2, A3, A4, A5, A6}

// FormatNames returns the names of all supported paper formats.
func FormatNames() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name
	}
	return names
}

// FormatByName looks up a paper format by name, case-insensitively.
func FormatByName(name string) (PageFormat, error) {
	for _, f := range formats {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return PageFormat{}, &UnknownFormatError{Name: name}
}

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// Margin represents page margins in inches.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(inches float64) Margin {
	return Margin{Top: inches, Right: inches, Bottom: inches, Left: inches}
}

// PageConfig controls how a page is loaded and printed.
//
// A nil PageConfig uses [DefaultPageConfig]: A4 paper, portrait
// orientation, 0.5 inch margins, scale 1.0, a 1200x800 viewport,
// background graphics enabled, CSS @page size respected, and
// navigation waiting for network idle. On a non-nil config the same
// defaults replace zero-value fields, except the boolean fields,
// where false is taken as intentional. Start from [DefaultPageConfig]
// to keep the boolean defaults enabled.
type PageConfig struct {
	// Format specifies the paper format. Defaults to A4.
	Format PageFormat

	// Orientation specifies portrait or landscape. Defaults to Portrait.
	Orientation Orientation

	// Margin specifies page margins in inches. Defaults to 0.5 in on all
	// sides. Use ParseLength to convert unit strings such as "2cm".
	Margin Margin

	// Scale of the webpage rendering. Must be between 0.1 and 2.0. Defaults to 1.0.
	Scale float64

	// PrintBackground enables printing of background colors and images.
	// Defaults to true via DefaultPageConfig.
	PrintBackground bool

	// PreferCSSPageSize gives precedence to any CSS @page size declared
	// in the document over the Format field. Defaults to true via
	// DefaultPageConfig.
	PreferCSSPageSize bool

	// ViewportWidth and ViewportHeight set the simulated window size used
	// for layout before printing. Default to 1200x800.
	ViewportWidth  int
	ViewportHeight int

	// WaitNetworkIdle makes navigation wait until the browser reports no
	// network activity for a quiescent period, instead of just the load
	// event. Defaults to true via DefaultPageConfig.
	WaitNetworkIdle bool

	// HideSelectors lists CSS selectors whose matches are given
	// display:none before printing. Selectors are best-effort: one the
	// page rejects is recorded as a warning on the Result and does not
	// abort the conversion or the remaining selectors.
	HideSelectors []string

	// ExtraHeaders are sent with every request the page makes. Values
	// supplied here take precedence over the built-in defaults for
	// User-Agent and Accept-Language.
	ExtraHeaders map[string]string

	// DisplayHeaderFooter enables the header and footer templates.
	DisplayHeaderFooter bool

	// HeaderTemplate is an HTML template for the print header.
	// It uses the same format as Chrome's print header template, supporting
	// the classes: date, title, url, pageNumber, totalPages.
	HeaderTemplate string

	// FooterTemplate is an HTML template for the print footer.
	// It uses the same format as Chrome's print footer template.
	FooterTemplate string
}

// DefaultPageConfig returns a PageConfig with sensible defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Format:            A4,
		Orientation:       Portrait,
		Margin:            UniformMargin(0.5),
		Scale:             1.0,
		PrintBackground:   true,
		PreferCSSPageSize: true,
		ViewportWidth:     1200,
		ViewportHeight:    800,
		WaitNetworkIdle:   true,
	}
}

// resolved returns a PageConfig with all zero values replaced by defaults.
func (p *PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Format == (PageFormat{}) {
		r.Format = d.Format
	}
	if r.Scale <= 0 {
		r.Scale = d.Scale
	}
	if r.Margin == (Margin{}) {
		r.Margin = d.Margin
	}
	if r.ViewportWidth <= 0 {
		r.ViewportWidth = d.ViewportWidth
	}
	if r.ViewportHeight <= 0 {
		r.ViewportHeight = d.ViewportHeight
	}
	// The boolean fields default to true via DefaultPageConfig, but a
	// zero value means false. An explicit false from the caller is
	// taken as intentional.
	return r
}

// paperDimensions returns the paper width and height in inches,
// accounting for orientation.
func (p *PageConfig) paperDimensions() (width, height float64) {
	r := p.resolved()
	if r.Orientation == Landscape {
		return r.Format.Height, r.Format.Width
	}
	return r.Format.Width, r.Format.Height
}
