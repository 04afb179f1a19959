// Package pdf lays out paginated compliance documents.
//
// A Session tracks the cursor and decides page breaks; it produces a
// Document, which is a list of pages holding positioned draw operations.
// WritePDF replays a Document through fpdf. Layout never touches fpdf
// directly, so pagination can be tested without producing PDF bytes.
//
// All coordinates are millimetres from the top-left corner of the page.
package pdf

import "time"

// RGB is a fill, stroke or text colour.
type RGB struct{ R, G, B int }

var (
	black     = RGB{0, 0, 0}
	white     = RGB{255, 255, 255}
	grey      = RGB{100, 100, 100}
	lightGrey = RGB{150, 150, 150}
	rule      = RGB{200, 200, 200}
	stripe    = RGB{245, 245, 245}
)

// Variant selects a colour from the fixed palette.
type Variant string

const (
	Primary Variant = "primary"
	Success Variant = "success"
	Warning Variant = "warning"
	Danger  Variant = "danger"
	Info    Variant = "info"
)

type swatch struct {
	solid      RGB // section title band, box border
	background RGB // info box fill
	text       RGB // info box text
}

var palette = map[Variant]swatch{
	Primary: {RGB{0, 102, 204}, RGB{230, 240, 255}, RGB{0, 50, 100}},
	Success: {RGB{0, 153, 76}, RGB{220, 255, 230}, RGB{0, 100, 50}},
	Warning: {RGB{255, 153, 0}, RGB{255, 245, 220}, RGB{150, 80, 0}},
	Danger:  {RGB{220, 53, 69}, RGB{255, 230, 230}, RGB{150, 0, 0}},
	Info:    {RGB{0, 102, 204}, RGB{230, 240, 255}, RGB{0, 50, 100}},
}

// colors returns the swatch for v; unknown variants use Primary.
func colors(v Variant) swatch {
	if s, ok := palette[v]; ok {
		return s
	}
	return palette[Primary]
}

// Geometry is the page size and the layout margins.
type Geometry struct {
	Width  float64
	Height float64
	Margin float64 // left and right
	Top    float64 // cursor position on a fresh page
	Bottom float64 // no block starts below Height-Bottom
}

// A4 is the default portrait page.
func A4() Geometry {
	return Geometry{Width: 210, Height: 297, Margin: 15, Top: 20, Bottom: 20}
}

// Limit is the lowest y a block may start at.
func (g Geometry) Limit() float64 {
	return g.Height - g.Bottom
}

// ContentWidth is the usable width between the margins.
func (g Geometry) ContentWidth() float64 {
	return g.Width - 2*g.Margin
}

// Align positions Text relative to X.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Op is one positioned draw operation.
type Op interface{ isOp() }

// Text draws a single line with its baseline at Y.
type Text struct {
	X, Y  float64
	Value string
	Size  float64
	Bold  bool
	Color RGB
	Align Align
}

// Rect fills a rectangle, optionally rounded and outlined.
type Rect struct {
	X, Y, W, H float64
	Fill       RGB
	Radius     float64
	Border     *RGB
}

// Line strokes a straight line.
type Line struct {
	X1, Y1, X2, Y2 float64
	Color          RGB
}

// Circle fills a circle centred on X, Y.
type Circle struct {
	X, Y, R float64
	Fill    RGB
}

// Image places an encoded image (PNG or JPEG).
type Image struct {
	Name       string
	Format     string
	Data       []byte
	X, Y, W, H float64
}

func (Text) isOp()   {}
func (Rect) isOp()   {}
func (Line) isOp()   {}
func (Circle) isOp() {}
func (Image) isOp()  {}

// Page is the ordered draw list of one page.
type Page struct {
	Ops []Op
}

// Texts returns the page's text operations in draw order.
func (p Page) Texts() []Text {
	var out []Text
	for _, op := range p.Ops {
		if t, ok := op.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// Document is a finalized, paginated layout.
type Document struct {
	Title    string
	Created  time.Time
	Geometry Geometry
	Pages    []Page
}
