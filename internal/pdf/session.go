package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for logo sniffing
	_ "image/png"
	"time"
)

// Layout constants in millimetres.
const (
	headerHeight   = 45
	headerBottom   = 55
	titleBand      = 10
	titleAdvance   = 15
	textLine       = 6
	textLead       = 8 // space checked before the first line of a text block
	itemGap        = 2
	boxTitleLine   = 6
	boxContentLine = 5
	boxPadding     = 5
	boxLead        = 20
	rowHeight      = 8
	rowLead        = 13
	tableGap       = 5
	keyColumn      = 50
	footerOffset   = 10

	// DefaultSpacing is used by AddSpacing for non-positive heights.
	DefaultSpacing = 5
)

type state int

const (
	stateEmpty state = iota
	stateHeader
	stateContent
	stateFinalized
)

// Options configures a Session. The zero value lays out A4 pages with the
// core-font metrics.
type Options struct {
	Geometry Geometry
	Measurer Measurer
	Title    string
}

// Session lays out one document. Blocks are appended top to bottom; before
// each block its height is checked against the page limit and a new page is
// started when it does not fit. Lines of wrapped text are checked one by one,
// so long blocks continue on the next page line by line.
//
// AddHeader must come before any content and at most once. Calls after
// Finalize are ignored. A Session is not safe for concurrent use.
type Session struct {
	geo     Geometry
	m       Measurer
	title   string
	created time.Time
	now     func() time.Time

	pages []Page
	y     float64
	state state
	doc   *Document
}

func NewSession(opts Options) *Session {
	if opts.Geometry.Width <= 0 || opts.Geometry.Height <= 0 {
		opts.Geometry = A4()
	}
	if opts.Measurer == nil {
		opts.Measurer = NewFontMeasurer()
	}
	return &Session{
		geo:   opts.Geometry,
		m:     opts.Measurer,
		title: opts.Title,
		now:   time.Now,
		pages: []Page{{}},
		y:     opts.Geometry.Top,
	}
}

// Y is the current cursor position.
func (s *Session) Y() float64 { return s.y }

// PageCount is the number of pages started so far.
func (s *Session) PageCount() int { return len(s.pages) }

func (s *Session) draw(op Op) {
	p := &s.pages[len(s.pages)-1]
	p.Ops = append(p.Ops, op)
}

func (s *Session) newPage() {
	s.pages = append(s.pages, Page{})
	s.y = s.geo.Top
}

// ensure starts a new page when need does not fit below the cursor. A fresh
// page is never abandoned, so oversized blocks do not leave blank pages.
func (s *Session) ensure(need float64) {
	if s.y+need > s.geo.Limit() && s.y > s.geo.Top {
		s.newPage()
	}
}

// keep moves a block of height total to a fresh page when it would fit
// there whole; otherwise only its first line, of height first, must fit.
func (s *Session) keep(total, first float64) {
	if s.geo.Top+total <= s.geo.Limit() {
		s.ensure(total)
		return
	}
	s.ensure(first)
}

// content reports whether drawing is allowed and leaves the header state.
func (s *Session) content() bool {
	if s.state == stateFinalized {
		return false
	}
	s.state = stateContent
	return true
}

// Header is the coloured band at the top of the first page.
type Header struct {
	Title     string
	Subtitle  string
	Company   string
	Generated time.Time
}

// AddHeader draws the document header. It is ignored once content has been
// added.
func (s *Session) AddHeader(h Header) {
	if s.state != stateEmpty {
		return
	}
	s.state = stateHeader
	if h.Generated.IsZero() {
		h.Generated = s.now()
	}
	if s.title == "" {
		s.title = h.Title
	}
	s.created = h.Generated
	m := s.geo.Margin
	s.draw(Rect{X: 0, Y: 0, W: s.geo.Width, H: headerHeight, Fill: colors(Primary).solid})
	s.draw(Text{X: m, Y: 20, Value: h.Title, Size: 22, Bold: true, Color: white})
	if h.Subtitle != "" {
		s.draw(Text{X: m, Y: 28, Value: h.Subtitle, Size: 12, Color: white})
	}
	if h.Company != "" {
		s.draw(Text{X: m, Y: 36, Value: h.Company, Size: 10, Color: white})
	}
	s.draw(Text{
		X: s.geo.Width - m, Y: 36, Size: 9, Color: grey, Align: AlignRight,
		Value: "Generated: " + h.Generated.Format("2 January 2006"),
	})
	s.y = headerBottom
}

// AddSectionTitle draws a coloured title band.
func (s *Session) AddSectionTitle(title string, v Variant) {
	if !s.content() {
		return
	}
	s.ensure(titleAdvance)
	m := s.geo.Margin
	s.draw(Rect{X: m, Y: s.y, W: s.geo.ContentWidth(), H: titleBand, Fill: colors(v).solid, Radius: 2})
	s.draw(Text{X: m + 3, Y: s.y + 7, Value: title, Size: 14, Bold: true, Color: white})
	s.y += titleAdvance
}

// TextStyle adjusts AddText. Zero values mean 10pt regular black.
type TextStyle struct {
	Size  float64
	Bold  bool
	Color RGB
}

// AddText draws a wrapped paragraph.
func (s *Session) AddText(text string, st TextStyle) {
	if !s.content() {
		return
	}
	if st.Size <= 0 {
		st.Size = 10
	}
	s.ensure(textLead)
	for _, line := range wrap(s.m, text, s.geo.ContentWidth(), st.Size, st.Bold) {
		s.ensure(textLine)
		s.draw(Text{X: s.geo.Margin, Y: s.y, Value: line, Size: st.Size, Bold: st.Bold, Color: st.Color})
		s.y += textLine
	}
	s.y += itemGap
}

// AddBulletList draws one bulleted, wrapped entry per item.
func (s *Session) AddBulletList(items []string) {
	if !s.content() || len(items) == 0 {
		return
	}
	m := s.geo.Margin
	s.keep(textLead*float64(len(items)), textLead)
	for _, item := range items {
		s.ensure(textLead)
		s.draw(Circle{X: m + 2, Y: s.y - 1.5, R: 1, Fill: colors(Primary).solid})
		for _, line := range wrap(s.m, item, s.geo.ContentWidth()-8, 10, false) {
			s.ensure(textLine)
			s.draw(Text{X: m + 6, Y: s.y, Value: line, Size: 10, Color: black})
			s.y += textLine
		}
		s.y += itemGap
	}
}

// AddNumberedList draws items numbered from 1.
func (s *Session) AddNumberedList(items []string) {
	if !s.content() || len(items) == 0 {
		return
	}
	m := s.geo.Margin
	s.keep(textLead*float64(len(items)), textLead)
	for i, item := range items {
		s.ensure(textLead)
		s.draw(Text{X: m, Y: s.y, Value: fmt.Sprintf("%d.", i+1), Size: 10, Bold: true, Color: colors(Primary).solid})
		for _, line := range wrap(s.m, item, s.geo.ContentWidth()-10, 10, false) {
			s.ensure(textLine)
			s.draw(Text{X: m + 8, Y: s.y, Value: line, Size: 10, Color: black})
			s.y += textLine
		}
		s.y += itemGap
	}
}

// AddKeyValue draws a bold label with its value wrapped in a second column.
func (s *Session) AddKeyValue(key, value string) {
	if !s.content() {
		return
	}
	m := s.geo.Margin
	s.ensure(textLead)
	s.draw(Text{X: m, Y: s.y, Value: key, Size: 10, Bold: true, Color: black})
	for i, line := range wrap(s.m, value, s.geo.ContentWidth()-keyColumn, 10, false) {
		if i > 0 {
			s.ensure(textLine)
		}
		s.draw(Text{X: m + keyColumn, Y: s.y, Value: line, Size: 10, Color: black})
		s.y += textLine
	}
}

// AddInfoBox draws a tinted, outlined box with a bold title and smaller body
// text. A box taller than a page is drawn as flowing text instead.
func (s *Session) AddInfoBox(title, body string, v Variant) {
	if !s.content() {
		return
	}
	sw := colors(v)
	m := s.geo.Margin
	width := s.geo.ContentWidth() - 8
	titleLines := wrap(s.m, title, width, 11, true)
	bodyLines := wrap(s.m, body, width, 9, false)
	height := boxPadding + boxTitleLine*float64(len(titleLines)) + boxContentLine*float64(len(bodyLines)) + boxPadding

	s.ensure(boxLead)
	if s.geo.Top+height > s.geo.Limit() {
		s.flow(titleLines, 11, true, sw.text, boxTitleLine)
		s.flow(bodyLines, 9, false, sw.text, boxContentLine)
		s.y += textLead
		return
	}
	s.ensure(height)
	border := sw.solid
	s.draw(Rect{X: m, Y: s.y, W: s.geo.ContentWidth(), H: height, Fill: sw.background, Radius: 3, Border: &border})
	s.y += textLead
	for _, line := range titleLines {
		s.draw(Text{X: m + 4, Y: s.y, Value: line, Size: 11, Bold: true, Color: sw.text})
		s.y += boxTitleLine
	}
	for _, line := range bodyLines {
		s.draw(Text{X: m + 4, Y: s.y, Value: line, Size: 9, Color: sw.text})
		s.y += boxContentLine
	}
	s.y += textLead
}

func (s *Session) flow(lines []string, size float64, bold bool, c RGB, step float64) {
	for _, line := range lines {
		s.ensure(step)
		s.draw(Text{X: s.geo.Margin + 4, Y: s.y, Value: line, Size: size, Bold: bold, Color: c})
		s.y += step
	}
}

// AddTable draws a striped table with equal column widths. Cells show their
// first wrapped line only. The header row is repeated after a page break.
// Cells beyond the header count are dropped.
func (s *Session) AddTable(headers []string, rows [][]string) {
	if !s.content() || len(headers) == 0 {
		return
	}
	colW := s.geo.ContentWidth() / float64(len(headers))
	s.keep(rowHeight*float64(len(rows)+2), 2*rowHeight)
	s.tableHeader(headers, colW)
	for i, row := range rows {
		page := len(s.pages)
		s.ensure(rowLead)
		if len(s.pages) != page {
			s.tableHeader(headers, colW)
		}
		m := s.geo.Margin
		if i%2 == 0 {
			s.draw(Rect{X: m, Y: s.y, W: s.geo.ContentWidth(), H: rowHeight, Fill: stripe})
		}
		for c := range headers {
			if c >= len(row) {
				break
			}
			cell := wrap(s.m, row[c], colW-4, 9, false)
			s.draw(Text{X: m + 2 + float64(c)*colW, Y: s.y + 5.5, Value: cell[0], Size: 9, Color: black})
		}
		s.draw(Line{X1: m, Y1: s.y + rowHeight, X2: s.geo.Width - m, Y2: s.y + rowHeight, Color: rule})
		s.y += rowHeight
	}
	s.y += tableGap
}

func (s *Session) tableHeader(headers []string, colW float64) {
	m := s.geo.Margin
	s.draw(Rect{X: m, Y: s.y, W: s.geo.ContentWidth(), H: rowHeight, Fill: colors(Primary).solid})
	for i, h := range headers {
		s.draw(Text{X: m + 2 + float64(i)*colW, Y: s.y + 5.5, Value: h, Size: 9, Bold: true, Color: white})
	}
	s.y += rowHeight
}

// AddSpacing moves the cursor down by h, or DefaultSpacing when h <= 0.
func (s *Session) AddSpacing(h float64) {
	if !s.content() {
		return
	}
	if h <= 0 {
		h = DefaultSpacing
	}
	s.y += h
}

// AddImage places a PNG or JPEG at an absolute position on the current page
// without moving the cursor. Data that does not decode is skipped and false
// is returned.
func (s *Session) AddImage(name string, data []byte, x, y, w, h float64) bool {
	if s.state == stateFinalized || len(data) == 0 {
		return false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return false
	}
	switch format {
	case "png":
		format = "PNG"
	case "jpeg":
		format = "JPG"
	default:
		return false
	}
	s.draw(Image{Name: name, Format: format, Data: data, X: x, Y: y, W: w, H: h})
	return true
}

// Finalize adds "Page i of n" footers and returns the document. Later calls
// return the same document.
func (s *Session) Finalize() *Document {
	if s.doc != nil {
		return s.doc
	}
	n := len(s.pages)
	for i := range s.pages {
		s.pages[i].Ops = append(s.pages[i].Ops, Text{
			X: s.geo.Width / 2, Y: s.geo.Height - footerOffset, Size: 8, Color: lightGrey, Align: AlignCenter,
			Value: fmt.Sprintf("Page %d of %d", i+1, n),
		})
	}
	s.state = stateFinalized
	if s.created.IsZero() {
		s.created = s.now()
	}
	s.doc = &Document{Title: s.title, Created: s.created, Geometry: s.geo, Pages: s.pages}
	return s.doc
}
