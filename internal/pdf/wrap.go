package pdf

import (
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Measurer reports the rendered width of a string in millimetres.
type Measurer interface {
	StringWidth(s string, size float64, bold bool) float64
}

// FontMeasurer measures with the Helvetica core-font metrics WritePDF draws
// with. It is safe for concurrent use.
type FontMeasurer struct {
	mu sync.Mutex
	f  *fpdf.Fpdf
}

func NewFontMeasurer() *FontMeasurer {
	f := fpdf.New("P", "mm", "A4", "")
	f.SetFont(fontFamily, "", 10)
	return &FontMeasurer{f: f}
}

func (m *FontMeasurer) StringWidth(s string, size float64, bold bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.f.SetFont(fontFamily, style(bold), size)
	return m.f.GetStringWidth(cp1252(s))
}

const fontFamily = "Helvetica"

func style(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// cp1252 converts UTF-8 to the single-byte encoding of the core fonts.
// Characters outside Windows-1252 become '?'.
func cp1252(s string) string {
	out, err := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()).String(s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if r > 0x7e {
				return '?'
			}
			return r
		}, s)
	}
	return strings.ReplaceAll(out, string(encoding.ASCIISub), "?")
}

// wrap breaks text into lines no wider than width. Explicit newlines start
// a new line; words longer than width are split between runes. An empty
// paragraph yields one empty line.
func wrap(m Measurer, text string, width, size float64, bold bool) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		start, line := len(lines), ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if m.StringWidth(candidate, size, bold) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = w
			for m.StringWidth(line, size, bold) > width {
				head, tail := splitRunes(m, line, width, size, bold)
				lines = append(lines, head)
				line = tail
			}
		}
		if line != "" || len(lines) == start {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitRunes returns the longest prefix of s that fits width, keeping at
// least one rune so the loop in wrap always advances.
func splitRunes(m Measurer, s string, width, size float64, bold bool) (string, string) {
	runes := []rune(s)
	n := 1
	for n < len(runes) && m.StringWidth(string(runes[:n+1]), size, bold) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
