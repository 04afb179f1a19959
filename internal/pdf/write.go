package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// WritePDF replays doc through fpdf and writes the PDF to w. Images fpdf
// cannot embed are left out; every other failure is returned.
func WritePDF(doc *Document, w io.Writer) error {
	g := doc.Geometry
	f := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	f.SetMargins(0, 0, 0)
	f.SetAutoPageBreak(false, 0)
	f.SetTitle(doc.Title, true)
	f.SetCreator("kitchencheck", false)
	f.SetCatalogSort(true)
	if !doc.Created.IsZero() {
		f.SetCreationDate(doc.Created)
		f.SetModificationDate(doc.Created)
	}

	for _, p := range doc.Pages {
		f.AddPage()
		for _, op := range p.Ops {
			replay(f, op)
		}
	}
	if err := f.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func replay(f *fpdf.Fpdf, op Op) {
	switch o := op.(type) {
	case Text:
		f.SetFont(fontFamily, style(o.Bold), o.Size)
		f.SetTextColor(o.Color.R, o.Color.G, o.Color.B)
		s := cp1252(o.Value)
		x := o.X
		switch o.Align {
		case AlignCenter:
			x -= f.GetStringWidth(s) / 2
		case AlignRight:
			x -= f.GetStringWidth(s)
		}
		f.Text(x, o.Y, s)
	case Rect:
		f.SetFillColor(o.Fill.R, o.Fill.G, o.Fill.B)
		mode := "F"
		if o.Border != nil {
			f.SetDrawColor(o.Border.R, o.Border.G, o.Border.B)
			f.SetLineWidth(0.5)
			mode = "FD"
		}
		if o.Radius > 0 {
			f.RoundedRect(o.X, o.Y, o.W, o.H, o.Radius, "1234", mode)
		} else {
			f.Rect(o.X, o.Y, o.W, o.H, mode)
		}
		f.SetLineWidth(0.2)
	case Line:
		f.SetDrawColor(o.Color.R, o.Color.G, o.Color.B)
		f.Line(o.X1, o.Y1, o.X2, o.Y2)
	case Circle:
		f.SetFillColor(o.Fill.R, o.Fill.G, o.Fill.B)
		f.Circle(o.X, o.Y, o.R, "F")
	case Image:
		opts := fpdf.ImageOptions{ImageType: o.Format}
		f.RegisterImageOptionsReader(o.Name, opts, bytes.NewReader(o.Data))
		if !f.Ok() {
			f.ClearError()
			return
		}
		f.ImageOptions(o.Name, o.X, o.Y, o.W, o.H, false, opts, 0, "")
	}
}
