package artifacts

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 72.0
	bodyFont     = "Helvetica"
	bodyFontSize = 11.0
	bodyLeading  = 14.0
)

// PDFRenderer lays documents out on Letter pages with the core Helvetica font.
type PDFRenderer struct {
	enabled bool
}

// NewPDFRenderer returns a renderer whose capability follows enabled.
func NewPDFRenderer(enabled bool) *PDFRenderer {
	return &PDFRenderer{enabled: enabled}
}

func (r *PDFRenderer) Capability() Capability {
	if r == nil || !r.enabled {
		return Unavailable
	}
	return Available
}

func (r *PDFRenderer) Extension() string   { return "pdf" }
func (r *PDFRenderer) ContentType() string { return ContentTypePDF }

func (r *PDFRenderer) Render(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("IA Assistant", true)
	pdf.SetCreationDate(doc.CreatedAt)

	// Core fonts are cp1252; translate so accents survive. Runes outside
	// cp1252 (CJK, emoji) are not representable and print garbled.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	textWidth := pageWidth - 2*pageMargin

	pdf.SetFont(bodyFont, "B", 16)
	pdf.CellFormat(0, 20, tr(doc.Title), "", 1, "L", false, 0, "")

	pdf.SetFont(bodyFont, "", 10)
	pdf.CellFormat(0, 14, tr("Fecha: "+doc.CreatedAt.Format(TimestampLayout)), "", 1, "L", false, 0, "")

	y := pdf.GetY() + 4
	pdf.Line(pageMargin, y, pageWidth-pageMargin, y)
	pdf.SetY(y + 16)

	section := func(heading, body string) {
		pdf.SetFont(bodyFont, "B", 12)
		pdf.CellFormat(0, 16, tr(heading), "", 1, "L", false, 0, "")
		pdf.SetFont(bodyFont, "", bodyFontSize)
		measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }
		for _, line := range WrapText(body, textWidth, measure) {
			pdf.CellFormat(0, bodyLeading, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(bodyLeading)
	}

	section(QuestionHeading, doc.Question)
	section(AnswerHeading, doc.Answer)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
