// Package document lays analysis text out as a paginated PDF using the
// core Latin-1 fonts.
package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/models"
)

const (
	Title       = "Stock Radar - Analisis de Inversiones"
	Byline      = "Sistema Inteligente de Analisis de Inversiones"
	ContentType = "application/pdf"

	fontFamily  = "Arial"
	pageMargin  = 15.0
	lineHeight  = 5.0
	gapHeight   = 2.0
	bodySize    = 9.0
	metaSize    = 10.0
	majorSize   = 11.0
	minorSize   = 10.0
	titleSize   = 20.0
	footerSize  = 8.0
	footerInset = -15.0
)

// RenderedDocument is an immutable rendered PDF.
type RenderedDocument struct {
	Kind models.Kind
	Date string
	Data []byte
	// Unmappable counts runes that were replaced by '?'.
	Unmappable int
}

// Filename is the attachment name, e.g. stock_radar_cartera_2026-03-09.pdf.
func (d *RenderedDocument) Filename() string {
	return fmt.Sprintf("stock_radar_%s_%s.pdf", d.Kind.Slug(), d.Date)
}

// ContentType is the MIME type of Data.
func (d *RenderedDocument) ContentType() string { return ContentType }

// canvas receives classified blocks. The PDF writer implements it; tests
// use a recorder.
type canvas interface {
	Heading(text string, level int)
	Body(text string)
	Gap()
}

// layout sends every block to c in order. Each blank line yields its own gap.
func layout(blocks []Block, c canvas) {
	for _, b := range blocks {
		switch b.Kind {
		case BlockBlank:
			c.Gap()
		case BlockHeading:
			c.Heading(b.Text, b.Level)
		default:
			c.Body(b.Text)
		}
	}
}

// Renderer produces PDFs from analysis results. It holds no per-document state.
type Renderer struct {
	logger *common.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(logger *common.Logger) *Renderer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Renderer{logger: logger}
}

// Render lays out result. Text content never causes an error; only an
// invalid result or a writer failure does. The same result always yields
// the same bytes.
func (r *Renderer) Render(result *models.AnalysisResult) (*RenderedDocument, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}
	stamp, _ := time.Parse(models.DateFormat, result.Date)

	text, lost := TransliterateCount(result.Text)
	blocks := classifyLines(text)

	pdf := newPDF(stamp)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "", metaSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, latin1("Fecha: "+result.Date), "", 1, "", false, 0, "")
	if result.Capital != nil {
		pdf.CellFormat(0, 10, latin1("Capital: "+Transliterate(result.Capital.String())), "", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont(fontFamily, "", bodySize)
	layout(blocks, &pdfCanvas{pdf: pdf})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	if lost > 0 {
		r.logger.Debug().Str("kind", string(result.Kind)).Int("unmappable", lost).Msg("Characters replaced during transliteration")
	}
	r.logger.Info().
		Str("kind", string(result.Kind)).
		Int("pages", pdf.PageCount()).
		Int("bytes", buf.Len()).
		Msg("Document rendered")

	return &RenderedDocument{
		Kind:       result.Kind,
		Date:       result.Date,
		Data:       buf.Bytes(),
		Unmappable: lost,
	}, nil
}

func newPDF(stamp time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetTitle(latin1(Title), false)
	pdf.SetCreator("stock-radar", false)
	pdf.SetAutoPageBreak(true, pageMargin)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(fontFamily, "B", titleSize)
		pdf.SetTextColor(102, 126, 234)
		pdf.CellFormat(0, 10, Title, "", 1, "C", false, 0, "")
		if pdf.PageNo() == 1 {
			pdf.SetFont(fontFamily, "I", metaSize)
			pdf.SetTextColor(118, 75, 162)
			pdf.CellFormat(0, 6, Byline, "", 1, "C", false, 0, "")
		}
		pdf.Ln(5)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(footerInset)
		pdf.SetFont(fontFamily, "I", footerSize)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Pagina %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	return pdf
}

type pdfCanvas struct {
	pdf *fpdf.Fpdf
}

func (c *pdfCanvas) Heading(text string, level int) {
	size := majorSize
	if level == HeadingMinor {
		size = minorSize
	}
	c.pdf.SetFont(fontFamily, "B", size)
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.MultiCell(0, lineHeight, latin1(text), "", "", false)
	c.pdf.SetFont(fontFamily, "", bodySize)
}

func (c *pdfCanvas) Body(text string) {
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.MultiCell(0, lineHeight, latin1(text), "", "", false)
}

func (c *pdfCanvas) Gap() {
	c.pdf.Ln(gapHeight)
}
