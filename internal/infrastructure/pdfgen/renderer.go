// Package pdfgen renders receipt models into single-page PDF
// documents sized for thermal paper rolls.
package pdfgen

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/acaishop/printing/internal/domain/receipt"
)

const (
	sideMargin   = 4.0 // mm
	topMargin    = 5.0
	bottomMargin = 6.0
	lineHeight   = 3.6 // mm, body row advance
	bodyFontSize = 8.0 // pt, Courier so fixed-width rows keep their columns
)

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageHeightMM is the final committed page height
	PageHeightMM float64
	// Repassed reports whether the estimate undershot and the document
	// was rendered a second time at the measured height
	Repassed bool
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// DocumentRenderer renders receipts as roll-format PDFs. The page
// height must be committed before content placement, so rendering is
// two-pass: the first pass runs at the estimated height and measures
// the real extent, and when the estimate undershoots the document is
// rendered once more at the measured height.
type DocumentRenderer struct {
	paperWidthMM  float64
	emblemTimeout time.Duration
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewDocumentRenderer creates a PDF renderer for the given paper width
func NewDocumentRenderer(paperWidthMM float64, emblemTimeout time.Duration, logger *zap.Logger) *DocumentRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentRenderer{
		paperWidthMM:  paperWidthMM,
		emblemTimeout: emblemTimeout,
		httpClient:    &http.Client{},
		logger:        logger,
	}
}

// Render produces the PDF for the model. The emblem image is fetched
// within a bounded timeout and skipped on any failure; a receipt
// without its emblem is preferable to no receipt.
func (r *DocumentRenderer) Render(ctx context.Context, m *receipt.Model) (*RenderResult, error) {
	start := time.Now()
	if len(m.Sections) == 0 {
		return nil, NewRenderError(ErrCodeEmptyModel, "receipt model has no sections", nil)
	}

	emblem := r.fetchEmblem(ctx, m)
	height := receipt.EstimateHeight(m)

	data, measured, err := r.renderPass(m, emblem, height)
	if err != nil {
		return nil, err
	}

	result := &RenderResult{PDFData: data, PageHeightMM: height}
	if measured > height {
		data, _, err = r.renderPass(m, emblem, measured)
		if err != nil {
			return nil, err
		}
		result.PDFData = data
		result.PageHeightMM = measured
		result.Repassed = true
		r.logger.Debug("height estimate undershot, re-rendered",
			zap.Float64("estimated_mm", height),
			zap.Float64("measured_mm", measured),
		)
	}
	result.RenderDuration = time.Since(start)
	return result, nil
}

// renderPass renders the whole document at the given page height and
// returns the bytes together with the measured content extent
func (r *DocumentRenderer) renderPass(m *receipt.Model, emblem *emblemImage, pageHeight float64) ([]byte, float64, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: r.paperWidthMM, Ht: pageHeight},
	})
	pdf.SetMargins(sideMargin, topMargin, sideMargin)
	// Page break stays off so overflow grows the cursor past the page
	// edge and the extent can be measured.
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if id, ok := m.Find(receipt.KindIdentity).(receipt.IdentitySection); ok {
		pdf.SetTitle("Pedido "+id.OrderID, true)
	}

	for i, section := range m.Sections {
		if i > 0 {
			r.rule(pdf)
		}
		switch s := section.(type) {
		case receipt.HeaderSection:
			r.header(pdf, s, emblem)
		case receipt.IdentitySection:
			r.identity(pdf, s)
		case receipt.CustomerSection:
			r.body(pdf, "Cliente: "+s.Name)
			if s.Phone != "" {
				r.body(pdf, "Tel: "+s.Phone)
			}
		case receipt.DestinationSection:
			r.destination(pdf, s)
		case receipt.ItemsSection:
			r.items(pdf, s)
		case receipt.TotalsSection:
			r.totals(pdf, s, m.Width)
		case receipt.PaymentSection:
			r.body(pdf, "Pagamento: "+s.MethodLabel)
			for _, row := range s.ChangeRows {
				r.row(pdf, row)
			}
		case receipt.FooterSection:
			pdf.Ln(1)
			r.centered(pdf, s.Message)
		case receipt.QuotationSection:
			r.quotation(pdf, s)
		}
	}

	measured := pdf.GetY() + bottomMargin
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, NewRenderError(ErrCodeRenderFailed, "producing pdf output", err)
	}
	return buf.Bytes(), measured, nil
}

func (r *DocumentRenderer) header(pdf *fpdf.Fpdf, s receipt.HeaderSection, emblem *emblemImage) {
	if emblem != nil {
		name := "emblem"
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: emblem.imageType}, bytes.NewReader(emblem.data))
		const emblemWidth = 16.0
		x := (r.paperWidthMM - emblemWidth) / 2
		pdf.ImageOptions(name, x, pdf.GetY(), emblemWidth, 0, true, fpdf.ImageOptions{ImageType: emblem.imageType}, 0, "")
		pdf.Ln(1)
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, s.StoreName, "", 1, "C", false, 0, "")
}

func (r *DocumentRenderer) identity(pdf *fpdf.Fpdf, s receipt.IdentitySection) {
	pdf.SetFont("Courier", "B", bodyFontSize)
	pdf.CellFormat(0, lineHeight, "Pedido: "+s.OrderID, "", 1, "L", false, 0, "")
	pdf.SetFont("Courier", "", bodyFontSize)
	pdf.CellFormat(0, lineHeight, s.CreatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
}

func (r *DocumentRenderer) destination(pdf *fpdf.Fpdf, s receipt.DestinationSection) {
	if s.TableLabel != "" {
		pdf.SetFont("Courier", "B", bodyFontSize)
		pdf.CellFormat(0, lineHeight, "Mesa: "+s.TableLabel, "", 1, "L", false, 0, "")
		pdf.SetFont("Courier", "", bodyFontSize)
		return
	}
	for _, row := range s.AddressRows {
		r.row(pdf, row)
	}
}

func (r *DocumentRenderer) items(pdf *fpdf.Fpdf, s receipt.ItemsSection) {
	for i, entry := range s.Entries {
		if i > 0 {
			pdf.Ln(1.5)
		}
		for _, row := range entry.Rows() {
			r.row(pdf, row)
		}
	}
}

func (r *DocumentRenderer) totals(pdf *fpdf.Fpdf, s receipt.TotalsSection, width int) {
	for _, row := range receipt.FormatLine("", "Subtotal", receipt.FormatBRL(s.Subtotal), width) {
		r.row(pdf, row)
	}
	for _, row := range receipt.FormatLine("", "Taxa de entrega", receipt.FormatBRL(s.DeliveryFee), width) {
		r.row(pdf, row)
	}
	pdf.SetFont("Courier", "B", bodyFontSize)
	for _, row := range receipt.FormatLine("", "Total", receipt.FormatBRL(s.Total), width) {
		pdf.CellFormat(0, lineHeight, row, "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Courier", "", bodyFontSize)
	for _, row := range s.WaiverRows {
		r.row(pdf, row)
	}
}

func (r *DocumentRenderer) quotation(pdf *fpdf.Fpdf, s receipt.QuotationSection) {
	pdf.SetFont("Courier", "I", bodyFontSize)
	for _, row := range s.TextRows {
		pdf.CellFormat(0, lineHeight, row, "", 1, "C", false, 0, "")
	}
	if s.Attribution != "" {
		pdf.CellFormat(0, lineHeight, "- "+receipt.Normalize(s.Attribution), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Courier", "", bodyFontSize)
}

// row places a pre-formatted row verbatim. These rows were wrapped,
// padded and normalized when the model was built, and renormalizing
// would collapse the column padding.
func (r *DocumentRenderer) row(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Courier", "", bodyFontSize)
	pdf.CellFormat(0, lineHeight, text, "", 1, "L", false, 0, "")
}

// body places a raw free-text field, normalized to printable ASCII
func (r *DocumentRenderer) body(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Courier", "", bodyFontSize)
	pdf.CellFormat(0, lineHeight, receipt.Normalize(text), "", 1, "L", false, 0, "")
}

func (r *DocumentRenderer) centered(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Courier", "", bodyFontSize)
	pdf.CellFormat(0, lineHeight, receipt.Normalize(text), "", 1, "C", false, 0, "")
}

func (r *DocumentRenderer) rule(pdf *fpdf.Fpdf) {
	pdf.Ln(1)
	y := pdf.GetY()
	pdf.Line(sideMargin, y, r.paperWidthMM-sideMargin, y)
	pdf.Ln(1)
}

type emblemImage struct {
	data      []byte
	imageType string
}

// fetchEmblem downloads the store emblem within the configured
// timeout. Any failure logs a warning and returns nil.
func (r *DocumentRenderer) fetchEmblem(ctx context.Context, m *receipt.Model) *emblemImage {
	header, ok := m.Find(receipt.KindHeader).(receipt.HeaderSection)
	if !ok || header.EmblemURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.emblemTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, header.EmblemURL, nil)
	if err != nil {
		r.logger.Warn("invalid emblem URL, skipping", zap.String("url", header.EmblemURL), zap.Error(err))
		return nil
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("emblem fetch failed, skipping", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("emblem fetch failed, skipping", zap.Int("status", resp.StatusCode))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		r.logger.Warn("reading emblem body failed, skipping", zap.Error(err))
		return nil
	}

	imageType := imageTypeFor(resp.Header.Get("Content-Type"), header.EmblemURL)
	if imageType == "" {
		r.logger.Warn("unsupported emblem format, skipping", zap.String("content_type", resp.Header.Get("Content-Type")))
		return nil
	}
	return &emblemImage{data: data, imageType: imageType}
}

func imageTypeFor(contentType, url string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "PNG"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "JPG"
	case strings.Contains(contentType, "gif"):
		return "GIF"
	}
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "PNG"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "JPG"
	case strings.HasSuffix(lower, ".gif"):
		return "GIF"
	}
	return ""
}
