package escpos

import (
	"bytes"
	"strings"

	"github.com/acaishop/printing/internal/domain/receipt"
)

// Renderer turns a receipt model into a deterministic ESC/POS byte
// stream. Equal models always produce equal bytes, so a job can be
// retried by resending the same buffer.
type Renderer struct{}

// NewRenderer creates an ESC/POS renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the full command stream for one receipt, including
// the trailing feed and cut. A non-nil emblem raster is printed above
// the store name.
func (r *Renderer) Render(m *receipt.Model, emblem *Raster) []byte {
	w := &writer{width: m.Width}
	w.raw(cmdInit())

	for i, section := range m.Sections {
		if i > 0 {
			w.separator()
		}
		switch s := section.(type) {
		case receipt.HeaderSection:
			r.header(w, s, emblem)
		case receipt.IdentitySection:
			r.identity(w, s)
		case receipt.CustomerSection:
			r.customer(w, s)
		case receipt.DestinationSection:
			r.destination(w, s)
		case receipt.ItemsSection:
			r.items(w, s)
		case receipt.TotalsSection:
			r.totals(w, s, m.Width)
		case receipt.PaymentSection:
			r.payment(w, s)
		case receipt.FooterSection:
			w.raw(cmdAlignCenter())
			w.text(s.Message)
			w.raw(cmdAlignLeft())
		case receipt.QuotationSection:
			r.quotation(w, s)
		}
	}

	w.raw(cmdFeed(4))
	w.raw(cmdCut())
	return w.bytes()
}

func (r *Renderer) header(w *writer, s receipt.HeaderSection, emblem *Raster) {
	w.raw(cmdAlignCenter())
	if emblem != nil {
		w.raw(cmdRaster(emblem.WidthBytes, emblem.Height, emblem.Data))
	}
	w.raw(cmdBold(true))
	w.raw(cmdDoubleHeight(true))
	w.text(s.StoreName)
	w.raw(cmdDoubleHeight(false))
	w.raw(cmdBold(false))
	w.raw(cmdAlignLeft())
}

func (r *Renderer) identity(w *writer, s receipt.IdentitySection) {
	w.raw(cmdBold(true))
	w.text("Pedido: " + s.OrderID)
	w.raw(cmdBold(false))
	w.text(s.CreatedAt.Format("02/01/2006 15:04"))
}

func (r *Renderer) customer(w *writer, s receipt.CustomerSection) {
	w.text("Cliente: " + s.Name)
	if s.Phone != "" {
		w.text("Tel: " + s.Phone)
	}
}

func (r *Renderer) destination(w *writer, s receipt.DestinationSection) {
	if s.TableLabel != "" {
		w.raw(cmdBold(true))
		w.text("Mesa: " + s.TableLabel)
		w.raw(cmdBold(false))
		return
	}
	for _, row := range s.AddressRows {
		w.row(row)
	}
}

func (r *Renderer) items(w *writer, s receipt.ItemsSection) {
	for i, entry := range s.Entries {
		if i > 0 {
			w.row("")
		}
		for _, row := range entry.Rows() {
			w.row(row)
		}
	}
}

func (r *Renderer) totals(w *writer, s receipt.TotalsSection, width int) {
	for _, row := range receipt.FormatLine("", "Subtotal", receipt.FormatBRL(s.Subtotal), width) {
		w.row(row)
	}
	for _, row := range receipt.FormatLine("", "Taxa de entrega", receipt.FormatBRL(s.DeliveryFee), width) {
		w.row(row)
	}
	w.raw(cmdBold(true))
	for _, row := range receipt.FormatLine("", "Total", receipt.FormatBRL(s.Total), width) {
		w.row(row)
	}
	w.raw(cmdBold(false))
	for _, row := range s.WaiverRows {
		w.row(row)
	}
}

func (r *Renderer) payment(w *writer, s receipt.PaymentSection) {
	w.text("Pagamento: " + s.MethodLabel)
	for _, row := range s.ChangeRows {
		w.row(row)
	}
}

func (r *Renderer) quotation(w *writer, s receipt.QuotationSection) {
	w.raw(cmdAlignCenter())
	for _, row := range s.TextRows {
		w.row(row)
	}
	if s.Attribution != "" {
		w.text("- " + s.Attribution)
	}
	w.raw(cmdAlignLeft())
}

// writer accumulates the command stream
type writer struct {
	buf   bytes.Buffer
	width int
}

func (w *writer) raw(b []byte) {
	w.buf.Write(b)
}

// row emits a pre-formatted row verbatim. Wrapped and padded rows are
// normalized when the model is built; normalizing again would collapse
// the column padding and continuation indents.
func (w *writer) row(text string) {
	w.buf.WriteString(text)
	w.buf.WriteByte(lf)
}

// text emits a raw free-text field, normalized to printable ASCII
func (w *writer) text(s string) {
	w.row(receipt.Normalize(s))
}

func (w *writer) separator() {
	w.buf.WriteString(strings.Repeat("-", w.width))
	w.buf.WriteByte(lf)
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}
