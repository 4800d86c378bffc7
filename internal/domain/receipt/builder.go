package receipt

import (
	"fmt"
	"strings"

	"github.com/acaishop/printing/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Builder assembles receipt models at a fixed column width.
// Building is deterministic and side-effect free: the same order,
// store and quotation always produce a structurally equal model.
type Builder struct {
	width int
	rules []FeeWaiverRule
}

// NewBuilder creates a receipt builder. A non-positive width falls back
// to DefaultLineWidth.
func NewBuilder(width int, rules []FeeWaiverRule) *Builder {
	if width <= 0 {
		width = DefaultLineWidth
	}
	return &Builder{width: width, rules: rules}
}

// Width returns the column budget the builder wraps against
func (b *Builder) Width() int {
	return b.width
}

// Build assembles the receipt model for a finalized order. Missing
// optional fields degrade to empty text; a partially correct receipt is
// preferable to no receipt, so Build never fails.
func (b *Builder) Build(o *order.Order, store order.Store, quote order.Quotation) *Model {
	m := &Model{Width: b.width}

	m.Sections = append(m.Sections,
		HeaderSection{StoreName: store.Name, EmblemURL: store.EmblemURL},
		IdentitySection{OrderID: o.ID, CreatedAt: o.CreatedAt},
		CustomerSection{Name: o.CustomerName, Phone: o.CustomerPhone},
		b.destination(o),
		b.items(o),
		b.totals(o),
		b.payment(o),
		FooterSection{Message: "Obrigado pela preferência!"},
	)
	if strings.TrimSpace(quote.Text) != "" {
		m.Sections = append(m.Sections, QuotationSection{
			TextRows:    Wrap(`"`+strings.TrimSpace(quote.Text)+`"`, b.width),
			Attribution: strings.TrimSpace(quote.Attribution),
		})
	}
	return m
}

func (b *Builder) destination(o *order.Order) DestinationSection {
	if o.IsTableOrder() {
		return DestinationSection{TableLabel: o.TableLabel}
	}

	var rows []string
	addr := o.Address
	if addr == nil {
		return DestinationSection{AddressRows: rows}
	}
	street := strings.TrimSpace(addr.Street)
	if addr.Number != "" {
		street += ", " + addr.Number
	}
	rows = append(rows, Wrap(street, b.width)...)
	if addr.Neighborhood != "" {
		rows = append(rows, Wrap(addr.Neighborhood, b.width)...)
	}
	if addr.City != "" {
		rows = append(rows, Wrap(addr.City, b.width)...)
	}
	if addr.Complement != "" {
		rows = append(rows, Wrap("Compl.: "+addr.Complement, b.width)...)
	}
	if addr.Type != "" {
		rows = append(rows, Wrap("Tipo: "+addr.Type.DisplayName(), b.width)...)
	}
	return DestinationSection{AddressRows: rows}
}

func (b *Builder) items(o *order.Order) ItemsSection {
	entries := make([]ItemEntry, 0, len(o.Items))
	for _, it := range o.Items {
		entries = append(entries, b.itemEntry(it))
	}
	return ItemsSection{Entries: entries}
}

func (b *Builder) itemEntry(it order.LineItem) ItemEntry {
	name := it.ProductName
	if it.SizeLabel != "" {
		name += " " + it.SizeLabel
	}
	entry := ItemEntry{
		TitleRows: FormatLine(
			fmt.Sprintf("%dx ", it.Quantity),
			name,
			FormatBRL(it.LineTotal()),
			b.width,
		),
	}

	for _, add := range it.Additionals {
		price := add.UnitPrice.Mul(decimal.NewFromInt(int64(add.Quantity)))
		entry.AdditionalRows = append(entry.AdditionalRows, FormatLine(
			fmt.Sprintf("+ %dx ", add.Quantity),
			add.Name,
			FormatBRL(price),
			b.width,
		)...)
	}

	if it.Spoon != nil {
		if it.Spoon.Needed {
			count := it.Spoon.Count
			if count < 1 {
				count = 1
			}
			label := "colheres"
			if count == 1 {
				label = "colher"
			}
			entry.SpoonNote = Normalize(fmt.Sprintf("Precisa de %d %s", count, label))
		} else {
			entry.SpoonNote = Normalize("Não precisa de colher")
		}
	}

	if note := strings.TrimSpace(it.Note); note != "" {
		entry.NoteRows = Wrap("Obs: "+note, b.width)
	}
	return entry
}

func (b *Builder) totals(o *order.Order) TotalsSection {
	sec := TotalsSection{
		Subtotal:    o.Subtotal,
		DeliveryFee: o.DeliveryFee,
		Total:       o.Total,
	}

	// The advisory waiver text applies only to delivery orders made up
	// exclusively of one rule's category. It explains the fee, it never
	// changes it: the amounts come verbatim from the order.
	if o.IsTableOrder() {
		return sec
	}
	rule, ok := MatchRule(b.rules, o.ExclusiveCategory())
	if !ok {
		return sec
	}
	if o.Subtotal.LessThan(rule.MinimumOrder) {
		sec.WaiverRows = Wrap(fmt.Sprintf(
			"Entrega grátis a partir de %s nesta categoria. Pedido abaixo do mínimo, taxa de entrega aplicada.",
			FormatBRL(rule.MinimumOrder)), b.width)
	} else {
		sec.WaiverRows = Wrap(fmt.Sprintf(
			"Entrega grátis aplicada: pedido acima de %s.",
			FormatBRL(rule.MinimumOrder)), b.width)
	}
	return sec
}

func (b *Builder) payment(o *order.Order) PaymentSection {
	sec := PaymentSection{MethodLabel: Normalize(o.Payment.DisplayName())}
	if o.ChangeFor != nil {
		change := o.ChangeFor.Sub(o.Total)
		text := fmt.Sprintf("Troco para %s", FormatBRL(*o.ChangeFor))
		if change.IsPositive() {
			text += fmt.Sprintf(" (troco: %s)", FormatBRL(change))
		}
		sec.ChangeRows = Wrap(text, b.width)
	}
	return sec
}
