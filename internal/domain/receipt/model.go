package receipt

import (
	"time"

	"github.com/shopspring/decimal"
)

// SectionKind identifies a receipt section variant
type SectionKind string

const (
	KindHeader      SectionKind = "HEADER"
	KindIdentity    SectionKind = "IDENTITY"
	KindCustomer    SectionKind = "CUSTOMER"
	KindDestination SectionKind = "DESTINATION"
	KindItems       SectionKind = "ITEMS"
	KindTotals      SectionKind = "TOTALS"
	KindPayment     SectionKind = "PAYMENT"
	KindFooter      SectionKind = "FOOTER"
	KindQuotation   SectionKind = "QUOTATION"
)

// Section is one typed block of the receipt. Section order inside a
// Model is fixed and renderer-agnostic; only a renderer decides how a
// section becomes characters or ink.
type Section interface {
	Kind() SectionKind
}

// HeaderSection carries the store branding
type HeaderSection struct {
	StoreName string
	EmblemURL string
}

func (HeaderSection) Kind() SectionKind { return KindHeader }

// IdentitySection identifies the order
type IdentitySection struct {
	OrderID   string
	CreatedAt time.Time
}

func (IdentitySection) Kind() SectionKind { return KindIdentity }

// CustomerSection carries the customer contact lines
type CustomerSection struct {
	Name  string
	Phone string
}

func (CustomerSection) Kind() SectionKind { return KindCustomer }

// DestinationSection is either a table label or a delivery address,
// never both. AddressRows are pre-wrapped to the model width.
type DestinationSection struct {
	TableLabel  string
	AddressRows []string
}

func (DestinationSection) Kind() SectionKind { return KindDestination }

// ItemEntry is one formatted line item. All rows are pre-wrapped so
// both renderers reproduce identical layout decisions.
type ItemEntry struct {
	// TitleRows carry "Nx Product Size" with the line total
	// right-aligned on the first row only.
	TitleRows []string
	// AdditionalRows carry "+ Nx Name" rows with the additional's
	// price on each first row.
	AdditionalRows []string
	// SpoonNote is empty when the order carries no spoon requirement.
	SpoonNote string
	// NoteRows carry the customer's free-text note, wrapped.
	NoteRows []string
}

// Rows returns every text row of the entry in print order
func (e ItemEntry) Rows() []string {
	rows := make([]string, 0, len(e.TitleRows)+len(e.AdditionalRows)+1+len(e.NoteRows))
	rows = append(rows, e.TitleRows...)
	rows = append(rows, e.AdditionalRows...)
	if e.SpoonNote != "" {
		rows = append(rows, e.SpoonNote)
	}
	rows = append(rows, e.NoteRows...)
	return rows
}

// ItemsSection lists the formatted order items
type ItemsSection struct {
	Entries []ItemEntry
}

func (ItemsSection) Kind() SectionKind { return KindItems }

// TotalsSection carries the order amounts verbatim plus the advisory
// fee-waiver text, which never alters the numbers.
type TotalsSection struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	WaiverRows  []string
}

func (TotalsSection) Kind() SectionKind { return KindTotals }

// PaymentSection carries the payment method and the change-due
// explanation when the customer pays cash with change.
type PaymentSection struct {
	MethodLabel string
	ChangeRows  []string
}

func (PaymentSection) Kind() SectionKind { return KindPayment }

// FooterSection carries the thank-you line
type FooterSection struct {
	Message string
}

func (FooterSection) Kind() SectionKind { return KindFooter }

// QuotationSection carries the decorative quotation, pre-wrapped
type QuotationSection struct {
	TextRows    []string
	Attribution string
}

func (QuotationSection) Kind() SectionKind { return KindQuotation }

// Model is the renderer-agnostic receipt. It is value data owned by
// the render call that created it and discarded after use.
type Model struct {
	Width    int
	Sections []Section
}

// Find returns the first section of the given kind, or nil
func (m *Model) Find(kind SectionKind) Section {
	for _, s := range m.Sections {
		if s.Kind() == kind {
			return s
		}
	}
	return nil
}
