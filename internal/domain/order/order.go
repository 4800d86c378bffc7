// Package order holds the read model for the Order aggregate.
//
// Orders are owned by the storefront backend; this service only consumes
// them through their data contract. Nothing here is persisted locally.
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the payment method chosen at checkout
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentPix      PaymentMethod = "PIX"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// DisplayName returns the customer-facing label for the payment method
func (p PaymentMethod) DisplayName() string {
	switch p {
	case PaymentCash:
		return "Dinheiro"
	case PaymentCard:
		return "Cartão"
	case PaymentPix:
		return "Pix"
	case PaymentTransfer:
		return "Transferência"
	default:
		return string(p)
	}
}

// AddressType is a closed set of delivery address categories
type AddressType string

const (
	AddressHouse     AddressType = "HOUSE"
	AddressApartment AddressType = "APARTMENT"
	AddressCondo     AddressType = "CONDO"
	AddressWorkplace AddressType = "WORKPLACE"
	AddressHotel     AddressType = "HOTEL"
	AddressOther     AddressType = "OTHER"
)

// DisplayName returns the localized label for the address type
func (a AddressType) DisplayName() string {
	switch a {
	case AddressHouse:
		return "Casa"
	case AddressApartment:
		return "Apartamento"
	case AddressCondo:
		return "Condomínio"
	case AddressWorkplace:
		return "Trabalho"
	case AddressHotel:
		return "Hotel"
	case AddressOther:
		return "Outro"
	default:
		return string(a)
	}
}

// Address is a structured delivery address
type Address struct {
	Street       string
	Number       string
	Neighborhood string
	City         string
	Complement   string
	Type         AddressType
}

// Additional is an extra selection attached to a line item
type Additional struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// SpoonRequirement records whether the customer needs disposable spoons
type SpoonRequirement struct {
	Needed bool
	Count  int
}

// LineItem is one ordered product
type LineItem struct {
	ProductName string
	SizeLabel   string
	CategoryTag string
	UnitPrice   decimal.Decimal
	Quantity    int
	Additionals []Additional
	Spoon       *SpoonRequirement
	Note        string
}

// LineTotal returns the displayed total for the item.
// Additionals never change it: unit price times quantity only.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is the finalized order consumed from the storefront.
// Exactly one of Address or TableLabel is set.
type Order struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	Address       *Address
	TableLabel    string
	Items         []LineItem
	Subtotal      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
	Payment       PaymentMethod
	ChangeFor     *decimal.Decimal
	CreatedAt     time.Time
	Printed       bool
}

// IsTableOrder reports whether the order is served at a table
// rather than delivered
func (o *Order) IsTableOrder() bool {
	return o.TableLabel != ""
}

// ExclusiveCategory returns the category tag shared by every item,
// or "" when the order mixes categories or has no items.
func (o *Order) ExclusiveCategory() string {
	if len(o.Items) == 0 {
		return ""
	}
	tag := o.Items[0].CategoryTag
	for _, it := range o.Items[1:] {
		if it.CategoryTag != tag {
			return ""
		}
	}
	return tag
}

// Store is the branding record for the storefront
type Store struct {
	Name      string
	EmblemURL string
}

// Quotation is a short decorative quotation printed at the bottom
// of the receipt
type Quotation struct {
	Text        string
	Attribution string
}
