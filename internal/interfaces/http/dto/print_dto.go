package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/acaishop/printing/internal/domain/order"
)

// AdditionalPayload is one extra added to a line item
type AdditionalPayload struct {
	Name      string `json:"name" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required,money"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// SpoonPayload carries the spoon requirement for a line item
type SpoonPayload struct {
	Needed bool `json:"needed"`
	Count  int  `json:"count" binding:"omitempty,min=0"`
}

// ItemPayload is one order line item
type ItemPayload struct {
	ProductName string              `json:"product_name" binding:"required"`
	SizeLabel   string              `json:"size_label"`
	CategoryTag string              `json:"category_tag"`
	UnitPrice   string              `json:"unit_price" binding:"required,money"`
	Quantity    int                 `json:"quantity" binding:"required,min=1"`
	Additionals []AdditionalPayload `json:"additionals" binding:"omitempty,dive"`
	Spoon       *SpoonPayload       `json:"spoon"`
	Note        string              `json:"note"`
}

// AddressPayload is the delivery address
type AddressPayload struct {
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	Complement   string `json:"complement"`
	Type         string `json:"type" binding:"omitempty,oneof=HOUSE APARTMENT CONDO WORKPLACE HOTEL OTHER"`
}

// OrderPayload carries the full order as pushed by the storefront. The
// service never reads the storefront's store; whatever should appear
// on paper must be in the payload.
type OrderPayload struct {
	ID            string          `json:"id" binding:"required"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Address       *AddressPayload `json:"address"`
	TableLabel    string          `json:"table_label"`
	Items         []ItemPayload   `json:"items" binding:"required,min=1,dive"`
	Subtotal      string          `json:"subtotal" binding:"required,money"`
	DeliveryFee   string          `json:"delivery_fee" binding:"omitempty,money"`
	Total         string          `json:"total" binding:"required,money"`
	Payment       string          `json:"payment" binding:"required,oneof=CASH CARD PIX TRANSFER"`
	ChangeFor     *string         `json:"change_for" binding:"omitempty,money"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PrintRequest queues one receipt
type PrintRequest struct {
	Order OrderPayload `json:"order" binding:"required"`
}

// BatchPrintRequest queues several receipts printed in sequence
type BatchPrintRequest struct {
	Orders []OrderPayload `json:"orders" binding:"required,min=1,dive"`
}

// GenerateDocumentRequest renders and stores one receipt document
type GenerateDocumentRequest struct {
	Order OrderPayload `json:"order" binding:"required"`
}

// ToDomain converts the payload to the domain order
func (p *OrderPayload) ToDomain() (*order.Order, error) {
	subtotal, err := decimal.NewFromString(p.Subtotal)
	if err != nil {
		return nil, fmt.Errorf("invalid subtotal %q", p.Subtotal)
	}
	total, err := decimal.NewFromString(p.Total)
	if err != nil {
		return nil, fmt.Errorf("invalid total %q", p.Total)
	}
	deliveryFee := decimal.Zero
	if p.DeliveryFee != "" {
		deliveryFee, err = decimal.NewFromString(p.DeliveryFee)
		if err != nil {
			return nil, fmt.Errorf("invalid delivery_fee %q", p.DeliveryFee)
		}
	}

	o := &order.Order{
		ID:            p.ID,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		TableLabel:    p.TableLabel,
		Subtotal:      subtotal,
		DeliveryFee:   deliveryFee,
		Total:         total,
		Payment:       order.PaymentMethod(p.Payment),
		CreatedAt:     p.CreatedAt,
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	if p.Address != nil {
		o.Address = &order.Address{
			Street:       p.Address.Street,
			Number:       p.Address.Number,
			Neighborhood: p.Address.Neighborhood,
			City:         p.Address.City,
			Complement:   p.Address.Complement,
			Type:         order.AddressType(p.Address.Type),
		}
	}

	if p.ChangeFor != nil {
		changeFor, err := decimal.NewFromString(*p.ChangeFor)
		if err != nil {
			return nil, fmt.Errorf("invalid change_for %q", *p.ChangeFor)
		}
		o.ChangeFor = &changeFor
	}

	for i, item := range p.Items {
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit_price %q on item %d", item.UnitPrice, i)
		}
		li := order.LineItem{
			ProductName: item.ProductName,
			SizeLabel:   item.SizeLabel,
			CategoryTag: item.CategoryTag,
			UnitPrice:   unitPrice,
			Quantity:    item.Quantity,
			Note:        item.Note,
		}
		for j, add := range item.Additionals {
			addPrice, err := decimal.NewFromString(add.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("invalid unit_price %q on additional %d of item %d", add.UnitPrice, j, i)
			}
			li.Additionals = append(li.Additionals, order.Additional{
				Name:      add.Name,
				UnitPrice: addPrice,
				Quantity:  add.Quantity,
			})
		}
		if item.Spoon != nil {
			li.Spoon = &order.SpoonRequirement{
				Needed: item.Spoon.Needed,
				Count:  item.Spoon.Count,
			}
		}
		o.Items = append(o.Items, li)
	}

	return o, nil
}

// ToDomainOrders converts a batch payload to domain orders
func ToDomainOrders(payloads []OrderPayload) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(payloads))
	for i := range payloads {
		o, err := payloads[i].ToDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
