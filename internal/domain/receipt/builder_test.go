package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acaishop/printing/internal/domain/order"
)

var testRules = []FeeWaiverRule{
	{
		CategoryTag:  "picole",
		MinimumOrder: decimal.New(2000, -2), // R$ 20,00
		WaivedFee:    decimal.New(500, -2),
	},
	{
		CategoryTag:  "moreninha",
		MinimumOrder: decimal.New(3000, -2),
		WaivedFee:    decimal.New(500, -2),
	},
}

func deliveryOrder() *order.Order {
	return &order.Order{
		ID:            "A-1042",
		CustomerName:  "Maria José",
		CustomerPhone: "(11) 98888-7777",
		Address: &order.Address{
			Street:       "Rua das Palmeiras",
			Number:       "123",
			Neighborhood: "Jardim América",
			City:         "São Paulo",
			Complement:   "Bloco B, ap 42",
			Type:         order.AddressApartment,
		},
		Items: []order.LineItem{
			{
				ProductName: "Açaí Grande",
				SizeLabel:   "(500ml)",
				CategoryTag: "acai",
				UnitPrice:   decimal.New(1000, -2),
				Quantity:    2,
			},
		},
		Subtotal:    decimal.New(2000, -2),
		DeliveryFee: decimal.New(500, -2),
		Total:       decimal.New(2500, -2),
		Payment:     order.PaymentPix,
		CreatedAt:   time.Date(2025, 8, 14, 19, 30, 0, 0, time.UTC),
	}
}

func sectionKinds(m *Model) []SectionKind {
	kinds := make([]SectionKind, len(m.Sections))
	for i, s := range m.Sections {
		kinds[i] = s.Kind()
	}
	return kinds
}

func TestBuildSectionOrder(t *testing.T) {
	b := NewBuilder(DefaultLineWidth, testRules)
	m := b.Build(deliveryOrder(),
		order.Store{Name: "Açaí da Gaby"},
		order.Quotation{Text: "A vida é doce", Attribution: "Anônimo"})

	assert.Equal(t, []SectionKind{
		KindHeader, KindIdentity, KindCustomer, KindDestination,
		KindItems, KindTotals, KindPayment, KindFooter, KindQuotation,
	}, sectionKinds(m))
}

func TestBuildOmitsBlankQuotation(t *testing.T) {
	b := NewBuilder(DefaultLineWidth, testRules)
	m := b.Build(deliveryOrder(), order.Store{Name: "Loja"}, order.Quotation{Text: "   "})
	assert.Nil(t, m.Find(KindQuotation))
}

func TestBuildDeterministic(t *testing.T) {
	b := NewBuilder(DefaultLineWidth, testRules)
	store := order.Store{Name: "Açaí da Gaby", EmblemURL: "https://cdn.example/logo.png"}
	quote := order.Quotation{Text: "Persistência é o caminho", Attribution: "Provérbio"}

	first := b.Build(deliveryOrder(), store, quote)
	second := b.Build(deliveryOrder(), store, quote)
	assert.Equal(t, first, second)
}

// Scenario A: plain delivery order in a category with no waiver rule
// shows subtotal and fee, no advisory text.
func TestBuildTotalsWithoutWaiverRule(t *testing.T) {
	b := NewBuilder(DefaultLineWidth, testRules)
	m := b.Build(deliveryOrder(), order.Store{Name: "Loja"}, order.Quotation{})

	totals, ok := m.Find(KindTotals).(TotalsSection)
	require.True(t, ok)
	assert.Equal(t, "R$ 20,00", FormatBRL(totals.Subtotal))
	assert.Equal(t, "R$ 5,00", FormatBRL(totals.DeliveryFee))
	assert.Equal(t, "R$ 25,00", FormatBRL(totals.Total))
	assert.Empty(t, totals.WaiverRows)
}

// Scenario B: an order composed exclusively of a threshold-gated
// category explains the waiver below the minimum and the achieved free
// delivery above it.
func TestBuildFeeWaiverAdvisory(t *testing.T) {
	makePicoleOrder := func(subtotal decimal.Decimal) *order.Order {
		o := deliveryOrder()
		o.Items = []order.LineItem{
			{ProductName: "Picolé de Manga", CategoryTag: "picole", UnitPrice: subtotal, Quantity: 1},
		}
		o.Subtotal = subtotal
		return o
	}

	t.Run("below minimum names the threshold", func(t *testing.T) {
		b := NewBuilder(DefaultLineWidth, testRules)
		m := b.Build(makePicoleOrder(decimal.New(1200, -2)), order.Store{Name: "Loja"}, order.Quotation{})

		totals := m.Find(KindTotals).(TotalsSection)
		require.NotEmpty(t, totals.WaiverRows)
		joined := strings.Join(totals.WaiverRows, " ")
		assert.Contains(t, joined, "R$ 20,00")
		assert.Contains(t, joined, "abaixo do minimo")
		// Advisory only: the numbers stay whatever the order carried.
		assert.Equal(t, "R$ 12,00", FormatBRL(totals.Subtotal))
	})

	t.Run("above minimum notes free delivery", func(t *testing.T) {
		b := NewBuilder(DefaultLineWidth, testRules)
		m := b.Build(makePicoleOrder(decimal.New(2400, -2)), order.Store{Name: "Loja"}, order.Quotation{})

		totals := m.Find(KindTotals).(TotalsSection)
		require.NotEmpty(t, totals.WaiverRows)
		joined := strings.Join(totals.WaiverRows, " ")
		assert.Contains(t, joined, "Entrega gratis aplicada")
		assert.Contains(t, joined, "R$ 20,00")
	})

	t.Run("mixed categories never match", func(t *testing.T) {
		o := makePicoleOrder(decimal.New(1200, -2))
		o.Items = append(o.Items, order.LineItem{
			ProductName: "Açaí Pequeno", CategoryTag: "acai",
			UnitPrice: decimal.New(800, -2), Quantity: 1,
		})
		b := NewBuilder(DefaultLineWidth, testRules)
		m := b.Build(o, order.Store{Name: "Loja"}, order.Quotation{})
		assert.Empty(t, m.Find(KindTotals).(TotalsSection).WaiverRows)
	})

	t.Run("table orders carry no waiver text", func(t *testing.T) {
		o := makePicoleOrder(decimal.New(1200, -2))
		o.Address = nil
		o.TableLabel = "Mesa 3"
		b := NewBuilder(DefaultLineWidth, testRules)
		m := b.Build(o, order.Store{Name: "Loja"}, order.Quotation{})
		assert.Empty(t, m.Find(KindTotals).(TotalsSection).WaiverRows)
	})
}

func TestBuildDestination(t *testing.T) {
	t.Run("delivery address", func(t *testing.T) {
		b := NewBuilder(DefaultLineWidth, testRules)
		m := b.Build(deliveryOrder(), order.Store{Name: "Loja"}, order.Quotation{})

		dest := m.Find(KindDestination).(DestinationSection)
		assert.Empty(t, dest.TableLabel)
		joined := strings.Join(dest.AddressRows, " ")
		assert.Contains(t, joined, "Rua das Palmeiras, 123")
		assert.Contains(t, joined, "Jardim America")
		assert.Contains(t, joined, "Sao Paulo")
		assert.Contains(t, joined, "Compl.: Bloco B, ap 42")
		assert.Contains(t, joined, "Tipo: Apartamento")
	})

	t.Run("table reference", func(t *testing.T) {
		o := deliveryOrder()
		o.Address = nil
		o.TableLabel = "Mesa 7"
		b := NewBuilder(DefaultLineWidth, testRules)
		m := b.Build(o, order.Store{Name: "Loja"}, order.Quotation{})

		dest := m.Find(KindDestination).(DestinationSection)
		assert.Equal(t, "Mesa 7", dest.TableLabel)
		assert.Empty(t, dest.AddressRows)
	})

	t.Run("missing address degrades to empty rows", func(t *testing.T) {
		o := deliveryOrder()
		o.Address = nil
		b := NewBuilder(DefaultLineWidth, testRules)
		m := b.Build(o, order.Store{Name: "Loja"}, order.Quotation{})

		dest := m.Find(KindDestination).(DestinationSection)
		assert.Empty(t, dest.TableLabel)
		assert.Empty(t, dest.AddressRows)
	})
}

func TestBuildItemEntry(t *testing.T) {
	o := deliveryOrder()
	o.Items = []order.LineItem{
		{
			ProductName: "Açaí Médio",
			SizeLabel:   "(400ml)",
			CategoryTag: "acai",
			UnitPrice:   decimal.New(1500, -2),
			Quantity:    2,
			Additionals: []order.Additional{
				{Name: "Leite Condensado", UnitPrice: decimal.New(200, -2), Quantity: 3},
			},
			Spoon: &order.SpoonRequirement{Needed: true, Count: 2},
			Note:  "  sem granola  ",
		},
		{
			ProductName: "Picolé de Coco",
			CategoryTag: "picole",
			UnitPrice:   decimal.New(400, -2),
			Quantity:    1,
			Spoon:       &order.SpoonRequirement{Needed: false},
		},
	}
	b := NewBuilder(DefaultLineWidth, testRules)
	m := b.Build(o, order.Store{Name: "Loja"}, order.Quotation{})

	items := m.Find(KindItems).(ItemsSection)
	require.Len(t, items.Entries, 2)

	first := items.Entries[0]
	// Line total is unit price times quantity, never touched by additionals.
	assert.Contains(t, first.TitleRows[0], "R$ 30,00")
	assert.True(t, strings.HasPrefix(first.TitleRows[0], "2x Acai Medio (400ml)"))
	require.NotEmpty(t, first.AdditionalRows)
	assert.True(t, strings.HasPrefix(first.AdditionalRows[0], "+ 3x Leite Condensado"))
	assert.Contains(t, first.AdditionalRows[0], "R$ 6,00")
	assert.Equal(t, "Precisa de 2 colheres", first.SpoonNote)
	require.Len(t, first.NoteRows, 1)
	assert.Equal(t, "Obs: sem granola", first.NoteRows[0])

	second := items.Entries[1]
	assert.Equal(t, "Nao precisa de colher", second.SpoonNote)
	assert.Empty(t, second.NoteRows)
}

func TestBuildPayment(t *testing.T) {
	o := deliveryOrder()
	o.Payment = order.PaymentCash
	changeFor := decimal.New(5000, -2)
	o.ChangeFor = &changeFor

	b := NewBuilder(DefaultLineWidth, testRules)
	m := b.Build(o, order.Store{Name: "Loja"}, order.Quotation{})

	pay := m.Find(KindPayment).(PaymentSection)
	assert.Equal(t, "Dinheiro", pay.MethodLabel)
	joined := strings.Join(pay.ChangeRows, " ")
	assert.Contains(t, joined, "Troco para R$ 50,00")
	assert.Contains(t, joined, "R$ 25,00")
}
