package pdfgen

import (
	"bytes"
	"compress/zlib"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acaishop/printing/internal/domain/order"
	"github.com/acaishop/printing/internal/domain/receipt"
)

func buildModel(t *testing.T, items int, emblemURL string) *receipt.Model {
	t.Helper()
	o := &order.Order{
		ID:            "A-2001",
		CustomerName:  "João da Silva",
		CustomerPhone: "(11) 91234-5678",
		Address: &order.Address{
			Street:       "Avenida Central",
			Number:       "45",
			Neighborhood: "Centro",
			City:         "São Paulo",
			Type:         order.AddressApartment,
		},
		Payment:   order.PaymentPix,
		CreatedAt: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC),
	}
	subtotal := decimal.Zero
	for i := 0; i < items; i++ {
		price := decimal.RequireFromString("12.50")
		o.Items = append(o.Items, order.LineItem{
			ProductName: "Açaí Médio",
			SizeLabel:   "(300ml)",
			CategoryTag: "acai",
			UnitPrice:   price,
			Quantity:    1,
			Note:        "sem granola, com banana extra e bastante leite condensado por cima",
		})
		subtotal = subtotal.Add(price)
	}
	o.Subtotal = subtotal
	o.DeliveryFee = decimal.RequireFromString("5.00")
	o.Total = subtotal.Add(o.DeliveryFee)

	b := receipt.NewBuilder(42, nil)
	return b.Build(o, order.Store{Name: "Açaí da Gaby", EmblemURL: emblemURL}, order.Quotation{})
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewDocumentRenderer(80, time.Second, nil)

	result, err := r.Render(context.Background(), buildModel(t, 2, ""))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(result.PDFData), "%PDF-"), "output must be a PDF document")
	assert.GreaterOrEqual(t, result.PageHeightMM, 120.0, "page height is floored at the minimum")
}

// pdfContent inflates every compressed stream of the document so tests
// can look at the text operators
func pdfContent(t *testing.T, data []byte) string {
	t.Helper()
	var out bytes.Buffer
	rest := data
	for {
		i := bytes.Index(rest, []byte("stream"))
		if i < 0 {
			break
		}
		rest = rest[i+len("stream"):]
		rest = bytes.TrimLeft(rest, "\r\n")
		j := bytes.Index(rest, []byte("endstream"))
		if j < 0 {
			break
		}
		block := bytes.TrimRight(rest[:j], "\r\n")
		if zr, err := zlib.NewReader(bytes.NewReader(block)); err == nil {
			_, _ = io.Copy(&out, zr)
			_ = zr.Close()
		}
		rest = rest[j:]
	}
	return out.String()
}

func TestRenderPreservesColumnPadding(t *testing.T) {
	r := NewDocumentRenderer(80, time.Second, nil)

	m := buildModel(t, 2, "")
	totals, ok := m.Find(receipt.KindTotals).(receipt.TotalsSection)
	require.True(t, ok)
	subtotal := receipt.FormatLine("", "Subtotal", receipt.FormatBRL(totals.Subtotal), m.Width)[0]
	require.Len(t, subtotal, 42)
	require.Contains(t, subtotal, "  ", "row carries alignment padding")

	result, err := r.Render(context.Background(), m)
	require.NoError(t, err)

	content := pdfContent(t, result.PDFData)
	assert.Contains(t, content, subtotal, "padded rows must land in the document unchanged")
}

func TestRenderEmptyModel(t *testing.T) {
	r := NewDocumentRenderer(80, time.Second, nil)

	_, err := r.Render(context.Background(), &receipt.Model{Width: 42})
	require.Error(t, err)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeEmptyModel, renderErr.Code)
}

func TestRenderSecondPass(t *testing.T) {
	r := NewDocumentRenderer(80, time.Second, nil)

	// A small order fits inside the estimate; a very long one must not
	// lose content, so the renderer runs a second pass at the measured
	// height when the first pass overflows.
	small, err := r.Render(context.Background(), buildModel(t, 1, ""))
	require.NoError(t, err)

	large, err := r.Render(context.Background(), buildModel(t, 60, ""))
	require.NoError(t, err)

	assert.Greater(t, large.PageHeightMM, small.PageHeightMM)
	if large.Repassed {
		assert.Greater(t, large.PageHeightMM, receipt.EstimateHeight(buildModel(t, 60, "")))
	}
}

func TestRenderHeightGrowsWithContent(t *testing.T) {
	r := NewDocumentRenderer(80, time.Second, nil)

	prev := 0.0
	for _, items := range []int{5, 20, 40} {
		result, err := r.Render(context.Background(), buildModel(t, items, ""))
		require.NoError(t, err)
		assert.Greater(t, result.PageHeightMM, prev)
		prev = result.PageHeightMM
	}
}

func TestRenderEmblemFailureIsNonFatal(t *testing.T) {
	t.Run("unreachable host", func(t *testing.T) {
		r := NewDocumentRenderer(80, 100*time.Millisecond, nil)

		result, err := r.Render(context.Background(), buildModel(t, 1, "http://127.0.0.1:1/logo.png"))
		require.NoError(t, err)
		assert.NotEmpty(t, result.PDFData)
	})

	t.Run("slow server times out", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		r := NewDocumentRenderer(80, 50*time.Millisecond, nil)

		start := time.Now()
		result, err := r.Render(context.Background(), buildModel(t, 1, srv.URL+"/logo.png"))
		require.NoError(t, err)
		assert.NotEmpty(t, result.PDFData)
		assert.Less(t, time.Since(start), 400*time.Millisecond, "fetch must respect the timeout bound")
	})

	t.Run("non-image response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>not an image</html>"))
		}))
		defer srv.Close()

		r := NewDocumentRenderer(80, time.Second, nil)

		result, err := r.Render(context.Background(), buildModel(t, 1, srv.URL+"/logo"))
		require.NoError(t, err)
		assert.NotEmpty(t, result.PDFData)
	})
}
