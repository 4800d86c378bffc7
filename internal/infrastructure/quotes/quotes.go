// Package quotes supplies the decorative quotation printed at the
// bottom of a receipt. Quotation lookup is best-effort: any failure
// falls back to the built-in rotation, never to a missing receipt.
package quotes

import (
	"context"
	"time"

	"github.com/acaishop/printing/internal/domain/order"
)

// Source provides the quotation for the current receipt
type Source interface {
	Quote(ctx context.Context) (order.Quotation, error)
}

// builtinQuotes is the rotation used when no remote source is
// configured or reachable
var builtinQuotes = []order.Quotation{
	{Text: "A vida é como um açaí: melhor com os complementos que você escolhe", Attribution: ""},
	{Text: "Felicidade é um açaí bem gelado num dia quente", Attribution: ""},
	{Text: "Tudo que é bom dura o tempo necessário para ser inesquecível", Attribution: "Fernando Pessoa"},
	{Text: "A alegria está na luta, na tentativa, no sofrimento envolvido e não na vitória propriamente dita", Attribution: "Mahatma Gandhi"},
	{Text: "O essencial é invisível aos olhos", Attribution: "Antoine de Saint-Exupéry"},
}

// StaticSource serves the built-in rotation. Selection is by day so
// every receipt of the same day carries the same quotation.
type StaticSource struct {
	now func() time.Time
}

// NewStaticSource creates the built-in rotation source
func NewStaticSource() *StaticSource {
	return &StaticSource{now: time.Now}
}

// Quote returns the quotation of the day
func (s *StaticSource) Quote(_ context.Context) (order.Quotation, error) {
	day := s.now().YearDay()
	return builtinQuotes[day%len(builtinQuotes)], nil
}

// FallbackSource tries the primary source and degrades to the fallback
// on any error
type FallbackSource struct {
	primary  Source
	fallback Source
}

// NewFallbackSource chains a primary source with a fallback
func NewFallbackSource(primary, fallback Source) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: fallback}
}

// Quote returns the primary quotation, or the fallback's on failure
func (s *FallbackSource) Quote(ctx context.Context) (order.Quotation, error) {
	quote, err := s.primary.Quote(ctx)
	if err == nil {
		return quote, nil
	}
	return s.fallback.Quote(ctx)
}
