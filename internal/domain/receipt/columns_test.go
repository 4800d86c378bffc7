package receipt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLineSingleRow(t *testing.T) {
	rows := FormatLine("2x ", "Açaí Grande", "R$ 20,00", 42)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 42)
	assert.True(t, strings.HasPrefix(rows[0], "2x Acai Grande"))
	assert.True(t, strings.HasSuffix(rows[0], "R$ 20,00"))
}

func TestFormatLineEmptyName(t *testing.T) {
	rows := FormatLine("Taxa de entrega", "", "R$ 5,00", 42)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 42)
	assert.True(t, strings.HasPrefix(rows[0], "Taxa de entrega"))
	assert.True(t, strings.HasSuffix(rows[0], "R$ 5,00"))
}

func TestFormatLineWraps(t *testing.T) {
	// Scenario: a long additional name must wrap, with the price only
	// on the first row and indented continuations.
	rows := FormatLine("+ 3x ", "Leite Condensado Importado Premium Extra Cremoso", "R$ 10,50", 42)
	require.GreaterOrEqual(t, len(rows), 2)

	priceRows := 0
	for i, row := range rows {
		assert.LessOrEqual(t, len(row), 42, "row %d exceeds width", i)
		if strings.Contains(row, "R$ 10,50") {
			priceRows++
			assert.Equal(t, 0, i, "price must appear on the first row only")
		}
		if i > 0 {
			assert.True(t, strings.HasPrefix(row, continuationIndent))
			assert.False(t, strings.HasSuffix(row, "R$ 10,50"))
		}
	}
	assert.Equal(t, 1, priceRows)
}

func TestFormatLineReconstructsName(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		text   string
		price  string
		width  int
	}{
		{"short", "1x ", "Moreninha", "R$ 4,00", 42},
		{"wrapping", "+ 2x ", "Cobertura de Morango Artesanal da Casa Especial", "R$ 6,00", 42},
		{"narrow printer", "1x ", "Acai Tradicional com Banana e Granola", "R$ 18,00", 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := FormatLine(tt.prefix, tt.text, tt.price, tt.width)
			require.NotEmpty(t, rows)

			var fragments []string
			for i, row := range rows {
				assert.LessOrEqual(t, len(row), tt.width)
				frag := row
				if i == 0 {
					frag = strings.TrimPrefix(frag, tt.prefix)
					frag = strings.TrimSuffix(frag, tt.price)
				} else {
					frag = strings.TrimPrefix(frag, continuationIndent)
				}
				fragments = append(fragments, strings.TrimSpace(frag))
			}
			assert.Equal(t, Normalize(tt.text), strings.Join(fragments, " "))
		})
	}
}

func TestFormatLineHardSplitsOversizedWord(t *testing.T) {
	long := strings.Repeat("a", 60)
	rows := FormatLine("1x ", long, "R$ 1,00", 42)
	require.GreaterOrEqual(t, len(rows), 2)
	for _, row := range rows {
		assert.LessOrEqual(t, len(row), 42)
	}
	var rebuilt strings.Builder
	for i, row := range rows {
		frag := row
		if i == 0 {
			frag = strings.TrimPrefix(frag, "1x ")
			frag = strings.TrimSuffix(frag, "R$ 1,00")
		} else {
			frag = strings.TrimPrefix(frag, continuationIndent)
		}
		rebuilt.WriteString(strings.TrimSpace(frag))
	}
	assert.Equal(t, long, rebuilt.String())
}

func TestWrap(t *testing.T) {
	rows := Wrap("Obs: sem granola, com bastante leite em pó por cima", 20)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.LessOrEqual(t, len(row), 20)
	}
	assert.Equal(t,
		Normalize("Obs: sem granola, com bastante leite em pó por cima"),
		strings.Join(rows, " "))

	assert.Nil(t, Wrap("", 20))
	assert.Nil(t, Wrap("   ", 20))
}
