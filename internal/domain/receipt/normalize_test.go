package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain ascii passes through",
			input:    "Acai com granola",
			expected: "Acai com granola",
		},
		{
			name:     "accented letters fold to base letters",
			input:    "Açaí com Granôla e Café",
			expected: "Acai com Granola e Cafe",
		},
		{
			name:     "uppercase accents stay uppercase",
			input:    "AÇAÍ PREMIUM ÉPICO",
			expected: "ACAI PREMIUM EPICO",
		},
		{
			name:     "smart quotes and dashes become ascii",
			input:    "“melhor” ‘açaí’ – do bairro — sempre",
			expected: `"melhor" 'acai' - do bairro - sempre`,
		},
		{
			name:     "ellipsis expands",
			input:    "aguarde…",
			expected: "aguarde...",
		},
		{
			name:     "ordinals and superscripts",
			input:    "1º lugar, 2ª vez, x²",
			expected: "1o lugar, 2a vez, x2",
		},
		{
			name:     "bullets and stars",
			input:    "• item ★ destaque",
			expected: "- item * destaque",
		},
		{
			name:     "control characters are stripped",
			input:    "linha\x01um\x02",
			expected: "linhaum",
		},
		{
			name:     "whitespace runs collapse and trim",
			input:    "  muito \t espaço \n aqui  ",
			expected: "muito espaco aqui",
		},
		{
			name:     "unsupported glyphs are dropped",
			input:    "pago em 💰 dinheiro",
			expected: "pago em dinheiro",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Açaí 500ml — “completo”…",
		"1º pedido • nota ★",
		"  já   normalizado  ",
		"plain text",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestNormalizeOutputSubset(t *testing.T) {
	inputs := []string{
		"Açaí com Nutella®",
		"日本語 mixed with latin",
		"tabs\tand\nnewlines",
		"emoji 🎉 inside",
	}
	for _, in := range inputs {
		out := Normalize(in)
		for _, r := range out {
			assert.True(t, r >= 0x20 && r <= 0x7E,
				"output rune %q outside printable ascii for input %q", r, in)
		}
	}
}
