package receipt

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents decomposes accented letters and removes the combining marks,
// so "Açaí" becomes "Acai" with case preserved.
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// typographic punctuation the print head cannot render, mapped to
// plain-ASCII equivalents
var punctuation = map[rune]string{
	'‘': "'",   // left single quote
	'’': "'",   // right single quote
	'“': `"`,   // left double quote
	'”': `"`,   // right double quote
	'–': "-",   // en dash
	'—': "-",   // em dash
	'…': "...", // ellipsis
	'ª': "a",   // feminine ordinal
	'º': "o",   // masculine ordinal
	'¹': "1",
	'²': "2",
	'³': "3",
	'•': "-", // bullet
	'●': "-", // black circle
	'▪': "-", // black small square
	'★': "*", // black star
	'☆': "*", // white star
}

// Normalize maps text to the subset a thermal print head can render.
// It folds accented Latin letters to their base letters, replaces
// typographic punctuation with ASCII equivalents, drops anything still
// outside printable ASCII, and collapses whitespace runs to a single
// space. It is total and idempotent; unrecognized characters are
// dropped, never reported as errors.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := punctuation[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}

	folded, _, err := transform.String(foldAccents, b.String())
	if err != nil {
		folded = b.String()
	}

	var out strings.Builder
	out.Grow(len(folded))
	space := true // leading whitespace is trimmed
	for _, r := range folded {
		if unicode.IsSpace(r) {
			if !space {
				out.WriteByte(' ')
				space = true
			}
			continue
		}
		if r < 0x20 || r > 0x7E {
			continue
		}
		out.WriteRune(r)
		space = false
	}
	return strings.TrimRight(out.String(), " ")
}
