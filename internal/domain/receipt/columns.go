package receipt

import "strings"

const (
	// DefaultLineWidth is the character budget of an 80mm print head at
	// font A. Both renderers must use the same width for visual parity.
	DefaultLineWidth = 42

	// continuationIndent prefixes every wrapped row after the first
	continuationIndent = "  "

	// minColumnGap is the minimum spacing between the name column and
	// the right-aligned price column
	minColumnGap = 1
)

// FormatLine lays out a (prefix, name, price) triple into one or more
// fixed-width rows. When everything fits, a single row is returned with
// the price right-aligned. Otherwise the name is greedily word-wrapped
// into the space left after the prefix and the reserved price column;
// the price appears only on the first row and continuation rows carry a
// fixed indent. A word longer than the available width is hard-split at
// the character boundary. Name and price pass through Normalize so the
// rows are already print-head safe.
func FormatLine(prefix, name, price string, width int) []string {
	if width <= 0 {
		width = DefaultLineWidth
	}
	name = Normalize(name)
	price = Normalize(price)

	if name == "" {
		return []string{padRow(prefix, price, width)}
	}

	// Single-row fast path.
	if len(prefix)+len(name)+minColumnGap+len(price) <= width {
		return []string{padRow(prefix+name, price, width)}
	}

	first := width - len(prefix) - len(price) - minColumnGap
	if first < 1 {
		first = 1
	}
	rest := width - len(continuationIndent)
	if rest < 1 {
		rest = 1
	}

	fragments := wrapWords(strings.Fields(name), first, rest)
	rows := make([]string, 0, len(fragments))
	for i, frag := range fragments {
		if i == 0 {
			rows = append(rows, padRow(prefix+frag, price, width))
			continue
		}
		rows = append(rows, continuationIndent+frag)
	}
	return rows
}

// Wrap greedily word-wraps free text (notes, advisory lines, quotations)
// into normalized rows no longer than width.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = DefaultLineWidth
	}
	text = Normalize(text)
	if text == "" {
		return nil
	}
	return wrapWords(strings.Fields(text), width, width)
}

// wrapWords packs words into fragments, the first bounded by firstWidth
// and the rest by restWidth. Oversized words are hard-split.
func wrapWords(words []string, firstWidth, restWidth int) []string {
	var fragments []string
	var cur strings.Builder
	limit := firstWidth

	flush := func() {
		if cur.Len() > 0 {
			fragments = append(fragments, cur.String())
			cur.Reset()
			limit = restWidth
		}
	}

	for _, w := range words {
		for len(w) > limit {
			// The word alone exceeds the row: split at the boundary.
			avail := limit - cur.Len()
			if cur.Len() > 0 {
				avail-- // separating space
			}
			if avail < 1 {
				flush()
				continue
			}
			if cur.Len() > 0 {
				cur.WriteByte(' ')
			}
			cur.WriteString(w[:avail])
			w = w[avail:]
			flush()
		}
		if cur.Len() > 0 && cur.Len()+1+len(w) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	flush()
	return fragments
}

// padRow right-aligns value against left within width. The row is
// truncated only when left+value alone already exceed the budget.
func padRow(left, value string, width int) string {
	gap := width - len(left) - len(value)
	if gap < minColumnGap {
		gap = minColumnGap
	}
	row := left + strings.Repeat(" ", gap) + value
	if len(row) > width && len(left) > 0 {
		keep := width - len(value) - minColumnGap
		if keep < 1 {
			keep = 1
		}
		if keep < len(left) {
			left = left[:keep]
		}
		gap = width - len(left) - len(value)
		if gap < minColumnGap {
			gap = minColumnGap
		}
		row = left + strings.Repeat(" ", gap) + value
	}
	return row
}
