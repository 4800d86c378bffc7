package receipt

// Height heuristics for the paginated document path, in millimetres.
// The page extent must be committed before the content is placed, so the
// estimate is intentionally biased high: undershooting forces a second
// rendering pass while overshooting only wastes blank trailing space.
const (
	mmPerLine         = 3.6
	headerHeight      = 24.0 // emblem slot, store name, rule
	identityHeight    = 9.0
	customerHeight    = 8.0
	destinationBase   = 5.0
	itemSpacing       = 1.5
	totalsBase        = 14.0
	paymentBase       = 5.0
	footerHeight      = 8.0
	quotationBase     = 3.0
	safetyFactor      = 1.3
	minDocumentHeight = 120.0
)

// EstimateHeight predicts the vertical extent a paginated renderer needs
// for the model. The result is monotonically non-decreasing in the number
// of items, additionals and note length, inflated by a fixed safety
// margin and floored at a minimum page height.
func EstimateHeight(m *Model) float64 {
	var h float64
	for _, s := range m.Sections {
		switch sec := s.(type) {
		case HeaderSection:
			h += headerHeight
		case IdentitySection:
			h += identityHeight
		case CustomerSection:
			h += customerHeight
		case DestinationSection:
			rows := len(sec.AddressRows)
			if sec.TableLabel != "" {
				rows = 1
			}
			if rows < 1 {
				rows = 1
			}
			h += destinationBase + mmPerLine*float64(rows)
		case ItemsSection:
			for _, e := range sec.Entries {
				h += itemSpacing + mmPerLine*float64(len(e.Rows()))
			}
		case TotalsSection:
			h += totalsBase + mmPerLine*float64(len(sec.WaiverRows))
		case PaymentSection:
			h += paymentBase + mmPerLine*float64(len(sec.ChangeRows))
		case FooterSection:
			h += footerHeight
		case QuotationSection:
			h += quotationBase + mmPerLine*float64(len(sec.TextRows)+1)
		}
	}

	h *= safetyFactor
	if h < minDocumentHeight {
		h = minDocumentHeight
	}
	return h
}
