package pricelist

// SectionCandidate is a block of lines opened by a section-header line.
type SectionCandidate struct {
	Index     int      `json:"index"`
	StartLine int      `json:"startLine"`
	Heading   string   `json:"heading"`
	Lines     []string `json:"-"`
}

// PriceOutcome is the result of searching a section for its unit price:
// either PriceFound or NoPriceFound.
type PriceOutcome interface {
	Candidate() SectionCandidate
	priceOutcome()
}

// PriceFound carries the unit price of a section. Quantity is the pack size
// the published amount was quoted for; Amount is already per single unit.
type PriceFound struct {
	Section   SectionCandidate
	Amount    float64
	Unit      string
	Quantity  int
	Line      int
	ValidFrom string
}

// NoPriceFound marks a section that is skipped entirely.
type NoPriceFound struct {
	Section SectionCandidate
	Reason  string
}

func (p PriceFound) Candidate() SectionCandidate   { return p.Section }
func (n NoPriceFound) Candidate() SectionCandidate { return n.Section }

func (PriceFound) priceOutcome()   {}
func (NoPriceFound) priceOutcome() {}

// RegistrationTokens lists the normalized registration numbers of a priced
// section. ListingFound is false when the listing sub-header was missing and
// every line after the price was scanned instead.
type RegistrationTokens struct {
	Price        PriceFound
	Tokens       []string
	ListingFound bool
}
