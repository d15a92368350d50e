// Package pricelist extracts maximum unit prices per registration number from
// the text of government price-ceiling publications.
//
// Parsing is heuristic. Every stage is exposed so callers can see where an
// extraction degraded, and Report counts the shortfall.
package pricelist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"GtnPortal/internal/numparse"
	"GtnPortal/internal/period"
)

// DefaultPriceWindow is how many lines of a section are searched for its price.
const DefaultPriceWindow = 12

// PriceCeilingRow is one (registration number, unit price) fact.
type PriceCeilingRow struct {
	RegistrationNumber string  `json:"registrationNumber" csv:"registration_number"`
	UnitPriceEUR       float64 `json:"unitPriceEUR" csv:"unit_price_eur"`
	Unit               string  `json:"unit,omitempty" csv:"unit"`
	ValidFrom          string  `json:"validFrom,omitempty" csv:"valid_from"`
	Section            int     `json:"section" csv:"section"`
}

// SkippedSection explains why a section produced no rows.
type SkippedSection struct {
	Index   int    `json:"index"`
	Heading string `json:"heading"`
	Reason  string `json:"reason"`
}

// Override records a registration number whose price was replaced by a later
// section.
type Override struct {
	RegistrationNumber string  `json:"registrationNumber"`
	PreviousPrice      float64 `json:"previousPrice"`
	PreviousSection    int     `json:"previousSection"`
	Price              float64 `json:"price"`
	Section            int     `json:"section"`
}

// Report exposes the false-negative surface of one extraction.
type Report struct {
	Sections               int              `json:"sections"`
	SectionsWithoutPrice   int              `json:"sectionsWithoutPrice"`
	SectionsWithoutTokens  int              `json:"sectionsWithoutTokens"`
	SectionsWithoutListing int              `json:"sectionsWithoutListing"`
	OrphanTokens           int              `json:"orphanTokens"`
	Overridden             int              `json:"overridden"`
	Skipped                []SkippedSection `json:"skipped,omitempty"`
	Overrides              []Override       `json:"overrides,omitempty"`
}

// Degraded reports whether any section or token was lost.
func (r Report) Degraded() bool {
	return r.SectionsWithoutPrice > 0 || r.SectionsWithoutTokens > 0 || r.OrphanTokens > 0
}

// Result is the outcome of parsing one document.
type Result struct {
	Rows   []PriceCeilingRow `json:"rows"`
	Report Report            `json:"report"`
}

// Rules are the patterns driving the parser.
type Rules struct {
	SectionHeader *regexp.Regexp
	Price         *regexp.Regexp
	ListingHeader *regexp.Regexp
	Token         *regexp.Regexp
	ValidFrom     *regexp.Regexp
	PriceWindow   int
}

// DefaultRules matches Staatscourant-style maximum price lists.
func DefaultRules() Rules {
	return Rules{
		SectionHeader: regexp.MustCompile(`(?i)^\s*(?:maximumprijs|maximumprijzen|maximum\s+prices?)\b`),
		Price:         regexp.MustCompile(`(?i)(?:€|eur)?\s*(?P<amount>[0-9][0-9.,]*)\s*(?:euro|eur|€)?\s+per\s+(?:(?P<qty>\d+)\s+)?(?P<unit>\p{L}+)`),
		ListingHeader: regexp.MustCompile(`(?i)(?:registratienummers?|rvg-nummers?|registration\s+numbers?)`),
		Token:         regexp.MustCompile(`(?i)\b(?:RVG[\s.-]*\d{3,6}(?:\s*//\s*\d{3,6})?|EU\s*/\s*\d+\s*/\s*\d+\s*/\s*\d+\s*/\s*\d+)\b`),
		ValidFrom:     regexp.MustCompile(`(?i)(?:met\s+ingang\s+van|geldig\s+vanaf|valid\s+from)\s+(\d{1,2}[-/. ](?:\d{1,2}|\p{L}+\.?)[-/. ]\d{4})`),
		PriceWindow:   DefaultPriceWindow,
	}
}

// Parser runs the staged extraction. It holds no mutable state.
type Parser struct {
	rules Rules
}

// NewParser builds a parser; zero fields of rules fall back to the defaults.
func NewParser(rules Rules) *Parser {
	def := DefaultRules()
	if rules.SectionHeader == nil {
		rules.SectionHeader = def.SectionHeader
	}
	if rules.Price == nil {
		rules.Price = def.Price
	}
	if rules.ListingHeader == nil {
		rules.ListingHeader = def.ListingHeader
	}
	if rules.Token == nil {
		rules.Token = def.Token
	}
	if rules.ValidFrom == nil {
		rules.ValidFrom = def.ValidFrom
	}
	if rules.PriceWindow <= 0 {
		rules.PriceWindow = def.PriceWindow
	}
	return &Parser{rules: rules}
}

// Parse runs the default parser over text.
func Parse(text string) Result {
	return NewParser(Rules{}).Parse(text)
}

// Parse splits text into sections, prices them, collects their registration
// numbers and de-duplicates globally with the last-seen price winning.
func (p *Parser) Parse(text string) Result {
	res := Result{Rows: []PriceCeilingRow{}}
	preamble, sections := p.Sections(text)
	res.Report.Sections = len(sections)
	res.Report.OrphanTokens += len(p.scanTokens(preamble))

	docValidFrom := p.validFrom(preamble)
	index := map[string]int{}

	for _, sec := range sections {
		switch outcome := p.FindPrice(sec).(type) {
		case NoPriceFound:
			res.Report.SectionsWithoutPrice++
			res.Report.OrphanTokens += len(p.scanTokens(sec.Lines))
			res.Report.Skipped = append(res.Report.Skipped, SkippedSection{Index: sec.Index, Heading: sec.Heading, Reason: outcome.Reason})

		case PriceFound:
			toks := p.Tokens(outcome)
			if !toks.ListingFound {
				res.Report.SectionsWithoutListing++
			}
			if len(toks.Tokens) == 0 {
				res.Report.SectionsWithoutTokens++
				res.Report.Skipped = append(res.Report.Skipped, SkippedSection{Index: sec.Index, Heading: sec.Heading, Reason: "no registration numbers"})
				continue
			}
			validFrom := outcome.ValidFrom
			if validFrom == "" {
				validFrom = docValidFrom
			}
			for _, tok := range toks.Tokens {
				row := PriceCeilingRow{
					RegistrationNumber: tok,
					UnitPriceEUR:       outcome.Amount,
					Unit:               outcome.Unit,
					ValidFrom:          validFrom,
					Section:            sec.Index,
				}
				if i, seen := index[tok]; seen {
					prev := res.Rows[i]
					res.Report.Overridden++
					res.Report.Overrides = append(res.Report.Overrides, Override{
						RegistrationNumber: tok,
						PreviousPrice:      prev.UnitPriceEUR,
						PreviousSection:    prev.Section,
						Price:              row.UnitPriceEUR,
						Section:            row.Section,
					})
					res.Rows[i] = row
					continue
				}
				index[tok] = len(res.Rows)
				res.Rows = append(res.Rows, row)
			}
		}
	}
	return res
}

// Sections splits text on section-header lines. Lines before the first header
// are returned as the preamble.
func (p *Parser) Sections(text string) ([]string, []SectionCandidate) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var preamble []string
	var out []SectionCandidate
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if p.rules.SectionHeader.MatchString(line) {
			out = append(out, SectionCandidate{Index: len(out) + 1, StartLine: i + 1, Heading: line})
			continue
		}
		if line == "" {
			continue
		}
		if len(out) == 0 {
			preamble = append(preamble, line)
			continue
		}
		out[len(out)-1].Lines = append(out[len(out)-1].Lines, line)
	}
	return preamble, out
}

// FindPrice searches the heading and the first PriceWindow lines of a section
// for "<amount> per [<quantity>] <unit>". A price per quantity is divided down
// to a unit price.
func (p *Parser) FindPrice(sec SectionCandidate) PriceOutcome {
	window := append([]string{sec.Heading}, sec.Lines...)
	if len(window) > p.rules.PriceWindow+1 {
		window = window[:p.rules.PriceWindow+1]
	}
	for i, line := range window {
		m := p.rules.Price.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, ok := numparse.ParseDecimal(p.group(m, "amount", 1))
		if !ok || !amount.IsPositive() {
			continue
		}
		qty := 1
		if q, err := strconv.Atoi(p.group(m, "qty", -1)); err == nil && q > 0 {
			qty = q
			amount = amount.Div(decimal.NewFromInt(int64(q)))
		}
		return PriceFound{
			Section:   sec,
			Amount:    amount.InexactFloat64(),
			Unit:      strings.ToLower(p.group(m, "unit", len(m)-1)),
			Quantity:  qty,
			Line:      i,
			ValidFrom: p.validFrom(window),
		}
	}
	return NoPriceFound{Section: sec, Reason: fmt.Sprintf("no \"<amount> per <unit>\" in the first %d lines", p.rules.PriceWindow)}
}

// group returns the named submatch of the price rule, or the positional one
// for custom rules without names. A negative fallback means optional.
func (p *Parser) group(m []string, name string, fallback int) string {
	if i := p.rules.Price.SubexpIndex(name); i >= 0 {
		return m[i]
	}
	if fallback < 0 || fallback >= len(m) {
		return ""
	}
	return m[fallback]
}

// Tokens collects the registration numbers listed after the listing
// sub-header of a priced section.
func (p *Parser) Tokens(found PriceFound) RegistrationTokens {
	lines := found.Section.Lines
	start := -1
	for i, line := range lines {
		if p.rules.ListingHeader.MatchString(line) {
			start = i
			break
		}
	}
	out := RegistrationTokens{Price: found, ListingFound: start >= 0}
	if start < 0 {
		// the heading is line 0 of the price window
		start = found.Line - 1
		if start < 0 {
			start = 0
		}
	}
	out.Tokens = p.scanTokens(lines[start:])
	return out
}

// scanTokens returns the distinct normalized tokens in lines, in order.
func (p *Parser) scanTokens(lines []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, line := range lines {
		for _, raw := range p.rules.Token.FindAllString(line, -1) {
			tok := NormalizeRegistration(raw)
			if tok == "" || seen[tok] {
				continue
			}
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

func (p *Parser) validFrom(lines []string) string {
	for _, line := range lines {
		if m := p.rules.ValidFrom.FindStringSubmatch(line); m != nil {
			if d, ok := parseDate(m[1]); ok {
				return d
			}
		}
	}
	return ""
}

var reDate = regexp.MustCompile(`^(\d{1,2})[-/. ](\d{1,2}|\p{L}+\.?)[-/. ](\d{4})$`)

// parseDate reads "1 januari 2025", "01-01-2025" or "1.1.2025" into ISO form.
func parseDate(s string) (string, bool) {
	m := reDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	month, err := strconv.Atoi(m[2])
	if err != nil {
		mon, ok := period.MonthNumber(m[2])
		if !ok {
			return "", false
		}
		month = mon
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// NormalizeRegistration uppercases a registration number and strips
// whitespace and punctuation. The slash of EU numbers is kept.
func NormalizeRegistration(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '/' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
