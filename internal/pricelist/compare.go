package pricelist

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Product is a line of the caller's own price master.
type Product struct {
	SKU                string  `json:"sku" csv:"sku"`
	Name               string  `json:"name" csv:"name"`
	RegistrationNumber string  `json:"registrationNumber" csv:"registration_number"`
	UnitPrice          float64 `json:"unitPrice" csv:"unit_price"`
}

// Comparison joins one product with its ceiling.
type Comparison struct {
	SKU                string   `json:"sku" csv:"sku"`
	Name               string   `json:"name" csv:"name"`
	RegistrationNumber string   `json:"registrationNumber" csv:"registration_number"`
	UnitPrice          float64  `json:"unitPrice" csv:"unit_price"`
	Ceiling            float64  `json:"ceiling" csv:"ceiling"`
	Excess             float64  `json:"excess" csv:"excess"`
	ExcessPct          *float64 `json:"excessPct" csv:"-"`
	AboveCeiling       bool     `json:"aboveCeiling" csv:"above_ceiling"`
	ValidFrom          string   `json:"validFrom,omitempty" csv:"valid_from"`
}

// CompareResult lists matched products (those above the ceiling first) and the
// products without a ceiling.
type CompareResult struct {
	Matched      []Comparison `json:"matched"`
	Unmatched    []Product    `json:"unmatched"`
	AboveCeiling int          `json:"aboveCeiling"`
}

// comparePlaces drops float noise while keeping sub-cent unit prices.
const comparePlaces = 6

// Compare joins products with ceilings on the normalized registration number
// and flags every product priced above its ceiling. Prices are compared at
// full precision since unit ceilings often go below a cent.
func Compare(ceilings []PriceCeilingRow, products []Product) CompareResult {
	byReg := make(map[string]PriceCeilingRow, len(ceilings))
	for _, c := range ceilings {
		byReg[NormalizeRegistration(c.RegistrationNumber)] = c
	}

	out := CompareResult{Matched: []Comparison{}, Unmatched: []Product{}}
	for _, p := range products {
		c, ok := byReg[NormalizeRegistration(p.RegistrationNumber)]
		if !ok {
			out.Unmatched = append(out.Unmatched, p)
			continue
		}
		ceiling := decimal.NewFromFloat(c.UnitPriceEUR)
		excess := decimal.NewFromFloat(p.UnitPrice).Sub(ceiling).Round(comparePlaces)

		cmp := Comparison{
			SKU:                p.SKU,
			Name:               p.Name,
			RegistrationNumber: c.RegistrationNumber,
			UnitPrice:          p.UnitPrice,
			Ceiling:            c.UnitPriceEUR,
			Excess:             excess.InexactFloat64(),
			AboveCeiling:       excess.IsPositive(),
			ValidFrom:          c.ValidFrom,
		}
		if !ceiling.IsZero() {
			pct := excess.Div(ceiling).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
			cmp.ExcessPct = &pct
		}
		if cmp.AboveCeiling {
			out.AboveCeiling++
		}
		out.Matched = append(out.Matched, cmp)
	}

	sort.SliceStable(out.Matched, func(i, j int) bool {
		return out.Matched[i].Excess > out.Matched[j].Excess
	})
	return out
}
