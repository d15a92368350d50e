package normalize

import (
	"strings"

	"GtnPortal/internal/apperr"
	h "GtnPortal/internal/headers"
)

// Schema names the canonical fields an upload is expected to carry.
//
// Core fields gate the whole batch. Full fields default to zero with a warning
// when absent. Optional fields default silently.
type Schema struct {
	Name     string   `json:"name"`
	Core     []string `json:"core"`
	Full     []string `json:"full"`
	Optional []string `json:"optional,omitempty"`
}

// GTN is the full gross-to-net schema: identity, gross, eight discounts,
// invoiced, five rebates, two incomes and net.
var GTN = Schema{
	Name: "gtn",
	Core: []string{h.FieldProductGroup, h.FieldSKU, h.FieldCustomer, h.FieldPeriod, h.FieldGross},
	Full: concat(
		h.DiscountFields,
		[]string{h.FieldInvoiced},
		h.RebateFields,
		h.IncomeFields,
		[]string{h.FieldNet},
	),
	Optional: []string{h.FieldUnits, h.FieldClaimAmount},
}

// Contracts is the narrower schema used by contract performance analysis.
var Contracts = Schema{
	Name:     "contracts",
	Core:     []string{h.FieldCustomer, h.FieldPeriod, h.FieldGross},
	Full:     []string{h.FieldSKU, h.FieldUnits, h.FieldClaimAmount},
	Optional: []string{h.FieldProductGroup},
}

// Fields returns every field of the schema in resolution order.
func (s Schema) Fields() []string {
	return concat(s.Core, s.Full, s.Optional)
}

// IsCore reports whether field gates the batch.
func (s Schema) IsCore(field string) bool {
	for _, f := range s.Core {
		if f == field {
			return true
		}
	}
	return false
}

// SchemaByName looks up a schema; an empty name selects GTN.
func SchemaByName(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", GTN.Name:
		return GTN, nil
	case Contracts.Name:
		return Contracts, nil
	default:
		return Schema{}, apperr.Newf(apperr.KindInput, "unknown schema %q", name)
	}
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
