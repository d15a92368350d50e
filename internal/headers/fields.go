package headers

// Canonical field names. They double as the JSON keys of the canonical row.
const (
	FieldProductGroup = "product_group"
	FieldSKU          = "sku"
	FieldCustomer     = "customer"
	FieldPeriod       = "period"
	FieldGross        = "gross"

	FieldDiscountChannel    = "discount_channel"
	FieldDiscountCustomer   = "discount_customer"
	FieldDiscountProduct    = "discount_product"
	FieldDiscountVolume     = "discount_volume"
	FieldDiscountValue      = "discount_value"
	FieldDiscountOtherSales = "discount_other_sales"
	FieldDiscountMandatory  = "discount_mandatory"
	FieldDiscountLocal      = "discount_local"

	FieldInvoiced = "invoiced"

	FieldRebateDirect    = "rebate_direct"
	FieldRebatePrompt    = "rebate_prompt"
	FieldRebateIndirect  = "rebate_indirect"
	FieldRebateMandatory = "rebate_mandatory"
	FieldRebateLocal     = "rebate_local"

	FieldIncomeRoyalty = "income_royalty"
	FieldIncomeOther   = "income_other"

	FieldNet = "net"

	FieldUnits       = "units"
	FieldClaimAmount = "claim_amount"
)

// DiscountFields lists the eight discount components in waterfall order.
var DiscountFields = []string{
	FieldDiscountChannel,
	FieldDiscountCustomer,
	FieldDiscountProduct,
	FieldDiscountVolume,
	FieldDiscountValue,
	FieldDiscountOtherSales,
	FieldDiscountMandatory,
	FieldDiscountLocal,
}

// RebateFields lists the five rebate components in waterfall order.
var RebateFields = []string{
	FieldRebateDirect,
	FieldRebatePrompt,
	FieldRebateIndirect,
	FieldRebateMandatory,
	FieldRebateLocal,
}

// IncomeFields lists the two income components.
var IncomeFields = []string{
	FieldIncomeRoyalty,
	FieldIncomeOther,
}

// defaultAliases holds the known Dutch and English synonyms per field. Every
// alias is unique across fields and never equals another field's name.
var defaultAliases = map[string][]string{
	FieldProductGroup: {"productgroep", "product family", "productfamilie", "merk", "brand", "therapeutisch gebied", "therapeutic area"},
	FieldSKU:          {"artikel", "artikelnummer", "artikelnr", "article", "article number", "product code", "productcode", "zi nummer", "material", "materiaal", "gtin", "ean"},
	FieldCustomer:     {"klant", "klantnaam", "account", "customer name", "debiteur", "afnemer", "groothandel", "wholesaler", "contractpartij"},
	FieldPeriod:       {"periode", "maand", "month", "kwartaal", "quarter", "boekperiode", "posting period", "datum", "date"},
	FieldGross:        {"bruto", "bruto omzet", "gross sales", "gross revenue", "gross amount", "omzet", "revenue", "sales", "turnover", "aip omzet"},

	FieldDiscountChannel:    {"kanaalkorting", "channel discount"},
	FieldDiscountCustomer:   {"klantkorting", "customer discount"},
	FieldDiscountProduct:    {"productkorting", "product discount"},
	FieldDiscountVolume:     {"volumekorting", "staffelkorting", "volume discount"},
	FieldDiscountValue:      {"waardekorting", "value discount"},
	FieldDiscountOtherSales: {"overige verkoopkorting", "overige kortingen", "other sales discount", "other discount"},
	FieldDiscountMandatory:  {"verplichte korting", "wettelijke korting", "mandatory discount"},
	FieldDiscountLocal:      {"lokale korting", "local discount"},

	FieldInvoiced: {"gefactureerd", "factuuromzet", "gefactureerde omzet", "invoiced sales", "invoiced amount", "invoice amount"},

	FieldRebateDirect:    {"directe rebate", "directe bonus", "direct rebate"},
	FieldRebatePrompt:    {"betalingskorting", "prompt payment", "prompt payment rebate"},
	FieldRebateIndirect:  {"indirecte rebate", "indirecte bonus", "indirect rebate"},
	FieldRebateMandatory: {"verplichte rebate", "mandatory rebate", "clawback"},
	FieldRebateLocal:     {"lokale rebate", "local rebate"},

	FieldIncomeRoyalty: {"royalty", "royalties", "royalty income", "royalty inkomsten"},
	FieldIncomeOther:   {"overige inkomsten", "other income"},

	FieldNet: {"netto", "netto omzet", "net sales", "net revenue", "net amount"},

	FieldUnits:       {"aantal", "aantal units", "stuks", "quantity", "qty", "hoeveelheid", "volume"},
	FieldClaimAmount: {"claimbedrag", "claim", "claims", "claimed amount", "declaratiebedrag"},
}

// DefaultAliases returns a copy of the built-in alias table.
func DefaultAliases() map[string][]string {
	out := make(map[string][]string, len(defaultAliases))
	for field, list := range defaultAliases {
		out[field] = append([]string(nil), list...)
	}
	return out
}
