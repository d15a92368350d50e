package normalize

import (
	h "GtnPortal/internal/headers"
)

// CanonicalRow is one observation for a (product group, sku, customer, period)
// tuple. Discount and rebate components are never negative.
type CanonicalRow struct {
	Line int `json:"line" csv:"line"`

	ProductGroup string `json:"productGroup" csv:"product_group"`
	SKU          string `json:"sku" csv:"sku"`
	Customer     string `json:"customer" csv:"customer"`
	Period       string `json:"period" csv:"period"`
	PeriodKind   string `json:"periodKind" csv:"period_kind"`
	PeriodOrder  int    `json:"periodOrder" csv:"-"`

	Gross float64 `json:"gross" csv:"gross"`

	DiscountChannel    float64 `json:"discountChannel" csv:"discount_channel"`
	DiscountCustomer   float64 `json:"discountCustomer" csv:"discount_customer"`
	DiscountProduct    float64 `json:"discountProduct" csv:"discount_product"`
	DiscountVolume     float64 `json:"discountVolume" csv:"discount_volume"`
	DiscountValue      float64 `json:"discountValue" csv:"discount_value"`
	DiscountOtherSales float64 `json:"discountOtherSales" csv:"discount_other_sales"`
	DiscountMandatory  float64 `json:"discountMandatory" csv:"discount_mandatory"`
	DiscountLocal      float64 `json:"discountLocal" csv:"discount_local"`

	Invoiced float64 `json:"invoiced" csv:"invoiced"`

	RebateDirect    float64 `json:"rebateDirect" csv:"rebate_direct"`
	RebatePrompt    float64 `json:"rebatePrompt" csv:"rebate_prompt"`
	RebateIndirect  float64 `json:"rebateIndirect" csv:"rebate_indirect"`
	RebateMandatory float64 `json:"rebateMandatory" csv:"rebate_mandatory"`
	RebateLocal     float64 `json:"rebateLocal" csv:"rebate_local"`

	IncomeRoyalty float64 `json:"incomeRoyalty" csv:"income_royalty"`
	IncomeOther   float64 `json:"incomeOther" csv:"income_other"`

	Net float64 `json:"net" csv:"net"`

	Units       float64 `json:"units" csv:"units"`
	ClaimAmount float64 `json:"claimAmount" csv:"claim_amount"`
}

// TotalDiscounts sums the eight discount components.
func (r CanonicalRow) TotalDiscounts() float64 {
	return r.DiscountChannel + r.DiscountCustomer + r.DiscountProduct + r.DiscountVolume +
		r.DiscountValue + r.DiscountOtherSales + r.DiscountMandatory + r.DiscountLocal
}

// TotalRebates sums the five rebate components.
func (r CanonicalRow) TotalRebates() float64 {
	return r.RebateDirect + r.RebatePrompt + r.RebateIndirect + r.RebateMandatory + r.RebateLocal
}

// TotalIncomes sums the two income components.
func (r CanonicalRow) TotalIncomes() float64 {
	return r.IncomeRoyalty + r.IncomeOther
}

// Amount returns a numeric field by canonical name.
func (r CanonicalRow) Amount(field string) float64 {
	if p := r.amountPtr(field); p != nil {
		return *p
	}
	return 0
}

// amountPtr exposes the numeric fields by canonical name so the normalizer can
// fill them from the header map.
func (r *CanonicalRow) amountPtr(field string) *float64 {
	switch field {
	case h.FieldGross:
		return &r.Gross
	case h.FieldDiscountChannel:
		return &r.DiscountChannel
	case h.FieldDiscountCustomer:
		return &r.DiscountCustomer
	case h.FieldDiscountProduct:
		return &r.DiscountProduct
	case h.FieldDiscountVolume:
		return &r.DiscountVolume
	case h.FieldDiscountValue:
		return &r.DiscountValue
	case h.FieldDiscountOtherSales:
		return &r.DiscountOtherSales
	case h.FieldDiscountMandatory:
		return &r.DiscountMandatory
	case h.FieldDiscountLocal:
		return &r.DiscountLocal
	case h.FieldInvoiced:
		return &r.Invoiced
	case h.FieldRebateDirect:
		return &r.RebateDirect
	case h.FieldRebatePrompt:
		return &r.RebatePrompt
	case h.FieldRebateIndirect:
		return &r.RebateIndirect
	case h.FieldRebateMandatory:
		return &r.RebateMandatory
	case h.FieldRebateLocal:
		return &r.RebateLocal
	case h.FieldIncomeRoyalty:
		return &r.IncomeRoyalty
	case h.FieldIncomeOther:
		return &r.IncomeOther
	case h.FieldNet:
		return &r.Net
	case h.FieldUnits:
		return &r.Units
	case h.FieldClaimAmount:
		return &r.ClaimAmount
	}
	return nil
}

func (r *CanonicalRow) textPtr(field string) *string {
	switch field {
	case h.FieldProductGroup:
		return &r.ProductGroup
	case h.FieldSKU:
		return &r.SKU
	case h.FieldCustomer:
		return &r.Customer
	}
	return nil
}

// nonNegative lists the fields whose sign is corrected on input.
var nonNegative = concat(h.DiscountFields, h.RebateFields)

func isNonNegative(field string) bool {
	for _, f := range nonNegative {
		if f == field {
			return true
		}
	}
	return false
}
