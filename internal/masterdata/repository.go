// Package masterdata stores product, customer and price-ceiling master records
// behind a get-all / replace-all repository keyed by record kind.
package masterdata

import (
	"context"
	"encoding/json"
	"strings"

	"GtnPortal/internal/apperr"
	"GtnPortal/internal/pricelist"
)

// Kind is a master record type.
type Kind string

const (
	KindProducts      Kind = "products"
	KindCustomers     Kind = "customers"
	KindPriceCeilings Kind = "price_ceilings"
)

// Kinds lists every supported record kind.
var Kinds = []Kind{KindProducts, KindCustomers, KindPriceCeilings}

// ParseKind validates a kind taken from a URL or flag.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", apperr.Newf(apperr.KindNotFound, "unknown master record kind %q", s)
}

// Repository is the storage capability the pipeline depends on. Records are
// opaque JSON documents; ReplaceAll swaps the whole set of a kind atomically.
type Repository interface {
	GetAll(ctx context.Context, kind Kind) ([]json.RawMessage, error)
	ReplaceAll(ctx context.Context, kind Kind, records []json.RawMessage) error
}

// Customer is a customer master record.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Channel string `json:"channel,omitempty"`
}

// Load decodes every record of kind into T.
func Load[T any](ctx context.Context, repo Repository, kind Kind) ([]T, error) {
	raw, err := repo.GetAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, apperr.Wrapf(apperr.KindInternal, err, "decode %s record %d", kind, i)
		}
		out = append(out, v)
	}
	return out, nil
}

// Store encodes items and replaces every record of kind with them.
func Store[T any](ctx context.Context, repo Repository, kind Kind, items []T) error {
	raw := make([]json.RawMessage, 0, len(items))
	for i, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return apperr.Wrapf(apperr.KindInput, err, "encode %s record %d", kind, i)
		}
		raw = append(raw, b)
	}
	return repo.ReplaceAll(ctx, kind, raw)
}

// Products returns the product price master.
func Products(ctx context.Context, repo Repository) ([]pricelist.Product, error) {
	return Load[pricelist.Product](ctx, repo, KindProducts)
}

// Ceilings returns the stored government price ceilings.
func Ceilings(ctx context.Context, repo Repository) ([]pricelist.PriceCeilingRow, error) {
	return Load[pricelist.PriceCeilingRow](ctx, repo, KindPriceCeilings)
}

// SaveCeilings replaces the stored price ceilings.
func SaveCeilings(ctx context.Context, repo Repository, rows []pricelist.PriceCeilingRow) error {
	return Store(ctx, repo, KindPriceCeilings, rows)
}

// Validate checks that every record is a JSON object.
func Validate(records []json.RawMessage) error {
	for i, r := range records {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(r, &obj); err != nil {
			return apperr.Wrapf(apperr.KindInput, err, "record %d is not a JSON object", i)
		}
	}
	return nil
}
