package masterdata

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GtnPortal/internal/apperr"
	"GtnPortal/internal/pricelist"
)

func exerciseRepository(t *testing.T, repo Repository) {
	ctx := context.Background()

	got, err := repo.GetAll(ctx, KindProducts)
	require.NoError(t, err)
	assert.Empty(t, got)

	products := []pricelist.Product{
		{SKU: "A-1", Name: "Metoprolol 50mg", RegistrationNumber: "RVG12345", UnitPrice: 1.35},
		{SKU: "B-2", Name: "Metoprolol 100mg", RegistrationNumber: "RVG23456", UnitPrice: 1.99},
	}
	require.NoError(t, Store(ctx, repo, KindProducts, products))

	loaded, err := Products(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, products, loaded)

	require.NoError(t, Store(ctx, repo, KindProducts, products[1:]))
	loaded, err = Products(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, products[1:], loaded, "replace-all drops the old set")

	ceilings := []pricelist.PriceCeilingRow{{RegistrationNumber: "RVG12345", UnitPriceEUR: 1.2, ValidFrom: "2025-04-01", Section: 3}}
	require.NoError(t, SaveCeilings(ctx, repo, ceilings))
	gotCeilings, err := Ceilings(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, ceilings, gotCeilings)

	loaded, err = Products(ctx, repo)
	require.NoError(t, err)
	assert.Len(t, loaded, 1, "kinds are independent")

	err = repo.ReplaceAll(ctx, KindCustomers, []json.RawMessage{json.RawMessage(`[1,2]`)})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInput, apperr.KindOf(err))
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.ReplaceAll(ctx, KindCustomers, []json.RawMessage{json.RawMessage(`{"id":"1"}`)}))

	got, err := repo.GetAll(ctx, KindCustomers)
	require.NoError(t, err)
	got[0][2] = 'X'

	again, err := repo.GetAll(ctx, KindCustomers)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(again[0]))
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("GTN_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("GTN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewPostgresRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	for _, k := range Kinds {
		require.NoError(t, repo.ReplaceAll(ctx, k, nil))
	}
	exerciseRepository(t, repo)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Products ")
	require.NoError(t, err)
	assert.Equal(t, KindProducts, k)

	_, err = ParseKind("invoices")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
