package masterdata

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"GtnPortal/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS master_records (
	kind       TEXT        NOT NULL,
	position   INTEGER     NOT NULL,
	payload    JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, position)
)`

// PostgresRepository stores records in the master_records table, one row per
// record, ordered by position.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the master_records table when missing.
func (p *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return apperr.Wrap(apperr.KindInternal, "create master_records", err)
	}
	return nil
}

func (p *PostgresRepository) GetAll(ctx context.Context, kind Kind) ([]json.RawMessage, error) {
	rows, err := p.pool.Query(ctx, `SELECT payload FROM master_records WHERE kind = $1 ORDER BY position`, string(kind))
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, err, "query %s", kind)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, apperr.Wrapf(apperr.KindInternal, err, "scan %s", kind)
		}
		out = append(out, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, err, "read %s", kind)
	}
	return out, nil
}

// ReplaceAll deletes the current records of kind and copies the new set in,
// inside one transaction.
func (p *PostgresRepository) ReplaceAll(ctx context.Context, kind Kind, records []json.RawMessage) error {
	if err := Validate(records); err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM master_records WHERE kind = $1`, string(kind)); err != nil {
		return apperr.Wrapf(apperr.KindInternal, err, "clear %s", kind)
	}

	copyRows := make([][]interface{}, len(records))
	for i, r := range records {
		copyRows[i] = []interface{}{string(kind), i, []byte(r)}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"master_records"}, []string{"kind", "position", "payload"}, pgx.CopyFromRows(copyRows)); err != nil {
		return apperr.Wrapf(apperr.KindInternal, err, "copy %s", kind)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Wrap(apperr.KindInternal, "commit", err)
	}
	committed = true
	return nil
}
