package access

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"GtnPortal/internal/apperr"
)

// SQLProvider reads sessions and subscription state from the identity
// database. The billing webhook keeps subscriptions.status current.
type SQLProvider struct {
	db *sql.DB
}

func NewSQLProvider(db *sql.DB) *SQLProvider {
	return &SQLProvider{db: db}
}

const lookupQuery = `
	SELECT
		u.id,
		u.email,
		COALESCE(s.status = 'active' AND (s.current_period_end IS NULL OR s.current_period_end > now()), false),
		s.current_period_end
	FROM sessions se
	JOIN users u ON u.id = se.user_id
	LEFT JOIN subscriptions s ON s.user_id = u.id
	WHERE se.token = $1 AND se.expires_at > now()
	ORDER BY s.current_period_end DESC NULLS LAST
	LIMIT 1
`

func (p *SQLProvider) Lookup(ctx context.Context, token string) (*Identity, error) {
	var (
		id   Identity
		ends sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, lookupQuery, token).Scan(&id.UserID, &id.Email, &id.SubscriptionActive, &ends)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "session lookup failed", err)
	}
	if ends.Valid {
		t := ends.Time.In(time.UTC)
		id.SubscriptionEnds = &t
	}
	return &id, nil
}
