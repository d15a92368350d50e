// Package access answers one question for the HTTP layer: who is calling and
// does their account carry an active subscription. Identity and billing live
// in external systems; this package only reads their outcome.
package access

import (
	"context"
	"net/http"
	"strings"
	"time"

	"GtnPortal/internal/apperr"
)

// SessionCookie is the cookie consulted when no bearer token is sent.
const SessionCookie = "gtn_session"

var (
	ErrUnauthenticated = apperr.New(apperr.KindUnauthorized, "not authenticated")
	ErrNoSubscription  = apperr.New(apperr.KindForbidden, "no active subscription")
)

// Identity is the authenticated caller.
type Identity struct {
	UserID             string     `json:"userId"`
	Email              string     `json:"email"`
	SubscriptionActive bool       `json:"subscriptionActive"`
	SubscriptionEnds   *time.Time `json:"subscriptionEnds,omitempty"`
}

// Provider resolves a session token. It returns ErrUnauthenticated for an
// unknown or expired token; an inactive subscription is not an error.
type Provider interface {
	Lookup(ctx context.Context, token string) (*Identity, error)
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by the access middleware, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}

// TokenFromRequest reads "Authorization: Bearer <token>" or the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// Authorize looks the token up and requires an active subscription.
func Authorize(ctx context.Context, p Provider, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	id, err := p.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if !id.SubscriptionActive {
		return id, ErrNoSubscription
	}
	return id, nil
}
