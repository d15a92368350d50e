package middlewares

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"GtnPortal/api"
	"GtnPortal/api/constants"
	"GtnPortal/internal/access"
	"GtnPortal/internal/logger"
)

// RequireSubscription rejects callers without a session (401) or without an
// active subscription (403). The identity is stored on the request context.
func RequireSubscription(p access.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := access.Authorize(r.Context(), p, access.TokenFromRequest(r))
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(access.WithIdentity(r.Context(), id)))
			case errors.Is(err, access.ErrNoSubscription):
				logger.L().Info("subscription required", zap.String("user_id", id.UserID), zap.String("path", r.URL.Path))
				api.RespondWithError(w, http.StatusForbidden, constants.ErrNoSubscription)
			case errors.Is(err, access.ErrUnauthenticated):
				api.RespondWithError(w, http.StatusUnauthorized, constants.ErrPleaseLogin)
			default:
				api.RespondWithAppError(w, err)
			}
		})
	}
}
