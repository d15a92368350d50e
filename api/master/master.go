package master

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"GtnPortal/api"
	"GtnPortal/internal/access"
	"GtnPortal/internal/logger"
	"GtnPortal/internal/masterdata"
)

// GetMasterRecords handles GET /master/{kind}.
func GetMasterRecords(repo masterdata.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := masterdata.ParseKind(mux.Vars(r)["kind"])
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		records, err := repo.GetAll(r.Context(), kind)
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", records)
	}
}

// ReplaceMasterRecords handles PUT /master/{kind}. The body is a JSON array
// of objects that replaces the stored set.
func ReplaceMasterRecords(repo masterdata.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := masterdata.ParseKind(mux.Vars(r)["kind"])
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		var records []json.RawMessage
		if err := api.DecodeJSON(r, &records); err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		if err := masterdata.Validate(records); err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		if err := repo.ReplaceAll(r.Context(), kind, records); err != nil {
			api.RespondWithAppError(w, err)
			return
		}

		var userID string
		if id, ok := access.FromContext(r.Context()); ok {
			userID = id.UserID
		}
		logger.Audit("master records replaced", zap.String("kind", string(kind)), zap.Int("count", len(records)), zap.String("user_id", userID))
		api.RespondWithPayload(w, true, "", map[string]interface{}{"kind": kind, "count": len(records)})
	}
}
