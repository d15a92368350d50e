package gateway

import (
	"net/http"

	"github.com/gorilla/mux"

	"GtnPortal/api"
	"GtnPortal/api/master"
	"GtnPortal/api/middlewares"
	"GtnPortal/api/pricelists"
	"GtnPortal/api/uploads"
	"GtnPortal/internal/access"
	"GtnPortal/internal/ingest"
	"GtnPortal/internal/masterdata"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Ingest         *ingest.Service
	Repo           masterdata.Repository
	Access         access.Provider
	MaxUploadBytes int64
}

// NewRouter wires every route. Everything except /health requires an active
// subscription.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger)
	guard := middlewares.RequireSubscription(d.Access)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithPayload(w, true, "", map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.Handle("/ingest/normalize", guard(uploads.NormalizeUpload(d.Ingest, d.MaxUploadBytes))).Methods(http.MethodPost)
	router.Handle("/ingest/aggregate", guard(uploads.AggregateUpload(d.Ingest, d.MaxUploadBytes))).Methods(http.MethodPost)
	router.Handle("/ingest/export", guard(uploads.ExportUpload(d.Ingest, d.MaxUploadBytes))).Methods(http.MethodPost)

	router.Handle("/pricelist/parse", guard(pricelists.ParsePriceList(d.Ingest, d.Repo, d.MaxUploadBytes))).Methods(http.MethodPost)
	router.Handle("/pricelist/compare", guard(pricelists.ComparePrices(d.Repo))).Methods(http.MethodPost)

	router.Handle("/master/{kind}", guard(master.GetMasterRecords(d.Repo))).Methods(http.MethodGet)
	router.Handle("/master/{kind}", guard(master.ReplaceMasterRecords(d.Repo))).Methods(http.MethodPut)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithError(w, http.StatusNotFound, "route not found: "+r.URL.Path)
	})
	return router
}
