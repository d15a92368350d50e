package pricelists

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"GtnPortal/api"
	"GtnPortal/api/constants"
	"GtnPortal/internal/apperr"
	"GtnPortal/internal/export"
	"GtnPortal/internal/ingest"
	"GtnPortal/internal/logger"
	"GtnPortal/internal/masterdata"
	"GtnPortal/internal/pricelist"
)

// ParsePriceList handles POST /pricelist/parse. With save=true the parsed
// ceilings replace the stored ones; with format=csv|xlsx they are returned as
// a file.
func ParsePriceList(svc *ingest.Service, repo masterdata.Repository, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := api.ReadUpload(w, r, maxBytes)
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		up, err := svc.ParsePriceList(file.Name, file.Data)
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		logger.Audit("price list parsed",
			zap.String("batch_id", up.BatchID.String()),
			zap.String("file", up.FileName),
			zap.Int("rows", len(up.Rows)),
			zap.Int("sections", up.Report.Sections),
			zap.Bool("degraded", up.Report.Degraded()),
		)

		if save, _ := strconv.ParseBool(r.FormValue(constants.FormSave)); save {
			if len(up.Rows) == 0 {
				api.RespondWithAppError(w, apperr.New(apperr.KindEmptyInput, "price list produced no ceilings; nothing saved"))
				return
			}
			if err := masterdata.SaveCeilings(r.Context(), repo, up.Rows); err != nil {
				api.RespondWithAppError(w, err)
				return
			}
			logger.Audit("price ceilings replaced", zap.String("batch_id", up.BatchID.String()), zap.Int("rows", len(up.Rows)))
		}

		if f := r.FormValue(constants.FormFormat); f != "" {
			format, err := export.ParseFormat(f)
			if err != nil {
				api.RespondWithAppError(w, err)
				return
			}
			var buf bytes.Buffer
			if err := export.Ceilings(&buf, format, up.Rows); err != nil {
				api.RespondWithAppError(w, err)
				return
			}
			api.RespondWithFile(w, "price_ceilings"+format.Ext(), format.ContentType(), buf.Bytes())
			return
		}
		api.RespondWithPayload(w, true, "", up)
	}
}

type compareRequest struct {
	Products []pricelist.Product `json:"products"`
}

// ComparePrices handles POST /pricelist/compare. Products come from the body
// or, when it is empty, from the stored product master.
func ComparePrices(repo masterdata.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		var products []pricelist.Product
		if len(bytes.TrimSpace(body)) > 0 {
			var req compareRequest
			r.Body = io.NopCloser(bytes.NewReader(body))
			if err := api.DecodeJSON(r, &req); err != nil {
				api.RespondWithAppError(w, err)
				return
			}
			products = req.Products
		} else if products, err = masterdata.Products(r.Context(), repo); err != nil {
			api.RespondWithAppError(w, err)
			return
		}

		ceilings, err := masterdata.Ceilings(r.Context(), repo)
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		if len(ceilings) == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrNoCeilings)
			return
		}

		res := pricelist.Compare(ceilings, products)
		if f := r.URL.Query().Get(constants.FormFormat); f != "" {
			format, err := export.ParseFormat(f)
			if err != nil {
				api.RespondWithAppError(w, err)
				return
			}
			var buf bytes.Buffer
			if err := export.Comparisons(&buf, format, res); err != nil {
				api.RespondWithAppError(w, err)
				return
			}
			api.RespondWithFile(w, "price_comparison"+format.Ext(), format.ContentType(), buf.Bytes())
			return
		}
		api.RespondWithPayload(w, true, "", res)
	}
}
