package uploads

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"GtnPortal/api"
	"GtnPortal/api/constants"
	"GtnPortal/internal/aggregate"
	"GtnPortal/internal/apperr"
	"GtnPortal/internal/export"
	"GtnPortal/internal/ingest"
	"GtnPortal/internal/logger"
	"GtnPortal/internal/normalize"
)

type normalizeResponse struct {
	*ingest.Upload
	Waterfall []aggregate.Step `json:"waterfall,omitempty"`
}

type aggregateResponse struct {
	BatchID string                     `json:"batchId"`
	Report  normalize.ValidationReport `json:"report"`
	Result  *aggregate.Result          `json:"result,omitempty"`
}

// NormalizeUpload handles POST /ingest/normalize.
func NormalizeUpload(svc *ingest.Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, ok := readAndNormalize(w, r, svc, maxBytes, schemaOf(normalize.GTN))
		if !ok {
			return
		}
		resp := normalizeResponse{Upload: up}
		if up.Schema == normalize.GTN.Name && len(up.Rows) > 0 {
			resp.Waterfall = aggregate.Waterfall(up.Rows)
		}
		api.RespondWithPayload(w, up.Report.OK(), failure(up), resp)
	}
}

// AggregateUpload handles POST /ingest/aggregate.
func AggregateUpload(svc *ingest.Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, ok := readAndNormalize(w, r, svc, maxBytes, schemaOf(normalize.Contracts))
		if !ok {
			return
		}
		resp := aggregateResponse{BatchID: up.BatchID.String(), Report: up.Report}
		if !up.Report.OK() {
			api.RespondWithPayload(w, false, constants.ErrSchemaValidation, resp)
			return
		}
		opts, err := aggregateOptions(r)
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		res, err := aggregate.Aggregate(up.Rows, opts)
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		resp.Result = &res
		api.RespondWithPayload(w, true, "", resp)
	}
}

// ExportUpload handles POST /ingest/export: it normalizes the upload and
// returns the requested dataset as a file.
func ExportUpload(svc *ingest.Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, ok := readAndNormalize(w, r, svc, maxBytes, func(r *http.Request) normalize.Schema {
			if datasetOf(r) == constants.DatasetAggregates {
				return normalize.Contracts
			}
			return normalize.GTN
		})
		if !ok {
			return
		}
		dataset := datasetOf(r)
		if !up.Report.OK() {
			api.RespondWithPayload(w, false, constants.ErrSchemaValidation, up.Report)
			return
		}
		format, err := export.ParseFormat(r.FormValue(constants.FormFormat))
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}

		var buf bytes.Buffer
		switch dataset {
		case "", constants.DatasetRows:
			dataset = constants.DatasetRows
			err = export.Rows(&buf, format, up.Rows)
		case constants.DatasetWaterfall:
			err = export.Waterfall(&buf, format, aggregate.Waterfall(up.Rows))
		case constants.DatasetAggregates:
			var opts aggregate.Options
			if opts, err = aggregateOptions(r); err == nil {
				var res aggregate.Result
				if res, err = aggregate.Aggregate(up.Rows, opts); err == nil {
					err = export.Aggregates(&buf, format, res)
				}
			}
		default:
			err = apperr.Newf(apperr.KindInput, "%s %q", constants.ErrUnknownDataset, dataset)
		}
		if err != nil {
			api.RespondWithAppError(w, err)
			return
		}
		name := strings.TrimSuffix(up.FileName, filepath.Ext(up.FileName)) + "_" + dataset + format.Ext()
		api.RespondWithFile(w, name, format.ContentType(), buf.Bytes())
	}
}

// readAndNormalize reads the upload and runs it through the pipeline. The
// schema form field overrides fallback. On failure the response is written.
func readAndNormalize(w http.ResponseWriter, r *http.Request, svc *ingest.Service, maxBytes int64, fallback func(*http.Request) normalize.Schema) (*ingest.Upload, bool) {
	file, err := api.ReadUpload(w, r, maxBytes)
	if err != nil {
		api.RespondWithAppError(w, err)
		return nil, false
	}
	schema := fallback(r)
	if name := r.FormValue(constants.FormSchema); name != "" {
		if schema, err = normalize.SchemaByName(name); err != nil {
			api.RespondWithAppError(w, err)
			return nil, false
		}
	}
	up, err := svc.Normalize(file.Name, file.Data, schema)
	if err != nil {
		api.RespondWithAppError(w, err)
		return nil, false
	}
	logger.Audit("upload normalized",
		zap.String("batch_id", up.BatchID.String()),
		zap.String("file", up.FileName),
		zap.String("schema", up.Schema),
		zap.Int("rows", len(up.Rows)),
		zap.Int("warnings", len(up.Report.Warnings)),
		zap.Int("errors", len(up.Report.Errors)),
	)
	return up, true
}

func schemaOf(s normalize.Schema) func(*http.Request) normalize.Schema {
	return func(*http.Request) normalize.Schema { return s }
}

func datasetOf(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.FormValue(constants.FormDataset)))
}

func aggregateOptions(r *http.Request) (aggregate.Options, error) {
	opts := aggregate.Options{
		GroupBy:    aggregate.GroupBy(r.FormValue(constants.FormGroupBy)),
		ClaimBasis: aggregate.ClaimBasis(r.FormValue(constants.FormClaimBasis)),
	}
	if v := r.FormValue(constants.FormRollUpQuarters); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperr.Newf(apperr.KindInput, "invalid %s %q", constants.FormRollUpQuarters, v)
		}
		opts.RollUpQuarters = b
	}
	return opts, nil
}

func failure(up *ingest.Upload) string {
	if up.Report.OK() {
		return ""
	}
	return constants.ErrSchemaValidation
}
