package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"GtnPortal/api/constants"
	"GtnPortal/internal/apperr"
	"GtnPortal/internal/logger"
)

// RespondWithError writes the {"success": false, "error": ...} envelope.
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	logger.L().Warn("request failed", zap.Int("status", status), zap.String("error", errMsg))
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		constants.ValueSuccess: false,
		constants.ValueError:   errMsg,
	})
}

// RespondWithPayload sends a consistent JSON response and includes an arbitrary payload
func RespondWithPayload(w http.ResponseWriter, success bool, errMsg string, payload interface{}) {
	status := http.StatusOK
	if !success {
		status = http.StatusUnprocessableEntity
	}
	RespondWithStatus(w, status, success, errMsg, payload)
}

// RespondWithStatus is RespondWithPayload with an explicit status code.
func RespondWithStatus(w http.ResponseWriter, status int, success bool, errMsg string, payload interface{}) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	resp := map[string]interface{}{constants.ValueSuccess: success}
	if !success && errMsg != "" {
		resp[constants.ValueError] = errMsg
	}
	if payload != nil {
		resp[constants.ValueData] = payload
	}
	json.NewEncoder(w).Encode(resp)
}

// RespondWithAppError maps an error to its status code. Internal causes are
// logged but not echoed to the client.
func RespondWithAppError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("internal error", zap.Error(err))
		RespondWithError(w, status, constants.ErrInternal)
		return
	}
	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	RespondWithError(w, status, msg)
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case apperr.KindEmptyInput, apperr.KindUndecodable, apperr.KindUnreadableDocument,
		apperr.KindNoExtractableText, apperr.KindSchema:
		return http.StatusUnprocessableEntity
	case apperr.KindInput:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindInput, constants.ErrInvalidJSON, err)
	}
	return nil
}

// RespondWithFile sends data as a download.
func RespondWithFile(w http.ResponseWriter, fileName, contentType string, data []byte) {
	w.Header().Set(constants.ContentTypeText, contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
