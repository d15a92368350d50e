package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GtnPortal/internal/apperr"
)

func TestStatusFor(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindUnsupportedFormat:  http.StatusUnsupportedMediaType,
		apperr.KindEmptyInput:         http.StatusUnprocessableEntity,
		apperr.KindUnreadableDocument: http.StatusUnprocessableEntity,
		apperr.KindInput:              http.StatusBadRequest,
		apperr.KindNotFound:           http.StatusNotFound,
		apperr.KindUnauthorized:       http.StatusUnauthorized,
		apperr.KindForbidden:          http.StatusForbidden,
		apperr.KindInternal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(apperr.New(kind, "x")), kind)
	}
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("plain")))
}

func TestRespondWithAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithAppError(rec, apperr.New(apperr.KindInput, "bad group_by"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "bad group_by", body["error"])

	rec = httptest.NewRecorder()
	RespondWithAppError(rec, apperr.Wrap(apperr.KindInternal, "db down", errors.New("dial tcp: refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestRespondWithPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithPayload(rec, true, "", []int{1, 2})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[1,2]}`, rec.Body.String())
}
