package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GtnPortal/internal/access"
	"GtnPortal/internal/checksum"
	"GtnPortal/internal/ingest"
	"GtnPortal/internal/masterdata"
)

const contractsCSV = "klant;sku;aantal;claimbedrag;omzet;periode\n" +
	"Alpha BV;A-1;10;100,00;1.000,00;2025-01\n" +
	"Beta BV;B-1;5;50,00;500,00;2025-01\n" +
	"Alpha BV;A-1;12;120,00;1.500,00;2025-02\n" +
	"Beta BV;B-1;6;60,00;600,00;2025-02\n"

const gtnCSV = "productgroep;artikel;klant;periode;bruto;kanaalkorting;gefactureerd;netto\n" +
	"Oncologie;A-1;Alpha BV;2025-01;1.000,00;100,00;900,00;900,00\n"

const priceList = "Maximumprijs groep 1\n€ 1,20 per tablet\nRegistratienummers\nRVG 12345\n"

type fixture struct {
	router http.Handler
	repo   *masterdata.MemoryRepository
	paid   string
	lapsed string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := access.NewSessionStore(nil)
	repo := masterdata.NewMemoryRepository()
	f := &fixture{
		repo:   repo,
		paid:   store.CreateSession(access.Identity{UserID: "u1", SubscriptionActive: true}, time.Hour).Token,
		lapsed: store.CreateSession(access.Identity{UserID: "u2"}, time.Hour).Token,
	}
	f.router = NewRouter(Deps{
		Ingest:         ingest.NewService(nil, nil),
		Repo:           repo,
		Access:         store,
		MaxUploadBytes: 1 << 20,
	})
	return f
}

func (f *fixture) upload(t *testing.T, path, token, fileName, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthIsPublic(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessGate(t *testing.T) {
	f := newFixture(t)

	rec := f.upload(t, "/ingest/normalize", "", "gtn.csv", gtnCSV, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = f.upload(t, "/ingest/normalize", f.lapsed, "gtn.csv", gtnCSV, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNormalizeEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "/ingest/normalize", f.paid, "gtn.csv", gtnCSV, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, true, out["success"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "gtn", data["schema"])
	assert.Len(t, data["rows"], 1)
	assert.NotEmpty(t, data["batchId"])
	assert.NotEmpty(t, data["waterfall"])
}

func TestNormalizeEndpoint_SchemaFailure(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "/ingest/normalize", f.paid, "x.csv", "klant;periode\nA;2025-01\n", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, false, out["success"])
	report := out["data"].(map[string]interface{})["report"].(map[string]interface{})
	assert.NotEmpty(t, report["errors"])
}

func TestNormalizeEndpoint_StructuralErrors(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "/ingest/normalize", f.paid, "x.docx", "whatever", nil)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = f.upload(t, "/ingest/normalize", f.paid, "x.csv", gtnCSV, map[string]string{"schema": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChecksumHeader(t *testing.T) {
	f := newFixture(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "gtn.csv")
	io.WriteString(fw, gtnCSV)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/ingest/normalize", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.paid)
	req.Header.Set("X-Content-Sha256", checksum.Sum([]byte("something else")))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/ingest/normalize", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.paid)
	req.Header.Set("X-Content-Sha256", checksum.Sum([]byte(gtnCSV)))
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAggregateEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "/ingest/aggregate", f.paid, "contracten.csv", contractsCSV, map[string]string{"group_by": "customer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decode(t, rec)["data"].(map[string]interface{})
	result := data["result"].(map[string]interface{})
	assert.Len(t, result["aggregates"], 4)
	assert.Len(t, result["totals"], 2)
	assert.Len(t, result["latestSnapshot"], 2)

	rec = f.upload(t, "/ingest/aggregate", f.paid, "contracten.csv", contractsCSV, map[string]string{"roll_up_quarters": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "/ingest/export", f.paid, "contracten.csv", contractsCSV, map[string]string{"dataset": "aggregates", "format": "csv"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "contracten_aggregates.csv")
	assert.Contains(t, rec.Body.String(), "growth_pct")

	rec = f.upload(t, "/ingest/export", f.paid, "gtn.csv", gtnCSV, map[string]string{"dataset": "waterfall", "format": "xlsx"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = f.upload(t, "/ingest/export", f.paid, "gtn.csv", gtnCSV, map[string]string{"dataset": "pivot"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceListFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/pricelist/compare", f.paid, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.upload(t, "/pricelist/parse", f.paid, "staatscourant.txt", priceList, map[string]string{"save": "true"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Len(t, data["rows"], 1)

	rec = f.do(http.MethodPut, "/master/products", f.paid,
		`[{"sku":"A-1","name":"Tablet 10mg","registrationNumber":"RVG 12345","unitPrice":1.5},{"sku":"B-1","registrationNumber":"RVG 99999","unitPrice":2}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/pricelist/compare", f.paid, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cmp := decode(t, rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, cmp["aboveCeiling"])
	assert.Len(t, cmp["unmatched"], 1)

	rec = f.do(http.MethodPost, "/pricelist/compare?format=csv", f.paid, `{"products":[{"sku":"C-1","registrationNumber":"rvg12345","unitPrice":1}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "RVG12345")
}

func TestPriceListParse_UnreadablePDF(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "/pricelist/parse", f.paid, "prijzen.pdf", "not a pdf", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMasterEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/master/unknown", f.paid, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPut, "/master/customers", f.paid, `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/master/customers", f.paid, `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/master/customers", f.paid, `[{"id":"c1","name":"Alpha BV","channel":"wholesale"}]`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/master/customers", f.paid, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 1)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/nope", f.paid, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
