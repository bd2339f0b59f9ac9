package interfaces

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vinylshop/internal/service/records/application"
	"vinylshop/internal/service/records/domain"
	"vinylshop/internal/service/records/infrastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := infrastructure.NewMemStore([]domain.Record{
		{ID: 1, Title: "Kind of Blue", Artist: "Miles Davis", Genre: "Jazz",
			DailyPrice: 5.0, TotalCopies: 2, AvailableCopies: 2},
		{ID: 2, Title: "Nevermind", Artist: "Nirvana", Genre: "Rock",
			DailyPrice: 5.5, TotalCopies: 1, AvailableCopies: 0},
	})
	require.NoError(t, err)

	svc := application.NewRecordsService(store, otel.Tracer("test"))
	mux := http.NewServeMux()
	NewRecordsHandler(svc).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func putJSON(t *testing.T, url string, body, out any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestListRecords(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Total   int             `json:"total"`
		Records []domain.Record `json:"records"`
	}
	status := getJSON(t, srv.URL+"/records", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Records, 2)
	assert.Equal(t, "Kind of Blue", body.Records[0].Title)
}

func TestGetRecord(t *testing.T) {
	srv := newTestServer(t)

	var rec domain.Record
	status := getJSON(t, srv.URL+"/records/1", &rec)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Miles Davis", rec.Artist)

	var errBody map[string]string
	status = getJSON(t, srv.URL+"/records/99", &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, errBody, "error")

	status = getJSON(t, srv.URL+"/records/abc", &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAvailableExcludesExhausted(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Total   int             `json:"total"`
		Records []domain.Record `json:"records"`
	}
	status := getJSON(t, srv.URL+"/records/available", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Total)
	assert.Equal(t, 1, body.Records[0].ID)
}

func TestDecreaseEndpointIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	payload := map[string]string{"operation_id": "saga-1:decrease"}

	var first, replay struct {
		AvailableCopies int `json:"available_copies"`
	}
	status := putJSON(t, srv.URL+"/records/1/decrease", payload, &first)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, first.AvailableCopies)

	status = putJSON(t, srv.URL+"/records/1/decrease", payload, &replay)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, replay.AvailableCopies, "replayed operation must not decrement again")
}

func TestDecreaseExhaustedRecord(t *testing.T) {
	srv := newTestServer(t)

	var errBody map[string]string
	status := putJSON(t, srv.URL+"/records/2/decrease", nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errBody, "error")
}

func TestIncreaseEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		AvailableCopies int `json:"available_copies"`
	}
	status := putJSON(t, srv.URL+"/records/2/increase", nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, body.AvailableCopies)

	var errBody map[string]string
	status = putJSON(t, srv.URL+"/records/2/increase", nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status, "restocking a full record must fail")
}
