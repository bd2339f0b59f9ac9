package interfaces

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vinylshop/internal/pkg/httpclient"
	"vinylshop/internal/service/gateway/application"
	"vinylshop/internal/service/gateway/infrastructure/adapter"
	"vinylshop/internal/service/gateway/port"
	recordsapp "vinylshop/internal/service/records/application"
	recordsdomain "vinylshop/internal/service/records/domain"
	recordsinfra "vinylshop/internal/service/records/infrastructure"
	recordsiface "vinylshop/internal/service/records/interfaces"
	rentalsapp "vinylshop/internal/service/rentals/application"
	rentalsdomain "vinylshop/internal/service/rentals/domain"
	rentalsinfra "vinylshop/internal/service/rentals/infrastructure"
	rentalsiface "vinylshop/internal/service/rentals/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// newStack spins up real records and rentals services behind httptest and a
// gateway wired to them through the HTTP adapters.
func newStack(t *testing.T) *httptest.Server {
	t.Helper()

	recordsStore, err := recordsinfra.NewMemStore([]recordsdomain.Record{
		{ID: 1, Title: "Kind of Blue", Artist: "Miles Davis", Genre: "Jazz",
			DailyPrice: 5.0, TotalCopies: 2, AvailableCopies: 2},
		{ID: 2, Title: "Abbey Road", Artist: "The Beatles", Genre: "Rock",
			DailyPrice: 6.0, TotalCopies: 1, AvailableCopies: 0},
		{ID: 3, Title: "Blue Train", Artist: "John Coltrane", Genre: "Jazz",
			DailyPrice: 4.0, TotalCopies: 1, AvailableCopies: 1},
	})
	require.NoError(t, err)
	recordsMux := http.NewServeMux()
	recordsiface.NewRecordsHandler(recordsapp.NewRecordsService(recordsStore, otel.Tracer("test"))).RegisterRoutes(recordsMux)
	recordsSrv := httptest.NewServer(recordsMux)
	t.Cleanup(recordsSrv.Close)

	rentalsStore, err := rentalsinfra.NewMemStore([]rentalsdomain.Customer{
		{ID: 1, Name: "Alice Johnson", FavoriteGenre: "Jazz", MembershipTier: "gold", MaxRentals: 5},
		{ID: 2, Name: "Bruno Costa", FavoriteGenre: "Rock", MembershipTier: "bronze", MaxRentals: 1},
	}, nil)
	require.NoError(t, err)
	rentalsMux := http.NewServeMux()
	rentalsiface.NewRentalsHandler(rentalsapp.NewRentalsService(rentalsStore, otel.Tracer("test"))).RegisterRoutes(rentalsMux)
	rentalsSrv := httptest.NewServer(rentalsMux)
	t.Cleanup(rentalsSrv.Close)

	client := httpclient.NewClient(otel.Tracer("test"), 5*time.Second)
	records := adapter.NewRecordsHTTPAdapter(client, recordsSrv.URL)
	rentals := adapter.NewRentalsHTTPAdapter(client, rentalsSrv.URL)
	svc := application.NewGatewayService(records, rentals, otel.Tracer("test"))

	mux := http.NewServeMux()
	NewGatewayHandler(svc, records, rentals).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body, out any) int {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func availableCopies(t *testing.T, srv *httptest.Server, recordID int) int {
	t.Helper()
	var rec port.Record
	status := doJSON(t, http.MethodGet, srv.URL+"/records/"+jsonInt(recordID), nil, &rec)
	require.Equal(t, http.StatusOK, status)
	return rec.AvailableCopies
}

func jsonInt(n int) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}

func TestRentAndReturnRoundTrip(t *testing.T) {
	srv := newStack(t)

	var rented struct {
		Rental         port.Rental `json:"rental"`
		OrchestratedBy string      `json:"orchestrated_by"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/rent",
		map[string]any{"customer_id": 1, "record_id": 1, "rental_days": 3}, &rented)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "gateway", rented.OrchestratedBy)
	assert.Equal(t, "Kind of Blue", rented.Rental.RecordTitle)
	assert.Equal(t, 15.0, rented.Rental.TotalCost)
	assert.Equal(t, 1, availableCopies(t, srv, 1), "rent decrements the inventory")

	var returned struct {
		Rental  port.Rental `json:"rental"`
		LateFee float64     `json:"late_fee"`
	}
	status = doJSON(t, http.MethodPut, srv.URL+"/return/"+jsonInt(rented.Rental.ID), nil, &returned)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "returned", returned.Rental.Status)
	assert.Zero(t, returned.LateFee, "same-day return accrues no fee")
	assert.Equal(t, 2, availableCopies(t, srv, 1), "return restocks the inventory")
}

func TestRentValidation(t *testing.T) {
	srv := newStack(t)

	cases := map[string]map[string]any{
		"missing customer": {"record_id": 1, "rental_days": 3},
		"missing record":   {"customer_id": 1, "rental_days": 3},
		"zero days":        {"customer_id": 1, "record_id": 1, "rental_days": 0},
	}
	for name, payload := range cases {
		var errBody map[string]string
		status := doJSON(t, http.MethodPost, srv.URL+"/rent", payload, &errBody)
		assert.Equal(t, http.StatusBadRequest, status, name)
	}
}

func TestRentRejections(t *testing.T) {
	srv := newStack(t)

	var errBody map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/rent",
		map[string]any{"customer_id": 99, "record_id": 1, "rental_days": 3}, &errBody)
	assert.Equal(t, http.StatusNotFound, status, "unknown customer")

	status = doJSON(t, http.MethodPost, srv.URL+"/rent",
		map[string]any{"customer_id": 1, "record_id": 99, "rental_days": 3}, &errBody)
	assert.Equal(t, http.StatusNotFound, status, "unknown record")

	status = doJSON(t, http.MethodPost, srv.URL+"/rent",
		map[string]any{"customer_id": 1, "record_id": 2, "rental_days": 3}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status, "record out of stock")
}

func TestRentQuotaEnforcedEndToEnd(t *testing.T) {
	srv := newStack(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/rent",
		map[string]any{"customer_id": 2, "record_id": 1, "rental_days": 3}, &map[string]any{})
	require.Equal(t, http.StatusCreated, status)

	var errBody map[string]string
	status = doJSON(t, http.MethodPost, srv.URL+"/rent",
		map[string]any{"customer_id": 2, "record_id": 3, "rental_days": 3}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 1, availableCopies(t, srv, 3), "a rejected rent must not touch the inventory")
}

func TestReturnRejections(t *testing.T) {
	srv := newStack(t)

	var errBody map[string]string
	status := doJSON(t, http.MethodPut, srv.URL+"/return/99", nil, &errBody)
	assert.Equal(t, http.StatusNotFound, status)

	var rented struct {
		Rental port.Rental `json:"rental"`
	}
	status = doJSON(t, http.MethodPost, srv.URL+"/rent",
		map[string]any{"customer_id": 1, "record_id": 1, "rental_days": 3}, &rented)
	require.Equal(t, http.StatusCreated, status)

	status = doJSON(t, http.MethodPut, srv.URL+"/return/"+jsonInt(rented.Rental.ID), nil, &map[string]any{})
	require.Equal(t, http.StatusOK, status)

	status = doJSON(t, http.MethodPut, srv.URL+"/return/"+jsonInt(rented.Rental.ID), nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status, "double return")
}

func TestAvailabilityEndToEnd(t *testing.T) {
	srv := newStack(t)

	// Take the last copy of Blue Train so the view reports who holds it.
	var rented struct {
		Rental port.Rental `json:"rental"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/rent",
		map[string]any{"customer_id": 1, "record_id": 3, "rental_days": 3}, &rented)
	require.Equal(t, http.StatusCreated, status)

	var view struct {
		Record       application.RecordSummary `json:"record"`
		Availability application.Availability  `json:"availability"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/records/3/availability", nil, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Blue Train", view.Record.Title)
	assert.False(t, view.Availability.IsAvailable)
	assert.Equal(t, []string{"Alice Johnson"}, view.Availability.CurrentlyRentedBy)
	require.NotNil(t, view.Availability.NextAvailable)
	assert.Equal(t, rented.Rental.DueDate, *view.Availability.NextAvailable)
}

func TestRecommendationsEndToEnd(t *testing.T) {
	srv := newStack(t)

	var resp application.RecommendationsResponse
	status := doJSON(t, http.MethodGet, srv.URL+"/recommendations/1", nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Jazz", resp.Customer.FavoriteGenre)
	assert.Equal(t, 2, resp.TotalAvailable)
	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, "Blue Train", resp.Recommendations[0].Title, "cheapest first")
}

func TestProfileEndToEnd(t *testing.T) {
	srv := newStack(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/rent",
		map[string]any{"customer_id": 1, "record_id": 1, "rental_days": 3}, &map[string]any{})
	require.Equal(t, http.StatusCreated, status)

	var resp application.ProfileResponse
	status = doJSON(t, http.MethodGet, srv.URL+"/customers/1/profile", nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alice Johnson", resp.Customer.Name)
	assert.Equal(t, 1, resp.Statistics.TotalRentals)
	assert.Equal(t, 1, resp.Statistics.ActiveCount)
	assert.Equal(t, 15.0, resp.Statistics.TotalSpent)
	require.Len(t, resp.ActiveRentals, 1)
}

func TestGatewayHealthDegradesWhenDownstreamDies(t *testing.T) {
	recordsSrv := httptest.NewServer(http.NewServeMux())
	recordsSrv.Close()

	client := httpclient.NewClient(otel.Tracer("test"), 1*time.Second)
	records := adapter.NewRecordsHTTPAdapter(client, recordsSrv.URL)
	rentals := adapter.NewRentalsHTTPAdapter(client, recordsSrv.URL)
	svc := application.NewGatewayService(records, rentals, otel.Tracer("test"))

	mux := http.NewServeMux()
	NewGatewayHandler(svc, records, rentals).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var health application.HealthResponse
	status := doJSON(t, http.MethodGet, srv.URL+"/health", nil, &health)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "down", health.Services["records-service"])

	var errBody map[string]string
	status = doJSON(t, http.MethodGet, srv.URL+"/records", nil, &errBody)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
