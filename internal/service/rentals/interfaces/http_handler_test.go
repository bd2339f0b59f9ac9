package interfaces

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vinylshop/internal/service/rentals/application"
	"vinylshop/internal/service/rentals/domain"
	"vinylshop/internal/service/rentals/infrastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// testClock lets a test advance the service's notion of now between calls.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestServer(t *testing.T) (*httptest.Server, *testClock) {
	t.Helper()
	store, err := infrastructure.NewMemStore([]domain.Customer{
		{ID: 1, Name: "Alice Johnson", FavoriteGenre: "Jazz", MembershipTier: "gold", MaxRentals: 2},
		{ID: 2, Name: "Bruno Costa", FavoriteGenre: "Rock", MembershipTier: "silver", MaxRentals: 3},
	}, nil)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	svc := application.NewRentalsService(store, otel.Tracer("test")).WithClock(clock.Now)
	mux := http.NewServeMux()
	NewRentalsHandler(svc).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, clock
}

func doJSON(t *testing.T, method, url string, body, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
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

func createPayload(customerID int) map[string]any {
	return map[string]any{
		"customer_id":  customerID,
		"record_id":    1,
		"record_title": "Kind of Blue",
		"daily_price":  5.0,
		"rental_days":  3,
	}
}

func TestRentalLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	var created struct {
		Rental domain.Rental `json:"rental"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/rentals", createPayload(1), &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 1, created.Rental.ID)
	assert.Equal(t, "Alice Johnson", created.Rental.CustomerName)
	assert.Equal(t, 15.0, created.Rental.TotalCost)
	assert.Equal(t, domain.StatusActive, created.Rental.Status)

	var fetched domain.Rental
	status = doJSON(t, http.MethodGet, srv.URL+"/rentals/1", nil, &fetched)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2025-03-13", fetched.DueDate.Format("2006-01-02"))

	var returned struct {
		Rental  domain.Rental `json:"rental"`
		LateFee float64       `json:"late_fee"`
	}
	status = doJSON(t, http.MethodPut, srv.URL+"/rentals/1/return", nil, &returned)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.StatusReturned, returned.Rental.Status)
	assert.Zero(t, returned.LateFee, "same-day return accrues no fee")

	var errBody map[string]string
	status = doJSON(t, http.MethodPut, srv.URL+"/rentals/1/return", nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreateRentalValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := map[string]map[string]any{
		"missing customer": {"record_id": 1, "record_title": "X", "daily_price": 5.0, "rental_days": 3},
		"missing title":    {"customer_id": 1, "record_id": 1, "daily_price": 5.0, "rental_days": 3},
		"zero days":        {"customer_id": 1, "record_id": 1, "record_title": "X", "daily_price": 5.0, "rental_days": 0},
		"negative price":   {"customer_id": 1, "record_id": 1, "record_title": "X", "daily_price": -1.0, "rental_days": 3},
	}
	for name, payload := range cases {
		var errBody map[string]string
		status := doJSON(t, http.MethodPost, srv.URL+"/rentals", payload, &errBody)
		assert.Equal(t, http.StatusBadRequest, status, name)
	}
}

func TestCreateRentalUnknownCustomerHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	var errBody map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/rentals", createPayload(99), &errBody)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestQuotaExceededHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 2; i++ {
		status := doJSON(t, http.MethodPost, srv.URL+"/rentals", createPayload(1), &map[string]any{})
		require.Equal(t, http.StatusCreated, status)
	}
	var errBody map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/rentals", createPayload(1), &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOverdueReturnChargesLateFee(t *testing.T) {
	srv, clock := newTestServer(t)

	payload := createPayload(1)
	payload["daily_price"] = 10.0
	var created struct {
		Rental domain.Rental `json:"rental"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/rentals", payload, &created)
	require.Equal(t, http.StatusCreated, status)

	// Three-day rental returned five days after pickup: two days late.
	clock.now = clock.now.AddDate(0, 0, 5)

	var returned struct {
		LateFee float64 `json:"late_fee"`
	}
	status = doJSON(t, http.MethodPut, srv.URL+"/rentals/1/return", nil, &returned)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 20.0, returned.LateFee)
}

func TestCancelAndReopenEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var created struct {
		Rental domain.Rental `json:"rental"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/rentals", createPayload(1), &created)
	require.Equal(t, http.StatusCreated, status)

	var errBody map[string]string
	status = doJSON(t, http.MethodPut, srv.URL+"/rentals/1/reopen", nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status, "active rentals cannot be reopened")

	status = doJSON(t, http.MethodPut, srv.URL+"/rentals/1/return", nil, &map[string]any{})
	require.Equal(t, http.StatusOK, status)

	var reopened struct {
		Rental domain.Rental `json:"rental"`
	}
	status = doJSON(t, http.MethodPut, srv.URL+"/rentals/1/reopen", nil, &reopened)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.StatusActive, reopened.Rental.Status)

	status = doJSON(t, http.MethodPut, srv.URL+"/rentals/1/cancel", nil, &map[string]any{})
	require.Equal(t, http.StatusOK, status)

	status = doJSON(t, http.MethodGet, srv.URL+"/rentals/1", nil, &errBody)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCustomerRentalsView(t *testing.T) {
	srv, _ := newTestServer(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/rentals", createPayload(1), &map[string]any{})
	require.Equal(t, http.StatusCreated, status)

	var view struct {
		CustomerID    int             `json:"customer_id"`
		CustomerName  string          `json:"customer_name"`
		TotalRentals  int             `json:"total_rentals"`
		ActiveRentals int             `json:"active_rentals"`
		Rentals       []domain.Rental `json:"rentals"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/rentals/customer/1", nil, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alice Johnson", view.CustomerName)
	assert.Equal(t, 1, view.TotalRentals)
	assert.Equal(t, 1, view.ActiveRentals)
	require.Len(t, view.Rentals, 1)
}
