// internal/service/gateway/interfaces/http_handler.go

package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"vinylshop/internal/service/gateway/application"
	"vinylshop/internal/service/gateway/port"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "gateway-service"

// GatewayHandler exposes the coordinator's public API: the two sagas, the
// aggregated views, and pass-through reads of the backing services.
type GatewayHandler struct {
	service *application.GatewayService
	records port.RecordsService
	rentals port.RentalsService
}

func NewGatewayHandler(service *application.GatewayService, records port.RecordsService, rentals port.RentalsService) *GatewayHandler {
	return &GatewayHandler{service: service, records: records, rentals: rentals}
}

// RegisterRoutes registers all routes on the ServeMux.
func (h *GatewayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("POST /rent", h.handleRent)
	mux.HandleFunc("PUT /return/{rental_id}", h.handleReturn)

	mux.HandleFunc("GET /records/{id}/availability", h.handleAvailability)
	mux.HandleFunc("GET /customers/{id}/profile", h.handleProfile)
	mux.HandleFunc("GET /recommendations/{customer_id}", h.handleRecommendations)

	mux.HandleFunc("GET /records", h.handleListRecords)
	mux.HandleFunc("GET /records/{id}", h.handleGetRecord)
	mux.HandleFunc("GET /records/genre/{genre}", h.handleRecordsByGenre)
	mux.HandleFunc("GET /customers", h.handleListCustomers)
	mux.HandleFunc("GET /rentals", h.handleListRentals)
	mux.HandleFunc("GET /rentals/active", h.handleActiveRentals)
}

func (h *GatewayHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "Gateway Service",
		"description": "Vinyl rental orchestrator and aggregator",
		"version":     "1.0",
		"endpoints": map[string]string{
			"POST /rent":                         "Rent a record (orchestrated)",
			"PUT /return/{rental_id}":            "Return a rental (orchestrated)",
			"GET /records/{id}/availability":     "Joined availability view",
			"GET /customers/{id}/profile":        "Aggregated customer profile",
			"GET /recommendations/{customer_id}": "Available records in the favorite genre",
			"GET /records":                       "Catalog (proxied)",
			"GET /customers":                     "Customers (proxied)",
			"GET /rentals":                       "Rentals (proxied)",
			"GET /health":                        "Gateway and downstream health",
		},
	})
}

func (h *GatewayHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.Health")
	defer span.End()

	writeJSON(w, http.StatusOK, h.service.Health(ctx))
}

// The request is validated here so a malformed payload never reaches the
// saga or either backing service.
func (h *GatewayHandler) handleRent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.RentRecord")
	defer span.End()

	var req application.RentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CustomerID <= 0 {
		writeError(w, http.StatusBadRequest, "customer_id is required")
		return
	}
	if req.RecordID <= 0 {
		writeError(w, http.StatusBadRequest, "record_id is required")
		return
	}
	if req.RentalDays <= 0 {
		writeError(w, http.StatusBadRequest, "rental_days must be positive")
		return
	}

	rental, err := h.service.RentRecord(ctx, req)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":         "rental created",
		"rental":          rental,
		"orchestrated_by": "gateway",
	})
}

func (h *GatewayHandler) handleReturn(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.ReturnRental")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("rental_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rental id must be an integer")
		return
	}

	rental, lateFee, err := h.service.ReturnRental(ctx, id)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "rental returned",
		"rental":          rental,
		"late_fee":        lateFee,
		"orchestrated_by": "gateway",
	})
}

func (h *GatewayHandler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.Availability")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "record id must be an integer")
		return
	}

	resp, err := h.service.Availability(ctx, id)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GatewayHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.Profile")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "customer id must be an integer")
		return
	}

	resp, err := h.service.Profile(ctx, id)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GatewayHandler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.Recommendations")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("customer_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "customer id must be an integer")
		return
	}

	resp, err := h.service.Recommendations(ctx, id)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GatewayHandler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.ListRecords")
	defer span.End()

	records, err := h.records.ListRecords(ctx)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(records), "records": records})
}

func (h *GatewayHandler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.GetRecord")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "record id must be an integer")
		return
	}

	record, err := h.records.GetRecord(ctx, id)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *GatewayHandler) handleRecordsByGenre(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.RecordsByGenre")
	defer span.End()

	genre := r.PathValue("genre")
	records, err := h.records.RecordsByGenre(ctx, genre)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"genre": genre, "total": len(records), "records": records})
}

func (h *GatewayHandler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.ListCustomers")
	defer span.End()

	customers, err := h.rentals.ListCustomers(ctx)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(customers), "customers": customers})
}

func (h *GatewayHandler) handleListRentals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.ListRentals")
	defer span.End()

	rentals, err := h.rentals.ListRentals(ctx)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(rentals), "rentals": rentals})
}

func (h *GatewayHandler) handleActiveRentals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "gateway-service.ActiveRentals")
	defer span.End()

	rentals, err := h.rentals.ActiveRentals(ctx)
	if err != nil {
		writePortError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(rentals), "rentals": rentals})
}

func tracerStart(r *http.Request, spanName string) (ctx context.Context, span trace.Span) {
	propagator := otel.GetTextMapPropagator()
	ctx = propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return otel.Tracer(serviceName).Start(ctx, spanName)
}

func writePortError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, port.ErrRecordNotFound),
		errors.Is(err, port.ErrCustomerNotFound),
		errors.Is(err, port.ErrRentalNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, port.ErrNoCopiesAvailable),
		errors.Is(err, port.ErrRentalLimitReached),
		errors.Is(err, port.ErrRentalAlreadyReturned),
		errors.Is(err, port.ErrAllCopiesInStock):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, port.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
