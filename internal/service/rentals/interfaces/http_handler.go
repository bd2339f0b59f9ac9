// internal/service/rentals/interfaces/http_handler.go

package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"vinylshop/internal/service/rentals/application"
	"vinylshop/internal/service/rentals/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "rentals-service"

// RentalsHandler wires the ledger use cases onto HTTP routes.
type RentalsHandler struct {
	service *application.RentalsService
}

func NewRentalsHandler(service *application.RentalsService) *RentalsHandler {
	return &RentalsHandler{service: service}
}

// RegisterRoutes registers all routes on the ServeMux.
func (h *RentalsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /customers", h.handleListCustomers)
	mux.HandleFunc("GET /customers/{id}", h.handleGetCustomer)
	mux.HandleFunc("GET /rentals", h.handleListRentals)
	mux.HandleFunc("GET /rentals/{id}", h.handleGetRental)
	mux.HandleFunc("GET /rentals/active", h.handleActiveRentals)
	mux.HandleFunc("GET /rentals/customer/{customer_id}", h.handleCustomerRentals)
	mux.HandleFunc("POST /rentals", h.handleCreateRental)
	mux.HandleFunc("PUT /rentals/{id}/return", h.handleReturnRental)
	mux.HandleFunc("PUT /rentals/{id}/cancel", h.handleCancelRental)
	mux.HandleFunc("PUT /rentals/{id}/reopen", h.handleReopenRental)
}

func (h *RentalsHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "Rentals Service",
		"description": "Vinyl Records Rental Management",
		"version":     "1.0",
		"endpoints": map[string]string{
			"GET /customers":                      "List all customers",
			"GET /customers/{id}":                 "Customer details",
			"GET /rentals":                        "List all rentals",
			"GET /rentals/{id}":                   "Rental details",
			"GET /rentals/active":                 "Active rentals",
			"GET /rentals/customer/{customer_id}": "A customer's rental history",
			"POST /rentals":                       "Create a rental",
			"PUT /rentals/{id}/return":            "Register a return",
			"PUT /rentals/{id}/cancel":            "Cancel an active rental (compensation)",
			"PUT /rentals/{id}/reopen":            "Reopen a returned rental (compensation)",
			"GET /health":                         "Service health check",
		},
	})
}

func (h *RentalsHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"service":         serviceName,
		"total_customers": len(h.service.ListCustomers(ctx)),
		"total_rentals":   len(h.service.ListRentals(ctx)),
		"active_rentals":  len(h.service.ActiveRentals(ctx)),
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

func (h *RentalsHandler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.ListCustomers")
	defer span.End()

	customers := h.service.ListCustomers(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"total": len(customers), "customers": customers})
}

func (h *RentalsHandler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.GetCustomer")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "customer id must be an integer")
		return
	}
	c, err := h.service.GetCustomer(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *RentalsHandler) handleListRentals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.ListRentals")
	defer span.End()

	rentals := h.service.ListRentals(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"total": len(rentals), "rentals": rentals})
}

func (h *RentalsHandler) handleGetRental(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.GetRental")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rental id must be an integer")
		return
	}
	rental, err := h.service.GetRental(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalsHandler) handleActiveRentals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.ActiveRentals")
	defer span.End()

	rentals := h.service.ActiveRentals(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"total": len(rentals), "rentals": rentals})
}

func (h *RentalsHandler) handleCustomerRentals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.CustomerRentals")
	defer span.End()

	customerID, err := strconv.Atoi(r.PathValue("customer_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "customer id must be an integer")
		return
	}
	rentals, err := h.service.RentalsByCustomer(ctx, customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	customer, err := h.service.GetCustomer(ctx, customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	active := 0
	for _, rental := range rentals {
		if rental.Status == domain.StatusActive {
			active++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customer_id":    customerID,
		"customer_name":  customer.Name,
		"total_rentals":  len(rentals),
		"active_rentals": active,
		"rentals":        rentals,
	})
}

func (h *RentalsHandler) handleCreateRental(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.CreateRental")
	defer span.End()

	var req domain.CreateRental
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID <= 0 || req.RecordID <= 0 || req.RecordTitle == "" || req.DailyPrice <= 0 || req.RentalDays <= 0 {
		writeError(w, http.StatusBadRequest, "customer_id, record_id, record_title, daily_price and rental_days are required")
		return
	}

	rental, err := h.service.CreateRental(ctx, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "rental created",
		"rental":  rental,
	})
}

func (h *RentalsHandler) handleReturnRental(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.ReturnRental")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rental id must be an integer")
		return
	}
	rental, err := h.service.ReturnRental(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "return registered",
		"rental":   rental,
		"late_fee": rental.LateFee,
	})
}

func (h *RentalsHandler) handleCancelRental(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.CancelRental")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rental id must be an integer")
		return
	}
	rental, err := h.service.CancelRental(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "rental cancelled",
		"rental":  rental,
	})
}

func (h *RentalsHandler) handleReopenRental(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "rentals-service.ReopenRental")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rental id must be an integer")
		return
	}
	rental, err := h.service.ReopenRental(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "rental reopened",
		"rental":  rental,
	})
}

func tracerStart(r *http.Request, spanName string) (context.Context, trace.Span) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return otel.Tracer(serviceName).Start(ctx, spanName)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound), errors.Is(err, domain.ErrRentalNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRentalLimitReached),
		errors.Is(err, domain.ErrRentalAlreadyReturned),
		errors.Is(err, domain.ErrRentalNotActive),
		errors.Is(err, domain.ErrRentalNotReturned):
		writeError(w, http.StatusBadRequest, err.Error())
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
