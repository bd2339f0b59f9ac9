// internal/service/records/interfaces/http_handler.go

package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"vinylshop/internal/service/records/application"
	"vinylshop/internal/service/records/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "records-service"

// RecordsHandler wires the catalog use cases onto HTTP routes.
type RecordsHandler struct {
	service *application.RecordsService
}

func NewRecordsHandler(service *application.RecordsService) *RecordsHandler {
	return &RecordsHandler{service: service}
}

// RegisterRoutes registers all routes on the ServeMux.
func (h *RecordsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /records", h.handleList)
	mux.HandleFunc("GET /records/{id}", h.handleGet)
	mux.HandleFunc("GET /records/genre/{genre}", h.handleByGenre)
	mux.HandleFunc("GET /records/available", h.handleAvailable)
	mux.HandleFunc("PUT /records/{id}/decrease", h.handleDecrease)
	mux.HandleFunc("PUT /records/{id}/increase", h.handleIncrease)
}

func (h *RecordsHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "Records Service",
		"description": "Vinyl Records Catalog Management",
		"version":     "1.0",
		"endpoints": map[string]string{
			"GET /records":               "List the full catalog",
			"GET /records/{id}":          "Record details",
			"GET /records/genre/{genre}": "Filter records by genre",
			"GET /records/available":     "Records with copies in stock",
			"PUT /records/{id}/decrease": "Allocate a copy (rental)",
			"PUT /records/{id}/increase": "Return a copy to stock",
			"GET /health":                "Service health check",
		},
	})
}

func (h *RecordsHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	total := len(h.service.List(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"service":       serviceName,
		"total_records": total,
		"timestamp":     time.Now().Format(time.RFC3339),
	})
}

func (h *RecordsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "records-service.ListRecords")
	defer span.End()

	records := h.service.List(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"total": len(records), "records": records})
}

func (h *RecordsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "records-service.GetRecord")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "record id must be an integer")
		return
	}

	rec, err := h.service.Get(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordsHandler) handleByGenre(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "records-service.RecordsByGenre")
	defer span.End()

	genre := r.PathValue("genre")
	records := h.service.ByGenre(ctx, genre)
	writeJSON(w, http.StatusOK, map[string]any{"genre": genre, "total": len(records), "records": records})
}

func (h *RecordsHandler) handleAvailable(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "records-service.AvailableRecords")
	defer span.End()

	records := h.service.Available(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"total": len(records), "records": records})
}

// counterOpRequest is the optional body of the counter mutations; the
// gateway uses it to thread the saga's idempotency key through.
type counterOpRequest struct {
	OperationID string `json:"operation_id"`
}

func (h *RecordsHandler) handleDecrease(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "records-service.DecreaseCopies")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "record id must be an integer")
		return
	}
	var req counterOpRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	rec, err := h.service.Decrease(ctx, id, req.OperationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "copy allocated for rental",
		"record":           rec.Title,
		"available_copies": rec.AvailableCopies,
	})
}

func (h *RecordsHandler) handleIncrease(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracerStart(r, "records-service.IncreaseCopies")
	defer span.End()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "record id must be an integer")
		return
	}
	var req counterOpRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	rec, err := h.service.Increase(ctx, id, req.OperationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "copy returned to stock",
		"record":           rec.Title,
		"available_copies": rec.AvailableCopies,
	})
}

func tracerStart(r *http.Request, spanName string) (ctx context.Context, span trace.Span) {
	propagator := otel.GetTextMapPropagator()
	ctx = propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return otel.Tracer(serviceName).Start(ctx, spanName)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoCopiesAvailable), errors.Is(err, domain.ErrAllCopiesInStock):
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
