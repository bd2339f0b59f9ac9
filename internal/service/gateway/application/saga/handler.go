// internal/service/gateway/application/saga/handler.go

// Package saga implements the coordinator's multi-step operations as a
// chain of handlers with LIFO compensation. Read-only steps run first and
// abort cheaply; every mutating step registers the action that undoes it, so
// a failure after the first mutation rolls the system back instead of
// leaving the two services disagreeing.
package saga

import (
	"context"
	"sync"

	"vinylshop/internal/pkg/logger"
	"vinylshop/internal/service/gateway/port"

	"go.opentelemetry.io/otel/trace"
)

// RentalContext carries one saga invocation through the chain. SagaID is the
// idempotency key threaded into every mutating downstream call.
type RentalContext struct {
	Ctx    context.Context
	Tracer trace.Tracer
	SagaID string

	Records port.RecordsService
	Rentals port.RentalsService

	// Create-rental inputs.
	CustomerID int
	RecordID   int
	RentalDays int

	// Return-rental input.
	RentalID int

	// Populated as the chain advances.
	Record   port.Record
	Customer port.Customer
	Rental   port.Rental
	LateFee  float64

	compensations []func(ctx context.Context) error
	compLock      sync.Mutex
}

// AddCompensation registers an undo action. Compensations run LIFO so the
// most recent mutation is reversed first.
func (c *RentalContext) AddCompensation(comp func(ctx context.Context) error) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context) error{comp}, c.compensations...)
}

// TriggerCompensation executes the registered undo actions and reports how
// many ran. It uses a context detached from the caller's so a disconnected
// client cannot leave the system half-rolled-back. A failed compensation is
// logged for manual reconciliation; the remaining ones still run.
func (c *RentalContext) TriggerCompensation(ctx context.Context) int {
	c.compLock.Lock()
	defer c.compLock.Unlock()

	ctx = context.WithoutCancel(ctx)
	logger.Ctx(ctx).Warn().
		Str("saga_id", c.SagaID).
		Int("compensations", len(c.compensations)).
		Msg("saga failed after a mutating step, compensating")

	for _, comp := range c.compensations {
		if err := comp(ctx); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("saga_id", c.SagaID).
				Msg("compensation failed, manual reconciliation required")
		}
	}
	return len(c.compensations)
}

// Handler is one step of a saga chain.
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(rc *RentalContext) error
}

// NextHandler provides the chain plumbing steps embed.
type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(rc *RentalContext) error {
	if h.next != nil {
		return h.next.Handle(rc)
	}
	return nil
}
