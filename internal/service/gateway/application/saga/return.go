// internal/service/gateway/application/saga/return.go

package saga

import (
	"context"

	"vinylshop/internal/service/gateway/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NewReturnChain builds the return-rental saga: one read-only precondition
// step, then the ledger return, then the inventory restock.
func NewReturnChain() Handler {
	head := new(LoadRentalHandler)
	head.SetNext(new(MarkReturnedHandler)).
		SetNext(new(RestockCopyHandler))
	return head
}

// LoadRentalHandler fetches the rental and rejects double returns before any
// mutation happens.
type LoadRentalHandler struct {
	NextHandler
}

func (h *LoadRentalHandler) Handle(rc *RentalContext) error {
	ctx, span := rc.Tracer.Start(rc.Ctx, "saga.LoadRental")
	defer span.End()
	span.SetAttributes(attribute.Int("rental.id", rc.RentalID))

	rental, err := rc.Rentals.GetRental(ctx, rc.RentalID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rental lookup failed")
		return err
	}
	if rental.Status == "returned" {
		span.AddEvent("rental already returned, aborting before any mutation")
		return port.ErrRentalAlreadyReturned
	}

	rc.Rental = rental
	return h.executeNext(rc)
}

// MarkReturnedHandler performs the ledger return, the first mutating step.
// Its compensation reopens the rental.
type MarkReturnedHandler struct {
	NextHandler
}

func (h *MarkReturnedHandler) Handle(rc *RentalContext) error {
	ctx, span := rc.Tracer.Start(rc.Ctx, "saga.MarkReturned")
	defer span.End()
	span.SetAttributes(attribute.Int("rental.id", rc.RentalID))

	rental, lateFee, err := rc.Rentals.ReturnRental(ctx, rc.RentalID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger return failed")
		return err
	}
	rc.Rental = rental
	rc.LateFee = lateFee
	span.SetAttributes(attribute.Float64("rental.late_fee", lateFee))

	rc.AddCompensation(func(compCtx context.Context) error {
		compCtx, compSpan := rc.Tracer.Start(compCtx, "saga.compensation.ReopenRental")
		defer compSpan.End()
		compSpan.SetAttributes(attribute.Int("rental.id", rental.ID))
		return rc.Rentals.ReopenRental(compCtx, rental.ID)
	})

	return h.executeNext(rc)
}

// RestockCopyHandler increments the inventory counter, completing the saga.
type RestockCopyHandler struct {
	NextHandler
}

func (h *RestockCopyHandler) Handle(rc *RentalContext) error {
	ctx, span := rc.Tracer.Start(rc.Ctx, "saga.RestockCopy")
	defer span.End()
	span.SetAttributes(attribute.Int("record.id", rc.Rental.RecordID))

	if _, err := rc.Records.IncreaseCopies(ctx, rc.Rental.RecordID, rc.SagaID+":increase"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inventory restock failed")
		return err
	}

	span.AddEvent("copy restocked, saga complete")
	return h.executeNext(rc)
}
