// internal/service/gateway/application/saga/rent.go

package saga

import (
	"context"

	"vinylshop/internal/pkg/logger"
	"vinylshop/internal/service/gateway/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NewRentChain builds the create-rental saga: two read-only precondition
// steps, then the ledger write, then the inventory decrement.
func NewRentChain() Handler {
	head := new(CheckRecordHandler)
	head.SetNext(new(CheckCustomerHandler)).
		SetNext(new(CreateRentalHandler)).
		SetNext(new(AllocateCopyHandler))
	return head
}

// CheckRecordHandler verifies the record exists and has a copy on the shelf.
// Read-only: failing here aborts the saga before anything mutated.
type CheckRecordHandler struct {
	NextHandler
}

func (h *CheckRecordHandler) Handle(rc *RentalContext) error {
	ctx, span := rc.Tracer.Start(rc.Ctx, "saga.CheckRecord")
	defer span.End()
	span.SetAttributes(attribute.Int("record.id", rc.RecordID))

	record, err := rc.Records.GetRecord(ctx, rc.RecordID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record lookup failed")
		return err
	}
	if record.AvailableCopies <= 0 {
		span.AddEvent("no copies available, aborting before any mutation")
		return port.ErrNoCopiesAvailable
	}

	rc.Record = record
	return h.executeNext(rc)
}

// CheckCustomerHandler verifies the customer exists and is under quota.
// Read-only; the ledger re-checks the quota at the authoritative write.
type CheckCustomerHandler struct {
	NextHandler
}

func (h *CheckCustomerHandler) Handle(rc *RentalContext) error {
	ctx, span := rc.Tracer.Start(rc.Ctx, "saga.CheckCustomer")
	defer span.End()
	span.SetAttributes(attribute.Int("customer.id", rc.CustomerID))

	customer, err := rc.Rentals.GetCustomer(ctx, rc.CustomerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "customer lookup failed")
		return err
	}
	if customer.ActiveRentals >= customer.MaxRentals {
		span.AddEvent("rental limit reached, aborting before any mutation")
		return port.ErrRentalLimitReached
	}

	rc.Customer = customer
	logger.Ctx(ctx).Info().
		Str("customer", customer.Name).
		Str("record", rc.Record.Title).
		Msg("preconditions passed, starting mutations")
	return h.executeNext(rc)
}

// CreateRentalHandler performs the first mutating step: the ledger write.
// Its compensation cancels the rental as if it never happened.
type CreateRentalHandler struct {
	NextHandler
}

func (h *CreateRentalHandler) Handle(rc *RentalContext) error {
	ctx, span := rc.Tracer.Start(rc.Ctx, "saga.CreateRental")
	defer span.End()

	rental, err := rc.Rentals.CreateRental(ctx, port.CreateRentalRequest{
		CustomerID:  rc.CustomerID,
		RecordID:    rc.RecordID,
		RecordTitle: rc.Record.Title,
		DailyPrice:  rc.Record.DailyPrice,
		RentalDays:  rc.RentalDays,
		SagaID:      rc.SagaID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger create failed")
		return err
	}
	rc.Rental = rental
	span.SetAttributes(attribute.Int("rental.id", rental.ID))

	rc.AddCompensation(func(compCtx context.Context) error {
		compCtx, compSpan := rc.Tracer.Start(compCtx, "saga.compensation.CancelRental")
		defer compSpan.End()
		compSpan.SetAttributes(attribute.Int("rental.id", rental.ID))
		return rc.Rentals.CancelRental(compCtx, rental.ID)
	})

	return h.executeNext(rc)
}

// AllocateCopyHandler decrements the inventory counter, completing the saga.
type AllocateCopyHandler struct {
	NextHandler
}

func (h *AllocateCopyHandler) Handle(rc *RentalContext) error {
	ctx, span := rc.Tracer.Start(rc.Ctx, "saga.AllocateCopy")
	defer span.End()
	span.SetAttributes(attribute.Int("record.id", rc.RecordID))

	if _, err := rc.Records.DecreaseCopies(ctx, rc.RecordID, rc.SagaID+":decrease"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inventory decrement failed")
		return err
	}

	span.AddEvent("copy allocated, saga complete")
	return h.executeNext(rc)
}
