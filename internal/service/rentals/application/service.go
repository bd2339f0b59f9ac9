// internal/service/rentals/application/service.go

package application

import (
	"context"
	"time"

	"vinylshop/internal/pkg/logger"
	"vinylshop/internal/service/rentals/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RentalsService exposes the ledger use cases. now is injectable so tests
// can pin the clock for late-fee assertions.
type RentalsService struct {
	repo   domain.LedgerRepository
	tracer trace.Tracer
	now    func() time.Time
}

func NewRentalsService(repo domain.LedgerRepository, tracer trace.Tracer) *RentalsService {
	return &RentalsService{repo: repo, tracer: tracer, now: time.Now}
}

// WithClock replaces the service clock. Test hook.
func (s *RentalsService) WithClock(now func() time.Time) *RentalsService {
	s.now = now
	return s
}

func (s *RentalsService) ListCustomers(ctx context.Context) []domain.Customer {
	ctx, span := s.tracer.Start(ctx, "service.ListCustomers")
	defer span.End()
	return s.repo.ListCustomers(ctx)
}

func (s *RentalsService) GetCustomer(ctx context.Context, id int) (domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetCustomer")
	defer span.End()
	span.SetAttributes(attribute.Int("customer.id", id))

	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.Customer{}, err
	}
	return c, nil
}

func (s *RentalsService) ListRentals(ctx context.Context) []domain.Rental {
	ctx, span := s.tracer.Start(ctx, "service.ListRentals")
	defer span.End()
	return s.repo.ListRentals(ctx)
}

func (s *RentalsService) GetRental(ctx context.Context, id int) (domain.Rental, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetRental")
	defer span.End()
	span.SetAttributes(attribute.Int("rental.id", id))

	r, err := s.repo.GetRental(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.Rental{}, err
	}
	return r, nil
}

func (s *RentalsService) ActiveRentals(ctx context.Context) []domain.Rental {
	ctx, span := s.tracer.Start(ctx, "service.ActiveRentals")
	defer span.End()
	return s.repo.ActiveRentals(ctx)
}

func (s *RentalsService) RentalsByCustomer(ctx context.Context, customerID int) ([]domain.Rental, error) {
	ctx, span := s.tracer.Start(ctx, "service.RentalsByCustomer")
	defer span.End()
	span.SetAttributes(attribute.Int("customer.id", customerID))

	rentals, err := s.repo.RentalsByCustomer(ctx, customerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rentals, nil
}

// CreateRental admits a new rental. The quota is enforced here even though
// the coordinator pre-checks it — this is the authoritative write.
func (s *RentalsService) CreateRental(ctx context.Context, req domain.CreateRental) (domain.Rental, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateRental")
	defer span.End()
	span.SetAttributes(
		attribute.Int("customer.id", req.CustomerID),
		attribute.Int("record.id", req.RecordID),
		attribute.Int("rental.days", req.RentalDays),
		attribute.String("saga.id", req.SagaID),
	)

	rental, err := s.repo.CreateRental(ctx, req, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Rental{}, err
	}
	logger.Ctx(ctx).Info().
		Int("rental_id", rental.ID).
		Str("customer", rental.CustomerName).
		Str("record", rental.RecordTitle).
		Float64("total_cost", rental.TotalCost).
		Msg("rental registered")
	return rental, nil
}

// ReturnRental closes a rental and computes its late fee.
func (s *RentalsService) ReturnRental(ctx context.Context, id int) (domain.Rental, error) {
	ctx, span := s.tracer.Start(ctx, "service.ReturnRental")
	defer span.End()
	span.SetAttributes(attribute.Int("rental.id", id))

	rental, err := s.repo.ReturnRental(ctx, id, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Rental{}, err
	}
	logger.Ctx(ctx).Info().
		Int("rental_id", rental.ID).
		Str("record", rental.RecordTitle).
		Float64("late_fee", rental.LateFee).
		Msg("rental returned")
	return rental, nil
}

// CancelRental is the compensating action for CreateRental.
func (s *RentalsService) CancelRental(ctx context.Context, id int) (domain.Rental, error) {
	ctx, span := s.tracer.Start(ctx, "service.CancelRental (compensation)")
	defer span.End()
	span.SetAttributes(attribute.Int("rental.id", id))

	rental, err := s.repo.CancelRental(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.Rental{}, err
	}
	logger.Ctx(ctx).Warn().Int("rental_id", id).Msg("rental cancelled by saga compensation")
	return rental, nil
}

// ReopenRental is the compensating action for ReturnRental.
func (s *RentalsService) ReopenRental(ctx context.Context, id int) (domain.Rental, error) {
	ctx, span := s.tracer.Start(ctx, "service.ReopenRental (compensation)")
	defer span.End()
	span.SetAttributes(attribute.Int("rental.id", id))

	rental, err := s.repo.ReopenRental(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.Rental{}, err
	}
	logger.Ctx(ctx).Warn().Int("rental_id", id).Msg("rental reopened by saga compensation")
	return rental, nil
}
