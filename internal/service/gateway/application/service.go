// internal/service/gateway/application/service.go

// Package application hosts the coordinator's use cases: the two sagas and
// the read-side aggregations that join data from both backing services.
package application

import (
	"context"
	"math"
	"sort"
	"time"

	"vinylshop/internal/pkg/logger"
	"vinylshop/internal/service/gateway/application/saga"
	"vinylshop/internal/service/gateway/port"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const maxRecommendations = 5

// GatewayService orchestrates the records and rentals services.
type GatewayService struct {
	records port.RecordsService
	rentals port.RentalsService
	tracer  trace.Tracer
	now     func() time.Time
}

func NewGatewayService(records port.RecordsService, rentals port.RentalsService, tracer trace.Tracer) *GatewayService {
	return &GatewayService{
		records: records,
		rentals: rentals,
		tracer:  tracer,
		now:     time.Now,
	}
}

// RentRecord runs the create-rental saga. On failure after a mutating step
// the registered compensations roll both services back.
func (s *GatewayService) RentRecord(ctx context.Context, req RentRequest) (port.Rental, error) {
	ctx, span := s.tracer.Start(ctx, "gateway.RentRecord")
	defer span.End()

	rc := &saga.RentalContext{
		Ctx:        ctx,
		Tracer:     s.tracer,
		SagaID:     uuid.NewString(),
		Records:    s.records,
		Rentals:    s.rentals,
		CustomerID: req.CustomerID,
		RecordID:   req.RecordID,
		RentalDays: req.RentalDays,
	}
	span.SetAttributes(
		attribute.String("saga.id", rc.SagaID),
		attribute.Int("customer.id", req.CustomerID),
		attribute.Int("record.id", req.RecordID),
	)

	if err := saga.NewRentChain().Handle(rc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rent saga failed")
		s.finishSaga(ctx, rc, "rent", err)
		return port.Rental{}, err
	}

	sagasTotal.WithLabelValues("rent", "success").Inc()
	logger.Ctx(ctx).Info().
		Str("saga_id", rc.SagaID).
		Int("rental_id", rc.Rental.ID).
		Msg("rent saga completed")
	return rc.Rental, nil
}

// ReturnRental runs the return-rental saga and reports the late fee charged.
func (s *GatewayService) ReturnRental(ctx context.Context, rentalID int) (port.Rental, float64, error) {
	ctx, span := s.tracer.Start(ctx, "gateway.ReturnRental")
	defer span.End()

	rc := &saga.RentalContext{
		Ctx:      ctx,
		Tracer:   s.tracer,
		SagaID:   uuid.NewString(),
		Records:  s.records,
		Rentals:  s.rentals,
		RentalID: rentalID,
	}
	span.SetAttributes(
		attribute.String("saga.id", rc.SagaID),
		attribute.Int("rental.id", rentalID),
	)

	if err := saga.NewReturnChain().Handle(rc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "return saga failed")
		s.finishSaga(ctx, rc, "return", err)
		return port.Rental{}, 0, err
	}

	sagasTotal.WithLabelValues("return", "success").Inc()
	logger.Ctx(ctx).Info().
		Str("saga_id", rc.SagaID).
		Int("rental_id", rentalID).
		Float64("late_fee", rc.LateFee).
		Msg("return saga completed")
	return rc.Rental, rc.LateFee, nil
}

// finishSaga rolls back any completed mutations and records the outcome.
func (s *GatewayService) finishSaga(ctx context.Context, rc *saga.RentalContext, operation string, err error) {
	if n := rc.TriggerCompensation(ctx); n > 0 {
		sagaCompensationsTotal.WithLabelValues(operation).Inc()
	}
	outcome := "rejected"
	if errors.Is(err, port.ErrUnavailable) {
		outcome = "unavailable"
	}
	sagasTotal.WithLabelValues(operation, outcome).Inc()
}

// Availability joins the catalog entry for a record with the ledger's active
// rentals of it. Both reads run in parallel.
func (s *GatewayService) Availability(ctx context.Context, recordID int) (*AvailabilityResponse, error) {
	ctx, span := s.tracer.Start(ctx, "gateway.Availability")
	defer span.End()
	span.SetAttributes(attribute.Int("record.id", recordID))

	var (
		record port.Record
		active []port.Rental
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.records.GetRecord(gctx, recordID)
		return err
	})
	g.Go(func() error {
		var err error
		active, err = s.rentals.ActiveRentals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	var (
		rentedBy      []string
		nextAvailable *string
	)
	for _, r := range active {
		if r.RecordID != recordID {
			continue
		}
		rentedBy = append(rentedBy, r.CustomerName)
		if nextAvailable == nil || r.DueDate < *nextAvailable {
			due := r.DueDate
			nextAvailable = &due
		}
	}
	if record.AvailableCopies > 0 {
		nextAvailable = nil
	}
	if rentedBy == nil {
		rentedBy = []string{}
	}

	return &AvailabilityResponse{
		Record: RecordSummary{
			ID:         record.ID,
			Title:      record.Title,
			Artist:     record.Artist,
			Genre:      record.Genre,
			DailyPrice: record.DailyPrice,
		},
		Availability: Availability{
			AvailableCopies:   record.AvailableCopies,
			TotalCopies:       record.TotalCopies,
			IsAvailable:       record.AvailableCopies > 0,
			CurrentlyRentedBy: rentedBy,
			NextAvailable:     nextAvailable,
		},
	}, nil
}

// Profile aggregates a customer's identity and rental history.
func (s *GatewayService) Profile(ctx context.Context, customerID int) (*ProfileResponse, error) {
	ctx, span := s.tracer.Start(ctx, "gateway.Profile")
	defer span.End()
	span.SetAttributes(attribute.Int("customer.id", customerID))

	var (
		customer port.Customer
		rentals  []port.Rental
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customer, err = s.rentals.GetCustomer(gctx, customerID)
		return err
	})
	g.Go(func() error {
		var err error
		rentals, err = s.rentals.CustomerRentals(gctx, customerID)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	activeRentals := []port.Rental{}
	var totalSpent float64
	for _, r := range rentals {
		totalSpent += r.TotalCost + r.LateFee
		if r.Status == "active" {
			activeRentals = append(activeRentals, r)
		}
	}

	return &ProfileResponse{
		Customer:      customer,
		ActiveRentals: activeRentals,
		Statistics: ProfileStatistics{
			TotalRentals:  len(rentals),
			ActiveCount:   len(activeRentals),
			TotalSpent:    round2(totalSpent),
			FavoriteGenre: customer.FavoriteGenre,
		},
		FetchedFrom: []string{"rentals-service"},
	}, nil
}

// Recommendations lists available records in the customer's favorite genre,
// capped at maxRecommendations, cheapest first.
func (s *GatewayService) Recommendations(ctx context.Context, customerID int) (*RecommendationsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "gateway.Recommendations")
	defer span.End()
	span.SetAttributes(attribute.Int("customer.id", customerID))

	customer, err := s.rentals.GetCustomer(ctx, customerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	inGenre, err := s.records.RecordsByGenre(ctx, customer.FavoriteGenre)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	available := []port.Record{}
	for _, r := range inGenre {
		if r.AvailableCopies > 0 {
			available = append(available, r)
		}
	}
	sort.Slice(available, func(i, j int) bool {
		return available[i].DailyPrice < available[j].DailyPrice
	})

	recommendations := available
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	return &RecommendationsResponse{
		Customer: CustomerSummary{
			ID:            customer.ID,
			Name:          customer.Name,
			FavoriteGenre: customer.FavoriteGenre,
		},
		Recommendations: recommendations,
		TotalAvailable:  len(available),
		GeneratedBy:     "gateway",
	}, nil
}

// Health probes both backing services in parallel. The gateway itself is
// always "up"; the overall status degrades when a dependency is down.
func (s *GatewayService) Health(ctx context.Context) HealthResponse {
	ctx, span := s.tracer.Start(ctx, "gateway.Health")
	defer span.End()

	probe := func(check func(context.Context) error) string {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := check(probeCtx); err != nil {
			return "down"
		}
		return "up"
	}

	var recordsStatus, rentalsStatus string
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		recordsStatus = probe(s.records.Health)
		return nil
	})
	g.Go(func() error {
		rentalsStatus = probe(s.rentals.Health)
		return nil
	})
	_ = g.Wait()

	status := "healthy"
	if recordsStatus != "up" || rentalsStatus != "up" {
		status = "degraded"
	}

	return HealthResponse{
		Status:  status,
		Gateway: "up",
		Services: map[string]string{
			"records-service": recordsStatus,
			"rentals-service": rentalsStatus,
		},
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
