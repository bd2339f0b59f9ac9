// internal/service/records/application/service.go

package application

import (
	"context"

	"vinylshop/internal/pkg/logger"
	"vinylshop/internal/service/records/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecordsService exposes the catalog use cases on top of the repository.
type RecordsService struct {
	repo   domain.RecordRepository
	tracer trace.Tracer
}

func NewRecordsService(repo domain.RecordRepository, tracer trace.Tracer) *RecordsService {
	return &RecordsService{repo: repo, tracer: tracer}
}

func (s *RecordsService) List(ctx context.Context) []domain.Record {
	ctx, span := s.tracer.Start(ctx, "service.ListRecords")
	defer span.End()

	records := s.repo.List(ctx)
	span.SetAttributes(attribute.Int("records.total", len(records)))
	return records
}

func (s *RecordsService) Get(ctx context.Context, id int) (domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetRecord")
	defer span.End()
	span.SetAttributes(attribute.Int("record.id", id))

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.Record{}, err
	}
	return rec, nil
}

func (s *RecordsService) ByGenre(ctx context.Context, genre string) []domain.Record {
	ctx, span := s.tracer.Start(ctx, "service.RecordsByGenre")
	defer span.End()
	span.SetAttributes(attribute.String("record.genre", genre))

	records := s.repo.ByGenre(ctx, genre)
	logger.Ctx(ctx).Info().Str("genre", genre).Int("matches", len(records)).Msg("filtered catalog by genre")
	return records
}

func (s *RecordsService) Available(ctx context.Context) []domain.Record {
	ctx, span := s.tracer.Start(ctx, "service.AvailableRecords")
	defer span.End()
	return s.repo.Available(ctx)
}

// Decrease allocates one copy for a rental. opKey is the saga's idempotency
// key; a replay returns the current count without mutating again.
func (s *RecordsService) Decrease(ctx context.Context, id int, opKey string) (domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "service.DecreaseCopies")
	defer span.End()
	span.SetAttributes(attribute.Int("record.id", id), attribute.String("operation.key", opKey))

	rec, err := s.repo.Decrease(ctx, id, opKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Record{}, err
	}
	logger.Ctx(ctx).Info().
		Str("title", rec.Title).
		Int("available", rec.AvailableCopies).
		Int("total", rec.TotalCopies).
		Msg("copy allocated for rental")
	return rec, nil
}

// Increase puts one copy back in stock after a return.
func (s *RecordsService) Increase(ctx context.Context, id int, opKey string) (domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "service.IncreaseCopies")
	defer span.End()
	span.SetAttributes(attribute.Int("record.id", id), attribute.String("operation.key", opKey))

	rec, err := s.repo.Increase(ctx, id, opKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Record{}, err
	}
	logger.Ctx(ctx).Info().
		Str("title", rec.Title).
		Int("available", rec.AvailableCopies).
		Int("total", rec.TotalCopies).
		Msg("copy returned to stock")
	return rec, nil
}
