// internal/service/records/domain/repository.go

package domain

import "context"

// RecordRepository owns the catalog. Counter mutations must be atomic per
// record: two mutations on the same record serialise, mutations on different
// records run in parallel. opKey, when non-empty, is an idempotency key — a
// replayed key is a no-op that returns the current state.
type RecordRepository interface {
	List(ctx context.Context) []Record
	Get(ctx context.Context, id int) (Record, error)
	ByGenre(ctx context.Context, genre string) []Record
	Available(ctx context.Context) []Record
	Decrease(ctx context.Context, id int, opKey string) (Record, error)
	Increase(ctx context.Context, id int, opKey string) (Record, error)
}
