// internal/service/records/infrastructure/memstore.go

package infrastructure

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	"vinylshop/internal/service/records/domain"

	"github.com/pkg/errors"
)

// entry pairs a record with its own mutex so check-then-mutate sequences on
// one record serialise without blocking the rest of the catalog. appliedOps
// remembers idempotency keys of counter mutations already applied.
type entry struct {
	mu         sync.Mutex
	rec        domain.Record
	appliedOps map[string]struct{}
}

// MemStore is the in-memory catalog store. The outer RWMutex only guards the
// map itself; records are never added or removed after load, so reads mostly
// take the shared lock.
type MemStore struct {
	mu      sync.RWMutex
	records map[int]*entry
}

// NewMemStore builds a store from a loaded catalog, validating every record.
func NewMemStore(records []domain.Record) (*MemStore, error) {
	s := &MemStore{records: make(map[int]*entry, len(records))}
	for i := range records {
		rec := records[i]
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		if _, ok := s.records[rec.ID]; ok {
			return nil, errors.Errorf("duplicate record id %d in catalog", rec.ID)
		}
		s.records[rec.ID] = &entry{rec: rec, appliedOps: make(map[string]struct{})}
	}
	return s, nil
}

// NewMemStoreFromFile loads the JSON catalog file produced at deploy time.
func NewMemStoreFromFile(path string) (*MemStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog file %s", path)
	}
	var records []domain.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrapf(err, "parse catalog file %s", path)
	}
	return NewMemStore(records)
}

func (s *MemStore) List(_ context.Context) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Record, 0, len(s.records))
	for _, e := range s.records {
		e.mu.Lock()
		out = append(out, e.rec)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) Get(_ context.Context, id int) (domain.Record, error) {
	e, err := s.entry(id)
	if err != nil {
		return domain.Record{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec, nil
}

func (s *MemStore) ByGenre(ctx context.Context, genre string) []domain.Record {
	all := s.List(ctx)
	out := make([]domain.Record, 0)
	for _, rec := range all {
		if strings.EqualFold(rec.Genre, genre) {
			out = append(out, rec)
		}
	}
	return out
}

func (s *MemStore) Available(ctx context.Context) []domain.Record {
	all := s.List(ctx)
	out := make([]domain.Record, 0)
	for _, rec := range all {
		if rec.AvailableCopies > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// Decrease allocates one copy of the record for a rental.
func (s *MemStore) Decrease(_ context.Context, id int, opKey string) (domain.Record, error) {
	return s.mutate(id, opKey, (*domain.Record).Allocate)
}

// Increase puts one copy of the record back in stock.
func (s *MemStore) Increase(_ context.Context, id int, opKey string) (domain.Record, error) {
	return s.mutate(id, opKey, (*domain.Record).Restock)
}

func (s *MemStore) mutate(id int, opKey string, op func(*domain.Record) error) (domain.Record, error) {
	e, err := s.entry(id)
	if err != nil {
		return domain.Record{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if opKey != "" {
		if _, seen := e.appliedOps[opKey]; seen {
			return e.rec, nil
		}
	}
	if err := op(&e.rec); err != nil {
		return domain.Record{}, err
	}
	if opKey != "" {
		e.appliedOps[opKey] = struct{}{}
	}
	return e.rec, nil
}

func (s *MemStore) entry(id int) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return e, nil
}
