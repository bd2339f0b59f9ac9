// internal/service/rentals/infrastructure/memstore.go

package infrastructure

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"vinylshop/internal/service/rentals/domain"

	"github.com/pkg/errors"
)

// customerEntry pairs a customer with its own mutex. The mutex serialises the
// quota check-then-increment for that customer; operations on different
// customers do not contend.
type customerEntry struct {
	mu sync.Mutex
	c  domain.Customer
}

// MemStore is the in-memory ledger. Lock ordering is always customer mutex
// first, then rentalsMu — never the other way around.
type MemStore struct {
	customersMu sync.RWMutex
	customers   map[int]*customerEntry

	// rentalsMu guards the rentals map, every rental's fields, the saga
	// index and the ID counter.
	rentalsMu sync.RWMutex
	rentals   map[int]*domain.Rental
	sagaIndex map[string]int
	nextID    int
}

// NewMemStore builds a ledger from loaded seed data.
func NewMemStore(customers []domain.Customer, rentals []domain.Rental) (*MemStore, error) {
	s := &MemStore{
		customers: make(map[int]*customerEntry, len(customers)),
		rentals:   make(map[int]*domain.Rental, len(rentals)),
		sagaIndex: make(map[string]int),
	}
	for i := range customers {
		c := customers[i]
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := s.customers[c.ID]; ok {
			return nil, errors.Errorf("duplicate customer id %d in seed data", c.ID)
		}
		s.customers[c.ID] = &customerEntry{c: c}
	}
	for i := range rentals {
		r := rentals[i]
		if _, ok := s.rentals[r.ID]; ok {
			return nil, errors.Errorf("duplicate rental id %d in seed data", r.ID)
		}
		if _, ok := s.customers[r.CustomerID]; !ok {
			return nil, errors.Errorf("rental %d references unknown customer %d", r.ID, r.CustomerID)
		}
		s.rentals[r.ID] = &r
		if r.ID > s.nextID {
			s.nextID = r.ID
		}
	}
	return s, nil
}

// NewMemStoreFromFiles loads the customer and rental seed files. A missing
// rentals file yields an empty ledger.
func NewMemStoreFromFiles(customersPath, rentalsPath string) (*MemStore, error) {
	rawCustomers, err := os.ReadFile(customersPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read customers file %s", customersPath)
	}
	var customers []domain.Customer
	if err := json.Unmarshal(rawCustomers, &customers); err != nil {
		return nil, errors.Wrapf(err, "parse customers file %s", customersPath)
	}

	var rentals []domain.Rental
	if rawRentals, err := os.ReadFile(rentalsPath); err == nil {
		if err := json.Unmarshal(rawRentals, &rentals); err != nil {
			return nil, errors.Wrapf(err, "parse rentals file %s", rentalsPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "read rentals file %s", rentalsPath)
	}

	return NewMemStore(customers, rentals)
}

func (s *MemStore) ListCustomers(_ context.Context) []domain.Customer {
	s.customersMu.RLock()
	defer s.customersMu.RUnlock()
	out := make([]domain.Customer, 0, len(s.customers))
	for _, e := range s.customers {
		e.mu.Lock()
		out = append(out, e.c)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) GetCustomer(_ context.Context, id int) (domain.Customer, error) {
	e, err := s.customerEntry(id)
	if err != nil {
		return domain.Customer{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.c, nil
}

func (s *MemStore) ListRentals(_ context.Context) []domain.Rental {
	s.rentalsMu.RLock()
	defer s.rentalsMu.RUnlock()
	return s.collect(func(*domain.Rental) bool { return true })
}

func (s *MemStore) GetRental(_ context.Context, id int) (domain.Rental, error) {
	s.rentalsMu.RLock()
	defer s.rentalsMu.RUnlock()
	r, ok := s.rentals[id]
	if !ok {
		return domain.Rental{}, domain.ErrRentalNotFound
	}
	return *r, nil
}

func (s *MemStore) ActiveRentals(_ context.Context) []domain.Rental {
	s.rentalsMu.RLock()
	defer s.rentalsMu.RUnlock()
	return s.collect(func(r *domain.Rental) bool { return r.Status == domain.StatusActive })
}

func (s *MemStore) RentalsByCustomer(_ context.Context, customerID int) ([]domain.Rental, error) {
	if _, err := s.customerEntry(customerID); err != nil {
		return nil, err
	}
	s.rentalsMu.RLock()
	defer s.rentalsMu.RUnlock()
	return s.collect(func(r *domain.Rental) bool { return r.CustomerID == customerID }), nil
}

// CreateRental admits a rental, re-checking the quota under the customer
// lock. A replayed SagaID returns the rental created by the first attempt.
func (s *MemStore) CreateRental(_ context.Context, req domain.CreateRental, now time.Time) (domain.Rental, error) {
	e, err := s.customerEntry(req.CustomerID)
	if err != nil {
		return domain.Rental{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.rentalsMu.Lock()
	defer s.rentalsMu.Unlock()

	if req.SagaID != "" {
		if id, seen := s.sagaIndex[req.SagaID]; seen {
			if r, ok := s.rentals[id]; ok {
				return *r, nil
			}
		}
	}

	if !e.c.CanRent() {
		return domain.Rental{}, domain.ErrRentalLimitReached
	}

	s.nextID++
	rental := domain.NewRental(s.nextID, e.c, req.RecordID, req.RecordTitle, req.DailyPrice, req.RentalDays, now)
	s.rentals[rental.ID] = &rental
	if req.SagaID != "" {
		s.sagaIndex[req.SagaID] = rental.ID
	}
	e.c.ActiveRentals++

	return rental, nil
}

// ReturnRental marks the rental returned and releases the customer's quota
// slot.
func (s *MemStore) ReturnRental(_ context.Context, id int, now time.Time) (domain.Rental, error) {
	return s.transition(id, func(r *domain.Rental, e *customerEntry) error {
		if err := r.MarkReturned(now); err != nil {
			return err
		}
		e.c.ActiveRentals--
		return nil
	})
}

// CancelRental removes an active rental as if it never happened. This is the
// compensating action for a create whose inventory leg failed.
func (s *MemStore) CancelRental(_ context.Context, id int) (domain.Rental, error) {
	return s.transition(id, func(r *domain.Rental, e *customerEntry) error {
		if r.Status != domain.StatusActive {
			return domain.ErrRentalNotActive
		}
		delete(s.rentals, r.ID)
		e.c.ActiveRentals--
		return nil
	})
}

// ReopenRental undoes a return. This is the compensating action for a return
// whose inventory leg failed.
func (s *MemStore) ReopenRental(_ context.Context, id int) (domain.Rental, error) {
	return s.transition(id, func(r *domain.Rental, e *customerEntry) error {
		if err := r.Reopen(); err != nil {
			return err
		}
		e.c.ActiveRentals++
		return nil
	})
}

// transition runs fn on the rental and its owning customer with both locks
// held, re-resolving the rental after the locks are acquired.
func (s *MemStore) transition(id int, fn func(*domain.Rental, *customerEntry) error) (domain.Rental, error) {
	s.rentalsMu.RLock()
	r, ok := s.rentals[id]
	if !ok {
		s.rentalsMu.RUnlock()
		return domain.Rental{}, domain.ErrRentalNotFound
	}
	customerID := r.CustomerID
	s.rentalsMu.RUnlock()

	e, err := s.customerEntry(customerID)
	if err != nil {
		return domain.Rental{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.rentalsMu.Lock()
	defer s.rentalsMu.Unlock()

	// The rental may have changed between the lookup and taking the locks.
	r, ok = s.rentals[id]
	if !ok {
		return domain.Rental{}, domain.ErrRentalNotFound
	}
	if err := fn(r, e); err != nil {
		return domain.Rental{}, err
	}
	return *r, nil
}

// collect copies matching rentals; callers hold at least rentalsMu.RLock.
func (s *MemStore) collect(match func(*domain.Rental) bool) []domain.Rental {
	out := make([]domain.Rental, 0)
	for _, r := range s.rentals {
		if match(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) customerEntry(id int) (*customerEntry, error) {
	s.customersMu.RLock()
	defer s.customersMu.RUnlock()
	e, ok := s.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return e, nil
}
