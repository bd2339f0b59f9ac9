// internal/service/rentals/domain/repository.go

package domain

import (
	"context"
	"time"
)

// CreateRental carries everything the ledger needs to admit a rental. The
// title and price are snapshots supplied by the coordinator; SagaID, when
// non-empty, is the idempotency key of the saga invocation — replaying the
// same key returns the rental created the first time.
type CreateRental struct {
	CustomerID  int     `json:"customer_id"`
	RecordID    int     `json:"record_id"`
	RecordTitle string  `json:"record_title"`
	DailyPrice  float64 `json:"daily_price"`
	RentalDays  int     `json:"rental_days"`
	SagaID      string  `json:"saga_id,omitempty"`
}

// LedgerRepository owns customers and rentals. The quota check-then-increment
// in CreateRental is atomic per customer: concurrent creates for one customer
// serialise, creates for different customers run in parallel.
type LedgerRepository interface {
	ListCustomers(ctx context.Context) []Customer
	GetCustomer(ctx context.Context, id int) (Customer, error)

	ListRentals(ctx context.Context) []Rental
	GetRental(ctx context.Context, id int) (Rental, error)
	ActiveRentals(ctx context.Context) []Rental
	RentalsByCustomer(ctx context.Context, customerID int) ([]Rental, error)

	CreateRental(ctx context.Context, req CreateRental, now time.Time) (Rental, error)
	ReturnRental(ctx context.Context, id int, now time.Time) (Rental, error)
	CancelRental(ctx context.Context, id int) (Rental, error)
	ReopenRental(ctx context.Context, id int) (Rental, error)
}
