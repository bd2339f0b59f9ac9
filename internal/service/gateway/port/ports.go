// internal/service/gateway/port/ports.go

// Package port declares the gateway's outbound view of the two backing
// services. The coordinator only ever talks to these interfaces; the HTTP
// adapters in infrastructure/adapter implement them.
package port

import "context"

// Record mirrors the records-service wire representation.
type Record struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	Genre           string  `json:"genre"`
	DailyPrice      float64 `json:"daily_rental_price"`
	TotalCopies     int     `json:"total_copies"`
	AvailableCopies int     `json:"available_copies"`
}

// Customer mirrors the rentals-service wire representation.
type Customer struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	FavoriteGenre  string `json:"favorite_genre"`
	MembershipTier string `json:"membership_tier"`
	MaxRentals     int    `json:"max_rentals"`
	ActiveRentals  int    `json:"active_rentals"`
}

// Rental mirrors the rentals-service wire representation. Dates stay as
// YYYY-MM-DD strings — the gateway never does date arithmetic beyond
// comparing them lexicographically, which the format makes safe.
type Rental struct {
	ID           int     `json:"id"`
	CustomerID   int     `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	RecordID     int     `json:"record_id"`
	RecordTitle  string  `json:"record_title"`
	RentedAt     string  `json:"rented_at"`
	DueDate      string  `json:"due_date"`
	ReturnedAt   *string `json:"returned_at"`
	DailyPrice   float64 `json:"daily_price"`
	RentalDays   int     `json:"rental_days"`
	TotalCost    float64 `json:"total_cost"`
	Status       string  `json:"status"`
	LateFee      float64 `json:"late_fee"`
}

// CreateRentalRequest is the ledger create payload. SagaID is the
// idempotency key of the saga invocation.
type CreateRentalRequest struct {
	CustomerID  int     `json:"customer_id"`
	RecordID    int     `json:"record_id"`
	RecordTitle string  `json:"record_title"`
	DailyPrice  float64 `json:"daily_price"`
	RentalDays  int     `json:"rental_days"`
	SagaID      string  `json:"saga_id,omitempty"`
}

// RecordsService is the gateway's view of the inventory keeper.
type RecordsService interface {
	ListRecords(ctx context.Context) ([]Record, error)
	GetRecord(ctx context.Context, id int) (Record, error)
	RecordsByGenre(ctx context.Context, genre string) ([]Record, error)
	DecreaseCopies(ctx context.Context, id int, opKey string) (int, error)
	IncreaseCopies(ctx context.Context, id int, opKey string) (int, error)
	Health(ctx context.Context) error
}

// RentalsService is the gateway's view of the rental ledger.
type RentalsService interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id int) (Customer, error)
	ListRentals(ctx context.Context) ([]Rental, error)
	GetRental(ctx context.Context, id int) (Rental, error)
	ActiveRentals(ctx context.Context) ([]Rental, error)
	CustomerRentals(ctx context.Context, customerID int) ([]Rental, error)
	CreateRental(ctx context.Context, req CreateRentalRequest) (Rental, error)
	ReturnRental(ctx context.Context, id int) (Rental, float64, error)
	CancelRental(ctx context.Context, id int) error
	ReopenRental(ctx context.Context, id int) error
	Health(ctx context.Context) error
}
