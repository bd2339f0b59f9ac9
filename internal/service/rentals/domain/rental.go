// internal/service/rentals/domain/rental.go

package domain

import (
	"math"
	"time"
)

// Status is the rental lifecycle state. The only transition is
// active -> returned; returned is terminal.
type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
)

// Rental is one loan of one record copy. RecordTitle and DailyPrice are
// snapshots taken at creation so the ledger stays historically accurate even
// if the catalog changes later.
type Rental struct {
	ID           int     `json:"id"`
	CustomerID   int     `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	RecordID     int     `json:"record_id"`
	RecordTitle  string  `json:"record_title"`
	RentedAt     Date    `json:"rented_at"`
	DueDate      Date    `json:"due_date"`
	ReturnedAt   *Date   `json:"returned_at"`
	DailyPrice   float64 `json:"daily_price"`
	RentalDays   int     `json:"rental_days"`
	TotalCost    float64 `json:"total_cost"`
	Status       Status  `json:"status"`
	LateFee      float64 `json:"late_fee"`
}

// NewRental creates an active rental for the customer. The caller assigns
// the ID and has already verified the quota under the customer lock.
func NewRental(id int, customer Customer, recordID int, recordTitle string, dailyPrice float64, rentalDays int, now time.Time) Rental {
	return Rental{
		ID:           id,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		RecordID:     recordID,
		RecordTitle:  recordTitle,
		RentedAt:     NewDate(now),
		DueDate:      NewDate(now.AddDate(0, 0, rentalDays)),
		DailyPrice:   dailyPrice,
		RentalDays:   rentalDays,
		TotalCost:    round2(dailyPrice * float64(rentalDays)),
		Status:       StatusActive,
		LateFee:      0,
	}
}

// MarkReturned transitions the rental to returned and computes the late fee:
// zero when returned on or before the due date, otherwise whole days past
// due times the daily price.
func (r *Rental) MarkReturned(now time.Time) error {
	if r.Status == StatusReturned {
		return ErrRentalAlreadyReturned
	}
	returnedAt := NewDate(now)
	r.ReturnedAt = &returnedAt
	r.Status = StatusReturned
	if now.After(r.DueDate.Time) {
		daysLate := int(now.Sub(r.DueDate.Time).Hours() / 24)
		r.LateFee = round2(float64(daysLate) * r.DailyPrice)
	}
	return nil
}

// Reopen undoes a return. Compensation only: it exists so the coordinator
// can restore the ledger when the inventory restock leg of a return fails.
func (r *Rental) Reopen() error {
	if r.Status != StatusReturned {
		return ErrRentalNotReturned
	}
	r.ReturnedAt = nil
	r.Status = StatusActive
	r.LateFee = 0
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
