// internal/service/records/domain/record.go

package domain

import "github.com/pkg/errors"

// Record is a vinyl record in the catalog. TotalCopies is fixed at catalog
// load; AvailableCopies is the only mutable field and must stay within
// [0, TotalCopies] at all times.
type Record struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	Genre           string  `json:"genre"`
	DailyPrice      float64 `json:"daily_rental_price"`
	TotalCopies     int     `json:"total_copies"`
	AvailableCopies int     `json:"available_copies"`
}

// Validate checks the catalog-load invariants.
func (r *Record) Validate() error {
	if r.ID <= 0 {
		return errors.Errorf("record %q: id must be positive", r.Title)
	}
	if r.DailyPrice <= 0 {
		return errors.Errorf("record %d: daily price must be positive", r.ID)
	}
	if r.TotalCopies < 0 {
		return errors.Errorf("record %d: total copies must not be negative", r.ID)
	}
	if r.AvailableCopies < 0 || r.AvailableCopies > r.TotalCopies {
		return errors.Errorf("record %d: available copies %d out of range [0, %d]",
			r.ID, r.AvailableCopies, r.TotalCopies)
	}
	return nil
}

// Allocate takes one copy off the shelf for a rental.
func (r *Record) Allocate() error {
	if r.AvailableCopies <= 0 {
		return ErrNoCopiesAvailable
	}
	r.AvailableCopies--
	return nil
}

// Restock puts one copy back after a return.
func (r *Record) Restock() error {
	if r.AvailableCopies >= r.TotalCopies {
		return ErrAllCopiesInStock
	}
	r.AvailableCopies++
	return nil
}
