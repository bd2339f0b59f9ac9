// internal/service/rentals/domain/customer.go

package domain

import "github.com/pkg/errors"

// Customer is a shop member. ActiveRentals counts rentals with StatusActive
// and must always match the rental ledger; MaxRentals is the membership
// quota enforced at rental creation.
type Customer struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	FavoriteGenre  string `json:"favorite_genre"`
	MembershipTier string `json:"membership_tier"`
	MaxRentals     int    `json:"max_rentals"`
	ActiveRentals  int    `json:"active_rentals"`
}

// Validate checks the seed-load invariants.
func (c *Customer) Validate() error {
	if c.ID <= 0 {
		return errors.Errorf("customer %q: id must be positive", c.Name)
	}
	if c.MaxRentals <= 0 {
		return errors.Errorf("customer %d: max rentals must be positive", c.ID)
	}
	if c.ActiveRentals < 0 {
		return errors.Errorf("customer %d: active rentals must not be negative", c.ID)
	}
	return nil
}

// CanRent reports whether the customer is under the rental quota.
func (c *Customer) CanRent() bool {
	return c.ActiveRentals < c.MaxRentals
}
