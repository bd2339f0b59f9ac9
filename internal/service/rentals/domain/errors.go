// internal/service/rentals/domain/errors.go

package domain

import "errors"

var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrRentalNotFound        = errors.New("rental not found")
	ErrRentalLimitReached    = errors.New("rental limit reached")
	ErrRentalAlreadyReturned = errors.New("rental already returned")
	ErrRentalNotActive       = errors.New("rental is not active")
	ErrRentalNotReturned     = errors.New("rental is not returned")
)
