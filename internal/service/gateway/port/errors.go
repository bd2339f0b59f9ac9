// internal/service/gateway/port/errors.go

package port

import "errors"

// Sentinels the adapters decode downstream failures into, so the saga and
// the HTTP layer work with typed errors instead of status codes.
var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrNoCopiesAvailable     = errors.New("no copies available")
	ErrAllCopiesInStock      = errors.New("all copies already in stock")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrRentalNotFound        = errors.New("rental not found")
	ErrRentalLimitReached    = errors.New("rental limit reached")
	ErrRentalAlreadyReturned = errors.New("rental already returned")

	// ErrUnavailable collapses every transport failure, timeout and 5xx
	// from a backing service into one caller-visible error kind.
	ErrUnavailable = errors.New("backing service unavailable")
)
