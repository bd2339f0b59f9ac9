// internal/service/records/domain/errors.go

package domain

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrNoCopiesAvailable = errors.New("no copies available")
	ErrAllCopiesInStock  = errors.New("all copies already in stock")
)
