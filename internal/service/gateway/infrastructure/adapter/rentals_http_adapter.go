// internal/service/gateway/infrastructure/adapter/rentals_http_adapter.go

package adapter

import (
	"context"
	"fmt"

	"vinylshop/internal/pkg/httpclient"
	"vinylshop/internal/service/gateway/port"
)

// RentalsHTTPAdapter implements port.RentalsService against the
// rentals-service HTTP API.
type RentalsHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewRentalsHTTPAdapter(client *httpclient.Client, baseURL string) *RentalsHTTPAdapter {
	return &RentalsHTTPAdapter{client: client, baseURL: baseURL}
}

func (a *RentalsHTTPAdapter) ListCustomers(ctx context.Context) ([]port.Customer, error) {
	var out struct {
		Customers []port.Customer `json:"customers"`
	}
	if err := a.client.Get(ctx, a.baseURL+"/customers", &out); err != nil {
		return nil, unavailable(err)
	}
	return out.Customers, nil
}

func (a *RentalsHTTPAdapter) GetCustomer(ctx context.Context, id int) (port.Customer, error) {
	var c port.Customer
	if err := a.client.Get(ctx, fmt.Sprintf("%s/customers/%d", a.baseURL, id), &c); err != nil {
		return port.Customer{}, mapStatus(err, port.ErrCustomerNotFound, nil)
	}
	return c, nil
}

func (a *RentalsHTTPAdapter) ListRentals(ctx context.Context) ([]port.Rental, error) {
	var out struct {
		Rentals []port.Rental `json:"rentals"`
	}
	if err := a.client.Get(ctx, a.baseURL+"/rentals", &out); err != nil {
		return nil, unavailable(err)
	}
	return out.Rentals, nil
}

func (a *RentalsHTTPAdapter) GetRental(ctx context.Context, id int) (port.Rental, error) {
	var r port.Rental
	if err := a.client.Get(ctx, fmt.Sprintf("%s/rentals/%d", a.baseURL, id), &r); err != nil {
		return port.Rental{}, mapStatus(err, port.ErrRentalNotFound, nil)
	}
	return r, nil
}

func (a *RentalsHTTPAdapter) ActiveRentals(ctx context.Context) ([]port.Rental, error) {
	var out struct {
		Rentals []port.Rental `json:"rentals"`
	}
	if err := a.client.Get(ctx, a.baseURL+"/rentals/active", &out); err != nil {
		return nil, unavailable(err)
	}
	return out.Rentals, nil
}

func (a *RentalsHTTPAdapter) CustomerRentals(ctx context.Context, customerID int) ([]port.Rental, error) {
	var out struct {
		Rentals []port.Rental `json:"rentals"`
	}
	if err := a.client.Get(ctx, fmt.Sprintf("%s/rentals/customer/%d", a.baseURL, customerID), &out); err != nil {
		return nil, mapStatus(err, port.ErrCustomerNotFound, nil)
	}
	return out.Rentals, nil
}

func (a *RentalsHTTPAdapter) CreateRental(ctx context.Context, req port.CreateRentalRequest) (port.Rental, error) {
	var out struct {
		Rental port.Rental `json:"rental"`
	}
	if err := a.client.Post(ctx, a.baseURL+"/rentals", req, &out); err != nil {
		return port.Rental{}, mapStatus(err, port.ErrCustomerNotFound, port.ErrRentalLimitReached)
	}
	return out.Rental, nil
}

func (a *RentalsHTTPAdapter) ReturnRental(ctx context.Context, id int) (port.Rental, float64, error) {
	var out struct {
		Rental  port.Rental `json:"rental"`
		LateFee float64     `json:"late_fee"`
	}
	if err := a.client.Put(ctx, fmt.Sprintf("%s/rentals/%d/return", a.baseURL, id), nil, &out); err != nil {
		return port.Rental{}, 0, mapStatus(err, port.ErrRentalNotFound, port.ErrRentalAlreadyReturned)
	}
	return out.Rental, out.LateFee, nil
}

func (a *RentalsHTTPAdapter) CancelRental(ctx context.Context, id int) error {
	if err := a.client.Put(ctx, fmt.Sprintf("%s/rentals/%d/cancel", a.baseURL, id), nil, nil); err != nil {
		return mapStatus(err, port.ErrRentalNotFound, nil)
	}
	return nil
}

func (a *RentalsHTTPAdapter) ReopenRental(ctx context.Context, id int) error {
	if err := a.client.Put(ctx, fmt.Sprintf("%s/rentals/%d/reopen", a.baseURL, id), nil, nil); err != nil {
		return mapStatus(err, port.ErrRentalNotFound, nil)
	}
	return nil
}

func (a *RentalsHTTPAdapter) Health(ctx context.Context) error {
	if err := a.client.Get(ctx, a.baseURL+"/health", nil); err != nil {
		return unavailable(err)
	}
	return nil
}
