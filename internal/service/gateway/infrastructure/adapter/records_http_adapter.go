// internal/service/gateway/infrastructure/adapter/records_http_adapter.go

package adapter

import (
	"context"
	"fmt"
	"net/http"

	"vinylshop/internal/pkg/httpclient"
	"vinylshop/internal/service/gateway/port"

	"github.com/pkg/errors"
)

// RecordsHTTPAdapter implements port.RecordsService against the
// records-service HTTP API.
type RecordsHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewRecordsHTTPAdapter(client *httpclient.Client, baseURL string) *RecordsHTTPAdapter {
	return &RecordsHTTPAdapter{client: client, baseURL: baseURL}
}

func (a *RecordsHTTPAdapter) ListRecords(ctx context.Context) ([]port.Record, error) {
	var out struct {
		Records []port.Record `json:"records"`
	}
	if err := a.client.Get(ctx, a.baseURL+"/records", &out); err != nil {
		return nil, unavailable(err)
	}
	return out.Records, nil
}

func (a *RecordsHTTPAdapter) GetRecord(ctx context.Context, id int) (port.Record, error) {
	var rec port.Record
	if err := a.client.Get(ctx, fmt.Sprintf("%s/records/%d", a.baseURL, id), &rec); err != nil {
		return port.Record{}, mapStatus(err, port.ErrRecordNotFound, nil)
	}
	return rec, nil
}

func (a *RecordsHTTPAdapter) RecordsByGenre(ctx context.Context, genre string) ([]port.Record, error) {
	var out struct {
		Records []port.Record `json:"records"`
	}
	if err := a.client.Get(ctx, a.baseURL+"/records/genre/"+genre, &out); err != nil {
		return nil, unavailable(err)
	}
	return out.Records, nil
}

func (a *RecordsHTTPAdapter) DecreaseCopies(ctx context.Context, id int, opKey string) (int, error) {
	return a.counterOp(ctx, id, "decrease", opKey, port.ErrNoCopiesAvailable)
}

func (a *RecordsHTTPAdapter) IncreaseCopies(ctx context.Context, id int, opKey string) (int, error) {
	return a.counterOp(ctx, id, "increase", opKey, port.ErrAllCopiesInStock)
}

func (a *RecordsHTTPAdapter) counterOp(ctx context.Context, id int, op, opKey string, conflict error) (int, error) {
	body := map[string]string{"operation_id": opKey}
	var out struct {
		AvailableCopies int `json:"available_copies"`
	}
	err := a.client.Put(ctx, fmt.Sprintf("%s/records/%d/%s", a.baseURL, id, op), body, &out)
	if err != nil {
		return 0, mapStatus(err, port.ErrRecordNotFound, conflict)
	}
	return out.AvailableCopies, nil
}

func (a *RecordsHTTPAdapter) Health(ctx context.Context) error {
	if err := a.client.Get(ctx, a.baseURL+"/health", nil); err != nil {
		return unavailable(err)
	}
	return nil
}

// mapStatus turns a downstream status error into the matching sentinel:
// 404 becomes notFound, 4xx becomes conflict (when given), everything else
// collapses into ErrUnavailable.
func mapStatus(err error, notFound, conflict error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusNotFound && notFound != nil:
			return notFound
		case statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 && conflict != nil:
			return conflict
		}
	}
	return unavailable(err)
}

func unavailable(err error) error {
	return errors.Wrap(port.ErrUnavailable, err.Error())
}
