// internal/pkg/httpclient/client.go

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StatusError is returned when the downstream service answered with a non-2xx
// status. The message is taken from the downstream JSON error body when one
// is present.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("downstream returned %d: %s", e.StatusCode, e.Message)
}

// Client is a traced JSON HTTP client. Request deadlines come from the
// context plus the configured per-call timeout, not from the transport.
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient creates a client with a pooled transport. timeout bounds every
// individual downstream call.
func NewClient(tracer trace.Tracer, timeout time.Duration) *Client {
	return &Client{
		Tracer: tracer,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		Timeout: timeout,
	}
}

// DoJSON performs method against rawURL, sending body (when non-nil) as JSON
// and decoding a 2xx response into out (when non-nil). Non-2xx responses
// produce a *StatusError; transport failures return the underlying error.
func (c *Client) DoJSON(ctx context.Context, method, rawURL string, body, out any) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	spanName := fmt.Sprintf("call-%s", strings.Split(parsedURL.Host, ":")[0])

	ctx, span := c.Tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	span.SetAttributes(
		attribute.String("http.url", rawURL),
		attribute.String("http.method", method),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: resp.Status}
		var payload struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil && payload.Error != "" {
			statusErr.Message = payload.Error
		}
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, statusErr.Message)
		return statusErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.RecordError(err)
			return err
		}
	}
	return nil
}

// Get is shorthand for a body-less DoJSON GET.
func (c *Client) Get(ctx context.Context, rawURL string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, rawURL, nil, out)
}

// Put is shorthand for DoJSON with the PUT method.
func (c *Client) Put(ctx context.Context, rawURL string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPut, rawURL, body, out)
}

// Post is shorthand for DoJSON with the POST method.
func (c *Client) Post(ctx context.Context, rawURL string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPost, rawURL, body, out)
}
