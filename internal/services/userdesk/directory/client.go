// Package directory talks to the remote user directory REST endpoint.
//
// The endpoint exposes one collection: GET and POST on the base URL, PUT and
// DELETE on base/{id}. Any transport error, non-2xx status or undecodable
// body is returned as an error; callers do not need to tell them apart.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/userdesk/internal/services/userdesk/roster"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the public demo collection the page manages by default.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com/users"

const (
	tracerName      = "github.com/louisbranch/userdesk/internal/services/userdesk/directory"
	maxResponseSize = 8 << 20
)

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %s", e.Method, e.URL, e.Status)
}

// Client calls the remote directory over HTTP with JSON bodies.
type Client struct {
	baseURL string
	client  *http.Client
	tracer  trace.Tracer
}

// NewClient builds a client for the collection at baseURL.
func NewClient(baseURL string, client *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("directory base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse directory base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("directory base url must be http or https, got %q", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("directory base url host is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// BaseURL returns the collection URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]roster.User, error) {
	var records []record
	if err := c.do(ctx, "directory.List", http.MethodGet, c.baseURL, nil, &records); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]roster.User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.user())
	}
	return users, nil
}

// Create posts a new record and returns the persisted record with its
// server-assigned id.
func (c *Client) Create(ctx context.Context, form roster.Form) (roster.User, error) {
	body := createRequest{
		Name:       form.Name,
		Email:      form.Email,
		Department: form.Department,
	}
	var created record
	if err := c.do(ctx, "directory.Create", http.MethodPost, c.baseURL, body, &created); err != nil {
		return roster.User{}, fmt.Errorf("create user: %w", err)
	}
	return created.user(), nil
}

// Update replaces the record with the given id. The response body is not read.
func (c *Client) Update(ctx context.Context, id roster.ID, form roster.Form) error {
	body := updateRequest{
		ID:         wireID(id),
		Name:       form.Name,
		Email:      form.Email,
		Department: form.Department,
	}
	if err := c.do(ctx, "directory.Update", http.MethodPut, c.itemURL(id), body, nil); err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	return nil
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id roster.ID) error {
	if err := c.do(ctx, "directory.Delete", http.MethodDelete, c.itemURL(id), nil, nil); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

func (c *Client) itemURL(id roster.ID) string {
	return c.baseURL + "/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, spanName, method, target string, body any, out any) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := c.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", target),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	limited := io.LimitReader(resp.Body, maxResponseSize)
	if out == nil {
		_, _ = io.Copy(io.Discard, limited)
		return nil
	}
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
