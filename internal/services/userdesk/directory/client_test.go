package directory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/louisbranch/userdesk/internal/services/userdesk/roster"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type recordedRequest struct {
	method string
	path   string
	body   string
	header http.Header
}

type requestLog struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (l *requestLog) add(req recordedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, req)
}

func (l *requestLog) at(i int) recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.requests[i]
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *requestLog) {
	t.Helper()
	requests := &requestLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests.add(recordedRequest{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			body:   string(body),
			header: r.Header.Clone(),
		})
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/users", server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, requests
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "ftp://example.com/users", "http://", "::bad"} {
		if _, err := NewClient(raw, nil); err == nil {
			t.Fatalf("NewClient(%q) expected error", raw)
		}
	}
	client, err := NewClient(DefaultBaseURL+"/", nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.BaseURL() != DefaultBaseURL {
		t.Fatalf("BaseURL() = %q, want %q", client.BaseURL(), DefaultBaseURL)
	}
}

func TestListDecodesNumericAndStringIDs(t *testing.T) {
	t.Parallel()

	client, requests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"A","email":"a@x.com","username":"ignored"},{"id":"u-2","name":"B","email":"b@x.com","department":"Ops"}]`)
	})

	users, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []roster.User{
		{ID: "1", Name: "A", Email: "a@x.com"},
		{ID: "u-2", Name: "B", Email: "b@x.com", Department: "Ops"},
	}
	if !reflect.DeepEqual(users, want) {
		t.Fatalf("List() = %+v, want %+v", users, want)
	}
	got := requests.at(0)
	if got.method != http.MethodGet || got.path != "/users" {
		t.Fatalf("request = %s %s, want GET /users", got.method, got.path)
	}
}

func TestListStatusError(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := client.List(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("List() error = %v, want StatusError", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestListDecodeError(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"not":"a list"}`)
	})

	if _, err := client.List(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCreateOmitsID(t *testing.T) {
	t.Parallel()

	client, requests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":99,"name":"B","email":"b@x.com","department":"Eng"}`)
	})

	created, err := client.Create(context.Background(), roster.Form{Name: "B", Email: "b@x.com", Department: "Eng"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	want := roster.User{ID: "99", Name: "B", Email: "b@x.com", Department: "Eng"}
	if created != want {
		t.Fatalf("Create() = %+v, want %+v", created, want)
	}

	got := requests.at(0)
	if got.method != http.MethodPost || got.path != "/users" {
		t.Fatalf("request = %s %s, want POST /users", got.method, got.path)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(got.body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["id"]; ok {
		t.Fatalf("create body carries id: %s", got.body)
	}
	if body["name"] != "B" || body["email"] != "b@x.com" || body["department"] != "Eng" {
		t.Fatalf("create body = %s", got.body)
	}
	if ct := got.header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestUpdateSendsIDInPathAndBody(t *testing.T) {
	t.Parallel()

	client, requests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json, never read`)
	})

	if err := client.Update(context.Background(), "1", roster.Form{Name: "A", Email: "a@x.com", Department: "Eng"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got := requests.at(0)
	if got.method != http.MethodPut || got.path != "/users/1" {
		t.Fatalf("request = %s %s, want PUT /users/1", got.method, got.path)
	}
	if got.body != `{"id":1,"name":"A","email":"a@x.com","department":"Eng"}` {
		t.Fatalf("update body = %s", got.body)
	}
}

func TestUpdateKeepsStringIDs(t *testing.T) {
	t.Parallel()

	client, requests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.Update(context.Background(), "007", roster.Form{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if body := requests.at(0).body; !strings.HasPrefix(body, `{"id":"007"`) {
		t.Fatalf("update body = %s", body)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	client, requests := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/404" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	})

	if err := client.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := requests.at(0); got.method != http.MethodDelete || got.path != "/users/1" {
		t.Fatalf("request = %s %s, want DELETE /users/1", got.method, got.path)
	}
	if err := client.Delete(context.Background(), "404"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestDeleteEscapesID(t *testing.T) {
	t.Parallel()

	client, requests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Delete(context.Background(), "a/b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := requests.at(0).path; got != "/users/a%2Fb" {
		t.Fatalf("path = %q, want %q", got, "/users/a%2Fb")
	}
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(server.URL+"/users", server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	server.Close()

	if _, err := client.List(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestWireIDRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want wireID
		out  string
	}{
		{in: `1`, want: "1", out: `1`},
		{in: `"abc"`, want: "abc", out: `"abc"`},
		{in: `"12"`, want: "12", out: `12`},
		{in: `null`, want: "", out: `""`},
		{in: `1.5`, want: "1.5", out: `1.5`},
		{in: `18446744073709551616`, want: "18446744073709551616", out: `18446744073709551616`},
		{in: `-9223372036854775809`, want: "-9223372036854775809", out: `-9223372036854775809`},
		{in: `"007"`, want: "007", out: `"007"`},
		{in: `" 1"`, want: " 1", out: `" 1"`},
	}
	for _, tc := range tests {
		var id wireID
		if err := json.Unmarshal([]byte(tc.in), &id); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if id != tc.want {
			t.Fatalf("unmarshal %s = %q, want %q", tc.in, id, tc.want)
		}
		out, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("marshal %q: %v", id, err)
		}
		if string(out) != tc.out {
			t.Fatalf("marshal %q = %s, want %s", id, out, tc.out)
		}
	}

	var id wireID
	if err := json.Unmarshal([]byte(`true`), &id); err == nil {
		t.Fatal("expected error for boolean id")
	}
}

func TestUpdateSendsLargeNumericIDAsNumber(t *testing.T) {
	t.Parallel()

	client, requests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Update(context.Background(), "18446744073709551616", roster.Form{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if body := requests.at(0).body; !strings.HasPrefix(body, `{"id":18446744073709551616,`) {
		t.Fatalf("update body = %s", body)
	}
}

func TestRequestsCarryTraceContext(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
		_ = provider.Shutdown(context.Background())
	})

	client, requests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	ctx, parent := provider.Tracer("test").Start(context.Background(), "page load")
	if _, err := client.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	parent.End()

	header := requests.at(0).header.Get("traceparent")
	if header == "" {
		t.Fatal("expected traceparent header on outgoing request")
	}
	carrier := propagation.HeaderCarrier(requests.at(0).header)
	remote := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(context.Background(), carrier))
	if got, want := remote.TraceID(), parent.SpanContext().TraceID(); got != want {
		t.Fatalf("traceparent trace id = %s, want %s", got, want)
	}

	var clientSpan sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "directory.List" {
			clientSpan = span
		}
	}
	if clientSpan == nil {
		t.Fatal("expected directory.List span")
	}
	if clientSpan.SpanKind() != trace.SpanKindClient {
		t.Fatalf("span kind = %v, want client", clientSpan.SpanKind())
	}
	if remote.SpanID() != clientSpan.SpanContext().SpanID() {
		t.Fatalf("traceparent span id = %s, want client span %s", remote.SpanID(), clientSpan.SpanContext().SpanID())
	}
}
