package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/todo/api/handler"
	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/infrastructure/monitor"
	sqliteInfra "github.com/fastygo/todo/internal/infrastructure/sqlite"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/internal/router"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/repository"
	sqliteRepo "github.com/fastygo/todo/repository/sqlite"
	todoUC "github.com/fastygo/todo/usecase/todo"
)

type stubStatus struct{ status monitor.Status }

func (s stubStatus) GetStatus() monitor.Status { return s.status }

type server struct {
	handler fasthttp.RequestHandler
	repo    repository.TodoRepository
}

func newServerWithRepo(t *testing.T, repo repository.TodoRepository, status monitor.Status) *server {
	t.Helper()
	adapter := httpcontext.NewAdapter(time.Second)
	r := router.New(router.Handlers{
		Todo:   apiHandler.NewTodoHandler(todoUC.New(repo, nil), adapter, nil),
		Health: apiHandler.NewHealthHandler(stubStatus{status: status}, adapter, nil),
	})
	return &server{
		handler: middleware.Chain(r.Handler, middleware.CORS(), middleware.AccessLog(nil)),
		repo:    repo,
	}
}

func newServer(t *testing.T) *server {
	t.Helper()
	db, err := sqliteInfra.Open(filepath.Join(t.TempDir(), "todos.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqliteInfra.Close(db) })
	return newServerWithRepo(t, sqliteRepo.NewTodoRepository(db), monitor.Status{Driver: "sqlite", Storage: true, LastCheck: time.Now()})
}

type response struct {
	status int
	body   []byte
	header *fasthttp.ResponseHeader
}

func (s *server) do(t *testing.T, method, uri, body string) response {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	s.handler(&ctx)

	header := &fasthttp.ResponseHeader{}
	ctx.Response.Header.CopyTo(header)
	return response{
		status: ctx.Response.StatusCode(),
		body:   append([]byte(nil), ctx.Response.Body()...),
		header: header,
	}
}

func decode[T any](t *testing.T, resp response) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.body, &out); err != nil {
		t.Fatalf("decode %s: %v", resp.body, err)
	}
	return out
}

func expectStatus(t *testing.T, resp response, want int) {
	t.Helper()
	if resp.status != want {
		t.Fatalf("status = %d, want %d (body %s)", resp.status, want, resp.body)
	}
}

func expectError(t *testing.T, resp response, status int, message string) {
	t.Helper()
	expectStatus(t, resp, status)
	if got := decode[transport.ErrorResponse](t, resp); got.Error != message {
		t.Fatalf("error = %q, want %q", got.Error, message)
	}
}

func TestTodoLifecycle(t *testing.T) {
	s := newServer(t)

	resp := s.do(t, http.MethodPost, "/api/todos", `{"title":"Buy milk"}`)
	expectStatus(t, resp, http.StatusCreated)
	created := decode[transport.TodoResponse](t, resp)
	if created.ID != 1 || created.Title != "Buy milk" || created.Description != "" || created.Completed {
		t.Fatalf("unexpected created todo %+v", created)
	}
	if _, err := time.Parse(time.RFC3339Nano, created.CreatedAt); err != nil {
		t.Fatalf("created_at %q is not RFC 3339: %v", created.CreatedAt, err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "title", "description", "completed", "created_at"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
	if len(raw) != 5 {
		t.Errorf("response has %d keys, want 5: %s", len(raw), resp.body)
	}

	resp = s.do(t, http.MethodPut, "/api/todos/1", `{"completed":true}`)
	expectStatus(t, resp, http.StatusOK)
	updated := decode[transport.TodoResponse](t, resp)
	want := created
	want.Completed = true
	if updated != want {
		t.Fatalf("updated = %+v, want %+v", updated, want)
	}

	resp = s.do(t, http.MethodDelete, "/api/todos/1", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[transport.MessageResponse](t, resp); got.Message != "Todo deleted successfully" {
		t.Fatalf("message = %q", got.Message)
	}

	expectError(t, s.do(t, http.MethodGet, "/api/todos/1", ""), http.StatusNotFound, "Todo not found")
}

func TestCreateRoundTrip(t *testing.T) {
	s := newServer(t)

	resp := s.do(t, http.MethodPost, "/api/todos", `{"title":"Write report","description":"Q3 numbers","completed":true}`)
	expectStatus(t, resp, http.StatusCreated)
	created := decode[transport.TodoResponse](t, resp)

	resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/todos/%d", created.ID), "")
	expectStatus(t, resp, http.StatusOK)
	if fetched := decode[transport.TodoResponse](t, resp); fetched != created {
		t.Fatalf("fetched %+v, created %+v", fetched, created)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "empty body", body: "", message: "Title is required"},
		{name: "empty object", body: "{}", message: "Title is required"},
		{name: "null title", body: `{"title":null}`, message: "Title is required"},
		{name: "description only", body: `{"description":"no title"}`, message: "Title is required"},
		{name: "malformed json", body: `{"title":`, message: "Invalid JSON payload"},
		{name: "completed not a bool", body: `{"title":"x","completed":"yes"}`, message: "Invalid JSON payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t)
			expectError(t, s.do(t, http.MethodPost, "/api/todos", tt.body), http.StatusBadRequest, tt.message)

			todos, err := s.repo.List(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(todos) != 0 {
				t.Fatalf("rejected create persisted %d rows", len(todos))
			}
		})
	}
}

func TestCreateEmptyTitleAccepted(t *testing.T) {
	s := newServer(t)
	resp := s.do(t, http.MethodPost, "/api/todos", `{"title":""}`)
	expectStatus(t, resp, http.StatusCreated)
	if got := decode[transport.TodoResponse](t, resp); got.Title != "" || got.ID == 0 {
		t.Fatalf("unexpected todo %+v", got)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newServer(t)

	resp := s.do(t, http.MethodGet, "/api/todos", "")
	expectStatus(t, resp, http.StatusOK)
	if string(resp.body) != "[]" {
		t.Fatalf("empty list body = %s", resp.body)
	}

	base := domain.Now()
	for i, offset := range []time.Duration{time.Minute, 3 * time.Minute, 0, 2 * time.Minute} {
		todo := domain.NewTodo(fmt.Sprintf("todo-%d", i), nil, nil)
		todo.CreatedAt = base.Add(offset)
		if err := s.repo.Create(context.Background(), todo); err != nil {
			t.Fatal(err)
		}
	}

	resp = s.do(t, http.MethodGet, "/api/todos", "")
	expectStatus(t, resp, http.StatusOK)
	todos := decode[[]transport.TodoResponse](t, resp)

	want := []string{"todo-1", "todo-3", "todo-0", "todo-2"}
	if len(todos) != len(want) {
		t.Fatalf("got %d todos", len(todos))
	}
	for i, todo := range todos {
		if todo.Title != want[i] {
			t.Errorf("position %d = %q, want %q", i, todo.Title, want[i])
		}
	}
}

func TestUpdatePartial(t *testing.T) {
	s := newServer(t)
	created := decode[transport.TodoResponse](t, s.do(t, http.MethodPost, "/api/todos", `{"title":"Buy milk","description":"two litres"}`))
	uri := fmt.Sprintf("/api/todos/%d", created.ID)

	tests := []struct {
		name string
		body string
		want func(*transport.TodoResponse)
	}{
		{name: "title", body: `{"title":"Buy oat milk"}`, want: func(r *transport.TodoResponse) { r.Title = "Buy oat milk" }},
		{name: "description cleared", body: `{"description":""}`, want: func(r *transport.TodoResponse) { r.Description = "" }},
		{name: "completed", body: `{"completed":true}`, want: func(r *transport.TodoResponse) { r.Completed = true }},
		{name: "empty object", body: `{}`, want: func(*transport.TodoResponse) {}},
		{name: "empty body", body: ``, want: func(*transport.TodoResponse) {}},
	}

	expected := created
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(&expected)
			resp := s.do(t, http.MethodPut, uri, tt.body)
			expectStatus(t, resp, http.StatusOK)
			if got := decode[transport.TodoResponse](t, resp); got != expected {
				t.Fatalf("got %+v, want %+v", got, expected)
			}
			if got := decode[transport.TodoResponse](t, s.do(t, http.MethodGet, uri, "")); got != expected {
				t.Fatalf("stored %+v, want %+v", got, expected)
			}
		})
	}
}

func TestUpdateInvalidBody(t *testing.T) {
	s := newServer(t)
	created := decode[transport.TodoResponse](t, s.do(t, http.MethodPost, "/api/todos", `{"title":"Buy milk"}`))

	expectError(t, s.do(t, http.MethodPut, fmt.Sprintf("/api/todos/%d", created.ID), `{"completed":`), http.StatusBadRequest, "Invalid JSON payload")
	// A missing todo wins over a malformed body.
	expectError(t, s.do(t, http.MethodPut, "/api/todos/999", `{"completed":`), http.StatusNotFound, "Todo not found")
}

func TestMissingTodo(t *testing.T) {
	s := newServer(t)
	created := decode[transport.TodoResponse](t, s.do(t, http.MethodPost, "/api/todos", `{"title":"Buy milk"}`))
	expectStatus(t, s.do(t, http.MethodDelete, fmt.Sprintf("/api/todos/%d", created.ID), ""), http.StatusOK)

	for _, uri := range []string{"/api/todos/999", fmt.Sprintf("/api/todos/%d", created.ID), "/api/todos/abc", "/api/todos/99999999999999999999"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			t.Run(method+" "+uri, func(t *testing.T) {
				expectError(t, s.do(t, method, uri, `{"title":"x"}`), http.StatusNotFound, "Todo not found")
			})
		}
	}
}

func TestHealth(t *testing.T) {
	s := newServerWithRepo(t, failingRepo{}, monitor.Status{})

	resp := s.do(t, http.MethodGet, "/api/health", "")
	expectStatus(t, resp, http.StatusOK)
	if string(resp.body) != `{"status":"healthy"}` {
		t.Fatalf("body = %s", resp.body)
	}
	if got := string(resp.header.ContentType()); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
}

func TestReady(t *testing.T) {
	checked := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	online := newServerWithRepo(t, failingRepo{}, monitor.Status{Driver: "sqlite", Storage: true, LastCheck: checked})
	resp := online.do(t, http.MethodGet, "/api/ready", "")
	expectStatus(t, resp, http.StatusOK)
	got := decode[transport.ReadinessResponse](t, resp)
	if got.Status != "ready" || !got.Storage || got.Driver != "sqlite" || got.LastCheck != "2024-01-02T03:04:05.000000Z" {
		t.Fatalf("unexpected readiness %+v", got)
	}

	offline := newServerWithRepo(t, failingRepo{}, monitor.Status{Driver: "postgres", LastCheck: checked})
	resp = offline.do(t, http.MethodGet, "/api/ready", "")
	expectStatus(t, resp, http.StatusServiceUnavailable)
	if got := decode[transport.ReadinessResponse](t, resp); got.Status != "unavailable" || got.Storage {
		t.Fatalf("unexpected readiness %+v", got)
	}
}

// failingRepo simulates an unreachable database.
type failingRepo struct{}

var errStorageDown = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

func (failingRepo) List(context.Context) ([]domain.Todo, error) { return nil, errStorageDown }
func (failingRepo) GetByID(context.Context, int64) (*domain.Todo, error) { return nil, errStorageDown }
func (failingRepo) Create(context.Context, *domain.Todo) error { return errStorageDown }
func (failingRepo) Update(context.Context, *domain.Todo) error { return errStorageDown }
func (failingRepo) Delete(context.Context, int64) error { return errStorageDown }

func TestStorageFailureHidesDetails(t *testing.T) {
	s := newServerWithRepo(t, failingRepo{}, monitor.Status{})

	for _, tc := range []struct{ method, uri, body string }{
		{http.MethodGet, "/api/todos", ""},
		{http.MethodGet, "/api/todos/1", ""},
		{http.MethodPost, "/api/todos", `{"title":"x"}`},
		{http.MethodDelete, "/api/todos/1", ""},
	} {
		t.Run(tc.method+" "+tc.uri, func(t *testing.T) {
			expectError(t, s.do(t, tc.method, tc.uri, tc.body), http.StatusInternalServerError, "Internal server error")
		})
	}
}

func TestUnknownRoutes(t *testing.T) {
	s := newServer(t)

	expectError(t, s.do(t, http.MethodGet, "/api/unknown", ""), http.StatusNotFound, "Not found")
	expectError(t, s.do(t, http.MethodDelete, "/api/todos", ""), http.StatusMethodNotAllowed, "Method not allowed")
}

func TestCORSAndRequestID(t *testing.T) {
	s := newServer(t)

	resp := s.do(t, http.MethodGet, "/api/todos", "")
	if got := string(resp.header.Peek("Access-Control-Allow-Origin")); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
	if got := string(resp.header.Peek(httpcontext.HeaderRequestID)); got == "" {
		t.Error("missing X-Request-ID")
	}

	resp = s.do(t, http.MethodPost, "/api/todos", "")
	if got := string(resp.header.Peek("Access-Control-Allow-Origin")); got != "*" {
		t.Errorf("error responses must carry CORS headers too, got %q", got)
	}
}
