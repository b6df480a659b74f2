package transport

import (
	"time"

	"github.com/fastygo/todo/domain"
)

// TimeFormat renders created_at as RFC 3339 in UTC with microseconds.
const TimeFormat = "2006-01-02T15:04:05.000000Z07:00"

// TodoResponse is the JSON mapping of a todo.
type TodoResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
}

func NewTodoResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		CreatedAt:   FormatTime(todo.CreatedAt),
	}
}

// NewTodoListResponse maps todos preserving order. It never returns nil so an
// empty table encodes as [].
func NewTodoListResponse(todos []domain.Todo) []TodoResponse {
	out := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		out = append(out, NewTodoResponse(todo))
	}
	return out
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status    string `json:"status"`
	Driver    string `json:"driver"`
	Storage   bool   `json:"storage"`
	LastCheck string `json:"last_check,omitempty"`
}
