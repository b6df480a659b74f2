package domain

import "time"

// Todo is a single task item persisted in the todos table.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// TodoPatch carries the fields supplied by an update request. Nil fields are left untouched.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// NewTodo builds a todo ready for insertion, defaulting description to ""
// and completed to false when they are not supplied.
func NewTodo(title string, description *string, completed *bool) *Todo {
	todo := &Todo{
		Title:     title,
		CreatedAt: Now(),
	}
	if description != nil {
		todo.Description = *description
	}
	if completed != nil {
		todo.Completed = *completed
	}
	return todo
}

// Apply overwrites the fields present in the patch.
func (t *Todo) Apply(patch TodoPatch) {
	if t == nil {
		return
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Now returns the current UTC time truncated to microseconds, the finest
// precision every storage backend keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
