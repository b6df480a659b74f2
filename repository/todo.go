package repository

import (
	"context"

	"github.com/fastygo/todo/domain"
)

// TodoRepository is the persistence port for todos. Lookups of a missing id
// return domain.ErrTodoNotFound.
type TodoRepository interface {
	// List returns every todo, newest first.
	List(ctx context.Context) ([]domain.Todo, error)
	GetByID(ctx context.Context, id int64) (*domain.Todo, error)
	// Create persists todo and assigns its ID.
	Create(ctx context.Context, todo *domain.Todo) error
	// Update commits the full row for todo.ID.
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, id int64) error
}

// Pinger reports whether the underlying store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TodoStore is a TodoRepository whose backing store can be probed.
type TodoStore interface {
	TodoRepository
	Pinger
}
