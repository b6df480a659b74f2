package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation of TodoRepository.
func NewTodoRepository(pool *pgxpool.Pool) repository.TodoStore {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) List(ctx context.Context) ([]domain.Todo, error) {
	const query = `
	SELECT id, title, description, completed, created_at
	FROM todos
	ORDER BY created_at DESC, id DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]domain.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

func (r *todoRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	const query = `
	SELECT id, title, description, completed, created_at
	FROM todos
	WHERE id = $1
	`
	return scanTodo(r.pool.QueryRow(ctx, query, id))
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = domain.Now()
	}

	const query = `
	INSERT INTO todos (title, description, completed, created_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query,
		todo.Title,
		todo.Description,
		todo.Completed,
		todo.CreatedAt,
	).Scan(&todo.ID); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE todos
	SET title = $2,
		description = $3,
		completed = $4
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, todo.ID, todo.Title, todo.Description, todo.Completed)
	if err != nil {
		return fmt.Errorf("update todo %d: %w", todo.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM todos WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	var todo domain.Todo
	if err := row.Scan(
		&todo.ID,
		&todo.Title,
		&todo.Description,
		&todo.Completed,
		&todo.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	todo.CreatedAt = todo.CreatedAt.UTC()
	return &todo, nil
}
