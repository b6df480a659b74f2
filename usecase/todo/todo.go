package todo

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

// CreateInput carries the fields of a create request; Title is required.
type CreateInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

type UseCase struct {
	todos  repository.TodoRepository
	logger *zap.Logger
}

func New(todos repository.TodoRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:  todos,
		logger: logger,
	}
}

func (uc *UseCase) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	return uc.todos.List(ctx)
}

func (uc *UseCase) GetTodo(ctx context.Context, id int64) (*domain.Todo, error) {
	return uc.todos.GetByID(ctx, id)
}

// CreateTodo validates the input, applies defaults and persists the new todo.
func (uc *UseCase) CreateTodo(ctx context.Context, in CreateInput) (*domain.Todo, error) {
	if in.Title == nil {
		return nil, domain.ErrTitleRequired
	}

	todo := domain.NewTodo(*in.Title, in.Description, in.Completed)
	if err := uc.todos.Create(ctx, todo); err != nil {
		return nil, err
	}

	uc.logger.Debug("todo created", zap.Int64("todo_id", todo.ID))
	return todo, nil
}

// UpdateTodo loads the todo, overwrites the fields present in patch and commits the row.
func (uc *UseCase) UpdateTodo(ctx context.Context, id int64, patch domain.TodoPatch) (*domain.Todo, error) {
	todo, err := uc.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return todo, nil
	}

	todo.Apply(patch)
	if err := uc.todos.Update(ctx, todo); err != nil {
		return nil, err
	}

	uc.logger.Debug("todo updated", zap.Int64("todo_id", id))
	return todo, nil
}

func (uc *UseCase) DeleteTodo(ctx context.Context, id int64) error {
	if err := uc.todos.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Debug("todo deleted", zap.Int64("todo_id", id))
	return nil
}
