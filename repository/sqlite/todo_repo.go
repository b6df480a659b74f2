package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

// todoRecord is the GORM mapping of the todos table.
type todoRecord struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null"`
	Completed   bool      `gorm:"column:completed;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (todoRecord) TableName() string {
	return "todos"
}

func (r todoRecord) toDomain() domain.Todo {
	return domain.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository returns a GORM-backed TodoRepository. It works with any
// GORM dialect; the service opens it on SQLite.
func NewTodoRepository(db *gorm.DB) repository.TodoStore {
	return &todoRepository{db: db}
}

func (r *todoRepository) List(ctx context.Context) ([]domain.Todo, error) {
	var records []todoRecord
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	todos := make([]domain.Todo, 0, len(records))
	for _, rec := range records {
		todos = append(todos, rec.toDomain())
	}
	return todos, nil
}

func (r *todoRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	var rec todoRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	todo := rec.toDomain()
	return &todo, nil
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = domain.Now()
	}

	rec := todoRecord{
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		CreatedAt:   todo.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	todo.ID = rec.ID
	return nil
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}

	// A map forces zero values (completed=false, description="") into the UPDATE.
	res := r.db.WithContext(ctx).
		Model(&todoRecord{}).
		Where("id = ?", todo.ID).
		Updates(map[string]interface{}{
			"title":       todo.Title,
			"description": todo.Description,
			"completed":   todo.Completed,
		})
	if res.Error != nil {
		return fmt.Errorf("update todo %d: %w", todo.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&todoRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete todo %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
