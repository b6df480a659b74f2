package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fastygo/todo/domain"
	sqliteInfra "github.com/fastygo/todo/internal/infrastructure/sqlite"
	"github.com/fastygo/todo/repository"
	"github.com/fastygo/todo/repository/repotest"
)

func newRepo(t *testing.T) repository.TodoRepository {
	t.Helper()
	db, err := sqliteInfra.Open(filepath.Join(t.TempDir(), "todos.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqliteInfra.Close(db) })
	return NewTodoRepository(db)
}

func TestTodoRepository(t *testing.T) {
	repotest.Run(t, newRepo)
}

func TestTodoRepositoryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")
	ctx := context.Background()

	db, err := sqliteInfra.Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	todo := domain.NewTodo("Buy milk", nil, nil)
	if err := NewTodoRepository(db).Create(ctx, todo); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := sqliteInfra.Close(db); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = sqliteInfra.Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer sqliteInfra.Close(db)

	repo := NewTodoRepository(db)
	got, err := repo.GetByID(ctx, todo.ID)
	if err != nil {
		t.Fatalf("GetByID after reopen: %v", err)
	}
	repotest.AssertEqual(t, *got, *todo)

	if err := repo.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
