// Package repotest holds the behaviour every repository.TodoRepository
// implementation must share. Backend packages call Run from their tests.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

// Factory returns an empty repository. It is called once per subtest.
type Factory func(t *testing.T) repository.TodoRepository

// Run executes the conformance suite against the repositories produced by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	t.Run("create assigns distinct ids", func(t *testing.T) { testCreateAssignsIDs(t, newRepo(t)) })
	t.Run("get returns stored fields", func(t *testing.T) { testGetRoundTrip(t, newRepo(t)) })
	t.Run("list is newest first", func(t *testing.T) { testListOrder(t, newRepo(t)) })
	t.Run("list of empty table", func(t *testing.T) { testListEmpty(t, newRepo(t)) })
	t.Run("update commits full row", func(t *testing.T) { testUpdate(t, newRepo(t)) })
	t.Run("missing id", func(t *testing.T) { testMissing(t, newRepo(t)) })
	t.Run("delete removes row", func(t *testing.T) { testDelete(t, newRepo(t)) })
	t.Run("ids are never reused", func(t *testing.T) { testIDsNotReused(t, newRepo(t)) })
}

func testCreateAssignsIDs(t *testing.T, repo repository.TodoRepository) {
	ctx := context.Background()
	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		todo := domain.NewTodo("task", nil, nil)
		if err := repo.Create(ctx, todo); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if todo.ID <= 0 {
			t.Fatalf("expected positive id, got %d", todo.ID)
		}
		if seen[todo.ID] {
			t.Fatalf("id %d assigned twice", todo.ID)
		}
		seen[todo.ID] = true
	}
}

func testGetRoundTrip(t *testing.T, repo repository.TodoRepository) {
	ctx := context.Background()
	desc := "two litres"
	done := true
	created := domain.NewTodo("Buy milk", &desc, &done)
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	AssertEqual(t, *got, *created)
}

func testListOrder(t *testing.T, repo repository.TodoRepository) {
	ctx := context.Background()
	base := domain.Now()
	// Insert out of chronological order.
	offsets := []time.Duration{2 * time.Second, 0, 5 * time.Second, time.Second}
	for i, off := range offsets {
		todo := domain.NewTodo(string(rune('a'+i)), nil, nil)
		todo.CreatedAt = base.Add(off)
		if err := repo.Create(ctx, todo); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	todos, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != len(offsets) {
		t.Fatalf("List returned %d todos, want %d", len(todos), len(offsets))
	}
	want := []string{"c", "a", "d", "b"}
	for i, todo := range todos {
		if todo.Title != want[i] {
			t.Errorf("position %d: title %q, want %q", i, todo.Title, want[i])
		}
		if i > 0 && todo.CreatedAt.After(todos[i-1].CreatedAt) {
			t.Errorf("position %d is newer than position %d", i, i-1)
		}
	}
}

func testListEmpty(t *testing.T, repo repository.TodoRepository) {
	todos, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 0 {
		t.Fatalf("expected no todos, got %d", len(todos))
	}
}

func testUpdate(t *testing.T, repo repository.TodoRepository) {
	ctx := context.Background()
	todo := domain.NewTodo("Buy milk", nil, nil)
	if err := repo.Create(ctx, todo); err != nil {
		t.Fatalf("Create: %v", err)
	}

	done := true
	todo.Apply(domain.TodoPatch{Completed: &done})
	if err := repo.Update(ctx, todo); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, todo.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Completed {
		t.Error("completed not persisted")
	}
	if got.Title != "Buy milk" {
		t.Errorf("title changed to %q", got.Title)
	}
	if !got.CreatedAt.Equal(todo.CreatedAt) {
		t.Errorf("created_at changed from %v to %v", todo.CreatedAt, got.CreatedAt)
	}
}

func testMissing(t *testing.T, repo repository.TodoRepository) {
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 4242); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Errorf("GetByID: expected ErrTodoNotFound, got %v", err)
	}
	if err := repo.Update(ctx, &domain.Todo{ID: 4242, Title: "x", CreatedAt: domain.Now()}); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Errorf("Update: expected ErrTodoNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 4242); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Errorf("Delete: expected ErrTodoNotFound, got %v", err)
	}
}

func testDelete(t *testing.T, repo repository.TodoRepository) {
	ctx := context.Background()
	keep := domain.NewTodo("keep", nil, nil)
	drop := domain.NewTodo("drop", nil, nil)
	for _, todo := range []*domain.Todo{keep, drop} {
		if err := repo.Create(ctx, todo); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := repo.Delete(ctx, drop.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, drop.ID); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, drop.ID); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("second delete: expected ErrTodoNotFound, got %v", err)
	}

	todos, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != keep.ID {
		t.Fatalf("unexpected remaining todos: %+v", todos)
	}
}

func testIDsNotReused(t *testing.T, repo repository.TodoRepository) {
	ctx := context.Background()
	first := domain.NewTodo("first", nil, nil)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	second := domain.NewTodo("second", nil, nil)
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("id %d reused or decreased after deleting %d", second.ID, first.ID)
	}
}

// AssertEqual fails the test when two todos differ. Timestamps are compared with time.Equal.
func AssertEqual(t *testing.T, got, want domain.Todo) {
	t.Helper()
	if got.ID != want.ID ||
		got.Title != want.Title ||
		got.Description != want.Description ||
		got.Completed != want.Completed ||
		!got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("todo mismatch:\n got  %+v\n want %+v", got, want)
	}
}
