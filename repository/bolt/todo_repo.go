package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/todo/domain"
	boltInfra "github.com/fastygo/todo/internal/infrastructure/bolt"
	"github.com/fastygo/todo/repository"
)

type todoRepository struct {
	db     *bolt.DB
	bucket []byte
}

// NewTodoRepository returns a TodoRepository stored in the todos bucket of db.
// Ids come from the bucket sequence, so they are never reused.
func NewTodoRepository(db *bolt.DB) repository.TodoStore {
	return &todoRepository{db: db, bucket: []byte(boltInfra.TodosBucket)}
}

func (r *todoRepository) List(ctx context.Context) ([]domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	todos := make([]domain.Todo, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).ForEach(func(_, v []byte) error {
			var todo domain.Todo
			if err := json.Unmarshal(v, &todo); err != nil {
				return err
			}
			todos = append(todos, todo)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	sort.Slice(todos, func(i, j int) bool {
		if todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].ID > todos[j].ID
		}
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

func (r *todoRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var todo domain.Todo
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(r.bucket).Get(itob(id))
		if v == nil {
			return domain.ErrTodoNotFound
		}
		return json.Unmarshal(v, &todo)
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = domain.Now()
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		todo.ID = int64(seq)
		return put(b, todo)
	})
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		v := b.Get(itob(todo.ID))
		if v == nil {
			return domain.ErrTodoNotFound
		}
		var stored domain.Todo
		if err := json.Unmarshal(v, &stored); err != nil {
			return err
		}
		// created_at is immutable.
		row := *todo
		row.CreatedAt = stored.CreatedAt
		return put(b, &row)
	})
}

func (r *todoRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		key := itob(id)
		if b.Get(key) == nil {
			return domain.ErrTodoNotFound
		}
		return b.Delete(key)
	})
}

func (r *todoRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(r.bucket) == nil {
			return fmt.Errorf("bucket %s missing", r.bucket)
		}
		return nil
	})
}

func put(b *bolt.Bucket, todo *domain.Todo) error {
	payload, err := json.Marshal(todo)
	if err != nil {
		return err
	}
	return b.Put(itob(todo.ID), payload)
}

// itob encodes id big-endian so cursor order matches id order.
func itob(id int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}
