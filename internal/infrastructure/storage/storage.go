package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/todo/internal/config"
	boltInfra "github.com/fastygo/todo/internal/infrastructure/bolt"
	pgInfra "github.com/fastygo/todo/internal/infrastructure/postgres"
	sqliteInfra "github.com/fastygo/todo/internal/infrastructure/sqlite"
	"github.com/fastygo/todo/repository"
	boltRepo "github.com/fastygo/todo/repository/bolt"
	pgRepo "github.com/fastygo/todo/repository/postgres"
	sqliteRepo "github.com/fastygo/todo/repository/sqlite"
)

// Storage is the opened backend selected by configuration.
type Storage struct {
	Driver string
	Todos  repository.TodoStore

	close func() error
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the backend named by cfg.Database.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqliteInfra.Open(cfg.Database.Path, logger)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Driver: cfg.Database.Driver,
			Todos:  sqliteRepo.NewTodoRepository(db),
			close:  func() error { return sqliteInfra.Close(db) },
		}, nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Driver: cfg.Database.Driver,
			Todos:  pgRepo.NewTodoRepository(pool),
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverBolt:
		db, err := boltInfra.Open(cfg.Database.Path, logger)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Driver: cfg.Database.Driver,
			Todos:  boltRepo.NewTodoRepository(db),
			close:  db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Database.Driver)
	}
}
