package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/todo/domain"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTodoNotFound
	}
	return err
}
