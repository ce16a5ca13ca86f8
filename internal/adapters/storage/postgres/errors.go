package postgres

import (
	"errors"

	"gnap-as/internal/ports/storage"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// mapWriteErr traduce violaciones de unicidad a storage.ErrAlreadyExists.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrAlreadyExists
	}
	return err
}
