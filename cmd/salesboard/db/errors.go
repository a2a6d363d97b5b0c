package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var ErrUnknownLevel = errors.New("unknown region level")

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
