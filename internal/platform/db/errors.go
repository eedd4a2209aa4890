package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/counterline/counterline/internal/shared"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether the error is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Wrap classifies a driver error for the layers above. Missing rows and
// server-reported errors pass through untouched so repositories can map them
// to domain errors themselves; everything else (dial failures, closed pools,
// cancelled contexts mid-query) means the store itself is unreachable and
// wraps shared.ErrStoreUnavailable.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, shared.ErrStoreUnavailable) || errors.As(err, &pgErr) {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
}
