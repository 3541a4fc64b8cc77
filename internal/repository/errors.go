package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Sentinel errors shared by the postgres and memory implementations.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("duplicate record")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrNoUsesRemaining     = errors.New("no one-time uses remaining")
	ErrAlreadyUsed         = errors.New("one-time code already used")
)

const pgUniqueViolationCode = "23505"

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return ErrDuplicate
	}
	return err
}
