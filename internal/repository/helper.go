package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/stockbucket/backend/internal/apperrors"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods take a Querier so multi-step mutations can run on one
// transaction while plain reads go straight to the pool.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// FormatDate formats a time as the date-only form used in DATE columns.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// mapInsertErr turns a UNIQUE constraint violation into ErrDuplicateEntry and
// wraps anything else with the given operation description.
func mapInsertErr(err error, op string) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return apperrors.ErrDuplicateEntry
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
