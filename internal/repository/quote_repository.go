package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/model"
)

// QuoteRepository provides data access methods for the append-only stock_quote table.
// Quotes are only ever inserted; there are no update or delete methods.
type QuoteRepository struct {
	db *sql.DB
}

// NewQuoteRepository creates a new QuoteRepository with the provided database connection.
func NewQuoteRepository(db *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// DB returns the underlying connection, for callers that need a plain Querier.
func (s *QuoteRepository) DB() Querier {
	return s.db
}

// Latest retrieves the most recent quote for the stock with date <= asOf.
// With asOf nil, the globally most recent quote is returned.
//
// Returns apperrors.ErrFutureDate when asOf is strictly after today, and
// apperrors.ErrQuoteNotFound when no quote exists at or before the date.
func (s *QuoteRepository) Latest(q Querier, stockID string, asOf *time.Time) (model.Quote, error) {
	query := `
		SELECT id, stock_id, date, value
		FROM stock_quote
		WHERE stock_id = ?
	`
	args := []any{stockID}

	if asOf != nil {
		// Compare on whole days so "later today" is not rejected.
		if asOf.UTC().Truncate(24 * time.Hour).After(time.Now().UTC().Truncate(24 * time.Hour)) {
			return model.Quote{}, apperrors.ErrFutureDate
		}
		query += " AND date <= ?"
		args = append(args, FormatDate(*asOf))
	}

	query += " ORDER BY date DESC LIMIT 1"

	var quote model.Quote
	var dateStr string

	err := q.QueryRow(query, args...).Scan(&quote.ID, &quote.StockID, &dateStr, &quote.Value)
	if err == sql.ErrNoRows {
		return model.Quote{}, apperrors.ErrQuoteNotFound
	}
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to query stock_quote table: %w", err)
	}

	quote.Date, err = ParseTime(dateStr)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to parse quote date: %w", err)
	}

	return quote, nil
}

// Range retrieves quotes for a stock in ascending date order. Both bounds are
// optional and inclusive.
func (s *QuoteRepository) Range(stockID string, start, end *time.Time) ([]model.Quote, error) {
	query := `
		SELECT id, stock_id, date, value
		FROM stock_quote
		WHERE stock_id = ?
	`
	args := []any{stockID}

	if start != nil {
		query += " AND date >= ?"
		args = append(args, FormatDate(*start))
	}
	if end != nil {
		query += " AND date <= ?"
		args = append(args, FormatDate(*end))
	}

	query += " ORDER BY date ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_quote table: %w", err)
	}
	defer rows.Close()

	quotes := []model.Quote{}

	for rows.Next() {
		var quote model.Quote
		var dateStr string

		if err := rows.Scan(&quote.ID, &quote.StockID, &dateStr, &quote.Value); err != nil {
			return nil, fmt.Errorf("failed to scan stock_quote table results: %w", err)
		}

		quote.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse quote date: %w", err)
		}

		quotes = append(quotes, quote)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_quote table: %w", err)
	}

	return quotes, nil
}

// BulkInsert appends quotes for a stock. Rows that collide with an existing
// (stock, date) pair are skipped, which makes backfill runs idempotent.
func (s *QuoteRepository) BulkInsert(stockID string, quotes []model.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin quote insert transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO stock_quote (id, stock_id, date, value)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare quote insert: %w", err)
	}
	defer stmt.Close()

	for _, quote := range quotes {
		id := quote.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.Exec(id, stockID, FormatDate(quote.Date), quote.Value); err != nil {
			return fmt.Errorf("failed to insert quote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quote insert transaction: %w", err)
	}

	return nil
}

// LastQuoteDates returns, per stock that has quotes, the date of its most
// recent quote. Used by the fill-missing-days refresh job.
func (s *QuoteRepository) LastQuoteDates() (map[string]time.Time, error) {
	query := `
		SELECT stock_id, MAX(date)
		FROM stock_quote
		GROUP BY stock_id
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_quote table: %w", err)
	}
	defer rows.Close()

	lastDates := make(map[string]time.Time)

	for rows.Next() {
		var stockID, dateStr string

		if err := rows.Scan(&stockID, &dateStr); err != nil {
			return nil, fmt.Errorf("failed to scan stock_quote table results: %w", err)
		}

		date, err := ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse quote date: %w", err)
		}

		lastDates[stockID] = date
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_quote table: %w", err)
	}

	return lastDates, nil
}
