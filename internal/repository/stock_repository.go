package repository

import (
	"database/sql"
	"fmt"

	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/model"
)

// StockRepository provides data access methods for the stock table.
type StockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a new StockRepository with the provided database connection.
func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

// GetStockOnID retrieves a single stock by its ID.
func (s *StockRepository) GetStockOnID(q Querier, stockID string) (model.Stock, error) {
	query := `
		SELECT id, name, ticker
		FROM stock
		WHERE id = ?
	`
	var st model.Stock

	err := q.QueryRow(query, stockID).Scan(&st.ID, &st.Name, &st.Ticker)
	if err == sql.ErrNoRows {
		return model.Stock{}, apperrors.ErrStockNotFound
	}
	if err != nil {
		return model.Stock{}, fmt.Errorf("failed to query stock: %w", err)
	}

	return st, nil
}

// SearchStocks retrieves stocks whose name contains the given text,
// case-insensitively. A limit of 0 returns all matches.
func (s *StockRepository) SearchStocks(text string, limit int) ([]model.Stock, error) {
	query := `
		SELECT id, name, ticker
		FROM stock
		WHERE name LIKE '%' || ? || '%'
		ORDER BY name ASC
	`
	args := []any{text}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock table: %w", err)
	}
	defer rows.Close()

	stocks := []model.Stock{}

	for rows.Next() {
		var st model.Stock

		if err := rows.Scan(&st.ID, &st.Name, &st.Ticker); err != nil {
			return nil, fmt.Errorf("failed to scan stock table results: %w", err)
		}

		stocks = append(stocks, st)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock table: %w", err)
	}

	return stocks, nil
}

// InsertStock creates a new stock row.
func (s *StockRepository) InsertStock(stock model.Stock) error {
	query := `
		INSERT INTO stock (id, name, ticker)
		VALUES (?, ?, ?)
	`

	if _, err := s.db.Exec(query, stock.ID, stock.Name, stock.Ticker); err != nil {
		return mapInsertErr(err, "insert stock")
	}

	return nil
}

// GetAllStocks retrieves every stock, ordered by ticker.
func (s *StockRepository) GetAllStocks() ([]model.Stock, error) {
	query := `
		SELECT id, name, ticker
		FROM stock
		ORDER BY ticker ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock table: %w", err)
	}
	defer rows.Close()

	stocks := []model.Stock{}

	for rows.Next() {
		var st model.Stock

		if err := rows.Scan(&st.ID, &st.Name, &st.Ticker); err != nil {
			return nil, fmt.Errorf("failed to scan stock table results: %w", err)
		}

		stocks = append(stocks, st)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock table: %w", err)
	}

	return stocks, nil
}
