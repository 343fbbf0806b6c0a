package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/model"
)

// TradingRepository provides data access methods for trading accounts and the
// append-only stock_trade and bucket_trade ledgers. Ledger rows are immutable:
// there are insert and read methods only, no updates or deletes.
type TradingRepository struct {
	db *sql.DB
}

// NewTradingRepository creates a new TradingRepository with the provided database connection.
func NewTradingRepository(db *sql.DB) *TradingRepository {
	return &TradingRepository{db: db}
}

// DB returns the underlying connection, for callers that need a plain Querier.
func (s *TradingRepository) DB() Querier {
	return s.db
}

// GetAccountOnID retrieves a trading account owned by the given profile.
func (s *TradingRepository) GetAccountOnID(q Querier, accountID, profileID string) (model.TradingAccount, error) {
	query := `
		SELECT id, profile_id, account_name
		FROM trading_account
		WHERE id = ? AND profile_id = ?
	`
	var a model.TradingAccount

	err := q.QueryRow(query, accountID, profileID).Scan(&a.ID, &a.ProfileID, &a.AccountName)
	if err == sql.ErrNoRows {
		return model.TradingAccount{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.TradingAccount{}, fmt.Errorf("failed to query trading_account: %w", err)
	}

	return a, nil
}

// GetAccountsForProfile retrieves all trading accounts of a profile, oldest first.
func (s *TradingRepository) GetAccountsForProfile(profileID string) ([]model.TradingAccount, error) {
	query := `
		SELECT id, profile_id, account_name
		FROM trading_account
		WHERE profile_id = ?
		ORDER BY created_at ASC, account_name ASC
	`

	rows, err := s.db.Query(query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trading_account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.TradingAccount{}

	for rows.Next() {
		var a model.TradingAccount

		if err := rows.Scan(&a.ID, &a.ProfileID, &a.AccountName); err != nil {
			return nil, fmt.Errorf("failed to scan trading_account table results: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trading_account table: %w", err)
	}

	return accounts, nil
}

// InsertAccount creates a new trading account.
func (s *TradingRepository) InsertAccount(a model.TradingAccount) error {
	query := `
		INSERT INTO trading_account (id, profile_id, account_name)
		VALUES (?, ?, ?)
	`

	if _, err := s.db.Exec(query, a.ID, a.ProfileID, a.AccountName); err != nil {
		return mapInsertErr(err, "insert trading account")
	}

	return nil
}

// GetStockTrades retrieves all stock ledger rows of an account, oldest first.
func (s *TradingRepository) GetStockTrades(q Querier, accountID string) ([]model.StockTrade, error) {
	query := `
		SELECT id, account_id, stock_id, quantity, timestamp
		FROM stock_trade
		WHERE account_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := q.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_trade table: %w", err)
	}
	defer rows.Close()

	trades := []model.StockTrade{}

	for rows.Next() {
		var t model.StockTrade
		var tsStr string

		if err := rows.Scan(&t.ID, &t.AccountID, &t.StockID, &t.Quantity, &tsStr); err != nil {
			return nil, fmt.Errorf("failed to scan stock_trade table results: %w", err)
		}

		t.Timestamp, err = ParseTime(tsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trade timestamp: %w", err)
		}

		trades = append(trades, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_trade table: %w", err)
	}

	return trades, nil
}

// GetBucketTrades retrieves all bucket ledger rows of an account, oldest first.
func (s *TradingRepository) GetBucketTrades(q Querier, accountID string) ([]model.BucketTrade, error) {
	query := `
		SELECT id, account_id, bucket_id, quantity, timestamp
		FROM bucket_trade
		WHERE account_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := q.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bucket_trade table: %w", err)
	}
	defer rows.Close()

	trades := []model.BucketTrade{}

	for rows.Next() {
		var t model.BucketTrade
		var tsStr string

		if err := rows.Scan(&t.ID, &t.AccountID, &t.BucketID, &t.Quantity, &tsStr); err != nil {
			return nil, fmt.Errorf("failed to scan bucket_trade table results: %w", err)
		}

		t.Timestamp, err = ParseTime(tsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trade timestamp: %w", err)
		}

		trades = append(trades, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bucket_trade table: %w", err)
	}

	return trades, nil
}

// StockQuantity returns the signed sum of traded quantity for one stock on an
// account. Absence of ledger rows yields 0.
func (s *TradingRepository) StockQuantity(q Querier, accountID, stockID string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_trade
		WHERE account_id = ? AND stock_id = ?
	`
	var quantity float64

	if err := q.QueryRow(query, accountID, stockID).Scan(&quantity); err != nil {
		return 0, fmt.Errorf("failed to sum stock_trade quantity: %w", err)
	}

	return quantity, nil
}

// BucketQuantity returns the signed sum of traded quantity for one bucket on
// an account. Absence of ledger rows yields 0.
func (s *TradingRepository) BucketQuantity(q Querier, accountID, bucketID string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM bucket_trade
		WHERE account_id = ? AND bucket_id = ?
	`
	var quantity float64

	if err := q.QueryRow(query, accountID, bucketID).Scan(&quantity); err != nil {
		return 0, fmt.Errorf("failed to sum bucket_trade quantity: %w", err)
	}

	return quantity, nil
}

// InsertStockTrade appends one stock ledger row.
func (s *TradingRepository) InsertStockTrade(q Querier, t model.StockTrade) error {
	query := `
		INSERT INTO stock_trade (id, account_id, stock_id, quantity, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := q.Exec(query, t.ID, t.AccountID, t.StockID, t.Quantity, t.Timestamp.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to insert stock trade: %w", err)
	}

	return nil
}

// InsertBucketTrade appends one bucket ledger row.
func (s *TradingRepository) InsertBucketTrade(q Querier, t model.BucketTrade) error {
	query := `
		INSERT INTO bucket_trade (id, account_id, bucket_id, quantity, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := q.Exec(query, t.ID, t.AccountID, t.BucketID, t.Quantity, t.Timestamp.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to insert bucket trade: %w", err)
	}

	return nil
}

// GetStockTradesForProfile retrieves all trades of one stock across every
// account owned by the profile.
func (s *TradingRepository) GetStockTradesForProfile(stockID, profileID string) ([]model.StockTrade, error) {
	query := `
		SELECT t.id, t.account_id, t.stock_id, t.quantity, t.timestamp
		FROM stock_trade t
		JOIN trading_account a ON a.id = t.account_id
		WHERE t.stock_id = ? AND a.profile_id = ?
		ORDER BY t.timestamp ASC, t.id ASC
	`

	rows, err := s.db.Query(query, stockID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_trade table: %w", err)
	}
	defer rows.Close()

	trades := []model.StockTrade{}

	for rows.Next() {
		var t model.StockTrade
		var tsStr string

		if err := rows.Scan(&t.ID, &t.AccountID, &t.StockID, &t.Quantity, &tsStr); err != nil {
			return nil, fmt.Errorf("failed to scan stock_trade table results: %w", err)
		}

		t.Timestamp, err = ParseTime(tsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trade timestamp: %w", err)
		}

		trades = append(trades, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_trade table: %w", err)
	}

	return trades, nil
}
