package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
)

// ProfileBuilder provides a fluent interface for creating test profiles.
//
// Example usage:
//
//	profile := testutil.NewProfile().WithUserName("alice").Build(t, db)
type ProfileBuilder struct {
	ID       string
	UserName string
}

// NewProfile creates a ProfileBuilder with sensible defaults.
func NewProfile() *ProfileBuilder {
	return &ProfileBuilder{
		ID:       MakeID(),
		UserName: "user-" + randomAlphanumeric(6),
	}
}

// WithID sets a custom ID.
func (b *ProfileBuilder) WithID(id string) *ProfileBuilder {
	b.ID = id
	return b
}

// WithUserName sets a custom user name.
func (b *ProfileBuilder) WithUserName(name string) *ProfileBuilder {
	b.UserName = name
	return b
}

// Build creates the profile in the database and returns it.
func (b *ProfileBuilder) Build(t *testing.T, db *sql.DB) model.Profile {
	t.Helper()

	query := `
		INSERT INTO profile (id, user_name)
		VALUES (?, ?)
	`

	if _, err := db.Exec(query, b.ID, b.UserName); err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}

	return model.Profile{ID: b.ID, UserName: b.UserName}
}

// StockBuilder provides a fluent interface for creating test stocks.
type StockBuilder struct {
	ID     string
	Name   string
	Ticker string
}

// NewStock creates a StockBuilder with sensible defaults.
func NewStock() *StockBuilder {
	return &StockBuilder{
		ID:     MakeID(),
		Name:   "Test Stock " + randomAlphanumeric(6),
		Ticker: MakeTicker("TST"),
	}
}

// WithID sets a custom ID.
func (b *StockBuilder) WithID(id string) *StockBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *StockBuilder) WithName(name string) *StockBuilder {
	b.Name = name
	return b
}

// WithTicker sets a custom ticker.
func (b *StockBuilder) WithTicker(ticker string) *StockBuilder {
	b.Ticker = ticker
	return b
}

// Build creates the stock in the database and returns it.
func (b *StockBuilder) Build(t *testing.T, db *sql.DB) model.Stock {
	t.Helper()

	query := `
		INSERT INTO stock (id, name, ticker)
		VALUES (?, ?, ?)
	`

	if _, err := db.Exec(query, b.ID, b.Name, b.Ticker); err != nil {
		t.Fatalf("Failed to create test stock: %v", err)
	}

	return model.Stock{ID: b.ID, Name: b.Name, Ticker: b.Ticker}
}

// QuoteBuilder provides a fluent interface for creating test quotes.
type QuoteBuilder struct {
	ID      string
	StockID string
	Date    time.Time
	Value   float64
}

// NewQuote creates a QuoteBuilder for the given stock, defaulting to a quote
// of 100.0 dated today.
func NewQuote(stockID string) *QuoteBuilder {
	return &QuoteBuilder{
		ID:      MakeID(),
		StockID: stockID,
		Date:    time.Now().UTC().Truncate(24 * time.Hour),
		Value:   100.0,
	}
}

// WithDate sets the quote date.
func (b *QuoteBuilder) WithDate(date time.Time) *QuoteBuilder {
	b.Date = date
	return b
}

// DaysAgo dates the quote the given number of days in the past.
func (b *QuoteBuilder) DaysAgo(days int) *QuoteBuilder {
	b.Date = time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)
	return b
}

// WithValue sets the quote value.
func (b *QuoteBuilder) WithValue(value float64) *QuoteBuilder {
	b.Value = value
	return b
}

// Build creates the quote in the database and returns it.
func (b *QuoteBuilder) Build(t *testing.T, db *sql.DB) model.Quote {
	t.Helper()

	query := `
		INSERT INTO stock_quote (id, stock_id, date, value)
		VALUES (?, ?, ?, ?)
	`

	if _, err := db.Exec(query, b.ID, b.StockID, repository.FormatDate(b.Date), b.Value); err != nil {
		t.Fatalf("Failed to create test quote: %v", err)
	}

	return model.Quote{ID: b.ID, StockID: b.StockID, Date: b.Date, Value: b.Value}
}

// BucketBuilder provides a fluent interface for creating test buckets.
//
// Example usage:
//
//	bucket := testutil.NewBucket(profile.ID).
//	    WithName("Tech").
//	    Public().
//	    WithAvailable(500).
//	    Build(t, db)
type BucketBuilder struct {
	ID        string
	Name      string
	OwnerID   string
	IsPublic  bool
	Available float64
}

// NewBucket creates a BucketBuilder owned by the given profile, private and
// holding the default endowment.
func NewBucket(ownerID string) *BucketBuilder {
	return &BucketBuilder{
		ID:        MakeID(),
		Name:      "Test Bucket " + randomAlphanumeric(6),
		OwnerID:   ownerID,
		IsPublic:  false,
		Available: 1000.0,
	}
}

// WithID sets a custom ID.
func (b *BucketBuilder) WithID(id string) *BucketBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *BucketBuilder) WithName(name string) *BucketBuilder {
	b.Name = name
	return b
}

// Public marks the bucket as visible to every profile.
func (b *BucketBuilder) Public() *BucketBuilder {
	b.IsPublic = true
	return b
}

// WithAvailable sets the cash balance.
func (b *BucketBuilder) WithAvailable(available float64) *BucketBuilder {
	b.Available = available
	return b
}

// Build creates the bucket in the database and returns it.
func (b *BucketBuilder) Build(t *testing.T, db *sql.DB) model.Bucket {
	t.Helper()

	query := `
		INSERT INTO bucket (id, name, owner_id, public, available)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := db.Exec(query, b.ID, b.Name, b.OwnerID, b.IsPublic, b.Available); err != nil {
		t.Fatalf("Failed to create test bucket: %v", err)
	}

	return model.Bucket{
		ID:        b.ID,
		Name:      b.Name,
		OwnerID:   b.OwnerID,
		Public:    b.IsPublic,
		Available: b.Available,
	}
}

// PositionBuilder provides a fluent interface for creating test positions.
type PositionBuilder struct {
	ID        string
	BucketID  string
	StockID   string
	Quantity  float64
	StartDate time.Time
	EndDate   *time.Time
}

// NewPosition creates a PositionBuilder for the given bucket and stock,
// defaulting to one share held open since today.
func NewPosition(bucketID, stockID string) *PositionBuilder {
	return &PositionBuilder{
		ID:        MakeID(),
		BucketID:  bucketID,
		StockID:   stockID,
		Quantity:  1.0,
		StartDate: time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// WithQuantity sets the held quantity.
func (b *PositionBuilder) WithQuantity(quantity float64) *PositionBuilder {
	b.Quantity = quantity
	return b
}

// StartedDaysAgo moves the start date the given number of days into the past.
func (b *PositionBuilder) StartedDaysAgo(days int) *PositionBuilder {
	b.StartDate = time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)
	return b
}

// ClosedDaysAgo closes the position the given number of days in the past.
func (b *PositionBuilder) ClosedDaysAgo(days int) *PositionBuilder {
	end := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)
	b.EndDate = &end
	return b
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	query := `
		INSERT INTO position (id, bucket_id, stock_id, quantity, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var endDate any
	if b.EndDate != nil {
		endDate = repository.FormatDate(*b.EndDate)
	}

	if _, err := db.Exec(query, b.ID, b.BucketID, b.StockID, b.Quantity, repository.FormatDate(b.StartDate), endDate); err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return model.Position{
		ID:        b.ID,
		BucketID:  b.BucketID,
		StockID:   b.StockID,
		Quantity:  b.Quantity,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
	}
}

// AccountBuilder provides a fluent interface for creating test trading accounts.
type AccountBuilder struct {
	ID          string
	ProfileID   string
	AccountName string
}

// NewAccount creates an AccountBuilder for the given profile.
func NewAccount(profileID string) *AccountBuilder {
	return &AccountBuilder{
		ID:          MakeID(),
		ProfileID:   profileID,
		AccountName: "account-" + randomAlphanumeric(6),
	}
}

// WithAccountName sets a custom account name.
func (b *AccountBuilder) WithAccountName(name string) *AccountBuilder {
	b.AccountName = name
	return b
}

// Build creates the trading account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.TradingAccount {
	t.Helper()

	query := `
		INSERT INTO trading_account (id, profile_id, account_name)
		VALUES (?, ?, ?)
	`

	if _, err := db.Exec(query, b.ID, b.ProfileID, b.AccountName); err != nil {
		t.Fatalf("Failed to create test trading account: %v", err)
	}

	return model.TradingAccount{
		ID:          b.ID,
		ProfileID:   b.ProfileID,
		AccountName: b.AccountName,
	}
}

// Convenience functions

// CreateProfile creates a profile with default values.
func CreateProfile(t *testing.T, db *sql.DB) model.Profile {
	t.Helper()
	return NewProfile().Build(t, db)
}

// CreateStock creates a stock with default values.
func CreateStock(t *testing.T, db *sql.DB) model.Stock {
	t.Helper()
	return NewStock().Build(t, db)
}

// CreateStockWithQuote creates a stock plus a quote of the given value dated
// today.
func CreateStockWithQuote(t *testing.T, db *sql.DB, value float64) model.Stock {
	t.Helper()

	stock := NewStock().Build(t, db)
	NewQuote(stock.ID).WithValue(value).Build(t, db)
	return stock
}

// CreateBucket creates a private bucket owned by the given profile with the
// default endowment.
func CreateBucket(t *testing.T, db *sql.DB, ownerID string) model.Bucket {
	t.Helper()
	return NewBucket(ownerID).Build(t, db)
}

// CreateAccount creates a trading account for the given profile.
func CreateAccount(t *testing.T, db *sql.DB, profileID string) model.TradingAccount {
	t.Helper()
	return NewAccount(profileID).Build(t, db)
}
