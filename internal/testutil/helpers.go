package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stockbucket/backend/internal/bank"
	"github.com/stockbucket/backend/internal/config"
	"github.com/stockbucket/backend/internal/marketdata"
	"github.com/stockbucket/backend/internal/repository"
	"github.com/stockbucket/backend/internal/service"
)

func NewTestQuoteService(t *testing.T, db *sql.DB) *service.QuoteService {
	t.Helper()

	return service.NewQuoteService(repository.NewQuoteRepository(db))
}

func NewTestBucketService(t *testing.T, db *sql.DB) *service.BucketService {
	t.Helper()

	return service.NewBucketService(
		db,
		repository.NewBucketRepository(db),
		repository.NewStockRepository(db),
		repository.NewQuoteRepository(db),
	)
}

func NewTestTradingService(t *testing.T, db *sql.DB) *service.TradingService {
	t.Helper()

	bucketRepo := repository.NewBucketRepository(db)

	return service.NewTradingService(
		db,
		repository.NewTradingRepository(db),
		repository.NewQuoteRepository(db),
		bucketRepo,
		NewTestBucketService(t, db),
	)
}

func NewTestProfileService(t *testing.T, db *sql.DB) *service.ProfileService {
	t.Helper()

	return service.NewProfileService(
		db,
		repository.NewProfileRepository(db),
		repository.NewTradingRepository(db),
	)
}

func NewTestBackfillService(t *testing.T, db *sql.DB, provider marketdata.Provider) *service.BackfillService {
	t.Helper()

	return service.NewBackfillService(
		repository.NewStockRepository(db),
		repository.NewQuoteRepository(db),
		provider,
	)
}

func NewTestStockService(t *testing.T, db *sql.DB, provider marketdata.Provider) *service.StockService {
	t.Helper()

	return service.NewStockService(
		repository.NewStockRepository(db),
		repository.NewTradingRepository(db),
		provider,
		NewTestBackfillService(t, db, provider),
	)
}

// NewTestBankLinkService builds a bank-link service pointed at the given base
// URL, typically an httptest server standing in for the aggregation API. The
// token cipher runs on an ephemeral key.
func NewTestBankLinkService(t *testing.T, db *sql.DB, baseURL string) *service.BankLinkService {
	t.Helper()

	cipher, err := bank.NewTokenCipher("")
	if err != nil {
		t.Fatalf("Failed to create token cipher: %v", err)
	}

	cfg := config.BankConfig{
		BaseURL:  baseURL,
		ClientID: "test-client",
		Secret:   "test-secret",
	}

	return service.NewBankLinkService(cfg, cipher, repository.NewProfileRepository(db))
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
func MakeID() string {
	return uuid.New().String()
}

// MakeTicker generates a unique ticker symbol for testing.
//
// Example usage:
//
//	ticker := testutil.MakeTicker("TST")
//	// Returns: "TST1A2B"
func MakeTicker(base string) string {
	if base == "" {
		base = "TST"
	}
	return base + randomAlphanumeric(4)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
