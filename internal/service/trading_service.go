package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/bank"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
)

// TradingService handles trading-account business logic: aggregate position
// sizes, trading balance, available cash, and the solvency-checked execution
// of stock and bucket trades.
//
// The bank provider is passed per call: it is request-scoped (one balance
// fetch per request) and depends on which profile is making the request.
type TradingService struct {
	db            *sql.DB
	tradingRepo   *repository.TradingRepository
	quoteRepo     *repository.QuoteRepository
	bucketRepo    *repository.BucketRepository
	bucketService *BucketService
}

// NewTradingService creates a new TradingService with the provided dependencies.
func NewTradingService(
	db *sql.DB,
	tradingRepo *repository.TradingRepository,
	quoteRepo *repository.QuoteRepository,
	bucketRepo *repository.BucketRepository,
	bucketService *BucketService,
) *TradingService {
	return &TradingService{
		db:            db,
		tradingRepo:   tradingRepo,
		quoteRepo:     quoteRepo,
		bucketRepo:    bucketRepo,
		bucketService: bucketService,
	}
}

// Accounts returns all trading accounts of the profile.
func (s *TradingService) Accounts(profileID string) ([]model.TradingAccount, error) {
	return s.tradingRepo.GetAccountsForProfile(profileID)
}

// GetAccount returns one trading account owned by the profile.
func (s *TradingService) GetAccount(accountID, profileID string) (model.TradingAccount, error) {
	return s.tradingRepo.GetAccountOnID(s.tradingRepo.DB(), accountID, profileID)
}

// CreateAccount creates a named trading account under the profile.
func (s *TradingService) CreateAccount(profileID, accountName string) (model.TradingAccount, error) {
	account := model.TradingAccount{
		ID:          uuid.New().String(),
		ProfileID:   profileID,
		AccountName: accountName,
	}

	if err := s.tradingRepo.InsertAccount(account); err != nil {
		return model.TradingAccount{}, err
	}

	return account, nil
}

// TradingBalance replays the account's ledgers: each row contributes the
// instrument's price at the row's own timestamp times the negated quantity,
// so buys show as cash outflows and sells as inflows.
func (s *TradingService) TradingBalance(accountID, profileID string) (float64, error) {
	if _, err := s.tradingRepo.GetAccountOnID(s.tradingRepo.DB(), accountID, profileID); err != nil {
		return 0, err
	}

	return s.tradingBalance(s.tradingRepo.DB(), accountID)
}

func (s *TradingService) tradingBalance(q repository.Querier, accountID string) (float64, error) {
	stockTrades, err := s.tradingRepo.GetStockTrades(q, accountID)
	if err != nil {
		return 0, err
	}

	var balance float64
	for _, trade := range stockTrades {
		value, err := s.stockTradeValue(q, trade)
		if err != nil {
			return 0, err
		}
		balance += value
	}

	bucketTrades, err := s.tradingRepo.GetBucketTrades(q, accountID)
	if err != nil {
		return 0, err
	}

	for _, trade := range bucketTrades {
		value, err := s.bucketTradeValue(q, trade)
		if err != nil {
			return 0, err
		}
		balance += value
	}

	return balance, nil
}

// stockTradeValue values one immutable ledger row at its own timestamp.
// A missing quote here is data corruption, not a recoverable condition: the
// trade could only be created against an existing quote.
func (s *TradingService) stockTradeValue(q repository.Querier, trade model.StockTrade) (float64, error) {
	ts := trade.Timestamp
	quote, err := s.quoteRepo.Latest(q, trade.StockID, &ts)
	if err != nil {
		return 0, fmt.Errorf("failed to value trade %s: %w", trade.ID, err)
	}

	return quote.Value * -trade.Quantity, nil
}

func (s *TradingService) bucketTradeValue(q repository.Querier, trade model.BucketTrade) (float64, error) {
	ts := trade.Timestamp
	value, err := s.bucketService.valueOnID(q, trade.BucketID, &ts)
	if err != nil {
		return 0, fmt.Errorf("failed to value bucket trade %s: %w", trade.ID, err)
	}

	return value * -trade.Quantity, nil
}

// AvailableCash is the trading balance plus the external bank balance.
func (s *TradingService) AvailableCash(accountID, profileID string, bankProvider bank.Provider) (float64, error) {
	if _, err := s.tradingRepo.GetAccountOnID(s.tradingRepo.DB(), accountID, profileID); err != nil {
		return 0, err
	}

	return s.availableCash(s.tradingRepo.DB(), accountID, bankProvider)
}

func (s *TradingService) availableCash(q repository.Querier, accountID string, bankProvider bank.Provider) (float64, error) {
	balance, err := s.tradingBalance(q, accountID)
	if err != nil {
		return 0, err
	}

	bankBalance, err := bankProvider.CurrentBalance()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrFailedToReachBank, err)
	}

	return balance + bankBalance, nil
}

// AvailableStockQuantity is the signed sum of traded quantity for the stock.
func (s *TradingService) AvailableStockQuantity(accountID, profileID, stockID string) (float64, error) {
	if _, err := s.tradingRepo.GetAccountOnID(s.tradingRepo.DB(), accountID, profileID); err != nil {
		return 0, err
	}

	return s.tradingRepo.StockQuantity(s.tradingRepo.DB(), accountID, stockID)
}

// AvailableBucketQuantity is the signed sum of traded quantity for the bucket.
func (s *TradingService) AvailableBucketQuantity(accountID, profileID, bucketID string) (float64, error) {
	if _, err := s.tradingRepo.GetAccountOnID(s.tradingRepo.DB(), accountID, profileID); err != nil {
		return 0, err
	}

	return s.tradingRepo.BucketQuantity(s.tradingRepo.DB(), accountID, bucketID)
}

// TradeStock executes a signed-quantity stock trade against the account,
// positive meaning buy. The trade is accepted only when the account can cover
// the notional cash cost AND holds enough of the stock to cover a sell: a
// sell of magnitude m is validated as held >= m by checking the negated
// quantity, which lets buy and sell share one invariant check.
//
// On success exactly one immutable ledger row is appended; on failure the
// account is untouched and the call fails with
// apperrors.ErrInsufficientResources. Check and append run in one
// transaction so two concurrent trades cannot both spend the same cash.
func (s *TradingService) TradeStock(accountID, profileID, stockID string, quantity float64, bankProvider bank.Provider) (model.StockTrade, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.StockTrade{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := s.tradingRepo.GetAccountOnID(tx, accountID, profileID); err != nil {
		return model.StockTrade{}, err
	}

	quote, err := s.quoteRepo.Latest(tx, stockID, nil)
	if err != nil {
		return model.StockTrade{}, err
	}

	cost := quote.Value * quantity

	cash, err := s.availableCash(tx, accountID, bankProvider)
	if err != nil {
		return model.StockTrade{}, err
	}

	held, err := s.tradingRepo.StockQuantity(tx, accountID, stockID)
	if err != nil {
		return model.StockTrade{}, err
	}

	if cash < cost || held < -quantity {
		return model.StockTrade{}, apperrors.ErrInsufficientResources
	}

	trade := model.StockTrade{
		ID:        uuid.New().String(),
		AccountID: accountID,
		StockID:   stockID,
		Quantity:  quantity,
		Timestamp: time.Now().UTC(),
	}

	if err := s.tradingRepo.InsertStockTrade(tx, trade); err != nil {
		return model.StockTrade{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.StockTrade{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return trade, nil
}

// TradeBucket is TradeStock with the bucket's current value standing in for
// the unit price and bucket holdings for the stock holdings. The bucket must
// be accessible to the trading profile.
func (s *TradingService) TradeBucket(accountID, profileID, bucketID string, quantity float64, bankProvider bank.Provider) (model.BucketTrade, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.BucketTrade{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := s.tradingRepo.GetAccountOnID(tx, accountID, profileID); err != nil {
		return model.BucketTrade{}, err
	}

	bucket, err := s.bucketRepo.GetAccessibleBucket(tx, bucketID, profileID)
	if err != nil {
		return model.BucketTrade{}, err
	}

	unitPrice, err := s.bucketService.valueOn(tx, bucket, nil)
	if err != nil {
		return model.BucketTrade{}, err
	}

	cost := unitPrice * quantity

	cash, err := s.availableCash(tx, accountID, bankProvider)
	if err != nil {
		return model.BucketTrade{}, err
	}

	held, err := s.tradingRepo.BucketQuantity(tx, accountID, bucketID)
	if err != nil {
		return model.BucketTrade{}, err
	}

	if cash < cost || held < -quantity {
		return model.BucketTrade{}, apperrors.ErrInsufficientResources
	}

	trade := model.BucketTrade{
		ID:        uuid.New().String(),
		AccountID: accountID,
		BucketID:  bucketID,
		Quantity:  quantity,
		Timestamp: time.Now().UTC(),
	}

	if err := s.tradingRepo.InsertBucketTrade(tx, trade); err != nil {
		return model.BucketTrade{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.BucketTrade{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return trade, nil
}

// StockTrades returns the stock ledger of an account, oldest first.
func (s *TradingService) StockTrades(accountID, profileID string) ([]model.StockTrade, error) {
	if _, err := s.tradingRepo.GetAccountOnID(s.tradingRepo.DB(), accountID, profileID); err != nil {
		return nil, err
	}

	return s.tradingRepo.GetStockTrades(s.tradingRepo.DB(), accountID)
}

// BucketTrades returns the bucket ledger of an account, oldest first.
func (s *TradingService) BucketTrades(accountID, profileID string) ([]model.BucketTrade, error) {
	if _, err := s.tradingRepo.GetAccountOnID(s.tradingRepo.DB(), accountID, profileID); err != nil {
		return nil, err
	}

	return s.tradingRepo.GetBucketTrades(s.tradingRepo.DB(), accountID)
}
