package service

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/marketdata"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
)

// StockService handles stock lookup and creation. Creating a stock validates
// the ticker against the market-data provider and then explicitly triggers a
// historical backfill; there are no implicit save hooks.
type StockService struct {
	stockRepo   *repository.StockRepository
	tradingRepo *repository.TradingRepository
	provider    marketdata.Provider
	backfill    *BackfillService
}

// NewStockService creates a new StockService with the provided dependencies.
func NewStockService(
	stockRepo *repository.StockRepository,
	tradingRepo *repository.TradingRepository,
	provider marketdata.Provider,
	backfill *BackfillService,
) *StockService {
	return &StockService{
		stockRepo:   stockRepo,
		tradingRepo: tradingRepo,
		provider:    provider,
		backfill:    backfill,
	}
}

// Get retrieves a single stock by ID.
func (s *StockService) Get(stockID string) (model.Stock, error) {
	return s.stockRepo.GetStockOnID(s.tradingRepo.DB(), stockID)
}

// Search finds stocks whose name contains the given text. A first of 0
// returns all matches.
func (s *StockService) Search(text string, first int) ([]model.Stock, error) {
	return s.stockRepo.SearchStocks(text, first)
}

// Create validates the ticker against the market-data provider, creates the
// stock, and backfills ten years of quote history.
//
// Ticker validation failure yields apperrors.ErrInvalidTicker and no row.
// A backfill failure after the row exists is logged, not returned: the stock
// is usable, its quote history just has to wait for the next refresh run.
func (s *StockService) Create(ticker, name string) (model.Stock, error) {
	if ticker == "" || name == "" {
		return model.Stock{}, apperrors.ErrMissingRequiredField
	}

	valid, err := s.provider.ValidateTicker(ticker)
	if err != nil {
		return model.Stock{}, fmt.Errorf("%w: %s", apperrors.ErrFailedToReachMarketData, err)
	}
	if !valid {
		return model.Stock{}, apperrors.ErrInvalidTicker
	}

	stock := model.Stock{
		ID:     uuid.New().String(),
		Name:   name,
		Ticker: ticker,
	}

	if err := s.stockRepo.InsertStock(stock); err != nil {
		return model.Stock{}, err
	}

	if err := s.backfill.BackfillStock(stock); err != nil {
		log.Printf("backfill failed for %s: %v", stock.Ticker, err)
	}

	return stock, nil
}

// TradesForProfile returns every trade the profile made with this stock
// across all of its trading accounts.
func (s *StockService) TradesForProfile(stockID, profileID string) ([]model.StockTrade, error) {
	if _, err := s.stockRepo.GetStockOnID(s.tradingRepo.DB(), stockID); err != nil {
		return nil, err
	}

	return s.tradingRepo.GetStockTradesForProfile(stockID, profileID)
}
