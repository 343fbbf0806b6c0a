package service

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stockbucket/backend/internal/marketdata"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
)

// backfillYears is how far back quote history is fetched for a new stock.
const backfillYears = 10

// maxConcurrentFetches bounds the number of simultaneous provider requests
// during a fill-missing-days run.
const maxConcurrentFetches = 4

// BackfillService fetches historical quotes from the market-data provider
// and stores them. It serves two paths: the full backfill on stock creation
// and the incremental top-up run by the daily refresh job.
type BackfillService struct {
	stockRepo *repository.StockRepository
	quoteRepo *repository.QuoteRepository
	provider  marketdata.Provider
}

// NewBackfillService creates a new BackfillService with the provided dependencies.
func NewBackfillService(
	stockRepo *repository.StockRepository,
	quoteRepo *repository.QuoteRepository,
	provider marketdata.Provider,
) *BackfillService {
	return &BackfillService{
		stockRepo: stockRepo,
		quoteRepo: quoteRepo,
		provider:  provider,
	}
}

// BackfillStock fetches ten years of daily quotes for the stock and inserts
// them. Existing rows for the same day are left untouched.
func (s *BackfillService) BackfillStock(stock model.Stock) error {
	now := time.Now().UTC()
	from := now.AddDate(-backfillYears, 0, 0)

	return s.fetchAndStore(stock, from, now)
}

// FillMissingDays tops up quote history for every known stock, fetching from
// the day after each stock's latest stored quote through today. Stocks with
// no history at all get the full backfill window. Fetches run concurrently
// with a bounded number of provider requests in flight; one stock failing
// does not stop the others, but the first error is reported.
func (s *BackfillService) FillMissingDays() error {
	stocks, err := s.stockRepo.GetAllStocks()
	if err != nil {
		return err
	}

	lastDates, err := s.quoteRepo.LastQuoteDates()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)

	for _, stock := range stocks {
		stock := stock
		from := now.AddDate(-backfillYears, 0, 0)

		if last, ok := lastDates[stock.ID]; ok {
			if !last.Before(today) {
				continue
			}
			from = last.AddDate(0, 0, 1)
		}

		g.Go(func() error {
			if err := s.fetchAndStore(stock, from, now); err != nil {
				log.Printf("quote refresh failed for %s: %v", stock.Ticker, err)
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func (s *BackfillService) fetchAndStore(stock model.Stock, from, to time.Time) error {
	history, err := s.provider.FetchHistory(stock.Ticker, from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch history for %s: %w", stock.Ticker, err)
	}

	quotes := make([]model.Quote, 0, len(history))
	for _, day := range history {
		quotes = append(quotes, model.Quote{
			Date:  day.Date,
			Value: day.Close,
		})
	}

	return s.quoteRepo.BulkInsert(stock.ID, quotes)
}
