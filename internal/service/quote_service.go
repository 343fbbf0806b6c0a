package service

import (
	"math"
	"time"

	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
)

// QuoteService answers point-in-time and range price questions over the
// append-only quote store. It has no side effects.
type QuoteService struct {
	quoteRepo *repository.QuoteRepository
}

// NewQuoteService creates a new QuoteService with the provided repository dependency.
func NewQuoteService(quoteRepo *repository.QuoteRepository) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
	}
}

// Latest returns the most recent quote for the stock with date <= asOf, or the
// globally most recent quote when asOf is nil.
//
// Fails with apperrors.ErrFutureDate when asOf lies in the future and with
// apperrors.ErrQuoteNotFound when no quote exists at or before the date. The
// two must stay distinguishable: callers routinely swallow ErrQuoteNotFound
// but a future date is a logic bug on their side.
func (s *QuoteService) Latest(stockID string, asOf *time.Time) (model.Quote, error) {
	return s.quoteRepo.Latest(s.quoteRepo.DB(), stockID, asOf)
}

// Range returns quotes for the stock ascending by date. Both bounds are
// optional and inclusive.
func (s *QuoteService) Range(stockID string, start, end *time.Time) ([]model.Quote, error) {
	return s.quoteRepo.Range(stockID, start, end)
}

// positionValue computes the value of a position as of the given date:
// quantity times the latest quote at or before the date.
//
// Price-lookup failures propagate unchanged so callers can tell
// ErrQuoteNotFound (position contributes nothing) from ErrFutureDate (caller
// bug). A NaN result is reported as ErrValuation rather than poisoning sums.
func positionValue(q repository.Querier, quotes *repository.QuoteRepository, p model.Position, asOf *time.Time) (float64, error) {
	quote, err := quotes.Latest(q, p.StockID, asOf)
	if err != nil {
		return 0, err
	}

	value := quote.Value * p.Quantity
	if math.IsNaN(value) {
		return 0, apperrors.ErrValuation
	}

	return value, nil
}
