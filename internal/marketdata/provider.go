// Package marketdata provides access to historical stock price data.
package marketdata

import (
	"errors"
	"time"
)

// ErrTickerNotFound signals that the provider does not know the requested
// ticker. Distinguishable from transport failures so callers can map it to a
// validation error instead of a generic one.
var ErrTickerNotFound = errors.New("ticker not found")

// DayQuote is one day of closing-price data for a ticker.
type DayQuote struct {
	Date  time.Time
	Close float64
}

// Provider fetches historical price data for stock tickers.
type Provider interface {
	// FetchHistory returns daily closing quotes for the ticker between from
	// and to, inclusive, in ascending date order.
	FetchHistory(ticker string, from, to time.Time) ([]DayQuote, error)

	// ValidateTicker reports whether the ticker is known to the provider.
	// A false result is not an error; errors are reserved for transport
	// failures.
	ValidateTicker(ticker string) (bool, error)
}
