package testutil

import (
	"time"

	"github.com/stockbucket/backend/internal/bank"
	"github.com/stockbucket/backend/internal/marketdata"
)

// MockMarketData is a mock implementation of marketdata.Provider for testing.
// It returns predefined data instead of making API calls.
type MockMarketData struct {
	// History is returned from FetchHistory
	History []marketdata.DayQuote
	// ValidTickers lists the tickers ValidateTicker accepts. A nil map
	// accepts everything.
	ValidTickers map[string]bool
	// Err is returned from every method when set
	Err error
	// FetchCount tracks how many times FetchHistory was called
	FetchCount int
}

// NewMockMarketData creates a mock provider with five days of history ending
// today, each day quoted at 100.0.
func NewMockMarketData() *MockMarketData {
	return &MockMarketData{
		History: MakeHistory(5, 100.0),
	}
}

// MakeHistory builds days of daily quotes at the given value, ending today.
func MakeHistory(days int, value float64) []marketdata.DayQuote {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	history := make([]marketdata.DayQuote, days)
	for i := range history {
		history[i] = marketdata.DayQuote{
			Date:  today.AddDate(0, 0, i-days+1),
			Close: value,
		}
	}
	return history
}

// FetchHistory returns the configured history, filtered to [from, to].
func (m *MockMarketData) FetchHistory(_ string, from, to time.Time) ([]marketdata.DayQuote, error) {
	m.FetchCount++
	if m.Err != nil {
		return nil, m.Err
	}

	quotes := []marketdata.DayQuote{}
	for _, day := range m.History {
		if day.Date.Before(from) || day.Date.After(to) {
			continue
		}
		quotes = append(quotes, day)
	}
	return quotes, nil
}

// ValidateTicker reports whether the ticker is in ValidTickers.
func (m *MockMarketData) ValidateTicker(ticker string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	if m.ValidTickers == nil {
		return true, nil
	}
	return m.ValidTickers[ticker], nil
}

// WithError configures the mock to return the specified error.
func (m *MockMarketData) WithError(err error) *MockMarketData {
	m.Err = err
	return m
}

// MockBank is a mock implementation of bank.Provider for testing.
type MockBank struct {
	// Balance is returned from CurrentBalance
	Balance float64
	// Name is returned from AccountName
	Name string
	// Income and Expenditure are returned from the respective methods
	Income      float64
	Expenditure float64
	// History is returned from HistorySince
	History []bank.BalancePoint
	// Err is returned from every method when set
	Err error
	// BalanceCount tracks how many times CurrentBalance was called
	BalanceCount int
}

// NewMockBank creates a mock bank provider with the given current balance.
func NewMockBank(balance float64) *MockBank {
	return &MockBank{
		Balance: balance,
		Name:    "Test Checking",
	}
}

func (m *MockBank) CurrentBalance() (float64, error) {
	m.BalanceCount++
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Balance, nil
}

func (m *MockBank) AccountName() (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Name, nil
}

func (m *MockBank) IncomeOverDays(_ int) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Income, nil
}

func (m *MockBank) ExpenditureOverDays(_ int) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Expenditure, nil
}

func (m *MockBank) HistorySince(_ time.Time) ([]bank.BalancePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.History, nil
}

// WithError configures the mock to return the specified error.
func (m *MockBank) WithError(err error) *MockBank {
	m.Err = err
	return m
}
