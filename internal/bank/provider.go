// Package bank provides access to a linked external bank account through an
// aggregation provider.
package bank

import "time"

// BalancePoint is the account balance the user had at a point in time.
type BalancePoint struct {
	Date    time.Time `json:"date"`
	Balance float64   `json:"balance"`
}

// Provider exposes the linked bank account. Implementations wrap the
// aggregation API; a request-scoped Cached wrapper keeps the balance from
// being fetched more than once per request.
type Provider interface {
	// CurrentBalance returns the aggregate balance across the linked
	// accounts, with credit-card balances counted negative.
	CurrentBalance() (float64, error)

	// AccountName returns the display name of the linked account.
	AccountName() (string, error)

	// IncomeOverDays sums the positive transaction amounts over the last n days.
	IncomeOverDays(days int) (float64, error)

	// ExpenditureOverDays sums the negative transaction amounts over the last n days.
	ExpenditureOverDays(days int) (float64, error)

	// HistorySince reconstructs the balance the account had on each day with
	// activity since start, newest first.
	HistorySince(start time.Time) ([]BalancePoint, error)
}

// None is the Provider for profiles without a bank link: every balance is
// zero and there is no history.
type None struct{}

func (None) CurrentBalance() (float64, error)               { return 0, nil }
func (None) AccountName() (string, error)                   { return "", nil }
func (None) IncomeOverDays(int) (float64, error)            { return 0, nil }
func (None) ExpenditureOverDays(int) (float64, error)       { return 0, nil }
func (None) HistorySince(time.Time) ([]BalancePoint, error) { return []BalancePoint{}, nil }
