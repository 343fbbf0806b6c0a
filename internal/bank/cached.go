package bank

import "time"

// Cached wraps a Provider and memoizes CurrentBalance for the lifetime of the
// wrapper. One Cached value is built per request, so the external balance is
// fetched at most once per request while staying fresh across requests.
type Cached struct {
	inner Provider

	balance       float64
	balanceLoaded bool
}

// NewCached wraps the provider with request-scoped balance caching.
// Not safe for concurrent use; intended for a single request's lifetime.
func NewCached(inner Provider) *Cached {
	return &Cached{inner: inner}
}

// CurrentBalance returns the memoized balance, fetching it on first use.
func (c *Cached) CurrentBalance() (float64, error) {
	if c.balanceLoaded {
		return c.balance, nil
	}

	balance, err := c.inner.CurrentBalance()
	if err != nil {
		return 0, err
	}

	c.balance = balance
	c.balanceLoaded = true
	return balance, nil
}

func (c *Cached) AccountName() (string, error) {
	return c.inner.AccountName()
}

func (c *Cached) IncomeOverDays(days int) (float64, error) {
	return c.inner.IncomeOverDays(days)
}

func (c *Cached) ExpenditureOverDays(days int) (float64, error) {
	return c.inner.ExpenditureOverDays(days)
}

func (c *Cached) HistorySince(start time.Time) ([]BalancePoint, error) {
	return c.inner.HistorySince(start)
}
