package model

import "time"

// TradingAccount is a ledger root under a profile. Stock and bucket trades are
// recorded against it. Unique per (profile, account name).
type TradingAccount struct {
	ID          string `json:"id"`
	ProfileID   string `json:"profileId"`
	AccountName string `json:"accountName"`
}

// StockTrade is an immutable ledger row: an exchange of cash for stock
// quantity at Timestamp. Quantity is signed, positive meaning a buy.
// Corrections require new offsetting rows.
type StockTrade struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	StockID   string    `json:"stockId"`
	Quantity  float64   `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// BucketTrade is the bucket counterpart of StockTrade.
type BucketTrade struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	BucketID  string    `json:"bucketId"`
	Quantity  float64   `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}
