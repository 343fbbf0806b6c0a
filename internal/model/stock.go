package model

import "time"

// Stock represents a single tradeable stock, for example GOOGL.
// Immutable once the ticker has passed validation against the price source.
type Stock struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// Quote is one day in the performance of a stock. Quotes are unique per
// (stock, date), appended by backfill and refresh jobs, and never mutated.
type Quote struct {
	ID      string    `json:"id"`
	StockID string    `json:"stockId"`
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
}
