package model

import "time"

// Bucket represents an investment bucket: a named, ownable collection of stock
// positions plus an uninvested cash remainder. Unique per (name, owner).
type Bucket struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	OwnerID   string  `json:"ownerId"`
	Public    bool    `json:"public"`
	Available float64 `json:"available"`
}

// Position records how much of a stock a bucket holds in the validity window
// [StartDate, EndDate]. An open position has EndDate nil and is valid for all
// dates on or after StartDate.
type Position struct {
	ID        string     `json:"id"`
	BucketID  string     `json:"bucketId"`
	StockID   string     `json:"stockId"`
	Quantity  float64    `json:"quantity"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// ActiveOn reports whether the position is valid on the given date.
func (p Position) ActiveOn(date time.Time) bool {
	if date.Before(p.StartDate) {
		return false
	}
	return p.EndDate == nil || !p.EndDate.Before(date)
}

// Open reports whether the position is currently open (no end date set).
func (p Position) Open() bool {
	return p.EndDate == nil
}

// Description is a free-text tag on a bucket, unique per (bucket, text).
type Description struct {
	ID       string `json:"id"`
	BucketID string `json:"bucketId"`
	Text     string `json:"text"`
	IsGood   bool   `json:"isGood"`
}
