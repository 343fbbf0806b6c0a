package request

// CreateStockRequest represents the request body for creating a stock
type CreateStockRequest struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}
