package request

// CreateAccountRequest represents the request body for creating a trading account
type CreateAccountRequest struct {
	AccountName string `json:"accountName"`
}

// TradeRequest represents the request body for trading a stock or bucket.
// Quantity is signed: positive buys, negative sells.
type TradeRequest struct {
	AssetID  string  `json:"assetId"`
	Quantity float64 `json:"quantity"`
}
