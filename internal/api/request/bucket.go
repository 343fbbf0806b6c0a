package request

// CreateBucketRequest represents the request body for creating a bucket
type CreateBucketRequest struct {
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// ConfigEntryRequest is one stock line in a bucket composition change
type ConfigEntryRequest struct {
	StockID  string  `json:"stockId"`
	Quantity float64 `json:"quantity"`
}

// ChangeConfigRequest represents the request body for replacing a bucket's composition
type ChangeConfigRequest struct {
	Entries []ConfigEntryRequest `json:"entries"`
}

// CreateDescriptionRequest represents the request body for adding a bucket description
type CreateDescriptionRequest struct {
	Text   string `json:"text"`
	IsGood bool   `json:"isGood"`
}

// UpdateDescriptionRequest represents the request body for editing a bucket description
type UpdateDescriptionRequest struct {
	Text string `json:"text"`
}
