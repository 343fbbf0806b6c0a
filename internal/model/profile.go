package model

// Profile is the authenticated principal. It owns buckets, trading accounts,
// and at most one bank link.
type Profile struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

// BankLink stores a connection to the bank-aggregation provider for a profile.
// AccessToken is held fernet-encrypted at rest. The cached fields hold the
// last values fetched from the provider.
type BankLink struct {
	ID                string  `json:"id"`
	ProfileID         string  `json:"profileId"`
	ItemID            string  `json:"itemId"`
	AccessToken       string  `json:"-"`
	InstitutionName   string  `json:"institutionName"`
	BalanceCached     float64 `json:"balanceCached"`
	AccountNameCached string  `json:"accountNameCached"`
	IncomeCached      float64 `json:"incomeCached"`
	ExpenditureCached float64 `json:"expenditureCached"`
}
