package request

// CreateProfileRequest represents the request body for creating a profile
type CreateProfileRequest struct {
	UserName string `json:"userName"`
}

// LinkBankRequest represents the request body for linking a bank account
type LinkBankRequest struct {
	PublicToken string `json:"publicToken"`
}
