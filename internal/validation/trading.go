package validation

import (
	"math"
	"strings"

	"github.com/stockbucket/backend/internal/api/request"
)

// ValidateCreateAccount validates a trading-account creation request.
func ValidateCreateAccount(req request.CreateAccountRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.AccountName) == "" {
		errors["accountName"] = "accountName is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateTrade validates a trade request. Quantity is signed, so anything
// finite and non-zero is structurally valid; solvency is checked downstream.
func ValidateTrade(req request.TradeRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.AssetID); err != nil {
		errors["assetId"] = err.Error()
	}

	if req.Quantity == 0 {
		errors["quantity"] = "quantity must not be zero"
	}
	if math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) {
		errors["quantity"] = "quantity must be a finite number"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
