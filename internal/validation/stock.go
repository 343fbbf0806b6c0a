package validation

import (
	"strings"

	"github.com/stockbucket/backend/internal/api/request"
)

// ValidateCreateStock validates a stock creation request. Ticker existence is
// checked against the market-data provider downstream; this only covers shape.
func ValidateCreateStock(req request.CreateStockRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	ticker := strings.TrimSpace(req.Ticker)
	if ticker == "" {
		errors["ticker"] = "ticker is required"
	} else if ticker != strings.ToUpper(ticker) {
		errors["ticker"] = "ticker must be upper case"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
