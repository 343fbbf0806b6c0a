package validation

import (
	"strings"

	"github.com/stockbucket/backend/internal/api/request"
)

// ValidateCreateProfile validates a profile creation request.
func ValidateCreateProfile(req request.CreateProfileRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UserName) == "" {
		errors["userName"] = "userName is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateLinkBank validates a bank link request.
func ValidateLinkBank(req request.LinkBankRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.PublicToken) == "" {
		errors["publicToken"] = "publicToken is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
