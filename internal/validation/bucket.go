package validation

import (
	"fmt"
	"strings"

	"github.com/stockbucket/backend/internal/api/request"
)

// minDescriptionLength is the shortest description text accepted.
const minDescriptionLength = 3

// ValidateCreateBucket validates a bucket creation request.
func ValidateCreateBucket(req request.CreateBucketRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateChangeConfig validates a composition change request.
//
// Every entry needs a valid stock UUID and a non-negative quantity, and no
// stock may appear twice. An empty entry list is valid: it liquidates the
// bucket and leaves it all cash.
func ValidateChangeConfig(req request.ChangeConfigRequest) error {
	errors := make(map[string]string)
	seen := make(map[string]bool, len(req.Entries))

	for i, entry := range req.Entries {
		field := fmt.Sprintf("entries[%d]", i)

		if err := ValidateUUID(entry.StockID); err != nil {
			errors[field] = err.Error()
			continue
		}

		if entry.Quantity < 0 {
			errors[field] = "quantity must not be negative"
		}

		if seen[entry.StockID] {
			errors[field] = "duplicate stock"
		}
		seen[entry.StockID] = true
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateCreateDescription validates a description creation request.
func ValidateCreateDescription(req request.CreateDescriptionRequest) error {
	errors := make(map[string]string)

	if len(strings.TrimSpace(req.Text)) < minDescriptionLength {
		errors["text"] = fmt.Sprintf("text must be at least %d characters", minDescriptionLength)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateDescription validates a description edit request.
func ValidateUpdateDescription(req request.UpdateDescriptionRequest) error {
	errors := make(map[string]string)

	if len(strings.TrimSpace(req.Text)) < minDescriptionLength {
		errors["text"] = fmt.Sprintf("text must be at least %d characters", minDescriptionLength)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
