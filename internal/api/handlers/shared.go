package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/stockbucket/backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// respondServiceError maps a service-layer error to an HTTP status. Sentinel
// errors carry their own user-facing message; anything unrecognized is a 500
// behind the given fallback message.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)

	message := fallback
	if status != http.StatusInternalServerError {
		message = err.Error()
	}

	errorResponse := map[string]string{
		"error":  message,
		"detail": err.Error(),
	}
	respondJSON(w, status, errorResponse)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrStockNotFound),
		errors.Is(err, apperrors.ErrQuoteNotFound),
		errors.Is(err, apperrors.ErrBucketNotFound),
		errors.Is(err, apperrors.ErrDescriptionNotFound),
		errors.Is(err, apperrors.ErrProfileNotFound),
		errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrBankLinkNotFound):
		return http.StatusNotFound

	case errors.Is(err, apperrors.ErrFutureDate),
		errors.Is(err, apperrors.ErrInvalidTicker),
		errors.Is(err, apperrors.ErrDuplicateStock),
		errors.Is(err, apperrors.ErrNegativeQuantity),
		errors.Is(err, apperrors.ErrDescriptionTooShort),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrInvalidUUID),
		errors.Is(err, apperrors.ErrMissingRequiredField):
		return http.StatusBadRequest

	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrInsufficientResources):
		return http.StatusUnprocessableEntity

	case errors.Is(err, apperrors.ErrDuplicateEntry):
		return http.StatusConflict

	case errors.Is(err, apperrors.ErrFailedToReachBank),
		errors.Is(err, apperrors.ErrFailedToReachMarketData):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// parseJSON decodes the request body into req. A malformed body yields a 400
// and a false return; the handler should bail out without writing again.
func parseJSON(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errorResponse := map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusBadRequest, errorResponse)
		return false
	}
	return true
}
