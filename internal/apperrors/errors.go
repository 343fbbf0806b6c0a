package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrStockNotFound indicates that a stock with the given ID or ticker does not exist.
	ErrStockNotFound = errors.New("stock not found")

	// ErrQuoteNotFound indicates that no quote exists at or before the requested date.
	ErrQuoteNotFound = errors.New("no quote found")

	// ErrBucketNotFound indicates that a bucket does not exist or is not accessible to the
	// caller. Lookup and ownership failures deliberately share one error so callers cannot
	// probe for buckets they do not own.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrDescriptionNotFound indicates that a bucket description does not exist or belongs
	// to a bucket the caller does not own. Conflated for the same reason as ErrBucketNotFound.
	ErrDescriptionNotFound = errors.New("description not found")

	// ErrProfileNotFound indicates that a profile with the given ID does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrAccountNotFound indicates that a trading account does not exist under the
	// caller's profile.
	ErrAccountNotFound = errors.New("trading account not found")

	// ErrBankLinkNotFound indicates that the profile has no linked bank connection.
	ErrBankLinkNotFound = errors.New("bank link not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrFutureDate indicates that a price lookup was requested for a date in the future.
	ErrFutureDate = errors.New("date is in the future")

	// ErrInvalidTicker indicates that a ticker failed validation against the external
	// price source at stock-creation time.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrInsufficientFunds indicates that a bucket re-composition would leave the
	// bucket's available cash negative. The entire mutation is rolled back.
	ErrInsufficientFunds = errors.New("not enough money available")

	// ErrInsufficientResources indicates that a trade failed its cash or holdings
	// precondition. No ledger row is written.
	ErrInsufficientResources = errors.New("insufficient resources for trade")

	// ErrDuplicateStock indicates that the same stock appears more than once in a
	// bucket re-composition request.
	ErrDuplicateStock = errors.New("duplicate stock in configuration")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrNegativeQuantity indicates that a quantity field has an invalid negative value.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrDescriptionTooShort indicates that a bucket description is below the minimum length.
	ErrDescriptionTooShort = errors.New("description must be at least 3 characters long")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrValuation indicates that a computed value came out NaN or otherwise corrupt.
	// Never silently coerced to zero.
	ErrValuation = errors.New("valuation produced an invalid result")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Operation failure errors represent system-level failures when retrieving or processing
// data. Surfaced to API clients as the user-facing message for 500-class responses.
var (
	ErrFailedToRetrieveStocks   = errors.New("failed to retrieve stocks")
	ErrFailedToRetrieveQuotes   = errors.New("failed to retrieve quotes")
	ErrFailedToRetrieveBuckets  = errors.New("failed to retrieve buckets")
	ErrFailedToRetrieveAccounts = errors.New("failed to retrieve trading accounts")
	ErrFailedToRetrieveTrades   = errors.New("failed to retrieve trades")
	ErrFailedToReachBank        = errors.New("failed to reach bank provider")
	ErrFailedToReachMarketData  = errors.New("failed to reach market data provider")
)
