package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
)

// DefaultEndowment is the cash a freshly created bucket starts with.
const DefaultEndowment = 1000.0

// ConfigEntry is one requested holding in a bucket re-composition.
type ConfigEntry struct {
	StockID  string
	Quantity float64
}

// BucketService handles investment-bucket business logic: point-in-time
// valuation, liquidation, and atomic re-composition.
//
// Every mutation that touches available cash together with the position set
// runs inside a single transaction, so concurrent mutations of the same
// bucket serialize on the store's write lock instead of double-spending a
// stale balance.
type BucketService struct {
	db         *sql.DB
	bucketRepo *repository.BucketRepository
	stockRepo  *repository.StockRepository
	quoteRepo  *repository.QuoteRepository
}

// NewBucketService creates a new BucketService with the provided repository dependencies.
func NewBucketService(
	db *sql.DB,
	bucketRepo *repository.BucketRepository,
	stockRepo *repository.StockRepository,
	quoteRepo *repository.QuoteRepository,
) *BucketService {
	return &BucketService{
		db:         db,
		bucketRepo: bucketRepo,
		stockRepo:  stockRepo,
		quoteRepo:  quoteRepo,
	}
}

// Create creates a new bucket for the profile with the default cash endowment.
func (s *BucketService) Create(name string, public bool, ownerID string) (model.Bucket, error) {
	bucket := model.Bucket{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		Public:    public,
		Available: DefaultEndowment,
	}

	if err := s.bucketRepo.InsertBucket(bucket); err != nil {
		return model.Bucket{}, err
	}

	return bucket, nil
}

// AccessibleTo returns all buckets the profile may view: owned plus public.
func (s *BucketService) AccessibleTo(profileID string) ([]model.Bucket, error) {
	return s.bucketRepo.GetAccessibleBuckets(profileID)
}

// Get returns a single bucket if the profile owns it or it is public.
func (s *BucketService) Get(bucketID, profileID string) (model.Bucket, error) {
	return s.bucketRepo.GetAccessibleBucket(s.bucketRepo.DB(), bucketID, profileID)
}

// ValueOn computes the value of an accessible bucket as of the given date
// (today when date is nil): the sum over all positions active on that date
// plus the uninvested cash.
//
// A position with no quote at or before the date contributes nothing; any
// other valuation failure aborts the whole computation.
func (s *BucketService) ValueOn(bucketID, profileID string, date *time.Time) (float64, error) {
	bucket, err := s.bucketRepo.GetAccessibleBucket(s.bucketRepo.DB(), bucketID, profileID)
	if err != nil {
		return 0, err
	}

	return s.valueOn(s.bucketRepo.DB(), bucket, date)
}

// valueOn is the valuation core, usable inside a transaction.
func (s *BucketService) valueOn(q repository.Querier, bucket model.Bucket, date *time.Time) (float64, error) {
	var positions []model.Position
	var err error

	if date == nil {
		positions, err = s.bucketRepo.GetOpenPositions(q, bucket.ID)
	} else {
		positions, err = s.bucketRepo.GetPositionsActiveOn(q, bucket.ID, *date)
	}
	if err != nil {
		return 0, err
	}

	total := bucket.Available
	for _, position := range positions {
		value, err := positionValue(q, s.quoteRepo, position, date)
		if errors.Is(err, apperrors.ErrQuoteNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += value
	}

	return total, nil
}

// valueOnID loads a bucket without an access check and values it. Used by the
// trade ledger, where historical rows may reference buckets whose visibility
// changed after the trade.
func (s *BucketService) valueOnID(q repository.Querier, bucketID string, date *time.Time) (float64, error) {
	bucket, err := s.bucketRepo.GetBucketOnID(q, bucketID)
	if err != nil {
		return 0, err
	}

	return s.valueOn(q, bucket, date)
}

// Positions returns the positions of an accessible bucket: the currently open
// ones when date is nil, otherwise the ones active on the date.
func (s *BucketService) Positions(bucketID, profileID string, date *time.Time) ([]model.Position, error) {
	if _, err := s.bucketRepo.GetAccessibleBucket(s.bucketRepo.DB(), bucketID, profileID); err != nil {
		return nil, err
	}

	if date == nil {
		return s.bucketRepo.GetOpenPositions(s.bucketRepo.DB(), bucketID)
	}
	return s.bucketRepo.GetPositionsActiveOn(s.bucketRepo.DB(), bucketID, *date)
}

// SellAll liquidates the bucket: every open position's current value is
// folded into available cash and the positions are closed as of today.
// Owner-only; runs in one transaction so a partial close can never leave
// available inconsistent with the open position set.
func (s *BucketService) SellAll(bucketID, profileID string) (model.Bucket, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.Bucket{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	bucket, err := s.bucketRepo.GetOwnedBucket(tx, bucketID, profileID)
	if err != nil {
		return model.Bucket{}, err
	}

	if err := s.sellAll(tx, &bucket); err != nil {
		return model.Bucket{}, err
	}

	if err := s.bucketRepo.UpdateAvailable(tx, bucket.ID, bucket.Available); err != nil {
		return model.Bucket{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Bucket{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bucket, nil
}

// sellAll folds the value of every open position into bucket.Available and
// closes the positions with end = today. Positions without any quote
// contribute nothing, matching valuation semantics. The caller persists
// bucket.Available and owns the transaction.
func (s *BucketService) sellAll(tx repository.Querier, bucket *model.Bucket) error {
	positions, err := s.bucketRepo.GetOpenPositions(tx, bucket.ID)
	if err != nil {
		return err
	}

	for _, position := range positions {
		value, err := positionValue(tx, s.quoteRepo, position, nil)
		if errors.Is(err, apperrors.ErrQuoteNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		bucket.Available += value
	}

	return s.bucketRepo.CloseOpenPositions(tx, bucket.ID, time.Now().UTC())
}

// ChangeConfig atomically swaps the bucket's composition for the requested
// one. The current composition is liquidated back into available cash, then
// each entry is bought at its latest quote and opened as a position starting
// today, in the order given.
//
// If the requested composition costs more than the bucket holds, the whole
// operation rolls back and the bucket is left exactly as it started; the call
// fails with apperrors.ErrInsufficientFunds. Duplicate stocks in one request
// are rejected up front with apperrors.ErrDuplicateStock.
func (s *BucketService) ChangeConfig(bucketID, profileID string, entries []ConfigEntry) (model.Bucket, error) {
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Quantity < 0 {
			return model.Bucket{}, apperrors.ErrNegativeQuantity
		}
		if seen[entry.StockID] {
			return model.Bucket{}, apperrors.ErrDuplicateStock
		}
		seen[entry.StockID] = true
	}

	tx, err := s.db.Begin()
	if err != nil {
		return model.Bucket{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	bucket, err := s.bucketRepo.GetOwnedBucket(tx, bucketID, profileID)
	if err != nil {
		return model.Bucket{}, err
	}

	if err := s.sellAll(tx, &bucket); err != nil {
		return model.Bucket{}, err
	}

	today := time.Now().UTC()
	for _, entry := range entries {
		stock, err := s.stockRepo.GetStockOnID(tx, entry.StockID)
		if err != nil {
			return model.Bucket{}, err
		}

		quote, err := s.quoteRepo.Latest(tx, stock.ID, nil)
		if err != nil {
			return model.Bucket{}, err
		}

		bucket.Available -= quote.Value * entry.Quantity

		position := model.Position{
			ID:        uuid.New().String(),
			BucketID:  bucket.ID,
			StockID:   stock.ID,
			Quantity:  entry.Quantity,
			StartDate: today,
		}
		if err := s.bucketRepo.InsertPosition(tx, position); err != nil {
			return model.Bucket{}, err
		}
	}

	if bucket.Available < 0 {
		return model.Bucket{}, apperrors.ErrInsufficientFunds
	}

	if err := s.bucketRepo.UpdateAvailable(tx, bucket.ID, bucket.Available); err != nil {
		return model.Bucket{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Bucket{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bucket, nil
}

// Delete removes a bucket. Owner-only; positions and descriptions cascade.
func (s *BucketService) Delete(bucketID, profileID string) error {
	if _, err := s.bucketRepo.GetOwnedBucket(s.bucketRepo.DB(), bucketID, profileID); err != nil {
		return err
	}

	return s.bucketRepo.DeleteBucket(s.bucketRepo.DB(), bucketID)
}

//
// DESCRIPTIONS
//

// AddDescription attaches a free-text tag to a bucket the profile owns.
func (s *BucketService) AddDescription(bucketID, profileID, text string, isGood bool) (model.Description, error) {
	if len(text) < 3 {
		return model.Description{}, apperrors.ErrDescriptionTooShort
	}

	if _, err := s.bucketRepo.GetOwnedBucket(s.bucketRepo.DB(), bucketID, profileID); err != nil {
		return model.Description{}, err
	}

	description := model.Description{
		ID:       uuid.New().String(),
		BucketID: bucketID,
		Text:     text,
		IsGood:   isGood,
	}

	if err := s.bucketRepo.InsertDescription(description); err != nil {
		return model.Description{}, err
	}

	return description, nil
}

// Descriptions lists the tags of an accessible bucket.
func (s *BucketService) Descriptions(bucketID, profileID string) ([]model.Description, error) {
	if _, err := s.bucketRepo.GetAccessibleBucket(s.bucketRepo.DB(), bucketID, profileID); err != nil {
		return nil, err
	}

	return s.bucketRepo.GetDescriptions(bucketID)
}

// EditDescription changes the text of a description on an owned bucket.
func (s *BucketService) EditDescription(descriptionID, profileID, text string) (model.Description, error) {
	if len(text) < 3 {
		return model.Description{}, apperrors.ErrDescriptionTooShort
	}

	description, err := s.bucketRepo.GetDescriptionForOwner(descriptionID, profileID)
	if err != nil {
		return model.Description{}, err
	}

	if err := s.bucketRepo.UpdateDescriptionText(description.ID, text); err != nil {
		return model.Description{}, err
	}

	description.Text = text
	return description, nil
}

// DeleteDescription removes a description from an owned bucket.
func (s *BucketService) DeleteDescription(descriptionID, profileID string) error {
	description, err := s.bucketRepo.GetDescriptionForOwner(descriptionID, profileID)
	if err != nil {
		return err
	}

	return s.bucketRepo.DeleteDescription(description.ID)
}
