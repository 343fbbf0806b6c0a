package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/model"
)

// BucketRepository provides data access methods for the bucket, position, and
// bucket_description tables.
type BucketRepository struct {
	db *sql.DB
}

// NewBucketRepository creates a new BucketRepository with the provided database connection.
func NewBucketRepository(db *sql.DB) *BucketRepository {
	return &BucketRepository{db: db}
}

// DB returns the underlying connection, for callers that need a plain Querier.
func (s *BucketRepository) DB() Querier {
	return s.db
}

// GetBucketOnID retrieves a single bucket by its ID without any access check.
func (s *BucketRepository) GetBucketOnID(q Querier, bucketID string) (model.Bucket, error) {
	query := `
		SELECT id, name, owner_id, public, available
		FROM bucket
		WHERE id = ?
	`
	var b model.Bucket

	err := q.QueryRow(query, bucketID).Scan(&b.ID, &b.Name, &b.OwnerID, &b.Public, &b.Available)
	if err == sql.ErrNoRows {
		return model.Bucket{}, apperrors.ErrBucketNotFound
	}
	if err != nil {
		return model.Bucket{}, fmt.Errorf("failed to query bucket: %w", err)
	}

	return b, nil
}

// GetOwnedBucket retrieves a bucket only if the given profile owns it.
// A missing bucket and a bucket owned by somebody else produce the same
// ErrBucketNotFound, so callers cannot tell the two apart.
func (s *BucketRepository) GetOwnedBucket(q Querier, bucketID, profileID string) (model.Bucket, error) {
	query := `
		SELECT id, name, owner_id, public, available
		FROM bucket
		WHERE id = ? AND owner_id = ?
	`
	var b model.Bucket

	err := q.QueryRow(query, bucketID, profileID).Scan(&b.ID, &b.Name, &b.OwnerID, &b.Public, &b.Available)
	if err == sql.ErrNoRows {
		return model.Bucket{}, apperrors.ErrBucketNotFound
	}
	if err != nil {
		return model.Bucket{}, fmt.Errorf("failed to query bucket: %w", err)
	}

	return b, nil
}

// GetAccessibleBucket retrieves a bucket if the profile owns it or it is public.
func (s *BucketRepository) GetAccessibleBucket(q Querier, bucketID, profileID string) (model.Bucket, error) {
	query := `
		SELECT id, name, owner_id, public, available
		FROM bucket
		WHERE id = ? AND (owner_id = ? OR public = TRUE)
	`
	var b model.Bucket

	err := q.QueryRow(query, bucketID, profileID).Scan(&b.ID, &b.Name, &b.OwnerID, &b.Public, &b.Available)
	if err == sql.ErrNoRows {
		return model.Bucket{}, apperrors.ErrBucketNotFound
	}
	if err != nil {
		return model.Bucket{}, fmt.Errorf("failed to query bucket: %w", err)
	}

	return b, nil
}

// GetAccessibleBuckets retrieves all buckets the profile may view: the ones it
// owns plus all public ones.
func (s *BucketRepository) GetAccessibleBuckets(profileID string) ([]model.Bucket, error) {
	query := `
		SELECT id, name, owner_id, public, available
		FROM bucket
		WHERE owner_id = ? OR public = TRUE
		ORDER BY name ASC
	`

	rows, err := s.db.Query(query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bucket table: %w", err)
	}
	defer rows.Close()

	buckets := []model.Bucket{}

	for rows.Next() {
		var b model.Bucket

		if err := rows.Scan(&b.ID, &b.Name, &b.OwnerID, &b.Public, &b.Available); err != nil {
			return nil, fmt.Errorf("failed to scan bucket table results: %w", err)
		}

		buckets = append(buckets, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bucket table: %w", err)
	}

	return buckets, nil
}

// InsertBucket creates a new bucket row.
func (s *BucketRepository) InsertBucket(b model.Bucket) error {
	query := `
		INSERT INTO bucket (id, name, owner_id, public, available)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := s.db.Exec(query, b.ID, b.Name, b.OwnerID, b.Public, b.Available); err != nil {
		return mapInsertErr(err, "insert bucket")
	}

	return nil
}

// UpdateAvailable writes the bucket's available cash.
func (s *BucketRepository) UpdateAvailable(q Querier, bucketID string, available float64) error {
	query := `
		UPDATE bucket
		SET available = ?
		WHERE id = ?
	`

	if _, err := q.Exec(query, available, bucketID); err != nil {
		return fmt.Errorf("failed to update bucket available: %w", err)
	}

	return nil
}

// DeleteBucket removes a bucket. Positions and descriptions cascade at the
// storage layer. The caller is responsible for the ownership check.
func (s *BucketRepository) DeleteBucket(q Querier, bucketID string) error {
	query := `
		DELETE FROM bucket
		WHERE id = ?
	`

	if _, err := q.Exec(query, bucketID); err != nil {
		return fmt.Errorf("failed to delete bucket: %w", err)
	}

	return nil
}

//
// POSITIONS
//

// GetOpenPositions retrieves all positions of a bucket that have no end date.
func (s *BucketRepository) GetOpenPositions(q Querier, bucketID string) ([]model.Position, error) {
	query := `
		SELECT id, bucket_id, stock_id, quantity, start_date, end_date
		FROM position
		WHERE bucket_id = ? AND end_date IS NULL
		ORDER BY start_date ASC, id ASC
	`

	return s.queryPositions(q, query, bucketID)
}

// GetPositionsActiveOn retrieves all positions of a bucket valid on the given
// date: start_date <= date and (end_date unset or end_date >= date).
func (s *BucketRepository) GetPositionsActiveOn(q Querier, bucketID string, date time.Time) ([]model.Position, error) {
	query := `
		SELECT id, bucket_id, stock_id, quantity, start_date, end_date
		FROM position
		WHERE bucket_id = ?
		AND start_date <= ?
		AND (end_date IS NULL OR end_date >= ?)
		ORDER BY start_date ASC, id ASC
	`

	return s.queryPositions(q, query, bucketID, FormatDate(date), FormatDate(date))
}

// InsertPosition opens a new position row.
func (s *BucketRepository) InsertPosition(q Querier, p model.Position) error {
	query := `
		INSERT INTO position (id, bucket_id, stock_id, quantity, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, NULL)
	`

	if _, err := q.Exec(query, p.ID, p.BucketID, p.StockID, p.Quantity, FormatDate(p.StartDate)); err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}

	return nil
}

// CloseOpenPositions sets the end date on every open position of the bucket.
func (s *BucketRepository) CloseOpenPositions(q Querier, bucketID string, end time.Time) error {
	query := `
		UPDATE position
		SET end_date = ?
		WHERE bucket_id = ? AND end_date IS NULL
	`

	if _, err := q.Exec(query, FormatDate(end), bucketID); err != nil {
		return fmt.Errorf("failed to close positions: %w", err)
	}

	return nil
}

func (s *BucketRepository) queryPositions(q Querier, query string, args ...any) ([]model.Position, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}

	for rows.Next() {
		var p model.Position
		var startStr string
		var endStr sql.NullString

		if err := rows.Scan(&p.ID, &p.BucketID, &p.StockID, &p.Quantity, &startStr, &endStr); err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}

		p.StartDate, err = ParseTime(startStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse position start date: %w", err)
		}

		if endStr.Valid {
			end, err := ParseTime(endStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse position end date: %w", err)
			}
			p.EndDate = &end
		}

		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

//
// DESCRIPTIONS
//

// GetDescriptions retrieves all descriptions attached to a bucket.
func (s *BucketRepository) GetDescriptions(bucketID string) ([]model.Description, error) {
	query := `
		SELECT id, bucket_id, text, is_good
		FROM bucket_description
		WHERE bucket_id = ?
		ORDER BY text ASC
	`

	rows, err := s.db.Query(query, bucketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bucket_description table: %w", err)
	}
	defer rows.Close()

	descriptions := []model.Description{}

	for rows.Next() {
		var d model.Description

		if err := rows.Scan(&d.ID, &d.BucketID, &d.Text, &d.IsGood); err != nil {
			return nil, fmt.Errorf("failed to scan bucket_description table results: %w", err)
		}

		descriptions = append(descriptions, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bucket_description table: %w", err)
	}

	return descriptions, nil
}

// InsertDescription attaches a description to a bucket.
func (s *BucketRepository) InsertDescription(d model.Description) error {
	query := `
		INSERT INTO bucket_description (id, bucket_id, text, is_good)
		VALUES (?, ?, ?, ?)
	`

	if _, err := s.db.Exec(query, d.ID, d.BucketID, d.Text, d.IsGood); err != nil {
		return mapInsertErr(err, "insert description")
	}

	return nil
}

// GetDescriptionForOwner retrieves a description only when the given profile
// owns the bucket it belongs to. Missing and not-owned collapse into
// ErrDescriptionNotFound.
func (s *BucketRepository) GetDescriptionForOwner(descriptionID, profileID string) (model.Description, error) {
	query := `
		SELECT d.id, d.bucket_id, d.text, d.is_good
		FROM bucket_description d
		JOIN bucket b ON b.id = d.bucket_id
		WHERE d.id = ? AND b.owner_id = ?
	`
	var d model.Description

	err := s.db.QueryRow(query, descriptionID, profileID).Scan(&d.ID, &d.BucketID, &d.Text, &d.IsGood)
	if err == sql.ErrNoRows {
		return model.Description{}, apperrors.ErrDescriptionNotFound
	}
	if err != nil {
		return model.Description{}, fmt.Errorf("failed to query bucket_description: %w", err)
	}

	return d, nil
}

// UpdateDescriptionText changes the text of a description.
func (s *BucketRepository) UpdateDescriptionText(descriptionID, text string) error {
	query := `
		UPDATE bucket_description
		SET text = ?
		WHERE id = ?
	`

	if _, err := s.db.Exec(query, text, descriptionID); err != nil {
		return fmt.Errorf("failed to update description: %w", err)
	}

	return nil
}

// DeleteDescription removes a description.
func (s *BucketRepository) DeleteDescription(descriptionID string) error {
	query := `
		DELETE FROM bucket_description
		WHERE id = ?
	`

	if _, err := s.db.Exec(query, descriptionID); err != nil {
		return fmt.Errorf("failed to delete description: %w", err)
	}

	return nil
}
