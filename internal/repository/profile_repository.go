package repository

import (
	"database/sql"
	"fmt"

	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/model"
)

// ProfileRepository provides data access methods for the profile and bank_link
// tables. Access tokens pass through as-is; encryption happens a layer up.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository with the provided database connection.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetProfileOnID retrieves a single profile by its ID.
func (s *ProfileRepository) GetProfileOnID(profileID string) (model.Profile, error) {
	query := `
		SELECT id, user_name
		FROM profile
		WHERE id = ?
	`
	var p model.Profile

	err := s.db.QueryRow(query, profileID).Scan(&p.ID, &p.UserName)
	if err == sql.ErrNoRows {
		return model.Profile{}, apperrors.ErrProfileNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to query profile: %w", err)
	}

	return p, nil
}

// InsertProfile creates a new profile row.
func (s *ProfileRepository) InsertProfile(p model.Profile) error {
	query := `
		INSERT INTO profile (id, user_name)
		VALUES (?, ?)
	`

	if _, err := s.db.Exec(query, p.ID, p.UserName); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// GetBankLinkForProfile retrieves the profile's bank link. The access token
// comes back exactly as stored (encrypted).
func (s *ProfileRepository) GetBankLinkForProfile(profileID string) (model.BankLink, error) {
	query := `
		SELECT id, profile_id, item_id, access_token, institution_name,
			balance_cached, account_name_cached, income_cached, expenditure_cached
		FROM bank_link
		WHERE profile_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`
	var l model.BankLink

	err := s.db.QueryRow(query, profileID).Scan(
		&l.ID,
		&l.ProfileID,
		&l.ItemID,
		&l.AccessToken,
		&l.InstitutionName,
		&l.BalanceCached,
		&l.AccountNameCached,
		&l.IncomeCached,
		&l.ExpenditureCached,
	)
	if err == sql.ErrNoRows {
		return model.BankLink{}, apperrors.ErrBankLinkNotFound
	}
	if err != nil {
		return model.BankLink{}, fmt.Errorf("failed to query bank_link: %w", err)
	}

	return l, nil
}

// InsertBankLink creates a new bank link row. The access token must already be
// encrypted by the caller.
func (s *ProfileRepository) InsertBankLink(l model.BankLink) error {
	query := `
		INSERT INTO bank_link (
			id, profile_id, item_id, access_token, institution_name,
			balance_cached, account_name_cached, income_cached, expenditure_cached
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		l.ID,
		l.ProfileID,
		l.ItemID,
		l.AccessToken,
		l.InstitutionName,
		l.BalanceCached,
		l.AccountNameCached,
		l.IncomeCached,
		l.ExpenditureCached,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bank link: %w", err)
	}

	return nil
}

// UpdateBankLinkCache refreshes the cached provider values on a bank link.
func (s *ProfileRepository) UpdateBankLinkCache(linkID string, balance float64, accountName string, income, expenditure float64) error {
	query := `
		UPDATE bank_link
		SET balance_cached = ?, account_name_cached = ?, income_cached = ?, expenditure_cached = ?
		WHERE id = ?
	`

	if _, err := s.db.Exec(query, balance, accountName, income, expenditure, linkID); err != nil {
		return fmt.Errorf("failed to update bank link cache: %w", err)
	}

	return nil
}
