package service

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
)

// ProfileService handles profile lookup and creation, plus resolution of the
// per-profile default trading account.
type ProfileService struct {
	db          *sql.DB
	profileRepo *repository.ProfileRepository
	tradingRepo *repository.TradingRepository
}

// NewProfileService creates a new ProfileService with the provided dependencies.
func NewProfileService(
	db *sql.DB,
	profileRepo *repository.ProfileRepository,
	tradingRepo *repository.TradingRepository,
) *ProfileService {
	return &ProfileService{
		db:          db,
		profileRepo: profileRepo,
		tradingRepo: tradingRepo,
	}
}

// Get retrieves a single profile by ID.
func (s *ProfileService) Get(profileID string) (model.Profile, error) {
	return s.profileRepo.GetProfileOnID(profileID)
}

// Create creates a new profile with the given user name.
func (s *ProfileService) Create(userName string) (model.Profile, error) {
	if userName == "" {
		return model.Profile{}, apperrors.ErrMissingRequiredField
	}

	profile := model.Profile{
		ID:       uuid.New().String(),
		UserName: userName,
	}

	if err := s.profileRepo.InsertProfile(profile); err != nil {
		return model.Profile{}, err
	}

	return profile, nil
}

// DefaultAccount returns the profile's "default" trading account, creating
// it on first use.
func (s *ProfileService) DefaultAccount(profileID string) (model.TradingAccount, error) {
	accounts, err := s.tradingRepo.GetAccountsForProfile(profileID)
	if err != nil {
		return model.TradingAccount{}, err
	}

	for _, account := range accounts {
		if account.AccountName == "default" {
			return account, nil
		}
	}

	account := model.TradingAccount{
		ID:          uuid.New().String(),
		ProfileID:   profileID,
		AccountName: "default",
	}

	if err := s.tradingRepo.InsertAccount(account); err != nil {
		// Lost a race with a concurrent request; the row exists now.
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			return s.namedAccount(profileID, "default")
		}
		return model.TradingAccount{}, err
	}

	return account, nil
}

func (s *ProfileService) namedAccount(profileID, name string) (model.TradingAccount, error) {
	accounts, err := s.tradingRepo.GetAccountsForProfile(profileID)
	if err != nil {
		return model.TradingAccount{}, err
	}

	for _, account := range accounts {
		if account.AccountName == name {
			return account, nil
		}
	}

	return model.TradingAccount{}, apperrors.ErrAccountNotFound
}
