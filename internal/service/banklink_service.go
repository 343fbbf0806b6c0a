package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/bank"
	"github.com/stockbucket/backend/internal/config"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
)

// cacheWindowDays is the transaction window used for the cached income and
// expenditure figures on a bank link.
const cacheWindowDays = 30

// BankLinkService manages the link between a profile and its external bank
// account: the token-exchange handshake, encrypted token storage, and
// construction of request-scoped providers for linked profiles.
type BankLinkService struct {
	cfg         config.BankConfig
	cipher      *bank.TokenCipher
	profileRepo *repository.ProfileRepository
}

// NewBankLinkService creates a new BankLinkService with the provided dependencies.
func NewBankLinkService(
	cfg config.BankConfig,
	cipher *bank.TokenCipher,
	profileRepo *repository.ProfileRepository,
) *BankLinkService {
	return &BankLinkService{
		cfg:         cfg,
		cipher:      cipher,
		profileRepo: profileRepo,
	}
}

// Link exchanges the public token from the client-side link flow for a
// permanent access token and stores it encrypted, together with a first
// snapshot of the cached provider values.
func (s *BankLinkService) Link(profileID, publicToken string) (model.BankLink, error) {
	if publicToken == "" {
		return model.BankLink{}, apperrors.ErrMissingRequiredField
	}

	exchange := bank.NewClient(s.cfg.BaseURL, s.cfg.ClientID, s.cfg.Secret, "")

	accessToken, itemID, err := exchange.ExchangePublicToken(publicToken)
	if err != nil {
		return model.BankLink{}, fmt.Errorf("%w: %s", apperrors.ErrFailedToReachBank, err)
	}

	client := bank.NewClient(s.cfg.BaseURL, s.cfg.ClientID, s.cfg.Secret, accessToken)

	institution, err := client.InstitutionName()
	if err != nil {
		return model.BankLink{}, fmt.Errorf("%w: %s", apperrors.ErrFailedToReachBank, err)
	}

	encrypted, err := s.cipher.Encrypt(accessToken)
	if err != nil {
		return model.BankLink{}, err
	}

	link := model.BankLink{
		ID:              uuid.New().String(),
		ProfileID:       profileID,
		ItemID:          itemID,
		AccessToken:     encrypted,
		InstitutionName: institution,
	}

	link.BalanceCached, link.AccountNameCached, link.IncomeCached, link.ExpenditureCached = snapshot(client)

	if err := s.profileRepo.InsertBankLink(link); err != nil {
		return model.BankLink{}, err
	}

	return link, nil
}

// ProviderFor builds the bank provider for a profile. Profiles without a
// link get the zero provider; linked profiles get a request-scoped cached
// client with the decrypted access token.
func (s *BankLinkService) ProviderFor(profileID string) (bank.Provider, error) {
	link, err := s.profileRepo.GetBankLinkForProfile(profileID)
	if errors.Is(err, apperrors.ErrBankLinkNotFound) {
		return bank.None{}, nil
	}
	if err != nil {
		return nil, err
	}

	token, err := s.cipher.Decrypt(link.AccessToken)
	if err != nil {
		return nil, err
	}

	return bank.NewCached(bank.NewClient(s.cfg.BaseURL, s.cfg.ClientID, s.cfg.Secret, token)), nil
}

// Get retrieves the profile's bank link, or ErrBankLinkNotFound.
func (s *BankLinkService) Get(profileID string) (model.BankLink, error) {
	return s.profileRepo.GetBankLinkForProfile(profileID)
}

// History reconstructs the daily balance of the linked account since start,
// newest first.
func (s *BankLinkService) History(profileID string, start time.Time) ([]bank.BalancePoint, error) {
	provider, err := s.ProviderFor(profileID)
	if err != nil {
		return nil, err
	}

	points, err := provider.HistorySince(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFailedToReachBank, err)
	}

	return points, nil
}

// RefreshCache re-fetches the cached provider values on the profile's bank
// link and stores them.
func (s *BankLinkService) RefreshCache(profileID string) (model.BankLink, error) {
	link, err := s.profileRepo.GetBankLinkForProfile(profileID)
	if err != nil {
		return model.BankLink{}, err
	}

	token, err := s.cipher.Decrypt(link.AccessToken)
	if err != nil {
		return model.BankLink{}, err
	}

	client := bank.NewCached(bank.NewClient(s.cfg.BaseURL, s.cfg.ClientID, s.cfg.Secret, token))

	link.BalanceCached, link.AccountNameCached, link.IncomeCached, link.ExpenditureCached = snapshot(client)

	if err := s.profileRepo.UpdateBankLinkCache(link.ID, link.BalanceCached, link.AccountNameCached, link.IncomeCached, link.ExpenditureCached); err != nil {
		return model.BankLink{}, err
	}

	return link, nil
}

// snapshot pulls the cacheable values from the provider. Individual fetch
// failures leave the corresponding value at zero rather than failing the
// whole snapshot.
func snapshot(p bank.Provider) (balance float64, accountName string, income, expenditure float64) {
	var err error

	if balance, err = p.CurrentBalance(); err != nil {
		log.Printf("bank snapshot: balance: %v", err)
	}
	if accountName, err = p.AccountName(); err != nil {
		log.Printf("bank snapshot: account name: %v", err)
	}
	if income, err = p.IncomeOverDays(cacheWindowDays); err != nil {
		log.Printf("bank snapshot: income: %v", err)
	}
	if expenditure, err = p.ExpenditureOverDays(cacheWindowDays); err != nil {
		log.Printf("bank snapshot: expenditure: %v", err)
	}

	return balance, accountName, income, expenditure
}
