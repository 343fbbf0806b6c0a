package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stockbucket/backend/internal/api/middleware"
	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/api/request"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
	"github.com/stockbucket/backend/internal/service"
	"github.com/stockbucket/backend/internal/validation"
)

// historyDefaultDays is how far back the balance history endpoint looks when
// no start date is given.
const historyDefaultDays = 365

// ProfileHandler handles profile and bank-link HTTP requests
type ProfileHandler struct {
	profileService  *service.ProfileService
	bankLinkService *service.BankLinkService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService, bankLinkService *service.BankLinkService) *ProfileHandler {
	return &ProfileHandler{
		profileService:  profileService,
		bankLinkService: bankLinkService,
	}
}

// ProfileResponse represents a profile in API responses
type ProfileResponse struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

// BankLinkResponse represents a bank link in API responses. The access token
// never leaves the server.
type BankLinkResponse struct {
	ID              string  `json:"id"`
	InstitutionName string  `json:"institutionName"`
	AccountName     string  `json:"accountName"`
	Balance         float64 `json:"balance"`
	Income          float64 `json:"income"`
	Expenditure     float64 `json:"expenditure"`
}

func newBankLinkResponse(l model.BankLink) BankLinkResponse {
	return BankLinkResponse{
		ID:              l.ID,
		InstitutionName: l.InstitutionName,
		AccountName:     l.AccountNameCached,
		Balance:         l.BalanceCached,
		Income:          l.IncomeCached,
		Expenditure:     l.ExpenditureCached,
	}
}

// Create handles POST /api/profile. This is the only unauthenticated write.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateProfileRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateCreateProfile(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	profile, err := h.profileService.Create(req.UserName)
	if err != nil {
		respondServiceError(w, err, "failed to create profile")
		return
	}

	respondJSON(w, http.StatusCreated, ProfileResponse{ID: profile.ID, UserName: profile.UserName})
}

// Me handles GET /api/profile/me.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())
	respondJSON(w, http.StatusOK, ProfileResponse{ID: profile.ID, UserName: profile.UserName})
}

// DefaultAccount handles GET /api/profile/account: the profile's "default"
// trading account, created on first use.
func (h *ProfileHandler) DefaultAccount(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	account, err := h.profileService.DefaultAccount(profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to resolve default account")
		return
	}

	respondJSON(w, http.StatusOK, AccountResponse{
		ID:          account.ID,
		ProfileID:   account.ProfileID,
		AccountName: account.AccountName,
	})
}

// LinkBank handles POST /api/bank/link: exchange the public token from the
// client-side link flow and store the resulting access token encrypted.
func (h *ProfileHandler) LinkBank(w http.ResponseWriter, r *http.Request) {
	var req request.LinkBankRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateLinkBank(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	profile := middleware.ProfileFrom(r.Context())

	link, err := h.bankLinkService.Link(profile.ID, req.PublicToken)
	if err != nil {
		respondServiceError(w, err, "failed to link bank account")
		return
	}

	respondJSON(w, http.StatusCreated, newBankLinkResponse(link))
}

// Bank handles GET /api/bank: the cached view of the linked account.
func (h *ProfileHandler) Bank(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	link, err := h.bankLinkService.Get(profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve bank link")
		return
	}

	respondJSON(w, http.StatusOK, newBankLinkResponse(link))
}

// BankBalanceResponse represents the live balance of the linked account
type BankBalanceResponse struct {
	Balance float64 `json:"balance"`
}

// BankBalance handles GET /api/bank/balance: the live balance straight from
// the provider. Profiles without a link get zero.
func (h *ProfileHandler) BankBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := middleware.BankProviderFrom(r.Context()).CurrentBalance()
	if err != nil {
		respondServiceError(w, fmt.Errorf("%w: %s", apperrors.ErrFailedToReachBank, err), "failed to reach bank provider")
		return
	}

	respondJSON(w, http.StatusOK, BankBalanceResponse{Balance: balance})
}

// BalancePointResponse represents one day of reconstructed balance history
type BalancePointResponse struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// BankHistory handles GET /api/bank/history with an optional start date
// parameter, newest day first.
func (h *ProfileHandler) BankHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now().UTC().AddDate(0, 0, -historyDefaultDays)

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error":  "invalid start date",
				"detail": err.Error(),
			})
			return
		}
		start = parsed
	}

	profile := middleware.ProfileFrom(r.Context())

	points, err := h.bankLinkService.History(profile.ID, start)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve balance history")
		return
	}

	response := make([]BalancePointResponse, len(points))
	for i, p := range points {
		response[i] = BalancePointResponse{
			Date:    repository.FormatDate(p.Date),
			Balance: p.Balance,
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// RefreshBank handles POST /api/bank/refresh: re-fetch the cached provider
// values on the stored link.
func (h *ProfileHandler) RefreshBank(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	link, err := h.bankLinkService.RefreshCache(profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to refresh bank link")
		return
	}

	respondJSON(w, http.StatusOK, newBankLinkResponse(link))
}
