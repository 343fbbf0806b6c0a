package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockbucket/backend/internal/api/middleware"
	"github.com/stockbucket/backend/internal/api/request"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/service"
	"github.com/stockbucket/backend/internal/validation"
)

// TradingHandler handles trading-account and trade HTTP requests
type TradingHandler struct {
	tradingService *service.TradingService
}

// NewTradingHandler creates a new TradingHandler
func NewTradingHandler(tradingService *service.TradingService) *TradingHandler {
	return &TradingHandler{
		tradingService: tradingService,
	}
}

// AccountResponse represents a trading account in API responses
type AccountResponse struct {
	ID          string `json:"id"`
	ProfileID   string `json:"profileId"`
	AccountName string `json:"accountName"`
}

// StockTradeResponse represents one stock ledger row in API responses
type StockTradeResponse struct {
	ID        string  `json:"id"`
	AccountID string  `json:"accountId"`
	StockID   string  `json:"stockId"`
	Quantity  float64 `json:"quantity"`
	Timestamp string  `json:"timestamp"`
}

// BucketTradeResponse represents one bucket ledger row in API responses
type BucketTradeResponse struct {
	ID        string  `json:"id"`
	AccountID string  `json:"accountId"`
	BucketID  string  `json:"bucketId"`
	Quantity  float64 `json:"quantity"`
	Timestamp string  `json:"timestamp"`
}

func newStockTradeResponse(t model.StockTrade) StockTradeResponse {
	return StockTradeResponse{
		ID:        t.ID,
		AccountID: t.AccountID,
		StockID:   t.StockID,
		Quantity:  t.Quantity,
		Timestamp: t.Timestamp.UTC().Format(time.RFC3339),
	}
}

func newBucketTradeResponse(t model.BucketTrade) BucketTradeResponse {
	return BucketTradeResponse{
		ID:        t.ID,
		AccountID: t.AccountID,
		BucketID:  t.BucketID,
		Quantity:  t.Quantity,
		Timestamp: t.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Accounts handles GET /api/account: the calling profile's trading accounts.
func (h *TradingHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	accounts, err := h.tradingService.Accounts(profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve accounts")
		return
	}

	response := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		response[i] = AccountResponse{ID: a.ID, ProfileID: a.ProfileID, AccountName: a.AccountName}
	}

	respondJSON(w, http.StatusOK, response)
}

// CreateAccount handles POST /api/account.
func (h *TradingHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAccountRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateCreateAccount(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	profile := middleware.ProfileFrom(r.Context())

	account, err := h.tradingService.CreateAccount(profile.ID, req.AccountName)
	if err != nil {
		respondServiceError(w, err, "failed to create account")
		return
	}

	respondJSON(w, http.StatusCreated, AccountResponse{
		ID:          account.ID,
		ProfileID:   account.ProfileID,
		AccountName: account.AccountName,
	})
}

// GetAccount handles GET /api/account/{uuid}.
func (h *TradingHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	account, err := h.tradingService.GetAccount(chi.URLParam(r, "uuid"), profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve account")
		return
	}

	respondJSON(w, http.StatusOK, AccountResponse{
		ID:          account.ID,
		ProfileID:   account.ProfileID,
		AccountName: account.AccountName,
	})
}

// CashResponse represents the spendable cash of an account
type CashResponse struct {
	AccountID string  `json:"accountId"`
	Cash      float64 `json:"cash"`
}

// Cash handles GET /api/account/{uuid}/cash: bank balance plus the signed
// value of everything ever traded on the account.
func (h *TradingHandler) Cash(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())
	accountID := chi.URLParam(r, "uuid")

	cash, err := h.tradingService.AvailableCash(accountID, profile.ID, middleware.BankProviderFrom(r.Context()))
	if err != nil {
		respondServiceError(w, err, "failed to compute available cash")
		return
	}

	respondJSON(w, http.StatusOK, CashResponse{AccountID: accountID, Cash: cash})
}

// BalanceResponse represents the trading balance of an account
type BalanceResponse struct {
	AccountID string  `json:"accountId"`
	Balance   float64 `json:"balance"`
}

// Balance handles GET /api/account/{uuid}/balance: the ledger replay value
// without the bank balance.
func (h *TradingHandler) Balance(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())
	accountID := chi.URLParam(r, "uuid")

	balance, err := h.tradingService.TradingBalance(accountID, profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to compute trading balance")
		return
	}

	respondJSON(w, http.StatusOK, BalanceResponse{AccountID: accountID, Balance: balance})
}

// QuantityResponse represents the held quantity of one asset on an account
type QuantityResponse struct {
	AccountID string  `json:"accountId"`
	AssetID   string  `json:"assetId"`
	Quantity  float64 `json:"quantity"`
}

// Quantity handles GET /api/account/{uuid}/quantity with a stockId or
// bucketId query parameter naming the asset.
func (h *TradingHandler) Quantity(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())
	accountID := chi.URLParam(r, "uuid")

	stockID := r.URL.Query().Get("stockId")
	bucketID := r.URL.Query().Get("bucketId")

	var (
		assetID  string
		quantity float64
		err      error
	)

	switch {
	case stockID != "" && bucketID == "":
		assetID = stockID
		quantity, err = h.tradingService.AvailableStockQuantity(accountID, profile.ID, stockID)
	case bucketID != "" && stockID == "":
		assetID = bucketID
		quantity, err = h.tradingService.AvailableBucketQuantity(accountID, profile.ID, bucketID)
	default:
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "exactly one of stockId or bucketId is required",
		})
		return
	}

	if err != nil {
		respondServiceError(w, err, "failed to compute held quantity")
		return
	}

	respondJSON(w, http.StatusOK, QuantityResponse{AccountID: accountID, AssetID: assetID, Quantity: quantity})
}

// TradeStock handles POST /api/account/{uuid}/trade/stock. Quantity is
// signed: positive buys, negative sells.
func (h *TradingHandler) TradeStock(w http.ResponseWriter, r *http.Request) {
	var req request.TradeRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateTrade(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	profile := middleware.ProfileFrom(r.Context())

	trade, err := h.tradingService.TradeStock(
		chi.URLParam(r, "uuid"),
		profile.ID,
		req.AssetID,
		req.Quantity,
		middleware.BankProviderFrom(r.Context()),
	)
	if err != nil {
		respondServiceError(w, err, "failed to execute trade")
		return
	}

	respondJSON(w, http.StatusCreated, newStockTradeResponse(trade))
}

// TradeBucket handles POST /api/account/{uuid}/trade/bucket.
func (h *TradingHandler) TradeBucket(w http.ResponseWriter, r *http.Request) {
	var req request.TradeRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateTrade(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	profile := middleware.ProfileFrom(r.Context())

	trade, err := h.tradingService.TradeBucket(
		chi.URLParam(r, "uuid"),
		profile.ID,
		req.AssetID,
		req.Quantity,
		middleware.BankProviderFrom(r.Context()),
	)
	if err != nil {
		respondServiceError(w, err, "failed to execute trade")
		return
	}

	respondJSON(w, http.StatusCreated, newBucketTradeResponse(trade))
}

// StockTrades handles GET /api/account/{uuid}/trades/stock, oldest first.
func (h *TradingHandler) StockTrades(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	trades, err := h.tradingService.StockTrades(chi.URLParam(r, "uuid"), profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve trades")
		return
	}

	response := make([]StockTradeResponse, len(trades))
	for i, t := range trades {
		response[i] = newStockTradeResponse(t)
	}

	respondJSON(w, http.StatusOK, response)
}

// BucketTrades handles GET /api/account/{uuid}/trades/bucket, oldest first.
func (h *TradingHandler) BucketTrades(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	trades, err := h.tradingService.BucketTrades(chi.URLParam(r, "uuid"), profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve trades")
		return
	}

	response := make([]BucketTradeResponse, len(trades))
	for i, t := range trades {
		response[i] = newBucketTradeResponse(t)
	}

	respondJSON(w, http.StatusOK, response)
}
