package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockbucket/backend/internal/api/middleware"
	"github.com/stockbucket/backend/internal/api/request"
	"github.com/stockbucket/backend/internal/repository"
	"github.com/stockbucket/backend/internal/service"
	"github.com/stockbucket/backend/internal/validation"
)

// StockHandler handles stock and quote HTTP requests
type StockHandler struct {
	stockService *service.StockService
	quoteService *service.QuoteService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *service.StockService, quoteService *service.QuoteService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		quoteService: quoteService,
	}
}

// StockResponse represents a stock in API responses
type StockResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// QuoteResponse represents one daily quote in API responses
type QuoteResponse struct {
	StockID string  `json:"stockId"`
	Date    string  `json:"date"`
	Value   float64 `json:"value"`
}

// Search handles GET /api/stock. An optional q parameter filters by name and
// first caps the result count.
func (h *StockHandler) Search(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")

	first := 0
	if raw := r.URL.Query().Get("first"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": "first must be a non-negative integer",
			})
			return
		}
		first = parsed
	}

	stocks, err := h.stockService.Search(text, first)
	if err != nil {
		respondServiceError(w, err, "failed to search stocks")
		return
	}

	response := make([]StockResponse, len(stocks))
	for i, s := range stocks {
		response[i] = StockResponse{ID: s.ID, Name: s.Name, Ticker: s.Ticker}
	}

	respondJSON(w, http.StatusOK, response)
}

// Create handles POST /api/stock. The ticker is checked against the
// market-data provider and history is backfilled before the response.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateStockRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateCreateStock(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	stock, err := h.stockService.Create(req.Ticker, req.Name)
	if err != nil {
		respondServiceError(w, err, "failed to create stock")
		return
	}

	respondJSON(w, http.StatusCreated, StockResponse{ID: stock.ID, Name: stock.Name, Ticker: stock.Ticker})
}

// Get handles GET /api/stock/{uuid}.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	stock, err := h.stockService.Get(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve stock")
		return
	}

	respondJSON(w, http.StatusOK, StockResponse{ID: stock.ID, Name: stock.Name, Ticker: stock.Ticker})
}

// Quote handles GET /api/stock/{uuid}/quote. An optional date parameter
// (YYYY-MM-DD) asks for the latest quote on or before that day; future dates
// are rejected.
func (h *StockHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var asOf *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error":  "invalid date",
				"detail": err.Error(),
			})
			return
		}
		asOf = &parsed
	}

	quote, err := h.quoteService.Latest(chi.URLParam(r, "uuid"), asOf)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve quote")
		return
	}

	respondJSON(w, http.StatusOK, QuoteResponse{
		StockID: quote.StockID,
		Date:    repository.FormatDate(quote.Date),
		Value:   quote.Value,
	})
}

// Quotes handles GET /api/stock/{uuid}/quotes with optional start and end
// date parameters, both inclusive.
func (h *StockHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	var start, end *time.Time

	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{
		{"start", &start},
		{"end", &end},
	} {
		if raw := r.URL.Query().Get(bound.name); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				respondJSON(w, http.StatusBadRequest, map[string]string{
					"error":  "invalid " + bound.name + " date",
					"detail": err.Error(),
				})
				return
			}
			*bound.dst = &parsed
		}
	}

	quotes, err := h.quoteService.Range(chi.URLParam(r, "uuid"), start, end)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve quotes")
		return
	}

	response := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		response[i] = QuoteResponse{
			StockID: q.StockID,
			Date:    repository.FormatDate(q.Date),
			Value:   q.Value,
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// Trades handles GET /api/stock/{uuid}/trades: the calling profile's trades
// of this stock across all of its accounts.
func (h *StockHandler) Trades(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	trades, err := h.stockService.TradesForProfile(chi.URLParam(r, "uuid"), profile.ID)
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
