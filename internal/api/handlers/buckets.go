package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockbucket/backend/internal/api/middleware"
	"github.com/stockbucket/backend/internal/api/request"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/repository"
	"github.com/stockbucket/backend/internal/service"
	"github.com/stockbucket/backend/internal/validation"
)

// BucketHandler handles bucket-related HTTP requests
type BucketHandler struct {
	bucketService *service.BucketService
}

// NewBucketHandler creates a new BucketHandler
func NewBucketHandler(bucketService *service.BucketService) *BucketHandler {
	return &BucketHandler{
		bucketService: bucketService,
	}
}

// BucketResponse represents a bucket in API responses
type BucketResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	OwnerID   string  `json:"ownerId"`
	Public    bool    `json:"public"`
	Available float64 `json:"available"`
}

// PositionResponse represents one holding line of a bucket
type PositionResponse struct {
	ID        string  `json:"id"`
	StockID   string  `json:"stockId"`
	Quantity  float64 `json:"quantity"`
	StartDate string  `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// DescriptionResponse represents a bucket description in API responses
type DescriptionResponse struct {
	ID       string `json:"id"`
	BucketID string `json:"bucketId"`
	Text     string `json:"text"`
	IsGood   bool   `json:"isGood"`
}

func newBucketResponse(b model.Bucket) BucketResponse {
	return BucketResponse{
		ID:        b.ID,
		Name:      b.Name,
		OwnerID:   b.OwnerID,
		Public:    b.Public,
		Available: b.Available,
	}
}

func newPositionResponse(p model.Position) PositionResponse {
	response := PositionResponse{
		ID:        p.ID,
		StockID:   p.StockID,
		Quantity:  p.Quantity,
		StartDate: repository.FormatDate(p.StartDate),
	}
	if p.EndDate != nil {
		end := repository.FormatDate(*p.EndDate)
		response.EndDate = &end
	}
	return response
}

// Buckets handles GET /api/bucket: every bucket the profile owns or that is
// public.
func (h *BucketHandler) Buckets(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	buckets, err := h.bucketService.AccessibleTo(profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve buckets")
		return
	}

	response := make([]BucketResponse, len(buckets))
	for i, b := range buckets {
		response[i] = newBucketResponse(b)
	}

	respondJSON(w, http.StatusOK, response)
}

// Create handles POST /api/bucket. New buckets start all cash with the
// default endowment.
func (h *BucketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBucketRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateCreateBucket(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	profile := middleware.ProfileFrom(r.Context())

	bucket, err := h.bucketService.Create(req.Name, req.Public, profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to create bucket")
		return
	}

	respondJSON(w, http.StatusCreated, newBucketResponse(bucket))
}

// Get handles GET /api/bucket/{uuid}.
func (h *BucketHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	bucket, err := h.bucketService.Get(chi.URLParam(r, "uuid"), profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve bucket")
		return
	}

	respondJSON(w, http.StatusOK, newBucketResponse(bucket))
}

// BucketValueResponse represents a point-in-time bucket valuation
type BucketValueResponse struct {
	BucketID string  `json:"bucketId"`
	Date     *string `json:"date"`
	Value    float64 `json:"value"`
}

// Value handles GET /api/bucket/{uuid}/value. An optional date parameter
// values the bucket as of that day instead of now.
func (h *BucketHandler) Value(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	var dateStr *string

	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error":  "invalid date",
				"detail": err.Error(),
			})
			return
		}
		date = &parsed
		dateStr = &raw
	}

	profile := middleware.ProfileFrom(r.Context())
	bucketID := chi.URLParam(r, "uuid")

	value, err := h.bucketService.ValueOn(bucketID, profile.ID, date)
	if err != nil {
		respondServiceError(w, err, "failed to value bucket")
		return
	}

	respondJSON(w, http.StatusOK, BucketValueResponse{
		BucketID: bucketID,
		Date:     dateStr,
		Value:    value,
	})
}

// Positions handles GET /api/bucket/{uuid}/positions. Without a date
// parameter the open positions are returned; with one, the positions active
// on that day.
func (h *BucketHandler) Positions(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error":  "invalid date",
				"detail": err.Error(),
			})
			return
		}
		date = &parsed
	}

	profile := middleware.ProfileFrom(r.Context())

	positions, err := h.bucketService.Positions(chi.URLParam(r, "uuid"), profile.ID, date)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve positions")
		return
	}

	response := make([]PositionResponse, len(positions))
	for i, p := range positions {
		response[i] = newPositionResponse(p)
	}

	respondJSON(w, http.StatusOK, response)
}

// ChangeConfig handles PUT /api/bucket/{uuid}/config: liquidate the current
// composition and buy the requested one from the proceeds.
func (h *BucketHandler) ChangeConfig(w http.ResponseWriter, r *http.Request) {
	var req request.ChangeConfigRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateChangeConfig(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	entries := make([]service.ConfigEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = service.ConfigEntry{StockID: e.StockID, Quantity: e.Quantity}
	}

	profile := middleware.ProfileFrom(r.Context())

	bucket, err := h.bucketService.ChangeConfig(chi.URLParam(r, "uuid"), profile.ID, entries)
	if err != nil {
		respondServiceError(w, err, "failed to change bucket composition")
		return
	}

	respondJSON(w, http.StatusOK, newBucketResponse(bucket))
}

// SellAll handles POST /api/bucket/{uuid}/sellall: close every open position
// and fold its value into the cash balance.
func (h *BucketHandler) SellAll(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	bucket, err := h.bucketService.SellAll(chi.URLParam(r, "uuid"), profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to sell bucket positions")
		return
	}

	respondJSON(w, http.StatusOK, newBucketResponse(bucket))
}

// Delete handles DELETE /api/bucket/{uuid}.
func (h *BucketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	if err := h.bucketService.Delete(chi.URLParam(r, "uuid"), profile.ID); err != nil {
		respondServiceError(w, err, "failed to delete bucket")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Descriptions handles GET /api/bucket/{uuid}/descriptions.
func (h *BucketHandler) Descriptions(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	descriptions, err := h.bucketService.Descriptions(chi.URLParam(r, "uuid"), profile.ID)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve descriptions")
		return
	}

	response := make([]DescriptionResponse, len(descriptions))
	for i, d := range descriptions {
		response[i] = DescriptionResponse{ID: d.ID, BucketID: d.BucketID, Text: d.Text, IsGood: d.IsGood}
	}

	respondJSON(w, http.StatusOK, response)
}

// AddDescription handles POST /api/bucket/{uuid}/descriptions.
func (h *BucketHandler) AddDescription(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDescriptionRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateCreateDescription(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	profile := middleware.ProfileFrom(r.Context())

	description, err := h.bucketService.AddDescription(chi.URLParam(r, "uuid"), profile.ID, req.Text, req.IsGood)
	if err != nil {
		respondServiceError(w, err, "failed to add description")
		return
	}

	respondJSON(w, http.StatusCreated, DescriptionResponse{
		ID:       description.ID,
		BucketID: description.BucketID,
		Text:     description.Text,
		IsGood:   description.IsGood,
	})
}

// EditDescription handles PUT /api/description/{uuid}.
func (h *BucketHandler) EditDescription(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateDescriptionRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateUpdateDescription(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	profile := middleware.ProfileFrom(r.Context())

	description, err := h.bucketService.EditDescription(chi.URLParam(r, "uuid"), profile.ID, req.Text)
	if err != nil {
		respondServiceError(w, err, "failed to edit description")
		return
	}

	respondJSON(w, http.StatusOK, DescriptionResponse{
		ID:       description.ID,
		BucketID: description.BucketID,
		Text:     description.Text,
		IsGood:   description.IsGood,
	})
}

// DeleteDescription handles DELETE /api/description/{uuid}.
func (h *BucketHandler) DeleteDescription(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())

	if err := h.bucketService.DeleteDescription(chi.URLParam(r, "uuid"), profile.ID); err != nil {
		respondServiceError(w, err, "failed to delete description")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
