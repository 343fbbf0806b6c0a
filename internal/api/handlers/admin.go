package handlers

import (
	"log"
	"net/http"

	"github.com/stockbucket/backend/internal/service"
)

// AdminHandler handles maintenance HTTP requests
type AdminHandler struct {
	backfillService *service.BackfillService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(backfillService *service.BackfillService) *AdminHandler {
	return &AdminHandler{
		backfillService: backfillService,
	}
}

// RefreshQuotes handles POST /api/admin/quotes/refresh. The run happens in
// the background; the response only acknowledges the start.
func (h *AdminHandler) RefreshQuotes(w http.ResponseWriter, r *http.Request) {
	go func() {
		if err := h.backfillService.FillMissingDays(); err != nil {
			log.Printf("quote refresh: %v", err)
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "refresh started",
	})
}
