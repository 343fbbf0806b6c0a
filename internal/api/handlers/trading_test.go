package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/stockbucket/backend/internal/api/handlers"
	"github.com/stockbucket/backend/internal/api/middleware"
	"github.com/stockbucket/backend/internal/bank"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/testutil"
)

// newBankedRequest is newHandlerRequest with an explicit bank provider on the
// context, for the endpoints that read the real bank balance.
func newBankedRequest(method, path, body string, profile model.Profile, provider bank.Provider, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	ctx := middleware.WithProfile(req.Context(), profile, provider)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	return req.WithContext(ctx)
}

func TestTradingHandler_Cash(t *testing.T) {
	t.Run("cash is the bank balance plus the ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradingHandler(testutil.NewTestTradingService(t, db))
		profile := testutil.CreateProfile(t, db)
		account := testutil.CreateAccount(t, db, profile.ID)

		req := newBankedRequest(http.MethodGet, "/api/account/"+account.ID+"/cash", "",
			profile, testutil.NewMockBank(750), map[string]string{"uuid": account.ID})
		rec := httptest.NewRecorder()

		handler.Cash(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var response handlers.CashResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Cash != 750 {
			t.Errorf("Expected cash 750, got %v", response.Cash)
		}
	})

	t.Run("unlinked profile falls back to a zero bank balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradingHandler(testutil.NewTestTradingService(t, db))
		profile := testutil.CreateProfile(t, db)
		account := testutil.CreateAccount(t, db, profile.ID)

		req := newHandlerRequest(http.MethodGet, "/api/account/"+account.ID+"/cash", "",
			profile, map[string]string{"uuid": account.ID})
		rec := httptest.NewRecorder()

		handler.Cash(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}

		var response handlers.CashResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Cash != 0 {
			t.Errorf("Expected cash 0 without a bank link, got %v", response.Cash)
		}
	})

	t.Run("bank outage yields 502", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradingHandler(testutil.NewTestTradingService(t, db))
		profile := testutil.CreateProfile(t, db)
		account := testutil.CreateAccount(t, db, profile.ID)
		provider := testutil.NewMockBank(0).WithError(http.ErrHandlerTimeout)

		req := newBankedRequest(http.MethodGet, "/api/account/"+account.ID+"/cash", "",
			profile, provider, map[string]string{"uuid": account.ID})
		rec := httptest.NewRecorder()

		handler.Cash(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", rec.Code)
		}
	})
}

func TestTradingHandler_TradeStock(t *testing.T) {
	t.Run("insolvent trade yields 422", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradingHandler(testutil.NewTestTradingService(t, db))
		profile := testutil.CreateProfile(t, db)
		account := testutil.CreateAccount(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 100)

		body := `{"assetId":"` + stock.ID + `","quantity":5}`
		req := newBankedRequest(http.MethodPost, "/api/account/"+account.ID+"/trade/stock", body,
			profile, testutil.NewMockBank(100), map[string]string{"uuid": account.ID})
		rec := httptest.NewRecorder()

		handler.TradeStock(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("zero quantity yields 400 before touching the ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradingHandler(testutil.NewTestTradingService(t, db))
		profile := testutil.CreateProfile(t, db)
		account := testutil.CreateAccount(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 100)

		body := `{"assetId":"` + stock.ID + `","quantity":0}`
		req := newBankedRequest(http.MethodPost, "/api/account/"+account.ID+"/trade/stock", body,
			profile, testutil.NewMockBank(1000), map[string]string{"uuid": account.ID})
		rec := httptest.NewRecorder()

		handler.TradeStock(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rec.Code)
		}
		testutil.AssertRowCount(t, db, "stock_trade", 0)
	})

	t.Run("accepted trade yields 201 with the ledger row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradingHandler(testutil.NewTestTradingService(t, db))
		profile := testutil.CreateProfile(t, db)
		account := testutil.CreateAccount(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 100)

		body := `{"assetId":"` + stock.ID + `","quantity":2}`
		req := newBankedRequest(http.MethodPost, "/api/account/"+account.ID+"/trade/stock", body,
			profile, testutil.NewMockBank(1000), map[string]string{"uuid": account.ID})
		rec := httptest.NewRecorder()

		handler.TradeStock(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var response handlers.StockTradeResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Quantity != 2 || response.StockID != stock.ID {
			t.Errorf("Unexpected trade response: %+v", response)
		}
		if response.Timestamp == "" {
			t.Error("Expected a timestamp on the trade")
		}
	})
}

func TestTradingHandler_Quantity(t *testing.T) {
	t.Run("both asset parameters yield 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradingHandler(testutil.NewTestTradingService(t, db))
		profile := testutil.CreateProfile(t, db)
		account := testutil.CreateAccount(t, db, profile.ID)

		req := newHandlerRequest(http.MethodGet,
			"/api/account/"+account.ID+"/quantity?stockId="+testutil.MakeID()+"&bucketId="+testutil.MakeID(),
			"", profile, map[string]string{"uuid": account.ID})
		rec := httptest.NewRecorder()

		handler.Quantity(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rec.Code)
		}
	})

	t.Run("neither asset parameter yields 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewTradingHandler(testutil.NewTestTradingService(t, db))
		profile := testutil.CreateProfile(t, db)
		account := testutil.CreateAccount(t, db, profile.ID)

		req := newHandlerRequest(http.MethodGet, "/api/account/"+account.ID+"/quantity", "",
			profile, map[string]string{"uuid": account.ID})
		rec := httptest.NewRecorder()

		handler.Quantity(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rec.Code)
		}
	})
}
