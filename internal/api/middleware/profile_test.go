package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stockbucket/backend/internal/api/middleware"
	"github.com/stockbucket/backend/internal/testutil"
)

// TestRequireProfile tests header-based profile resolution.
//
// WHY: Every authenticated route trusts the profile the middleware puts on the
// context. Requests without a resolvable profile must be turned away before
// any handler runs, and resolved requests must carry a usable bank provider
// even when the profile never linked a bank.
func TestRequireProfile(t *testing.T) {
	setup := func(t *testing.T) (requireProfile func(http.Handler) http.Handler, profileID string) {
		t.Helper()

		db := testutil.SetupTestDB(t)
		profile := testutil.CreateProfile(t, db)
		profileService := testutil.NewTestProfileService(t, db)
		bankLinkService := testutil.NewTestBankLinkService(t, db, "http://127.0.0.1:0")

		return middleware.RequireProfile(profileService, bankLinkService), profile.ID
	}

	t.Run("known profile is attached to the context", func(t *testing.T) {
		requireProfile, profileID := setup(t)

		var sawProfile, sawProvider bool
		handler := requireProfile(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawProfile = middleware.ProfileFrom(r.Context()).ID == profileID
			sawProvider = middleware.BankProviderFrom(r.Context()) != nil
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/profile/me", nil)
		req.Header.Set("X-Profile-ID", profileID)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		if !sawProfile {
			t.Error("Expected the profile on the request context")
		}
		if !sawProvider {
			t.Error("Expected a bank provider on the request context")
		}
	})

	t.Run("missing header yields 401", func(t *testing.T) {
		requireProfile, _ := setup(t)
		handler := requireProfile(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler must not run without a profile")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/profile/me", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", rec.Code)
		}
	})

	t.Run("malformed profile id yields 401", func(t *testing.T) {
		requireProfile, _ := setup(t)
		handler := requireProfile(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler must not run without a profile")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/profile/me", nil)
		req.Header.Set("X-Profile-ID", "not-a-uuid")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", rec.Code)
		}
	})

	t.Run("unknown profile yields 401", func(t *testing.T) {
		requireProfile, _ := setup(t)
		handler := requireProfile(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler must not run without a profile")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/profile/me", nil)
		req.Header.Set("X-Profile-ID", testutil.MakeID())
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", rec.Code)
		}
	})
}
