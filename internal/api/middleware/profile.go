package middleware

import (
	"context"
	"net/http"

	"github.com/stockbucket/backend/internal/api/response"
	"github.com/stockbucket/backend/internal/bank"
	"github.com/stockbucket/backend/internal/model"
	"github.com/stockbucket/backend/internal/service"
	"github.com/stockbucket/backend/internal/validation"
)

type contextKey string

const (
	profileKey      contextKey = "profile"
	bankProviderKey contextKey = "bankProvider"
)

// RequireProfile resolves the X-Profile-ID header to a profile and attaches
// it to the request context, together with a request-scoped bank provider
// for the profile's linked account. Requests without a valid profile get
// 401 Unauthorized.
func RequireProfile(profileService *service.ProfileService, bankLinkService *service.BankLinkService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID := r.Header.Get("X-Profile-ID")

			if profileID == "" {
				response.RespondError(w, http.StatusUnauthorized, "X-Profile-ID header is required", "")
				return
			}

			if err := validation.ValidateUUID(profileID); err != nil {
				response.RespondError(w, http.StatusUnauthorized, "invalid profile id", err.Error())
				return
			}

			profile, err := profileService.Get(profileID)
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, "unknown profile", "")
				return
			}

			provider, err := bankLinkService.ProviderFor(profile.ID)
			if err != nil {
				response.RespondError(w, http.StatusInternalServerError, "failed to resolve bank link", err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile, provider)))
		})
	}
}

// WithProfile attaches a profile and its bank provider to the context the way
// RequireProfile does.
func WithProfile(ctx context.Context, profile model.Profile, provider bank.Provider) context.Context {
	ctx = context.WithValue(ctx, profileKey, profile)
	return context.WithValue(ctx, bankProviderKey, provider)
}

// ProfileFrom returns the profile attached to the request context by
// RequireProfile.
func ProfileFrom(ctx context.Context) model.Profile {
	profile, _ := ctx.Value(profileKey).(model.Profile)
	return profile
}

// BankProviderFrom returns the request-scoped bank provider attached by
// RequireProfile.
func BankProviderFrom(ctx context.Context) bank.Provider {
	provider, ok := ctx.Value(bankProviderKey).(bank.Provider)
	if !ok {
		return bank.None{}
	}
	return provider
}
