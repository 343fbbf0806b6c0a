package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stockbucket/backend/internal/api/handlers"
	custommiddleware "github.com/stockbucket/backend/internal/api/middleware"
	"github.com/stockbucket/backend/internal/config"
	"github.com/stockbucket/backend/internal/service"
)

// Services bundles everything the router needs. Keeps NewRouter's signature
// from growing a parameter per service.
type Services struct {
	System   *service.SystemService
	Profile  *service.ProfileService
	BankLink *service.BankLinkService
	Stock    *service.StockService
	Quote    *service.QuoteService
	Bucket   *service.BucketService
	Trading  *service.TradingService
	Backfill *service.BackfillService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	requireProfile := custommiddleware.RequireProfile(services.Profile, services.BankLink)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		profileHandler := handlers.NewProfileHandler(services.Profile, services.BankLink)

		r.Route("/profile", func(r chi.Router) {
			r.Post("/", profileHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(requireProfile)
				r.Get("/me", profileHandler.Me)
				r.Get("/account", profileHandler.DefaultAccount)
			})
		})

		r.Route("/bank", func(r chi.Router) {
			r.Use(requireProfile)
			r.Get("/", profileHandler.Bank)
			r.Post("/link", profileHandler.LinkBank)
			r.Get("/balance", profileHandler.BankBalance)
			r.Get("/history", profileHandler.BankHistory)
			r.Post("/refresh", profileHandler.RefreshBank)
		})

		r.Route("/stock", func(r chi.Router) {
			stockHandler := handlers.NewStockHandler(services.Stock, services.Quote)
			r.Get("/", stockHandler.Search)

			r.Group(func(r chi.Router) {
				r.Use(requireProfile)
				r.Post("/", stockHandler.Create)
			})

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", stockHandler.Get)
				r.Get("/quote", stockHandler.Quote)
				r.Get("/quotes", stockHandler.Quotes)

				r.Group(func(r chi.Router) {
					r.Use(requireProfile)
					r.Get("/trades", stockHandler.Trades)
				})
			})
		})

		r.Route("/bucket", func(r chi.Router) {
			r.Use(requireProfile)

			bucketHandler := handlers.NewBucketHandler(services.Bucket)
			r.Get("/", bucketHandler.Buckets)
			r.Post("/", bucketHandler.Create)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", bucketHandler.Get)
				r.Delete("/", bucketHandler.Delete)
				r.Get("/value", bucketHandler.Value)
				r.Get("/positions", bucketHandler.Positions)
				r.Put("/config", bucketHandler.ChangeConfig)
				r.Post("/sellall", bucketHandler.SellAll)
				r.Get("/descriptions", bucketHandler.Descriptions)
				r.Post("/descriptions", bucketHandler.AddDescription)
			})
		})

		r.Route("/description/{uuid}", func(r chi.Router) {
			r.Use(requireProfile)
			r.Use(custommiddleware.ValidateUUIDMiddleware)

			bucketHandler := handlers.NewBucketHandler(services.Bucket)
			r.Put("/", bucketHandler.EditDescription)
			r.Delete("/", bucketHandler.DeleteDescription)
		})

		r.Route("/account", func(r chi.Router) {
			r.Use(requireProfile)

			tradingHandler := handlers.NewTradingHandler(services.Trading)
			r.Get("/", tradingHandler.Accounts)
			r.Post("/", tradingHandler.CreateAccount)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", tradingHandler.GetAccount)
				r.Get("/cash", tradingHandler.Cash)
				r.Get("/balance", tradingHandler.Balance)
				r.Get("/quantity", tradingHandler.Quantity)
				r.Post("/trade/stock", tradingHandler.TradeStock)
				r.Post("/trade/bucket", tradingHandler.TradeBucket)
				r.Get("/trades/stock", tradingHandler.StockTrades)
				r.Get("/trades/bucket", tradingHandler.BucketTrades)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			adminHandler := handlers.NewAdminHandler(services.Backfill)
			r.Post("/quotes/refresh", adminHandler.RefreshQuotes)
		})
	})

	return r
}
