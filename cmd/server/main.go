package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockbucket/backend/internal/api"
	"github.com/stockbucket/backend/internal/bank"
	"github.com/stockbucket/backend/internal/config"
	"github.com/stockbucket/backend/internal/database"
	"github.com/stockbucket/backend/internal/jobs"
	"github.com/stockbucket/backend/internal/marketdata"
	"github.com/stockbucket/backend/internal/repository"
	"github.com/stockbucket/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and apply pending migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	tokenCipher, err := bank.NewTokenCipher(cfg.Bank.TokenKey)
	if err != nil {
		log.Fatalf("Failed to load bank token key: %v", err)
	}

	marketData := marketdata.NewClient(cfg.MarketData.BaseURL)

	// Create repositories
	stockRepo := repository.NewStockRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	bucketRepo := repository.NewBucketRepository(db)
	tradingRepo := repository.NewTradingRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	backfillService := service.NewBackfillService(stockRepo, quoteRepo, marketData)
	stockService := service.NewStockService(stockRepo, tradingRepo, marketData, backfillService)
	quoteService := service.NewQuoteService(quoteRepo)
	bucketService := service.NewBucketService(db, bucketRepo, stockRepo, quoteRepo)
	tradingService := service.NewTradingService(db, tradingRepo, quoteRepo, bucketRepo, bucketService)
	profileService := service.NewProfileService(db, profileRepo, tradingRepo)
	bankLinkService := service.NewBankLinkService(cfg.Bank, tokenCipher, profileRepo)

	// Create router
	router := api.NewRouter(api.Services{
		System:   systemService,
		Profile:  profileService,
		BankLink: bankLinkService,
		Stock:    stockService,
		Quote:    quoteService,
		Bucket:   bucketService,
		Trading:  tradingService,
		Backfill: backfillService,
	}, cfg)

	// Start the scheduled quote refresh
	scheduler, err := jobs.NewScheduler(cfg.Jobs, backfillService)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	scheduler.Start()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	<-scheduler.Stop().Done()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
