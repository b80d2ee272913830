package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classifieds-api/internal/cache"
	"classifieds-api/internal/config"
	"classifieds-api/internal/handler"
	"classifieds-api/internal/middleware"
	"classifieds-api/internal/repository"
	"classifieds-api/internal/router"
	"classifieds-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting classifieds API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Marketplace database (listings, conversations, offers, reviews,
	// locations). SQLite is the default; Postgres can take over the listing
	// store for deployments that need concurrent writers.
	marketDB, err := repository.OpenSQLiteMarketDB(cfg.MarketDB.Path)
	if err != nil {
		log.Fatalf("Failed to open market database: %v", err)
	}
	defer marketDB.Close()

	var listingRepo repository.ListingRepository
	switch cfg.MarketDB.Type {
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresListingRepository(cfg.MarketDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pgRepo.Close()
		listingRepo = pgRepo
		log.Println("Using PostgreSQL listing repository")
	default:
		listingRepo = repository.NewSQLiteListingRepository(marketDB)
		log.Println("Using SQLite listing repository")
	}

	offerRepo := repository.NewSQLiteOfferRepository(marketDB)
	conversationRepo := repository.NewSQLiteConversationRepository(marketDB)
	reviewRepo := repository.NewSQLiteReviewRepository(marketDB)
	locationRepo := repository.NewSQLiteLocationRepository(marketDB)

	if err := repository.SeedLocations(context.Background(), marketDB); err != nil {
		log.Printf("Warning: failed to seed locations: %v", err)
	}

	// Notification storage
	var notificationRepo repository.NotificationRepository
	switch cfg.NotificationDB.Type {
	case "mongodb", "mongo":
		mongoRepo, err := repository.NewMongoDBNotificationRepository(
			cfg.NotificationDB.MongoURI,
			cfg.NotificationDB.MongoDatabase,
			cfg.NotificationDB.MongoCollection,
		)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoRepo.Close()
		notificationRepo = mongoRepo
		log.Println("Using MongoDB notification repository")
	default:
		sqliteRepo, err := repository.NewSQLiteNotificationRepository(marketDB)
		if err != nil {
			log.Fatalf("Failed to init notification repository: %v", err)
		}
		notificationRepo = sqliteRepo
		log.Println("Using SQLite notification repository")
	}

	// Accounts database (MySQL). Optional: without it sessions cannot be
	// issued and participant names degrade to bare ids.
	var accountRepo repository.AccountRepository
	accountsDB, err := sql.Open("mysql", cfg.Accounts.DSN())
	if err == nil {
		accountsDB.SetMaxOpenConns(10)
		accountsDB.SetMaxIdleConns(5)
		accountsDB.SetConnMaxLifetime(5 * time.Minute)
		if pingErr := accountsDB.Ping(); pingErr != nil {
			log.Printf("Warning: accounts database unreachable: %v", pingErr)
			accountsDB.Close()
		} else {
			defer accountsDB.Close()
			accountRepo = repository.NewMySQLAccountRepository(accountsDB)
			log.Println("Connected to accounts database")
		}
	} else {
		log.Printf("Warning: failed to open accounts database: %v", err)
	}

	// Redis: session store plus the read-receipt write-behind buffer.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddress(),
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	redisAvailable := redisClient.Ping(pingCtx).Err() == nil
	cancel()

	var tokenService *service.TokenService
	if redisAvailable {
		tokenService = service.NewTokenService(redisClient)
		log.Println("Session store connected")
	} else {
		log.Println("Warning: Redis unavailable, sessions disabled")
	}

	var receiptBuffer *cache.RedisReceiptBuffer
	if redisAvailable {
		receiptBuffer, err = cache.NewRedisReceiptBuffer(cache.RedisBufferConfig{
			Addr:          cfg.Cache.RedisAddress(),
			Password:      cfg.Cache.RedisPassword,
			DB:            cfg.Cache.RedisDB,
			FlushInterval: cfg.Cache.ReceiptFlushInterval,
		}, service.CreateReceiptFlushFunc(conversationRepo))
		if err != nil {
			log.Printf("Warning: receipt buffer unavailable, receipts apply synchronously: %v", err)
		}
	}

	// Services
	listingService := service.NewListingService(listingRepo)
	offerService := service.NewOfferService(service.OfferServiceConfig{
		Offers:         offerRepo,
		Listings:       listingRepo,
		Conversations:  conversationRepo,
		Notifications:  notificationRepo,
		OfferTTL:       cfg.Offers.OfferTTL,
		ReservationTTL: cfg.Offers.ReservationTTL,
	})
	conversationService := service.NewConversationService(conversationRepo, listingRepo, accountRepo, receiptBuffer)
	notificationService := service.NewNotificationService(notificationRepo)
	reviewService := service.NewReviewService(reviewRepo, listingRepo, accountRepo)
	locationService := service.NewLocationService(locationRepo, cache.NewMemoryCache())

	// Background expiry sweeper for offers and listing reservations
	sweeper := service.NewExpirySweeper(offerRepo, listingRepo, service.SweeperConfig{
		SweepInterval: cfg.Offers.SweepInterval,
	})
	sweeper.Start()
	defer sweeper.Stop()

	// Handlers
	h := handler.New(handler.ReadinessCheck{
		Name:  "market_db",
		Probe: marketDB.Ping,
	})
	var authHandler *handler.AuthHandler
	if tokenService != nil && accountRepo != nil {
		authHandler = handler.NewAuthHandler(tokenService, accountRepo)
	}

	var authMiddleware func(http.Handler) http.Handler
	if tokenService != nil {
		authMiddleware = middleware.NewAuthMiddleware(middleware.AuthConfig{
			TokenService: tokenService,
		})
	}

	r := router.New(router.Config{
		Handler:             h,
		AuthHandler:         authHandler,
		ListingHandler:      handler.NewListingHandler(listingService),
		ConversationHandler: handler.NewConversationHandler(conversationService),
		OfferHandler:        handler.NewOfferHandler(offerService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		ReviewHandler:       handler.NewReviewHandler(reviewService),
		LocationHandler:     handler.NewLocationHandler(locationService),
		CategoryHandler:     handler.NewCategoryHandler(),
		AuthMiddleware:      authMiddleware,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Flush any buffered read receipts before the process exits.
	if receiptBuffer != nil {
		if err := receiptBuffer.Close(); err != nil {
			log.Printf("Receipt buffer close error: %v", err)
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}

	fmt.Println("Server stopped")
}
