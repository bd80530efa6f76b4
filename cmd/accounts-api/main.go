package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/openfin/accounts-api/internal/config"
	"github.com/openfin/accounts-api/internal/consent"
	"github.com/openfin/accounts-api/internal/events"
	"github.com/openfin/accounts-api/internal/handler"
	"github.com/openfin/accounts-api/internal/middleware"
	"github.com/openfin/accounts-api/internal/page"
	"github.com/openfin/accounts-api/internal/provider"
	"github.com/openfin/accounts-api/internal/ratelimit"
	"github.com/openfin/accounts-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Account/transaction store (external data provider)
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Redis (consent snapshots, rate-limit counters, pagination keys, events)
	redis := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	defer redis.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redis.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Store {
	case "memory":
		mem := ratelimit.NewMemoryLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		mem.StartJanitor(ctx)
		limiter = mem
	default:
		limiter = ratelimit.NewRedisLimiter(redis, cfg.RateLimit.Limit, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	}

	// --- pipeline wiring ---
	consents := consent.NewRedisStore(redis)
	keys := page.NewRedisKeyService(redis, time.Duration(cfg.Pagination.KeyTTLMinutes)*time.Minute)
	accounts := provider.NewPostgresAccounts(db)
	transactions := provider.NewPostgresTransactions(db)
	publisher := events.NewPublisher(redis)

	svc := service.New(limiter, consents, keys, accounts, transactions, publisher, cfg.BaseURL)
	accountsHandler := handler.NewAccountsHandler(svc, svc)

	// Setup router
	router := gin.Default()
	router.Use(middleware.InteractionID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v2 := router.Group("/open-banking/accounts/v2", middleware.AuthMiddleware())
	{
		v2.GET("/accounts",
			middleware.RateLimitHeaders(limiter, service.EndpointAccounts),
			accountsHandler.ListAccounts)
		v2.GET("/accounts/:accountId",
			middleware.RateLimitHeaders(limiter, service.EndpointAccounts),
			accountsHandler.GetAccount)
		v2.GET("/accounts/:accountId/transactions",
			middleware.RateLimitHeaders(limiter, service.EndpointTransactions),
			accountsHandler.ListTransactions)
	}

	// Audit trail: consume access events and write them to the service log.
	go func() {
		subscriber := events.NewAuditSubscriber(redis, "accounts-api-audit", "audit-consumer-1",
			func(_ context.Context, eventType string, access events.AccessEvent) error {
				log.Printf("audit: %s consent=%s org=%s interaction=%s operation=%s",
					eventType, access.ConsentID, access.OrganizationID, access.InteractionID, access.Operation)
				return nil
			})
		if err := subscriber.Start(ctx); err != nil {
			log.Printf("Audit subscriber stopped: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Accounts API starting on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
