package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appevent "github.com/hamkkebu/transaction-service/internal/application/event"
	appledger "github.com/hamkkebu/transaction-service/internal/application/ledger"
	syncapp "github.com/hamkkebu/transaction-service/internal/application/sync"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/auth"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/broker"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/cache"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/config"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/event"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/identity"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/logger"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/persistence"
	"github.com/hamkkebu/transaction-service/internal/interfaces/http/handler"
	"github.com/hamkkebu/transaction-service/internal/interfaces/http/middleware"
	"github.com/hamkkebu/transaction-service/internal/interfaces/http/router"
)

//	@title			Transaction Service API
//	@version		1.0
//	@description	Financial transaction service with transactional outbox publishing and event-driven entity replication

//	@contact.name	API Support
//	@contact.url	https://github.com/hamkkebu/transaction-service

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting transaction service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	syncedUserRepo := persistence.NewGormSyncedUserRepository(db.DB)
	syncedLedgerRepo := persistence.NewGormSyncedLedgerRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Outbox publisher saves domain events in the same database
	// transaction as the aggregate they belong to
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	transactionRepo.SetOutboxEventSaver(outboxPublisher)

	// Connect to Redis; the stream publisher, the stream consumer and
	// the idempotency store share one client
	redisClient, err := broker.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully")

	// Outbox relay moves stored entries onto the outbound stream
	if cfg.Event.RelayEnabled {
		streamPublisher := broker.NewRedisStreamPublisher(redisClient, cfg.Broker.OutboundStream, cfg.Broker.MaxStreamLen)
		relayConfig := event.OutboxRelayConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  time.Hour,
		}
		outboxRelay := event.NewOutboxRelay(outboxRepo, streamPublisher, relayConfig, log)
		if err := outboxRelay.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox relay", zap.Error(err))
		}
		defer func() {
			if err := outboxRelay.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox relay", zap.Error(err))
			}
		}()
		log.Info("Outbox relay started",
			zap.String("stream", cfg.Broker.OutboundStream),
			zap.Int("batch_size", relayConfig.BatchSize),
			zap.Duration("poll_interval", relayConfig.PollInterval),
		)
	}

	// Identity service client guarded by a circuit breaker; used for
	// thin event enrichment and JIT user provisioning
	identityClient := identity.NewClient(cfg.Identity, log)

	// Inbound event handlers wrapped for idempotent redelivery
	idempotencyStore := cache.NewRedisIdempotencyStoreWithClient(redisClient, "txn:idempotency:")
	userHandler := syncapp.NewUserEventHandler(syncedUserRepo, identityClient, log)
	ledgerHandler := syncapp.NewLedgerEventHandler(syncedLedgerRepo, log)

	handlerRegistry := event.NewHandlerRegistry()
	handlerRegistry.Register(event.NewIdempotentHandler(userHandler, idempotencyStore, log))
	handlerRegistry.Register(event.NewIdempotentHandler(ledgerHandler, idempotencyStore, log))

	// Stream consumer reads foreign events through a consumer group
	consumerConfig := broker.DefaultStreamConsumerConfig(cfg.Broker.UserStream, cfg.Broker.LedgerStream)
	consumerConfig.ConsumerGroup = cfg.Broker.ConsumerGroup
	if cfg.Broker.ConsumerName != "" {
		consumerConfig.ConsumerName = cfg.Broker.ConsumerName
	}
	consumerConfig.BlockTimeout = cfg.Broker.BlockTimeout
	consumerConfig.ClaimMinIdle = cfg.Broker.ClaimMinIdle

	streamConsumer := broker.NewStreamConsumer(redisClient, consumerConfig, eventSerializer, handlerRegistry, log)
	if err := streamConsumer.Start(context.Background()); err != nil {
		log.Fatal("Failed to start stream consumer", zap.Error(err))
	}
	defer func() {
		if err := streamConsumer.Stop(context.Background()); err != nil {
			log.Error("Error stopping stream consumer", zap.Error(err))
		}
	}()
	log.Info("Stream consumer started",
		zap.Strings("streams", consumerConfig.Streams),
		zap.String("consumer_group", consumerConfig.ConsumerGroup),
	)

	// Initialize application services
	accessResolver := appledger.NewAccessResolver(syncedLedgerRepo, transactionRepo, log)
	transactionService := appledger.NewTransactionService(transactionRepo, accessResolver, log)
	summaryService := appledger.NewSummaryService(transactionRepo, accessResolver, log)
	outboxService := appevent.NewOutboxService(outboxRepo, log)
	provisioner := syncapp.NewUserProvisioner(syncedUserRepo, identityClient, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	transactionHandler := handler.NewTransactionHandler(transactionService, summaryService)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler(db.DB)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning and authentication)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Provision a user replica on first sight of an authenticated user
	// so sync lag on USER_REGISTERED never blocks their requests
	if cfg.Identity.JITProvisioning {
		r.Use(middleware.JITProvisioningMiddleware(provisioner, log))
		log.Info("JIT user provisioning enabled")
	}

	r.Register(transactionHandler).
		Register(outboxHandler).
		Register(systemHandler)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
