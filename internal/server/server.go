// Package server boots the marketplace: configuration, logging, stores,
// services, the HTTP surface, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/campusmart/app/controllers"
	appgraphql "github.com/shashiranjanraj/campusmart/app/graphql"
	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/app/repositories"
	"github.com/shashiranjanraj/campusmart/app/routes"
	"github.com/shashiranjanraj/campusmart/config"
	"github.com/shashiranjanraj/campusmart/pkg/auth"
	"github.com/shashiranjanraj/campusmart/pkg/cache"
	"github.com/shashiranjanraj/campusmart/pkg/database"
	"github.com/shashiranjanraj/campusmart/pkg/event"
	"github.com/shashiranjanraj/campusmart/pkg/graphql"
	"github.com/shashiranjanraj/campusmart/pkg/logger"
	"github.com/shashiranjanraj/campusmart/pkg/metrics"
	"github.com/shashiranjanraj/campusmart/pkg/middleware"
	"github.com/shashiranjanraj/campusmart/pkg/reqid"
	"github.com/shashiranjanraj/campusmart/pkg/router"
	"github.com/shashiranjanraj/campusmart/pkg/storage"
	"github.com/shashiranjanraj/campusmart/pkg/workerpool"

	"github.com/shashiranjanraj/campusmart/app/services"
)

// Start boots the application and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func Start() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Logging first so everything after it is structured. The Mongo log
	// sink is optional and must never block boot.
	var logHandlers []slog.Handler
	var mongoLogs *logger.MongoHandler
	if cfg.LogMongoURI != "" {
		mongoLogs, err = logger.NewMongoHandler(cfg.LogMongoURI, cfg.MongoDB, cfg.LogMongoCollection)
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			logHandlers = append(logHandlers, mongoLogs)
			defer mongoLogs.Close()
		}
	}
	logger.Setup(cfg.Production(), logHandlers...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Primary store.
	conn, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	// Cache is optional: a dead Redis degrades catalog reads, nothing else.
	var catalogCache services.Cache
	if redisClient, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", "error", err)
	} else {
		catalogCache = redisClient
		defer redisClient.Close()
	}

	storage.Connect(storage.Options{
		Default:    cfg.StorageDisk,
		LocalRoot:  cfg.StorageLocalRoot,
		LocalURL:   cfg.StorageURL,
		S3Bucket:   cfg.S3Bucket,
		S3Region:   cfg.S3Region,
		S3Key:      cfg.S3Key,
		S3Secret:   cfg.S3Secret,
		S3Endpoint: cfg.S3Endpoint,
		S3URL:      cfg.S3URL,
	})

	// Stores.
	users := repositories.NewUserRepository(conn.DB)
	products := repositories.NewProductRepository(conn.DB)
	orders := repositories.NewOrderRepository(conn.DB)
	if err := EnsureIndexes(ctx, conn); err != nil {
		logger.Warn("index creation failed", "error", err)
	}

	// Services.
	tokens := auth.NewManager(cfg.JWTSecret, 48*time.Hour)

	var captcha services.CaptchaVerifier
	if cfg.CaptchaSecret != "" {
		captcha = &services.HTTPCaptchaVerifier{VerifyURL: cfg.CaptchaVerifyURL, Secret: cfg.CaptchaSecret}
	}

	casCallbackURL := cfg.CASServiceURL + "/api/sso/callback"
	authService := services.NewAuthService(users, tokens, captcha)
	casService := services.NewCASService(users, tokens,
		&services.HTTPTicketValidator{CASBaseURL: cfg.CASBaseURL, ServiceURL: casCallbackURL},
		cfg.CASBaseURL, casCallbackURL, cfg.FrontendURL)
	catalogService := services.NewCatalogService(products, users, catalogCache)
	cartService := services.NewCartService(users, products)
	orderService := services.NewOrderService(orders, products, users)
	reviewService := services.NewReviewService(users)
	chatService := services.NewChatService(&services.GenAICompleter{
		BaseURL: cfg.GenAIBaseURL,
		Model:   cfg.GenAIModel,
		APIKey:  cfg.GenAIKey,
	})

	registerOrderListeners()

	schema, err := appgraphql.NewSchema(catalogService)
	if err != nil {
		return fmt.Errorf("build graphql schema: %w", err)
	}

	if catalogCache != nil {
		warmCatalogCache(ctx, catalogService)
	}

	// HTTP surface.
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics — outermost for accurate total latency
	//  2. Recovery          — catches panics before they kill the goroutine
	//  3. Request ID        — inject unique ID before anything logs
	//  4. Logger            — logs request_id from context
	//  5. CORS              — set CORS headers
	//  6. Rate limiter      — reject abusers early
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(corsOptions(cfg)))
	r.Use(middleware.RateLimit(200, time.Minute))

	// Prometheus /metrics endpoint — no auth, no rate limit on the path
	// itself beyond the global limiter.
	r.Get("/metrics", "metrics", metrics.Handler())

	routes.RegisterAPI(r, routes.Controllers{
		Auth:    controllers.NewAuthController(authService, casService),
		User:    controllers.NewUserController(authService, reviewService),
		Cart:    controllers.NewCartController(cartService),
		Order:   controllers.NewOrderController(orderService, cartService),
		Product: controllers.NewProductController(catalogService),
		Chat:    controllers.NewChatController(chatService),
	}, tokens, graphql.Handler(schema))

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("campusmart listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// EnsureIndexes creates every collection index the queries rely on.
// Shared by boot and the migrate command.
func EnsureIndexes(ctx context.Context, conn *database.Conn) error {
	if err := repositories.NewUserRepository(conn.DB).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := repositories.NewProductRepository(conn.DB).EnsureIndexes(ctx); err != nil {
		return err
	}
	return repositories.NewOrderRepository(conn.DB).EnsureIndexes(ctx)
}

// registerOrderListeners subscribes audit logging to the order lifecycle.
func registerOrderListeners() {
	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		if e, ok := payload.(services.OrderCreatedEvent); ok {
			logger.Info("orders created", "buyer_id", e.BuyerID, "count", len(e.Orders))
		}
	})
	event.Listen(services.EventOrderDelivered, func(payload interface{}) {
		if e, ok := payload.(services.OrderDeliveredEvent); ok {
			logger.Info("order delivered", "order_id", e.OrderID)
		}
	})
}

// warmCatalogCache pre-populates the per-category catalog pages so the first
// request after boot hits Redis, not Mongo. Failures only cost the warm-up.
func warmCatalogCache(ctx context.Context, catalog *services.CatalogService) {
	pool := workerpool.New(3)
	defer pool.Shutdown()

	categories := append(models.Categories(), "")
	for _, c := range categories {
		category := c
		if err := pool.SubmitWait(func() {
			if _, err := catalog.List(ctx, category); err != nil {
				logger.Warn("catalog warm-up failed", "category", category, "error", err)
			}
		}); err != nil {
			return
		}
	}
}

func corsOptions(cfg *config.Config) middleware.CORSOptions {
	opts := middleware.DefaultCORSOptions()
	if cfg.Production() && cfg.FrontendURL != "" {
		opts.AllowedOrigins = []string{cfg.FrontendURL}
	}
	return opts
}
