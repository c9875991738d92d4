package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commerce/backend/internal/application/checkout"
	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/infrastructure/auth"
	"github.com/commerce/backend/internal/infrastructure/broker"
	"github.com/commerce/backend/internal/infrastructure/cache"
	"github.com/commerce/backend/internal/infrastructure/config"
	"github.com/commerce/backend/internal/infrastructure/event"
	"github.com/commerce/backend/internal/infrastructure/logger"
	"github.com/commerce/backend/internal/infrastructure/notification"
	paymentinfra "github.com/commerce/backend/internal/infrastructure/payment"
	"github.com/commerce/backend/internal/infrastructure/persistence"
	"github.com/commerce/backend/internal/infrastructure/telemetry"
	"github.com/commerce/backend/internal/interfaces/http/handler"
	"github.com/commerce/backend/internal/interfaces/http/middleware"
	"github.com/commerce/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainpayment "github.com/commerce/backend/internal/domain/payment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting commerce backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	metrics := telemetry.NewBusinessMetrics(meterProvider.Meter("commerce/checkout"), log)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Redis idempotency store
	idempotency, err := cache.NewRedisIdempotencyStore(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}()

	// Outbox plumbing
	serializer := event.NewSerializer()
	outboxSaver := event.NewOutboxSaver(serializer)
	scope := persistence.NewGormTransactionScope(db.DB, outboxSaver)

	kafkaBroker := broker.NewKafkaBroker(cfg.Kafka, log)
	defer func() {
		if err := kafkaBroker.Close(); err != nil {
			log.Error("Error closing kafka writer", zap.Error(err))
		}
	}()

	relayCfg := event.DefaultRelayConfig()
	relayCfg.BatchSize = cfg.Outbox.BatchSize
	relayCfg.PollInterval = cfg.Outbox.PollInterval
	relayCfg.CleanupEnabled = cfg.Outbox.CleanupEnabled
	relayCfg.CleanupRetention = cfg.Outbox.CleanupRetention
	relay := event.NewOutboxRelay(db.DB, kafkaBroker, relayCfg, metrics, log)
	if cfg.Outbox.RelayEnabled {
		if err := relay.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox relay", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := relay.Stop(stopCtx); err != nil {
				log.Error("Error stopping outbox relay", zap.Error(err))
			}
		}()
		log.Info("Outbox relay started",
			zap.Int("batch_size", relayCfg.BatchSize),
			zap.Duration("poll_interval", relayCfg.PollInterval),
		)
	}

	// Payment gateways
	gateways := make([]domainpayment.Gateway, 0, 3)
	gateways = append(gateways, paymentinfra.NewCashOnDeliveryAdapter())
	if cfg.Payment.StripeAPIKey != "" {
		stripeAdapter, err := paymentinfra.NewStripeAdapter(cfg.Payment.StripeAPIKey, log)
		if err != nil {
			log.Fatal("Failed to initialize stripe adapter", zap.Error(err))
		}
		gateways = append(gateways, stripeAdapter)
	}
	if cfg.Payment.CardAPIKey != "" {
		cardAdapter, err := paymentinfra.NewCardAPIAdapter(&paymentinfra.CardAPIConfig{
			APIKey:    cfg.Payment.CardAPIKey,
			SecretKey: cfg.Payment.CardSecretKey,
			BaseURL:   cfg.Payment.CardBaseURL,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize card adapter", zap.Error(err))
		}
		gateways = append(gateways, cardAdapter)
	}
	registry := paymentinfra.NewGatewayRegistry(gateways...)

	// Application services
	taxRate, freeShippingThreshold, flatShippingRate := cfg.Checkout.PricingRules()
	engine := pricing.NewEngine(pricing.Rules{
		TaxRate:               taxRate,
		FreeShippingThreshold: freeShippingThreshold,
		FlatShippingRate:      flatShippingRate,
	})
	numbers := persistence.NewGormOrderNumberGenerator(db.DB)
	notifier := notification.NewLoggingNotifier(log)

	checkoutService := checkout.NewService(scope, engine, numbers, idempotency, metrics, log)
	paymentService := checkout.NewPaymentService(scope, registry, notifier, metrics, cfg.Checkout.PaymentTimeout, log)
	cartService := checkout.NewCartService(scope, engine, log)

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginEngine := gin.New()
	middleware.SetupValidator()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))
	ginEngine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	ginEngine.Use(middleware.CORSWithConfig(corsConfig))

	systemHandler := handler.NewSystemHandler(map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	})
	ginEngine.GET("/healthz", systemHandler.Health)
	ginEngine.GET("/readyz", systemHandler.Ready)

	verifier := auth.NewVerifier(cfg.JWT)
	jwtConfig := middleware.DefaultJWTConfig(verifier)
	jwtConfig.AllowHeaderFallback = cfg.App.Env != "production"
	jwtConfig.Logger = log

	r := router.NewRouter(ginEngine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(middleware.CustomerAuthWithConfig(jwtConfig)),
	)
	r.Register(handler.NewCartHandler(cartService)).
		Register(handler.NewCheckoutHandler(checkoutService)).
		Register(handler.NewOrderHandler(checkoutService, paymentService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
