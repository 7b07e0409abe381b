package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appidentity "github.com/invoicedash/backend/internal/application/identity"
	appinvoicing "github.com/invoicedash/backend/internal/application/invoicing"
	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/invoicedash/backend/internal/infrastructure/auth"
	"github.com/invoicedash/backend/internal/infrastructure/cache"
	"github.com/invoicedash/backend/internal/infrastructure/config"
	"github.com/invoicedash/backend/internal/infrastructure/logger"
	"github.com/invoicedash/backend/internal/infrastructure/persistence"
	"github.com/invoicedash/backend/internal/infrastructure/telemetry"
	"github.com/invoicedash/backend/internal/interfaces/http/handler"
	"github.com/invoicedash/backend/internal/interfaces/http/middleware"
	"github.com/invoicedash/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.NewForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting invoice dashboard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Metrics share the collector with traces
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database with GORM logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, mp, cfg.Telemetry.DBSlowQueryThresh, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	defer func() {
		_ = dbMetrics.Close()
	}()

	// View cache and session revocation list, Redis when available
	stores := cache.NewStoreFactory(cfg.Redis, cache.WithLogger(log))
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing store factory", zap.Error(err))
		}
	}()
	views, err := stores.CreateViewCache(context.Background())
	if err != nil {
		log.Fatal("Failed to create view cache", zap.Error(err))
	}
	revocation, err := stores.CreateSessionRevocation(context.Background())
	if err != nil {
		log.Fatal("Failed to create session revocation list", zap.Error(err))
	}

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Application services
	policies, err := appinvoicing.ParsePolicies(
		cfg.Invoice.CreateFailurePolicy,
		cfg.Invoice.UpdateFailurePolicy,
		cfg.Invoice.DeleteFailurePolicy,
	)
	if err != nil {
		log.Fatal("Invalid failure policy", zap.Error(err))
	}
	mutationService := appinvoicing.NewMutationService(invoiceRepo, views, appinvoicing.MutationServiceConfig{
		ListingPath: cfg.Invoice.ListingPath,
		Policies:    policies,
	}, log)
	queryService := appinvoicing.NewQueryService(invoiceRepo, customerRepo, views, appinvoicing.QueryServiceConfig{
		ListingPath: cfg.Invoice.ListingPath,
		PageSize:    cfg.Invoice.PageSize,
		ViewTTL:     cfg.Invoice.ViewTTL,
	}, log)

	sessionTokens := auth.NewSessionService(cfg.Auth)
	credentialsProvider := appidentity.NewCredentialsProvider(userRepo, sessionTokens, log)
	credentialCheck := appidentity.NewCredentialCheck(credentialsProvider)
	sessionService := appidentity.NewSessionService(sessionTokens, revocation, log)

	policy := identity.AccessPolicy{
		ProtectedPrefix: cfg.Auth.ProtectedPrefix,
		LoginPath:       cfg.Auth.LoginPath,
		LandingPath:     cfg.Auth.LandingPath,
	}
	cookie := middleware.NewSessionCookie(cfg.Cookie)

	// Handlers
	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(db, log),
		Auth:      handler.NewAuthHandler(credentialCheck, sessionService, cookie, policy),
		Dashboard: handler.NewDashboardHandler(),
		Invoice:   handler.NewInvoiceHandler(mutationService, queryService),
	}

	// HTTP engine
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	r := router.NewRouter(engine).Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.HTTPMetrics(mp),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		// The boundary sits outside Recovery so recovered panics reach it
		middleware.ErrorBoundary(log, cfg.Invoice.ListingPath),
		logger.Recovery(log),
		middleware.Session(cookie, sessionService, log),
		middleware.TracingAttributeInjector(),
		middleware.AuthorizationGate(middleware.DefaultGateConfig(policy)),
	)
	r.Register(router.DashboardRoutes(handlers, router.Paths{
		Login:     cfg.Auth.LoginPath,
		Dashboard: cfg.Auth.ProtectedPrefix,
		Invoices:  cfg.Invoice.ListingPath,
	})...).Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
