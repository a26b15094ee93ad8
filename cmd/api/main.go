package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/backyardhq/accounts/internal/auth"
	"github.com/backyardhq/accounts/internal/background"
	"github.com/backyardhq/accounts/internal/cache"
	"github.com/backyardhq/accounts/internal/config"
	"github.com/backyardhq/accounts/internal/database"
	"github.com/backyardhq/accounts/internal/handlers"
	middlewareCustom "github.com/backyardhq/accounts/internal/middleware"
	"github.com/backyardhq/accounts/internal/repositories"
	"github.com/backyardhq/accounts/internal/routes"
	"github.com/backyardhq/accounts/internal/services"
	"github.com/backyardhq/accounts/internal/store"
	pkghttp "github.com/backyardhq/accounts/pkg/http"
	pkglogger "github.com/backyardhq/accounts/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize redis
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisClient, err := cache.NewRedisClient(redisCtx, &cfg.Redis, logger)
	redisCancel()
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	lockoutRepo := repositories.NewLockoutRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)

	counterStore := store.NewRedisCounterStore(redisClient)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Timing delay for auth security
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   100,
		RandomDelayMs: 100,
	})

	// AWS SES email service
	emailService, err := services.NewAWSSESEmailService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.FrontendURL,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	lockoutService := services.NewLockoutService(
		counterStore,
		lockoutRepo,
		userRepo,
		services.LockoutConfig{
			MaxFailedAttempts: cfg.Lockout.MaxFailedAttempts,
			Window:            cfg.Lockout.Window,
		},
		logger,
		auditLogger,
	)
	authService := services.NewAuthService(
		userRepo,
		otpRepo,
		lockoutService,
		tokenManager,
		timingDelay,
		emailService,
		cfg.Email.OTPExpiry,
		logger,
		auditLogger,
	)
	accountService := services.NewAccountService(
		userRepo,
		otpRepo,
		sessionRepo,
		emailService,
		cfg.Email.OTPExpiry,
		logger,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, tokenManager, cfg.Cookie, logger)
	accountHandler := handlers.NewAccountHandler(accountService, logger)

	// Initialize cleanup manager. Lockout rows are kept for a day past the
	// counting window before being dropped.
	cleanupManager := background.NewCleanupManager(
		otpRepo,
		lockoutRepo,
		cfg.Lockout.Window+24*time.Hour,
		logger,
		cfg.Auth.CleanupInterval,
	)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger, &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Failed-login guard watches the login route; the token refresh
	// interceptor and its responder cover everything behind it.
	router.Use(middlewareCustom.FailedLoginGuard(
		lockoutService,
		middlewareCustom.LoginRoute(http.MethodPost, cfg.Auth.LoginPath),
		logger,
	))
	router.Use(middlewareCustom.TokenRefresh(tokenManager, userRepo, cfg.Cookie, logger))

	// Register routes
	routes.RegisterRoutes(router, authHandler, accountHandler, tokenManager, cfg.Cookie)

	// Health check with database and redis
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","redis":"down"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
