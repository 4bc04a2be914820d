package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eventura/server/internal/api"
	"github.com/eventura/server/internal/auth"
	"github.com/eventura/server/internal/config"
	"github.com/eventura/server/internal/domain/accounts"
	"github.com/eventura/server/internal/domain/events"
	"github.com/eventura/server/internal/domain/recommendations"
	"github.com/eventura/server/internal/email"
	"github.com/eventura/server/internal/metrics"
	"github.com/eventura/server/internal/storage/postgres"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Eventura HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Bootstrap an admin account if ADMIN_* env vars are set
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("environment", cfg.Environment).
		Msg("starting eventura server")

	metrics.Init(Version, GitCommit, BuildDate)

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.Database)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	defer collectorCancel()
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer dbCollector.Stop()

	accountRepo := postgres.NewAccountRepository(pool)
	failureRepo := postgres.NewLoginFailureRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	recRepo := postgres.NewRecommendationRepository(pool)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	tracker := accounts.NewTracker(failureRepo, cfg.Auth.LockoutWindow, cfg.Auth.LockoutMaxFailures)

	mailer, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("email service: %w", err)
	}

	accountService := accounts.NewService(accountRepo, tracker, tokens, mailer, logger)
	eventService := events.NewService(eventRepo, logger)
	recService := recommendations.NewService(recRepo, logger)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapAdmin(bootCtx, cfg, accountService, logger); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}
	bootCancel()

	server := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: api.NewRouter(api.Deps{
			Config:          cfg,
			Logger:          logger,
			Pool:            pool,
			Tokens:          tokens,
			Accounts:        accountService,
			Events:          eventService,
			Recommendations: recService,
			Version:         Version,
			Commit:          GitCommit,
			BuildDate:       BuildDate,
		}),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

// bootstrapAdmin creates the configured admin account on first start. An
// existing account with the same email means a previous start already did
// this, which is not an error.
func bootstrapAdmin(ctx context.Context, cfg config.Config, svc *accounts.Service, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Email == "" || bootstrap.Password == "" || bootstrap.Name == "" {
		logger.Warn().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	_, _, err := svc.Register(ctx, accounts.RegisterParams{
		Email:           bootstrap.Email,
		Name:            bootstrap.Name,
		Role:            accounts.RoleAdmin.String(),
		Entity:          "Eventura",
		Password:        bootstrap.Password,
		PasswordConfirm: bootstrap.Password,
		Verified:        true,
	})
	if errors.Is(err, accounts.ErrDuplicateEmail) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info().Str("email", bootstrap.Email).Msg("admin account bootstrapped")
	return nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
