package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/redmonkez12/vision-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/vision-api/internal/auth"
	"github.com/redmonkez12/vision-api/internal/config"
	"github.com/redmonkez12/vision-api/internal/detection"
	httpServer "github.com/redmonkez12/vision-api/internal/http"
	"github.com/redmonkez12/vision-api/internal/logging"
	"github.com/redmonkez12/vision-api/internal/qa"
	"github.com/redmonkez12/vision-api/internal/user"
)

// @title           Vision API
// @version         1.0
// @description     Authentication, object detection and question answering for the vision web app.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

func main() {
	rootCmd := &cobra.Command{
		Use:           "vision-api",
		Short:         "Vision API server",
		Long:          "HTTP API for signup/login, object detection and question answering over detections.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	rootCmd.AddCommand(serveCmd, newTokenCmd())

	// Allow running without subcommand (default to serve)
	rootCmd.RunE = serveCmd.RunE

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
	)

	tokenService, err := auth.NewTokenService(&cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	userStore := user.NewMemoryStore()
	hasher := auth.NewPasswordHasher(auth.DefaultPasswordParams)

	authService := auth.NewService(userStore, tokenService, hasher, logger, cfg.Auth.PasswordMinLength)
	authHandler := auth.NewHandler(authService, logger)
	authMiddleware := auth.NewMiddleware(tokenService)

	detector := detection.NewClient(cfg.Detection, nil)
	if cfg.Detection.APIKey == "" {
		logger.Warn("HUGGINGFACE_API_KEY not set, trying public inference")
	}

	var answerer qa.Answerer = qa.OfflineAnswerer{}
	if cfg.QA.APIKey != "" {
		answerer = qa.NewGeminiClient(cfg.QA, nil)
	} else {
		logger.Warn("GOOGLE_GEMINI_API_KEY not set, using offline answers")
	}

	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Auth:      authHandler,
		Detection: detection.NewHandler(detector),
		QA:        qa.NewHandler(answerer),
	}, authMiddleware, logger)

	server := httpServer.NewServer(
		cfg.Server.Address(),
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
