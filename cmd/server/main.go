package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"quillhouse/internal/auth"
	"quillhouse/internal/config"
	"quillhouse/internal/handler"
	"quillhouse/internal/metrics"
	"quillhouse/internal/middleware"
	"quillhouse/internal/repository/postgres"
	pgWorkspace "quillhouse/internal/repository/postgres/workspace"
	"quillhouse/internal/richtext"
	authSvc "quillhouse/internal/service/auth"
	wsService "quillhouse/internal/service/workspace"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

var version = "dev"

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"version", version,
	)
	metrics.SetBuildInfo(version, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT verification: shared secret for local development, JWKS otherwise
	var jwtVerifier auth.JWTVerifier
	if cfg.JWTSecret != "" {
		jwtVerifier, err = auth.NewHMACVerifier(cfg.JWTSecret, logger)
	} else {
		jwtVerifier, err = auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
	}
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to migrate schema: %v", err)
		}
		logger.Info("schema ready")
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	projectRepo := pgWorkspace.NewProjectRepository(repoConfig)
	folderRepo := pgWorkspace.NewFolderRepository(repoConfig)
	fileRepo := pgWorkspace.NewFileRepository(repoConfig)
	messageRepo := pgWorkspace.NewMessageRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	authorizer := authSvc.NewCollaboratorAuthorizer(projectRepo, folderRepo, fileRepo)
	analyzer := richtext.NewAnalyzer()
	projectService := wsService.NewProjectService(projectRepo, folderRepo, txManager, authorizer, analyzer, logger)
	folderService := wsService.NewFolderService(folderRepo, authorizer, logger)
	fileService := wsService.NewFileService(fileRepo, authorizer, analyzer, logger)
	chatService := wsService.NewChatService(messageRepo, authorizer, cfg.ChatHistoryLimit, logger)

	// Create router
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Handlers{
		Health:  handler.NewHealthHandler(pool, logger),
		Project: handler.NewProjectHandler(projectService, logger),
		Folder:  handler.NewFolderHandler(folderService, logger),
		File:    handler.NewFileHandler(fileService, logger),
		Chat:    handler.NewChatHandler(chatService, logger),
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestID → Auth → Instrument → Routes
	// Instrument sits next to the mux so it sees the matched route pattern.
	h = middleware.Instrument(logger)(h)
	h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
