package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blendhq/blend-server/internal/config"
	"github.com/blendhq/blend-server/internal/connect"
	"github.com/blendhq/blend-server/internal/container"
	"github.com/blendhq/blend-server/internal/models"
	"github.com/blendhq/blend-server/internal/routes"
	"github.com/joho/godotenv"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	logger.Info("Starting Blend API server", "environment", cfg.Environment, "backend", cfg.Backend)

	// Cloudinary is optional; cover uploads are disabled without it.
	cld, err := connect.CloudinaryCredentials()
	if err != nil {
		logger.Error("Failed to connect to Cloudinary", "error", err)
		os.Exit(1)
	}
	connect.Cld = cld

	var (
		supaClient  *supabase.Client
		mongoClient *mongo.Client
	)
	if cfg.Backend == config.BackendSupabase {
		supaClient, err = connect.InitSupabase(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			logger.Error("Failed to connect to Supabase", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to Supabase successfully")

		mongoClient, err = connect.MongoDBConnect(cfg.MongoDBURI, cfg.MongoDBPassword)
		if err != nil {
			logger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to MongoDB successfully")

		indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := models.MongodbNewRepo(mongoClient).EnsureIndexes(indexCtx); err != nil {
			cancel()
			logger.Error("Failed to ensure MongoDB indexes", "error", err)
			os.Exit(1)
		}
		cancel()
	} else {
		logger.Info("Running with in-memory mock backend", "auto_signup", cfg.DemoAutoSignup)
	}

	// Initialize dependency container
	appContainer := container.NewContainer(cfg, logger, cld, supaClient, mongoClient)

	// Setup routes
	router := routes.SetupRoutes(appContainer)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Close database connections
	if cfg.Backend == config.BackendSupabase {
		connect.Disconnect()
		if err := connect.MongoDBDisconnect(); err != nil {
			logger.Error("Error disconnecting from MongoDB", "error", err)
		}
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
