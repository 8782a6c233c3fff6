package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"konsole/internal/cache"
	"konsole/internal/config"
	"konsole/internal/handler"
	"konsole/internal/kvstore"
	"konsole/internal/middleware"
	"konsole/internal/registry"
	"konsole/internal/remote"
	"konsole/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"backend_url", cfg.BackendURL,
	)
	if cfg.APIKey == "" {
		logger.Warn("KAAPI_API_KEY is not set; backend requests will be rejected")
	}

	// Backend client
	backend := remote.NewClient(cfg.BackendURL, cfg.APIKey, logger)

	// Persisted cache tier; the cache degrades to memory-only when the
	// store cannot be opened
	var store cache.KeyValueStore
	if cfg.CacheDBPath != "" {
		kv, err := kvstore.Open(cfg.CacheDBPath)
		if err != nil {
			logger.Warn("persisted cache tier unavailable, running memory-only",
				"path", cfg.CacheDBPath,
				"error", err,
			)
		} else {
			defer kv.Close()
			store = kv
		}
	}

	// Config cache manager
	cacheManager := cache.NewManager(backend, store, cfg.CacheMaxAge, logger)
	defer cacheManager.Close()

	// Provider catalog
	providerRegistry, err := registry.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load provider catalog: %v", err)
	}

	// Services
	configService := service.NewConfigService(cacheManager, backend, providerRegistry, logger)
	transcriptService := service.NewTranscriptService(logger)
	evalService := service.NewEvalService(backend, logger)

	// Handlers
	configHandler := handler.NewConfigHandler(configService, logger)
	diffHandler := handler.NewDiffHandler(transcriptService, logger)
	evalHandler := handler.NewEvalHandler(evalService, logger)
	providersHandler := handler.NewProvidersHandler(providerRegistry)
	healthHandler := handler.NewHealthHandler(configService)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)

	// Config routes
	mux.HandleFunc("GET /api/configs", configHandler.ListConfigs)
	mux.HandleFunc("POST /api/configs", configHandler.CreateConfig)
	mux.HandleFunc("POST /api/configs/invalidate", configHandler.InvalidateCache)
	mux.HandleFunc("POST /api/configs/{id}/versions", configHandler.CreateVersion)

	// Provider catalog
	mux.HandleFunc("GET /api/providers", providersHandler.ListProviders)

	// Transcript diff
	mux.HandleFunc("POST /api/diff", diffHandler.CompareTranscripts)

	// Evaluation job routes
	mux.HandleFunc("POST /api/jobs", evalHandler.SubmitJob)
	mux.HandleFunc("GET /api/jobs/{id}", evalHandler.GetJob)
	mux.HandleFunc("GET /api/jobs/{id}/results", evalHandler.ListResults)
	mux.HandleFunc("GET /api/jobs/{id}/export", evalHandler.ExportResults)
	mux.HandleFunc("GET /api/jobs/{id}/events", evalHandler.StreamJobEvents) // SSE

	// Dataset upload
	mux.HandleFunc("POST /api/datasets", evalHandler.UploadDataset)

	// Build middleware chain (applied in reverse order, they wrap each other)
	var h http.Handler = mux
	h = middleware.RequestLog(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - outermost so OPTIONS pre-flight requests are handled first
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Last-Event-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
