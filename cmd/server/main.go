package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"notefeed/internal/db"
	mcpserver "notefeed/internal/mcp"
	"notefeed/internal/middleware"
	"notefeed/internal/notes"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	// Config
	mongoURI := getEnv("MONGODB_URI", "mongodb://localhost:27017")
	dbName := getEnv("MONGODB_DB", "notefeed")
	port := getEnv("PORT", "8000")
	rateMax := getEnvInt("RATE_LIMIT_MAX", 100)
	rateWindow := getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute)

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	logger.Info("connecting to MongoDB", "uri", mongoURI)
	database, err := db.Connect(ctx, mongoURI, dbName)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB")

	// Wire dependencies
	noteRepo := notes.NewRepo(database)
	if err := noteRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure indexes", "error", err)
	}
	noteSvc := notes.NewService(noteRepo)
	noteHandler := notes.NewHandler(noteSvc, logger)

	// Rate limiter, constructed once and injected
	limiter := middleware.NewRateLimiter(rateMax, rateWindow)

	// Create MCP server
	mcpSrv := mcpserver.NewServer(noteSvc)

	// REST API endpoints. top-liked is registered as a literal segment so
	// it is never parsed as a note id.
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/notes", noteHandler.CreateNote)
	apiMux.HandleFunc("GET /api/notes", noteHandler.ListNotes)
	apiMux.HandleFunc("GET /api/notes/top-liked", noteHandler.TopLikedNotes)
	apiMux.HandleFunc("GET /api/notes/{id}", noteHandler.GetNote)
	apiMux.HandleFunc("PATCH /api/notes/{id}/like", noteHandler.LikeNote)
	apiMux.HandleFunc("PATCH /api/notes/{id}/unlike", noteHandler.UnlikeNote)
	apiMux.HandleFunc("DELETE /api/notes/{id}", noteHandler.DeleteNote)

	mux := http.NewServeMux()
	mux.Handle("/api/", limiter.Middleware(apiMux))

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Notefeed API is running!"})
	})

	handler := middleware.Chain(mux,
		middleware.RequestLogger(logger),
		middleware.CORS(),
	)

	// Start server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", port)
	logger.Info("endpoints available",
		"api", "http://localhost:"+port+"/api/notes",
		"mcp", "http://localhost:"+port+"/mcp",
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if v, err := time.ParseDuration(val); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
