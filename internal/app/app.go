package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"libscribe/features/ingest"
	"libscribe/features/query"
	"libscribe/internal/config"
	"libscribe/internal/index"
	"libscribe/internal/middleware"
	"libscribe/internal/retrieval"
	"libscribe/internal/worker"
)

const serviceVersion = "1.0.0"

// Database is satisfied by *sql.DB. Repositories cast it back, the
// interface keeps the constructor mockable.
type Database interface {
	PingContext(ctx context.Context) error
}

// VectorStore is the full surface the app needs from the vector backend.
type VectorStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []index.Chunk) error
	Search(ctx context.Context, query string, vector []float32, namespace string, alpha float32, limit int) ([]retrieval.SearchResult, error)
}

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type App struct {
	Handler        http.Handler
	IngestConsumer *worker.IngestConsumer
}

func New(
	cfg *config.Config,
	db Database,
	vecStore VectorStore,
	taskPub TaskPublisher,
	embedder Embedder,
	fetcher ingest.Fetcher,
) (*App, error) {
	sqlDB, ok := db.(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("db must be *sql.DB, got %T", db)
	}

	// Feature: Ingest
	ingestRepo := ingest.NewPostgresRepo(sqlDB)
	ingestService := ingest.NewService(ingestRepo, taskPub)
	ingestHandler := ingest.NewHandler(ingestService)

	// Indexing + task pipeline
	indexService := index.NewService(embedder, vecStore, cfg.ChunkMaxTokens, cfg.ChunkOverlap, cfg.VectorDim)
	pipeline := ingest.NewPipeline(fetcher, indexService, ingestRepo)
	ingestConsumer := worker.NewIngestConsumer(pipeline)

	// Feature: Query
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(embedder, vecStore, cfg.SearchAlpha, cfg.SearchTopK, queryLogger)
	queryHandler := query.NewHandler(retrievalService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /ingest", middleware.CorrelationID(enableCORS(ingestHandler.Ingest)))
	mux.Handle("GET /jobs", middleware.CorrelationID(enableCORS(ingestHandler.ListJobs)))
	mux.Handle("GET /jobs/{id}", middleware.CorrelationID(enableCORS(ingestHandler.GetJob)))

	mux.Handle("POST /query", middleware.CorrelationID(enableCORS(queryHandler.Query)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"service":   "libscribe",
			"version":   serviceVersion,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			slog.Error("failed to encode health response", "error", err)
		}
	})

	return &App{
		Handler:        mux,
		IngestConsumer: ingestConsumer,
	}, nil
}

func (a *App) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
