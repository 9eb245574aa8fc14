package retrieval

import (
	"context"
	"time"

	"libscribe/internal/middleware"
)

// SearchResult is one ranked chunk returned to the caller.
type SearchResult struct {
	Content   string  `json:"content"`
	Path      string  `json:"path,omitempty"`
	Owner     string  `json:"owner,omitempty"`
	Repo      string  `json:"repo,omitempty"`
	Branch    string  `json:"branch,omitempty"`
	Namespace string  `json:"namespace,omitempty"`
	Score     float32 `json:"score"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Search(ctx context.Context, query string, vector []float32, namespace string, alpha float32, limit int) ([]SearchResult, error)
}

// Service answers similarity queries: embed the query text, then run a
// hybrid search, optionally scoped to one repository namespace.
type Service struct {
	embedder Embedder
	store    VectorStore
	alpha    float32
	topK     int
	logger   *QueryLogger
}

func NewService(embedder Embedder, store VectorStore, alpha float32, topK int, logger *QueryLogger) *Service {
	return &Service{embedder: embedder, store: store, alpha: alpha, topK: topK, logger: logger}
}

func (s *Service) Search(ctx context.Context, query, namespace string, limit int) ([]SearchResult, error) {
	start := time.Now()

	if limit <= 0 {
		limit = s.topK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.store.Search(ctx, query, vector, namespace, s.alpha, limit)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:         query,
			Namespace:     namespace,
			NumResults:    len(results),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}

	return results, nil
}
