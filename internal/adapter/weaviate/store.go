package weaviate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"libscribe/internal/index"
	"libscribe/internal/retrieval"
	"libscribe/internal/vector"
)

// Store adapts the Weaviate client to the upsert/search contracts of the
// ingestion and retrieval services. Safe for concurrent use.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// EnsureSchema provisions the backing class if absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

// UpsertChunks writes chunks in one batch. Object ids are deterministic per
// (namespace, document, chunk index), so batch writes behave as upserts:
// last write wins per id.
func (s *Store) UpsertChunks(ctx context.Context, chunks []index.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(chunks))
	for _, chunk := range chunks {
		objects = append(objects, &models.Object{
			Class: vector.ClassName,
			ID:    strfmt.UUID(chunk.ID),
			Properties: map[string]interface{}{
				"content":    chunk.Content,
				"path":       chunk.Path,
				"owner":      chunk.Owner,
				"repo":       chunk.Repo,
				"branch":     chunk.Branch,
				"namespace":  chunk.Namespace,
				"docId":      chunk.DocID,
				"chunkIndex": chunk.ChunkIndex,
			},
			Vector: models.C11yVector(chunk.Vector),
		})
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}

	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch upsert error on %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// Search runs a hybrid (BM25 + vector) query, optionally filtered to one
// repository namespace.
func (s *Store) Search(ctx context.Context, query string, vec []float32, namespace string, alpha float32, limit int) ([]retrieval.SearchResult, error) {
	hybrid := s.client.GraphQL().HybridArgumentBuilder().
		WithQuery(query).
		WithVector(vec).
		WithAlpha(alpha)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "path"},
		{Name: "owner"},
		{Name: "repo"},
		{Name: "branch"},
		{Name: "namespace"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "score"}}},
	}

	builder := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithHybrid(hybrid).
		WithLimit(limit).
		WithFields(fields...)

	if namespace != "" {
		builder = builder.WithWhere(filters.Where().
			WithPath([]string{"namespace"}).
			WithOperator(filters.Equal).
			WithValueString(namespace))
	}

	res, err := builder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []retrieval.SearchResult
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	rows, ok := data[vector.ClassName].([]interface{})
	if !ok {
		return results, nil
	}

	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}

		result := retrieval.SearchResult{}
		if content, ok := props["content"].(string); ok {
			result.Content = content
		}
		if path, ok := props["path"].(string); ok {
			result.Path = path
		}
		if owner, ok := props["owner"].(string); ok {
			result.Owner = owner
		}
		if repo, ok := props["repo"].(string); ok {
			result.Repo = repo
		}
		if branch, ok := props["branch"].(string); ok {
			result.Branch = branch
		}
		if ns, ok := props["namespace"].(string); ok {
			result.Namespace = ns
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			// Weaviate returns the hybrid score as a string.
			if score, ok := additional["score"].(string); ok {
				if fScore, err := strconv.ParseFloat(score, 32); err == nil {
					result.Score = float32(fScore)
				}
			} else if score, ok := additional["score"].(float64); ok {
				result.Score = float32(score)
			}
		}

		results = append(results, result)
	}

	return results, nil
}
