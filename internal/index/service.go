package index

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"libscribe/internal/document"
	"libscribe/internal/text"
)

// Chunk is one embedded piece of a repository file, ready for upsert.
type Chunk struct {
	ID         string
	Content    string
	Vector     []float32
	Path       string
	Owner      string
	Repo       string
	Branch     string
	Namespace  string
	DocID      string
	ChunkIndex int
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	UpsertChunks(ctx context.Context, chunks []Chunk) error
}

// Service chunks normalized documents, embeds each chunk and upserts the
// result under the repository namespace.
type Service struct {
	embedder  Embedder
	store     VectorStore
	maxTokens int
	overlap   int
	dim       int
}

// NewService builds the indexing service. dim is the vector size the store
// is provisioned with; embeddings of any other length are rejected before
// upsert. Zero disables the check.
func NewService(embedder Embedder, store VectorStore, maxTokens, overlap, dim int) *Service {
	return &Service{embedder: embedder, store: store, maxTokens: maxTokens, overlap: overlap, dim: dim}
}

// Index processes the documents into the vector store. Returns the number of
// chunks upserted. Any embedding or upsert failure aborts the run.
func (s *Service) Index(ctx context.Context, namespace string, docs []document.Document) (int, error) {
	var chunks []Chunk

	for _, doc := range docs {
		pieces := text.Chunk(doc.Text, doc.Path, s.maxTokens, s.overlap)
		for i, piece := range pieces {
			vector, err := s.embedder.Embed(ctx, contextualize(doc, piece))
			if err != nil {
				return 0, fmt.Errorf("embed %s chunk %d: %w", doc.Path, i, err)
			}
			if s.dim > 0 && len(vector) != s.dim {
				return 0, fmt.Errorf("embed %s chunk %d: got %d-dim vector, store expects %d", doc.Path, i, len(vector), s.dim)
			}

			chunks = append(chunks, Chunk{
				ID:         ChunkID(namespace, doc.ID, i),
				Content:    piece,
				Vector:     vector,
				Path:       doc.Path,
				Owner:      metaString(doc, "owner"),
				Repo:       metaString(doc, "repo"),
				Branch:     metaString(doc, "branch"),
				Namespace:  namespace,
				DocID:      doc.ID,
				ChunkIndex: i,
			})
		}
	}

	if len(chunks) == 0 {
		slog.WarnContext(ctx, "no chunks produced from documents", "namespace", namespace, "documents", len(docs))
		return 0, nil
	}

	if err := s.store.UpsertChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("upsert %d chunks into %s: %w", len(chunks), namespace, err)
	}

	slog.InfoContext(ctx, "chunks upserted", "namespace", namespace, "documents", len(docs), "chunks", len(chunks))
	return len(chunks), nil
}

// ChunkID derives a stable object id from (namespace, document id, chunk
// index) so re-ingesting the same content overwrites rather than duplicates.
func ChunkID(namespace, docID string, index int) string {
	key := namespace + "/" + docID + "#" + strconv.Itoa(index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// contextualize prefixes the chunk with its provenance so the embedding
// carries where the text came from, not just what it says.
func contextualize(doc document.Document, piece string) string {
	return fmt.Sprintf("Path: %s\nRepository: %s/%s\n---\n%s",
		doc.Path, metaString(doc, "owner"), metaString(doc, "repo"), piece)
}

func metaString(doc document.Document, key string) string {
	if v, ok := doc.Metadata[key].(string); ok {
		return v
	}
	return ""
}
