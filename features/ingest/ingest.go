package ingest

import (
	"fmt"
	"time"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is the status record for one ingestion run. The triggering request
// only ever sees "accepted"; everything that happens afterwards lands here.
type Job struct {
	ID            string    `json:"id"`
	RepoURL       string    `json:"repo_url"`
	Owner         string    `json:"owner"`
	Repo          string    `json:"repo"`
	Branch        string    `json:"branch"`
	Namespace     string    `json:"namespace"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	DocumentCount int       `json:"document_count"`
	ChunkCount    int       `json:"chunk_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TaskPayload is the message published to the ingest queue.
type TaskPayload struct {
	JobID         string         `json:"job_id"`
	RepoURL       string         `json:"repo_url"`
	Branch        string         `json:"branch"`
	Language      string         `json:"language,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CorrelationID string         `json:"correlation_id"`
}

// StoreError reports an embedding or upsert failure during ingestion.
type StoreError struct {
	Namespace string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store documents in %s: %v", e.Namespace, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type EventPublisher interface {
	Publish(topic string, body []byte) error
}
