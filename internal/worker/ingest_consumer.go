package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"libscribe/features/ingest"
	"libscribe/internal/middleware"
)

// Runner executes one ingestion task end to end.
type Runner interface {
	Run(ctx context.Context, task ingest.TaskPayload) error
}

// IngestConsumer drains the ingest task topic. Pipeline failures are
// recorded on the job row, not retried, so HandleMessage always acks.
type IngestConsumer struct {
	pipeline Runner
	timeout  time.Duration
}

func NewIngestConsumer(pipeline Runner) *IngestConsumer {
	return &IngestConsumer{
		pipeline: pipeline,
		timeout:  30 * time.Minute,
	}
}

func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var task ingest.TaskPayload
	if err := json.Unmarshal(m.Body, &task); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := context.Background()
	if task.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, task.CorrelationID)
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.pipeline.Run(ctx, task); err != nil {
		slog.ErrorContext(ctx, "ingestion task failed",
			"job_id", task.JobID, "repo_url", task.RepoURL, "error", err)
	}
	return nil
}
