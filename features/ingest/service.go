package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"libscribe/internal/config"
	"libscribe/internal/middleware"
	"libscribe/internal/repourl"
)

// Request is the body accepted by the ingestion endpoint.
type Request struct {
	RepoURL  string         `json:"repo_url"`
	Branch   string         `json:"branch,omitempty"`
	Language string         `json:"language,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Service struct {
	repo Repository
	pub  EventPublisher
}

func NewService(repo Repository, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub}
}

// Enqueue validates the request, records a queued job, and publishes the
// ingestion task. The actual fetch and index work happens in the consumer.
func (s *Service) Enqueue(ctx context.Context, req Request) (*Job, error) {
	ref, err := repourl.Parse(req.RepoURL)
	if err != nil {
		return nil, err
	}

	branch := req.Branch
	if branch == "" {
		branch = "main"
	}

	job := &Job{
		ID:        uuid.NewString(),
		RepoURL:   req.RepoURL,
		Owner:     ref.Owner,
		Repo:      ref.Repo,
		Branch:    branch,
		Namespace: ref.Namespace(),
		Status:    StatusQueued,
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("saving job: %w", err)
	}

	payload := TaskPayload{
		JobID:         job.ID,
		RepoURL:       req.RepoURL,
		Branch:        branch,
		Language:      req.Language,
		Metadata:      req.Metadata,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling task payload: %w", err)
	}

	if err := s.pub.Publish(config.TopicIngestTask, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish ingest task", "job_id", job.ID, "error", err)
		if mErr := s.repo.MarkFailed(ctx, job.ID, "failed to queue ingestion task"); mErr != nil {
			slog.ErrorContext(ctx, "failed to mark job failed", "job_id", job.ID, "error", mErr)
		}
		return nil, fmt.Errorf("publishing ingest task: %w", err)
	}

	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListJobs(ctx context.Context) ([]Job, error) {
	return s.repo.List(ctx)
}
