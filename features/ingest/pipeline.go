package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"libscribe/internal/document"
	"libscribe/internal/repourl"
)

// Fetcher pulls documents out of a source repository.
type Fetcher interface {
	FetchRepository(ctx context.Context, owner, repo, branch, language string) ([]document.Document, error)
}

// Indexer chunks, embeds, and stores documents under a namespace. It
// returns the number of chunks written.
type Indexer interface {
	Index(ctx context.Context, namespace string, docs []document.Document) (int, error)
}

// Pipeline runs the full ingestion flow for a single task. It is invoked
// from the queue consumer, never from the request path.
type Pipeline struct {
	fetcher Fetcher
	indexer Indexer
	repo    Repository
}

func NewPipeline(fetcher Fetcher, indexer Indexer, repo Repository) *Pipeline {
	return &Pipeline{fetcher: fetcher, indexer: indexer, repo: repo}
}

func (p *Pipeline) Run(ctx context.Context, task TaskPayload) error {
	ref, err := repourl.Parse(task.RepoURL)
	if err != nil {
		p.fail(ctx, task.JobID, err.Error())
		return fmt.Errorf("parsing repo url: %w", err)
	}
	namespace := ref.Namespace()

	if err := p.repo.UpdateStatus(ctx, task.JobID, StatusProcessing); err != nil {
		slog.ErrorContext(ctx, "failed to mark job processing", "job_id", task.JobID, "error", err)
	}

	docs, err := p.fetcher.FetchRepository(ctx, ref.Owner, ref.Repo, task.Branch, task.Language)
	if err != nil {
		p.fail(ctx, task.JobID, err.Error())
		return fmt.Errorf("fetching repository: %w", err)
	}

	if len(docs) == 0 {
		slog.WarnContext(ctx, "no ingestible files found",
			"owner", ref.Owner, "repo", ref.Repo, "branch", task.Branch)
		if err := p.repo.MarkCompleted(ctx, task.JobID, 0, 0); err != nil {
			slog.ErrorContext(ctx, "failed to mark job completed", "job_id", task.JobID, "error", err)
		}
		return nil
	}

	docs = document.Normalize(docs, ref.Owner, ref.Repo, task.Branch, namespace, task.Metadata)

	chunks, err := p.indexer.Index(ctx, namespace, docs)
	if err != nil {
		sErr := &StoreError{Namespace: namespace, Err: err}
		p.fail(ctx, task.JobID, sErr.Error())
		return sErr
	}

	if err := p.repo.MarkCompleted(ctx, task.JobID, len(docs), chunks); err != nil {
		slog.ErrorContext(ctx, "failed to mark job completed", "job_id", task.JobID, "error", err)
	}

	slog.InfoContext(ctx, "repository ingested",
		"namespace", namespace, "documents", len(docs), "chunks", chunks)
	return nil
}

func (p *Pipeline) fail(ctx context.Context, jobID, msg string) {
	if err := p.repo.MarkFailed(ctx, jobID, msg); err != nil {
		slog.ErrorContext(ctx, "failed to mark job failed", "job_id", jobID, "error", err)
	}
}
