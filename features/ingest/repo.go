package ingest

import (
	"context"
	"database/sql"
)

type Repository interface {
	Save(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context) ([]Job, error)
	UpdateStatus(ctx context.Context, id, status string) error
	MarkCompleted(ctx context.Context, id string, documents, chunks int) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, job *Job) error {
	query := `INSERT INTO ingest_jobs (id, repo_url, owner, repo, branch, namespace, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		job.ID, job.RepoURL, job.Owner, job.Repo, job.Branch, job.Namespace, job.Status,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Job, error) {
	j := &Job{}
	query := `SELECT id, repo_url, owner, repo, branch, namespace, status, error, document_count, chunk_count, created_at, updated_at
		FROM ingest_jobs WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&j.ID, &j.RepoURL, &j.Owner, &j.Repo, &j.Branch, &j.Namespace,
		&j.Status, &j.Error, &j.DocumentCount, &j.ChunkCount, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Job, error) {
	query := `SELECT id, repo_url, owner, repo, branch, namespace, status, error, document_count, chunk_count, created_at, updated_at
		FROM ingest_jobs ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(
			&j.ID, &j.RepoURL, &j.Owner, &j.Repo, &j.Branch, &j.Namespace,
			&j.Status, &j.Error, &j.DocumentCount, &j.ChunkCount, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE ingest_jobs SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *PostgresRepo) MarkCompleted(ctx context.Context, id string, documents, chunks int) error {
	query := `UPDATE ingest_jobs SET status = $2, document_count = $3, chunk_count = $4, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, StatusCompleted, documents, chunks)
	return err
}

func (r *PostgresRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	query := `UPDATE ingest_jobs SET status = $2, error = $3, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, StatusFailed, errMsg)
	return err
}
