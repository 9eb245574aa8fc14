package ingest_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"libscribe/features/ingest"
)

func jobColumns() []string {
	return []string{"id", "repo_url", "owner", "repo", "branch", "namespace",
		"status", "error", "document_count", "chunk_count", "created_at", "updated_at"}
}

func TestPostgresRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ingest_jobs")).
		WithArgs("job-1", "https://github.com/psf/requests", "psf", "requests",
			"main", "github_psf_requests", ingest.StatusQueued).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	job := &ingest.Job{
		ID:        "job-1",
		RepoURL:   "https://github.com/psf/requests",
		Owner:     "psf",
		Repo:      "requests",
		Branch:    "main",
		Namespace: "github_psf_requests",
		Status:    ingest.StatusQueued,
	}
	err = repo.Save(context.Background(), job)
	assert.NoError(t, err)
	assert.Equal(t, now, job.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(jobColumns()).
			AddRow("job-1", "https://github.com/psf/requests", "psf", "requests",
				"main", "github_psf_requests", ingest.StatusCompleted, "", 4, 12, now, now)

		mock.ExpectQuery(regexp.QuoteMeta("FROM ingest_jobs WHERE id = $1")).
			WithArgs("job-1").
			WillReturnRows(rows)

		job, err := repo.Get(context.Background(), "job-1")
		assert.NoError(t, err)
		assert.Equal(t, ingest.StatusCompleted, job.Status)
		assert.Equal(t, 4, job.DocumentCount)
		assert.Equal(t, 12, job.ChunkCount)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM ingest_jobs WHERE id = $1")).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		job, err := repo.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, job)
	})
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows(jobColumns()).
		AddRow("job-2", "https://github.com/a/b", "a", "b", "main", "github_a_b",
			ingest.StatusQueued, "", 0, 0, now, now).
		AddRow("job-1", "https://github.com/c/d", "c", "d", "main", "github_c_d",
			ingest.StatusCompleted, "", 2, 7, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM ingest_jobs ORDER BY created_at DESC")).
		WillReturnRows(rows)

	jobs, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, "job-2", jobs[0].ID)
}

func TestPostgresRepo_MarkCompleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ingest_jobs SET status = $2, document_count = $3, chunk_count = $4")).
		WithArgs("job-1", ingest.StatusCompleted, 3, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkCompleted(context.Background(), "job-1", 3, 9)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ingest_jobs SET status = $2, error = $3")).
		WithArgs("job-1", ingest.StatusFailed, "branch not found").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkFailed(context.Background(), "job-1", "branch not found")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
