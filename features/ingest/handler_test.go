package ingest

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestHandler(repo *MockRepository, pub *MockPublisher) *Handler {
	return NewHandler(NewService(repo, pub))
}

func TestHandler_Ingest_Accepted(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	h := newTestHandler(repo, pub)

	body := bytes.NewBufferString(`{"repo_url": "https://github.com/psf/requests", "branch": "main"}`)
	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Status     string            `json:"status"`
		Message    string            `json:"message"`
		Repository map[string]string `json:"repository"`
		JobID      string            `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, "Repository ingestion started", resp.Message)
	assert.Equal(t, "psf", resp.Repository["owner"])
	assert.Equal(t, "requests", resp.Repository["repo"])
	assert.Equal(t, "main", resp.Repository["branch"])
	assert.NotEmpty(t, resp.JobID)
}

func TestHandler_Ingest_MissingURL(t *testing.T) {
	h := newTestHandler(new(MockRepository), new(MockPublisher))

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_Ingest_InvalidURL(t *testing.T) {
	h := newTestHandler(new(MockRepository), new(MockPublisher))

	body := bytes.NewBufferString(`{"repo_url": "https://gitlab.com/a/b"}`)
	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_Ingest_MalformedBody(t *testing.T) {
	h := newTestHandler(new(MockRepository), new(MockPublisher))

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewBufferString(`{not json`))
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetJob_NotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	h := newTestHandler(repo, new(MockPublisher))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)

	req := httptest.NewRequest(http.MethodGet, "/jobs/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestHandler_GetJob_Found(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, "job-1").Return(&Job{
		ID: "job-1", Owner: "psf", Repo: "requests", Status: StatusCompleted,
	}, nil)

	h := newTestHandler(repo, new(MockPublisher))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)

	req := httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data Job `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusCompleted, resp.Data.Status)
}

func TestHandler_ListJobs_EmptyIsArray(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything).Return([]Job(nil), nil)

	h := newTestHandler(repo, new(MockPublisher))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rec := httptest.NewRecorder()
	h.ListJobs(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}
