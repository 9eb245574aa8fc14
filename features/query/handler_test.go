package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libscribe/internal/retrieval"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query, namespace string, limit int) ([]retrieval.SearchResult, error) {
	args := m.Called(ctx, query, namespace, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]retrieval.SearchResult), args.Error(1)
}

func TestHandler_Query_Success(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "http retries", "github_psf_requests", 5).
		Return([]retrieval.SearchResult{
			{Content: "retry with backoff", Path: "docs/retries.md", Namespace: "github_psf_requests", Score: 0.91},
		}, nil)

	h := NewHandler(searcher)

	body := bytes.NewBufferString(`{"query": "http retries", "namespace": "github_psf_requests", "limit": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/query", body)
	rec := httptest.NewRecorder()

	h.Query(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status  string                   `json:"status"`
		Results []retrieval.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "docs/retries.md", resp.Results[0].Path)

	searcher.AssertExpectations(t)
}

func TestHandler_Query_MissingQuery(t *testing.T) {
	h := NewHandler(new(MockSearcher))

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{"namespace": "github_a_b"}`))
	rec := httptest.NewRecorder()

	h.Query(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_Query_SearchFailure(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "anything", "", 0).
		Return(nil, errors.New("weaviate down"))

	h := NewHandler(searcher)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{"query": "anything"}`))
	rec := httptest.NewRecorder()

	h.Query(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
}

func TestHandler_Query_EmptyResultsIsArray(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "nothing matches", "", 0).
		Return([]retrieval.SearchResult(nil), nil)

	h := NewHandler(searcher)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{"query": "nothing matches"}`))
	rec := httptest.NewRecorder()

	h.Query(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
}
