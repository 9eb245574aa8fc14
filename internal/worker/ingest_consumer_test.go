package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"libscribe/features/ingest"
	"libscribe/internal/middleware"
	"libscribe/internal/worker"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, task ingest.TaskPayload) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func TestIngestConsumer_HandleMessage(t *testing.T) {
	runner := new(MockRunner)
	consumer := worker.NewIngestConsumer(runner)

	task := ingest.TaskPayload{
		JobID:         "job-1",
		RepoURL:       "https://github.com/psf/requests",
		Branch:        "main",
		CorrelationID: "corr-1",
	}
	body, _ := json.Marshal(task)
	msg := &nsq.Message{Body: body}

	runner.On("Run", mock.MatchedBy(func(ctx context.Context) bool {
		return middleware.GetCorrelationID(ctx) == "corr-1"
	}), mock.MatchedBy(func(got ingest.TaskPayload) bool {
		return got.JobID == "job-1" && got.Branch == "main"
	})).Return(nil)

	err := consumer.HandleMessage(msg)
	assert.NoError(t, err)
	runner.AssertExpectations(t)
}

func TestIngestConsumer_PoisonPill(t *testing.T) {
	runner := new(MockRunner)
	consumer := worker.NewIngestConsumer(runner)

	msg := &nsq.Message{Body: []byte("invalid json")}

	err := consumer.HandleMessage(msg)
	assert.NoError(t, err) // Should return nil (ack)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestIngestConsumer_EmptyBody(t *testing.T) {
	runner := new(MockRunner)
	consumer := worker.NewIngestConsumer(runner)

	err := consumer.HandleMessage(&nsq.Message{Body: nil})
	assert.NoError(t, err)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestIngestConsumer_PipelineFailureStillAcks(t *testing.T) {
	runner := new(MockRunner)
	consumer := worker.NewIngestConsumer(runner)

	task := ingest.TaskPayload{JobID: "job-1", RepoURL: "https://github.com/a/b"}
	body, _ := json.Marshal(task)

	runner.On("Run", mock.Anything, mock.Anything).Return(errors.New("fetch failed"))

	err := consumer.HandleMessage(&nsq.Message{Body: body})
	assert.NoError(t, err)
}
