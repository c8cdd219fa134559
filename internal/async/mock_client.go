package async

import (
	"context"

	"github.com/hibiken/asynq"
)

// MockClient implements the Client interface for testing
type MockClient struct {
	CallCount int
	LastTask  *asynq.Task
	Error     error
}

func (m *MockClient) EnqueueTask(
	_ context.Context,
	task *asynq.Task,
	_ ...asynq.Option,
) (*asynq.TaskInfo, error) {
	m.CallCount++
	m.LastTask = task

	if m.Error != nil {
		return nil, m.Error
	}

	return &asynq.TaskInfo{ID: "mock-task-id"}, nil
}
