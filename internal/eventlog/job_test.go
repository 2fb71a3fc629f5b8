package eventlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanupJob_Process(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("CleanupOldEvents", context.Background(), 90).Return(int64(12), nil)

	job := NewCleanupJob(NewService(mockRepo), 90)

	err := job.Process(context.Background())
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCleanupJob_Process_Error(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("CleanupOldEvents", context.Background(), 90).Return(int64(0), errors.New("db down"))

	job := NewCleanupJob(NewService(mockRepo), 90)

	err := job.Process(context.Background())
	assert.Error(t, err)
}
