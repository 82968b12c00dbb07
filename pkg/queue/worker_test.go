package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rafiq-ai/rafiq/pkg/config"
)

func newTestWorker(cfg *config.QueueConfig) *Worker {
	return NewWorker("w-0", "pod-a", nil, cfg, nil, nil)
}

func TestPollIntervalNoJitterReturnsBase(t *testing.T) {
	w := newTestWorker(&config.QueueConfig{PollInterval: 2 * time.Second})
	assert.Equal(t, 2*time.Second, w.pollInterval())
}

func TestPollIntervalWithJitterStaysInRange(t *testing.T) {
	cfg := &config.QueueConfig{PollInterval: 2 * time.Second, PollIntervalJitter: 500 * time.Millisecond}
	w := newTestWorker(cfg)

	for i := 0; i < 50; i++ {
		got := w.pollInterval()
		assert.GreaterOrEqual(t, got, cfg.PollInterval-cfg.PollIntervalJitter)
		assert.LessOrEqual(t, got, cfg.PollInterval+cfg.PollIntervalJitter)
	}
}

func TestSetStatusUpdatesHealthSnapshot(t *testing.T) {
	w := newTestWorker(&config.QueueConfig{})
	w.setStatus(WorkerStatusWorking, "job-123")

	h := w.Health()
	assert.Equal(t, string(WorkerStatusWorking), h.Status)
	assert.Equal(t, "job-123", h.CurrentJobID)
}
