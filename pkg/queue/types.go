// Package queue runs the background job worker pool: ingestion jobs
// (spec.md §4.2) and post-processing jobs (spec.md §4.1 step 6 onward)
// claimed from the ent-backed Job table with FOR UPDATE SKIP LOCKED,
// adapted directly from tarsy's AlertSession investigation queue
// (pkg/queue/{worker.go,pool.go,orphan.go}) — same claim/heartbeat
// polling loop and orphan recovery, retargeted from alert-investigation
// sessions to this system's four job kinds.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/rafiq-ai/rafiq/ent"
	"github.com/rafiq-ai/rafiq/ent/job"
)

// Sentinel errors for queue operations.
var (
	ErrNoJobsAvailable = errors.New("no jobs available")
	ErrAtCapacity       = errors.New("at capacity")
)

// JobExecutor runs one claimed job to completion. Implementations own the
// job's entire lifecycle (ingestion vs. post-processing dispatch on
// job.Kind) and must be safe to call concurrently from multiple workers.
type JobExecutor interface {
	Execute(ctx context.Context, j *ent.Job) *ExecutionResult
}

// ExecutionResult is the terminal state a JobExecutor reports back to the
// worker, which only handles claiming, terminal-status update, and retry
// bookkeeping.
type ExecutionResult struct {
	Status job.Status // completed or failed
	Error  error
}

// PoolHealth summarises the worker pool for /health.
type PoolHealth struct {
	IsHealthy        bool           `json:"is_healthy"`
	DBReachable      bool           `json:"db_reachable"`
	DBError          string         `json:"db_error,omitempty"`
	PodID            string         `json:"pod_id"`
	ActiveWorkers    int            `json:"active_workers"`
	TotalWorkers     int            `json:"total_workers"`
	ActiveJobs       int            `json:"active_jobs"`
	MaxConcurrent    int            `json:"max_concurrent"`
	QueueDepth       int            `json:"queue_depth"`
	WorkerStats      []WorkerHealth `json:"worker_stats"`
	LastOrphanScan   time.Time      `json:"last_orphan_scan"`
	OrphansRecovered int            `json:"orphans_recovered"`
}

// WorkerHealth summarises a single worker's current state.
type WorkerHealth struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	CurrentJobID   string    `json:"current_job_id,omitempty"`
	JobsProcessed  int       `json:"jobs_processed"`
	LastActivity   time.Time `json:"last_activity"`
}
