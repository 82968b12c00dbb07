package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rafiq-ai/rafiq/ent"
	"github.com/rafiq-ai/rafiq/ent/job"
	"github.com/rafiq-ai/rafiq/pkg/ingestion"
)

// IngestExecutor is the JobExecutor backing the three async ingestion job
// kinds (spec.md §4.2). Every Input field travels through the job's
// payload_json column, set by whatever REST handler enqueued the job.
//
// The post_process kind has no work left to do here: post-processing
// (spec.md §4.1) already runs synchronously inline within the chat
// request/response cycle (pkg/orchestrator.postProcess), so a queued
// post_process job is only ever a client-visible audit marker and
// completes immediately without re-running anything.
type IngestExecutor struct {
	pipeline *ingestion.Pipeline
}

// NewIngestExecutor builds an IngestExecutor.
func NewIngestExecutor(pipeline *ingestion.Pipeline) *IngestExecutor {
	return &IngestExecutor{pipeline: pipeline}
}

// Execute dispatches a claimed Job by kind.
func (e *IngestExecutor) Execute(ctx context.Context, j *ent.Job) *ExecutionResult {
	switch j.Kind {
	case job.KindPostProcess:
		return &ExecutionResult{Status: job.StatusCompleted}
	case job.KindIngestText, job.KindIngestFile, job.KindIngestURL:
		return e.runIngest(ctx, j)
	default:
		return &ExecutionResult{Status: job.StatusFailed, Error: fmt.Errorf("unknown job kind %q", j.Kind)}
	}
}

func (e *IngestExecutor) runIngest(ctx context.Context, j *ent.Job) *ExecutionResult {
	var in ingestion.Input
	if err := json.Unmarshal([]byte(j.PayloadJSON), &in); err != nil {
		return &ExecutionResult{Status: job.StatusFailed, Error: fmt.Errorf("decode job payload: %w", err)}
	}

	out, err := e.pipeline.Ingest(ctx, in)
	if err != nil {
		return &ExecutionResult{Status: job.StatusFailed, Error: err}
	}

	slog.Info("ingestion job completed", "job_id", j.ID, "kind", j.Kind, "chunks_stored", out.ChunksStored, "facts_extracted", out.FactsExtracted)
	return &ExecutionResult{Status: job.StatusCompleted}
}
