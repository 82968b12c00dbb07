package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rafiq-ai/rafiq/ent"
	"github.com/rafiq-ai/rafiq/ent/job"
)

// orphanState tracks orphan detection metrics (thread-safe).
type orphanState struct {
	mu               sync.Mutex
	lastOrphanScan   time.Time
	orphansRecovered int
}

// runOrphanDetection periodically scans for orphaned jobs. All pods run
// this independently — operations are idempotent.
func (p *WorkerPool) runOrphanDetection(ctx context.Context) {
	ticker := time.NewTicker(p.config.OrphanDetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.detectAndRecoverOrphans(ctx); err != nil {
				slog.Error("orphan detection failed", "error", err)
			}
		}
	}
}

// detectAndRecoverOrphans finds in_progress jobs with stale heartbeats and
// marks them as failed (terminal state; ingestion/post-process jobs are not
// automatically retried — a caller can resubmit).
func (p *WorkerPool) detectAndRecoverOrphans(ctx context.Context) error {
	threshold := time.Now().Add(-p.config.OrphanThreshold)

	orphans, err := p.client.Job.Query().
		Where(
			job.StatusEQ(job.StatusInProgress),
			job.LastHeartbeatAtNotNil(),
			job.LastHeartbeatAtLT(threshold),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("failed to query orphaned jobs: %w", err)
	}

	if len(orphans) == 0 {
		p.orphans.mu.Lock()
		p.orphans.lastOrphanScan = time.Now()
		p.orphans.mu.Unlock()
		return nil
	}

	slog.Warn("detected orphaned jobs", "count", len(orphans))

	recovered := 0
	failed := 0
	for _, j := range orphans {
		if err := p.recoverOrphanedJob(ctx, j); err != nil {
			slog.Error("failed to recover orphaned job", "job_id", j.ID, "error", err)
			failed++
			continue
		}
		recovered++
	}

	p.orphans.mu.Lock()
	p.orphans.lastOrphanScan = time.Now()
	p.orphans.orphansRecovered += recovered
	p.orphans.mu.Unlock()

	if failed > 0 {
		slog.Warn("orphan recovery completed with failures", "total_orphans", len(orphans), "recovered", recovered, "failed", failed)
	}

	return nil
}

// recoverOrphanedJob marks a single orphaned job as failed.
func (p *WorkerPool) recoverOrphanedJob(ctx context.Context, j *ent.Job) error {
	log := slog.With("job_id", j.ID, "old_pod_id", j.PodID)

	lastHeartbeat := "unknown"
	if j.LastHeartbeatAt != nil {
		lastHeartbeat = j.LastHeartbeatAt.Format(time.RFC3339)
	}

	podID := "unknown"
	if j.PodID != "" {
		podID = j.PodID
	}

	errorMsg := fmt.Sprintf("orphaned: no heartbeat from pod %s since %s", podID, lastHeartbeat)
	if err := markJobFailed(ctx, p.client, j.ID, errorMsg); err != nil {
		return err
	}

	log.Warn("orphaned job marked as failed", "last_heartbeat", lastHeartbeat)
	return nil
}

// CleanupStartupOrphans performs a one-time cleanup of jobs owned by this pod
// that were in-progress when the pod previously crashed. Called once during
// startup, before the worker pool begins processing.
func CleanupStartupOrphans(ctx context.Context, client *ent.Client, podID string) error {
	orphans, err := client.Job.Query().
		Where(job.StatusEQ(job.StatusInProgress), job.PodIDEQ(podID)).
		All(ctx)
	if err != nil {
		return fmt.Errorf("failed to query startup orphans: %w", err)
	}

	if len(orphans) == 0 {
		return nil
	}

	slog.Warn("found startup orphans from previous run", "pod_id", podID, "count", len(orphans))

	for _, j := range orphans {
		errorMsg := fmt.Sprintf("orphaned: pod %s restarted while job was in progress", podID)
		if err := markJobFailed(ctx, client, j.ID, errorMsg); err != nil {
			slog.Error("failed to mark startup orphan", "job_id", j.ID, "error", err)
			continue
		}
		slog.Info("startup orphan recovered", "job_id", j.ID)
	}

	return nil
}

// markJobFailed marks a job as failed with the given error message.
func markJobFailed(ctx context.Context, client *ent.Client, jobID, errorMsg string) error {
	return client.Job.UpdateOneID(jobID).
		SetStatus(job.StatusFailed).
		SetCompletedAt(time.Now()).
		SetError(errorMsg).
		Exec(ctx)
}
