package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rafiq-ai/rafiq/ent"
)

// Health is the database portion of the /health endpoint's aggregated
// response, mirroring the teacher's health-check shape.
type Health struct {
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// CheckHealth runs a cheap round-trip query against the bookkeeping store.
func CheckHealth(ctx context.Context, client *ent.Client) Health {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := client.Job.Query().Count(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return Health{Reachable: false, Error: fmt.Sprintf("query failed: %v", err), LatencyMs: latency}
	}
	return Health{Reachable: true, LatencyMs: latency}
}
