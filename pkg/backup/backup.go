// Package backup implements the Backup Service (spec.md §4.10): exports a
// point-in-time snapshot of the Graph Store, Vector Store, and Memory
// Store to a single JSON file, and restores one back. Export/import shape
// is styled on tarsy's general JSON-serialization conventions in
// pkg/services — no dedicated backup/export library appears anywhere in
// the retrieval pack, so the container format itself is plain
// encoding/json over the already-typed export structs each store exposes.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rafiq-ai/rafiq/pkg/graphstore"
	"github.com/rafiq-ai/rafiq/pkg/memorystore"
	"github.com/rafiq-ai/rafiq/pkg/vectorstore"
)

// Snapshot is the full exported state written to one backup file.
type Snapshot struct {
	CreatedAt    time.Time              `json:"created_at"`
	Nodes        []NodeExport           `json:"nodes"`
	Edges        []EdgeExport           `json:"edges"`
	VectorPoints []vectorstore.Point    `json:"vector_points"`
	Memory       []memorystore.Entry    `json:"memory"`
}

// Service is the Backup Service, wired directly to the three stores it
// snapshots (spec.md §4.10).
type Service struct {
	graph         *graphstore.Store
	vec           *vectorstore.Store
	mem           *memorystore.Store
	dataDir       string
	retentionDays int
}

// New builds a Service. retentionDays configures CleanupOldBackups pruning
// after each Run (0 disables pruning).
func New(graphStore *graphstore.Store, vec *vectorstore.Store, mem *memorystore.Store, dataDir string, retentionDays int) *Service {
	return &Service{graph: graphStore, vec: vec, mem: mem, dataDir: dataDir, retentionDays: retentionDays}
}

// Run exports a full snapshot and writes it to dataDir, returning the
// written file's path. Used by both the manual backup endpoint and the
// Proactive Scheduler's daily backup job (spec.md §4.9).
func (s *Service) Run(ctx context.Context) (string, error) {
	snap := &Snapshot{CreatedAt: time.Now().UTC()}

	nodes, edges, err := s.exportGraph(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: export graph: %w", err)
	}
	snap.Nodes, snap.Edges = nodes, edges

	points, err := s.exportVectors(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: export vectors: %w", err)
	}
	snap.VectorPoints = points

	entries, err := s.mem.ExportAll(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: export memory: %w", err)
	}
	snap.Memory = entries

	path, err := s.writeSnapshot(snap)
	if err != nil {
		return "", err
	}

	if err := CleanupOldBackups(s.dataDir, s.retentionDays); err != nil {
		return path, fmt.Errorf("backup: cleanup old backups: %w", err)
	}
	return path, nil
}

func (s *Service) writeSnapshot(snap *Snapshot) (string, error) {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("backup: ensure data dir: %w", err)
	}

	name := fmt.Sprintf("rafiq-backup-%s.json", snap.CreatedAt.Format("20060102-150405"))
	path := filepath.Join(s.dataDir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backup: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("backup: write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads and decodes a previously written snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("backup: read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("backup: unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Restore re-applies a snapshot's graph, vector, and memory state.
// Graph nodes are recreated first so edge recreation can resolve the
// old-elementId-to-new-node mapping captured during export.
func (s *Service) Restore(ctx context.Context, snap *Snapshot) error {
	if err := s.restoreGraph(ctx, snap.Nodes, snap.Edges); err != nil {
		return fmt.Errorf("backup: restore graph: %w", err)
	}
	if err := s.restoreVectors(ctx, snap.VectorPoints); err != nil {
		return fmt.Errorf("backup: restore vectors: %w", err)
	}
	if err := s.mem.RestoreAll(ctx, snap.Memory); err != nil {
		return fmt.Errorf("backup: restore memory: %w", err)
	}
	return nil
}
