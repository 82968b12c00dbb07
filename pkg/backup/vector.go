package backup

import (
	"context"
	"fmt"

	"github.com/rafiq-ai/rafiq/pkg/vectorstore"
)

const scrollBatchSize = 100

// exportVectors walks the entire vector collection in batches of 100, per
// spec.md §4.10.
func (s *Service) exportVectors(ctx context.Context) ([]vectorstore.Point, error) {
	var out []vectorstore.Point
	err := s.vec.ScrollAll(ctx, scrollBatchSize, func(batch []vectorstore.Point) error {
		out = append(out, batch...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export vectors: %w", err)
	}
	return out, nil
}

func (s *Service) restoreVectors(ctx context.Context, points []vectorstore.Point) error {
	for _, p := range points {
		if _, err := s.vec.Upsert(ctx, p.ID, p.Vector, p.Payload); err != nil {
			return fmt.Errorf("restore vector point %s: %w", p.ID, err)
		}
	}
	return nil
}
