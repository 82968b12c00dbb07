package ingestion

import (
	"context"
	"fmt"
)

// ReuploadDecision is the outcome of checking a newly uploaded file's hash
// against prior ingestions (spec.md §4.2 "Re-upload semantics").
type ReuploadDecision struct {
	Duplicate bool   // same hash as an existing file — no work to do
	OldHash   string // set when filename matches a prior file under a different hash
}

// ResolveReupload implements the re-upload decision tree: same hash is a
// no-op duplicate; same filename with a different hash triggers the
// supersede flow the caller must run via IngestReplacing.
func (p *Pipeline) ResolveReupload(ctx context.Context, filename, newHash string) (*ReuploadDecision, error) {
	if existing, err := p.graph.FindFileByHash(ctx, newHash); err != nil {
		return nil, fmt.Errorf("ingestion: resolve reupload (hash): %w", err)
	} else if existing != nil {
		return &ReuploadDecision{Duplicate: true}, nil
	}

	prior, err := p.graph.FindFileByFilename(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("ingestion: resolve reupload (filename): %w", err)
	}
	if prior == nil {
		return &ReuploadDecision{}, nil
	}
	return &ReuploadDecision{OldHash: prior.FileHash}, nil
}

// IngestReplacing runs the full re-upload flow of spec.md §4.2 steps
// a-g: snapshot the old file's section map, delete its vector points,
// clean up orphaned entities, ingest the new text, link SUPERSEDES, and
// restore section links against the freshly extracted entities.
func (p *Pipeline) IngestReplacing(ctx context.Context, in Input, oldHash string) (*Output, error) {
	sections, err := p.graph.SupersedeFile(ctx, oldHash, in.FileHash, in.Filename)
	if err != nil {
		return nil, fmt.Errorf("ingestion: supersede file: %w", err)
	}

	if err := p.vec.DeleteByField(ctx, "file_hash", oldHash); err != nil {
		return nil, fmt.Errorf("ingestion: delete old vector points: %w", err)
	}

	if err := p.graph.CleanupFileEntities(ctx, oldHash); err != nil {
		return nil, fmt.Errorf("ingestion: cleanup old entities: %w", err)
	}

	out, err := p.Ingest(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := p.graph.RestoreSectionLinks(ctx, in.FileHash, sections); err != nil {
		return nil, fmt.Errorf("ingestion: restore section links: %w", err)
	}
	return out, nil
}
