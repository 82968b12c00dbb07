package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rafiq-ai/rafiq/pkg/graph"
	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
	"github.com/rafiq-ai/rafiq/pkg/ner"
	"github.com/rafiq-ai/rafiq/pkg/vectorstore"
)

// Input is the ingest_text contract (spec.md §4.2).
type Input struct {
	Text      string
	SourceType string
	Tags      []string
	Topic     string
	SessionID string
	FileHash  string
	Filename  string // required when FileHash is set, for the File stub
}

// Output is ingest_text's result shape.
type Output struct {
	Status         string // "duplicate" short-circuits the rest
	ChunksStored   int
	FactsExtracted int
	Entities       []string
}

// Pipeline is the Ingestion Pipeline service.
type Pipeline struct {
	llm     *llmgateway.Client
	vec     *vectorstore.Store
	graph   *graph.Service
	ner     *ner.Recognizer
	chunker *Chunker
}

// New builds a Pipeline.
func New(llm *llmgateway.Client, vec *vectorstore.Store, graphSvc *graph.Service, nerRecognizer *ner.Recognizer, chunker *Chunker) *Pipeline {
	return &Pipeline{llm: llm, vec: vec, graph: graphSvc, ner: nerRecognizer, chunker: chunker}
}

// HashBytes computes the sha256 hex digest used for file-level
// deduplication and provenance keys.
func HashBytes(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Ingest runs the full pipeline (spec.md §4.2 steps 1-5). Callers
// performing a file upload should resolve re-upload semantics first via
// ResolveReupload and pass its decision into the FileHash/Filename
// fields.
func (p *Pipeline) Ingest(ctx context.Context, in Input) (*Output, error) {
	if in.FileHash != "" {
		if err := p.graph.EnsureFileStub(ctx, in.Filename, in.FileHash); err != nil {
			return nil, fmt.Errorf("ingestion: ensure file stub: %w", err)
		}
	}

	// Step 1: translate Arabic to English storage language, keep the
	// original for NER.
	original := in.Text
	english, err := p.llm.Translate(ctx, in.Text, "ar-en")
	if err != nil {
		return nil, fmt.Errorf("ingestion: translate: %w", err)
	}
	if english == "" {
		english = original
	}

	// Step 2: chunk.
	chunks := p.chunker.Chunk(english)
	if len(chunks) == 0 {
		return &Output{Status: "empty"}, nil
	}

	hints, err := p.ner.Hints(ctx, original)
	if err != nil {
		hints = nil // NER hints are best-effort; extraction still proceeds
	}

	type chunkOutcome struct {
		pointID string
		facts   []llmgateway.ExtractedFact
	}
	outcomes := make([]chunkOutcome, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range chunks {
		i, ch := i, ch
		g.Go(func() error {
			// Step 3: contextual enrichment.
			situating, err := p.llm.Summarise(gctx, llmgateway.SummaryKindChunkContext, ch.StorageText)
			if err != nil {
				return fmt.Errorf("chunk %d enrichment: %w", i, err)
			}
			enriched := situating + "\n\n" + ch.StorageText

			// Step 4a: embed.
			vec, err := p.llm.EmbedOne(gctx, enriched)
			if err != nil {
				return fmt.Errorf("chunk %d embed: %w", i, err)
			}
			payload := map[string]any{
				"source_type": in.SourceType,
				"topic":       in.Topic,
				"tags":        in.Tags,
				"session_id":  in.SessionID,
				"file_hash":   in.FileHash,
				"text":        enriched,
			}
			pointID, err := p.vec.Upsert(gctx, "", vec, payload)
			if err != nil {
				return fmt.Errorf("chunk %d upsert vector: %w", i, err)
			}

			// Step 4b: extract facts from the wider extraction window.
			facts, err := p.llm.ExtractFacts(gctx, ch.ExtractionText, hints)
			if err != nil {
				return fmt.Errorf("chunk %d extract facts: %w", i, err)
			}

			outcomes[i] = chunkOutcome{pointID: pointID, facts: facts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 5: upsert facts via the Graph Service, in stable chunk order
	// (spec.md §5: "stable catalog-order tool-result merging" — applied
	// here to keep entity upsert ordering deterministic across chunks).
	var allEntities []string
	factCount := 0
	for _, o := range outcomes {
		factCount += len(o.facts)
		names, err := p.graph.UpsertFromFacts(ctx, o.facts, in.FileHash)
		if err != nil {
			return nil, fmt.Errorf("ingestion: upsert facts: %w", err)
		}
		allEntities = append(allEntities, names...)
	}

	return &Output{
		ChunksStored:   len(chunks),
		FactsExtracted: factCount,
		Entities:       dedupe(allEntities),
	}, nil
}

// Search embeds query and returns the top-K nearest vector-store points,
// for the REST surface's /search/ "vector" source (spec.md §6).
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]vectorstore.Point, error) {
	vector, err := p.llm.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ingestion: embed search query: %w", err)
	}
	points, err := p.vec.Search(ctx, vector, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("ingestion: search vectors: %w", err)
	}
	return points, nil
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
