// Package graph is the Graph Service (spec.md §4.4): the single source of
// truth for structured personal data, built over the low-level Cypher
// transport in pkg/graphstore and the Qdrant-backed entity-resolution
// namespace in pkg/vectorstore. It owns every typed upsert, read,
// lifecycle, and provenance operation named in spec.md §4.4, plus entity
// resolution (§4.5) and multi-hop retrieval (§4.7). Structurally grounded
// on tarsy pkg/services' service-wraps-client layering and sentinel error
// handling, generalized from alert-investigation reads/writes to this
// system's typed entity upserts.
package graph

import (
	"sync"
	"time"

	"github.com/rafiq-ai/rafiq/pkg/graphstore"
	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
	"github.com/rafiq-ai/rafiq/pkg/vectorstore"
)

// internalProps are stripped from any LLM-facing context formatter
// (spec.md §4.4 "Property hiding").
var internalProps = map[string]bool{
	"name_aliases": true,
	"created_at":   true,
	"updated_at":   true,
	"file_hash":    true,
	"source":       true,
}

// Service is the Graph Service: a typed facade over the graph store, the
// vector store's entity-resolution namespace, and the LLM gateway (used
// only for embedding calls: entity resolution, tag dedup, and item-name
// similarity).
type Service struct {
	store      *graphstore.Store
	vec        *vectorstore.Store
	llm        *llmgateway.Client
	thresholds Thresholds

	// nameLocks serialises resolve-then-write of the same normalised name
	// across concurrent callers (spec.md §5), mirroring the
	// per-normalised-name lock idiom used by pkg/memorystore.
	nameLocks sync.Map // string -> *sync.Mutex
}

// Thresholds configures entity resolution and dedup similarity cutoffs
// (spec.md §4.5, §4.6), sourced from config.ThresholdsConfig.
type Thresholds struct {
	PersonResolution  float64
	DefaultResolution float64
	TagDedup          float64
	InventorySimilar  float64
	MaxHops           int
}

// New builds a Graph Service over its three dependencies.
func New(store *graphstore.Store, vec *vectorstore.Store, llm *llmgateway.Client, thresholds Thresholds) *Service {
	return &Service{store: store, vec: vec, llm: llm, thresholds: thresholds}
}

// now is the single clock read point for the package so every writer
// stamps created_at/updated_at consistently.
func now() time.Time { return time.Now().UTC() }

// stripInternal removes _INTERNAL_PROPS (spec.md §4.4) from a property map
// before it is handed to the LLM as retrieval context.
func stripInternal(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if internalProps[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// lockName acquires the per-normalised-name mutex guarding entity
// resolution of the same name (spec.md §5).
func (s *Service) lockName(norm string) func() {
	muI, _ := s.nameLocks.LoadOrStore(norm, &sync.Mutex{})
	mu := muI.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// DisplayName renders "<name_ar> (<name>)" when nameAr is present, else
// name, per spec.md §4.5 "Display".
func DisplayName(name, nameAr string) string {
	if nameAr != "" {
		return nameAr + " (" + name + ")"
	}
	return name
}
