// Package ingestion implements the Ingestion Pipeline (spec.md §4.2):
// translate, chunk, contextually enrich, embed and fact-extract in
// parallel, then upsert via the Graph Service, including the re-upload
// supersede/cleanup/restore-links flow. Fan-out concurrency is grounded
// on tarsy's pkg/agent/controller/tool_execution.go dispatch idiom,
// generalized from sequential-per-call tool execution to a parallel
// per-chunk embed+extract pipeline.
package ingestion

import (
	"github.com/pkoukk/tiktoken-go"
)

const (
	storageChunkTokens    = 1500
	storageChunkOverlap   = 150
	extractionChunkTokens = 3000
	tokenizerEncoding     = "cl100k_base"
)

// Chunk is one windowed slice of the English storage text, carrying both
// the embedding-sized window and its wider extraction-sized counterpart.
type Chunk struct {
	Index          int
	StorageText    string // ≈1,500 tokens, 150 overlap — what gets embedded
	ExtractionText string // ≈3,000 tokens — what fact extraction reads
}

// Chunker splits text into overlapping token windows using the same
// tokenizer the LLM Gateway's models are trained on.
type Chunker struct {
	enc *tiktoken.Tiktoken
}

// NewChunker builds a Chunker over the cl100k_base encoding. If the
// encoding can't be loaded (offline/no vocab file present) it returns the
// error; there is no fallback tokenizer.
func NewChunker() (*Chunker, error) {
	enc, err := tiktoken.GetEncoding(tokenizerEncoding)
	if err != nil {
		return nil, err
	}
	return &Chunker{enc: enc}, nil
}

// Chunk splits english text into overlapping storage-sized windows, and
// for each, derives an extraction-sized window starting at the same
// offset (spec.md §4.2 step 2: "Extraction uses a larger 3,000-
// token chunk").
func (c *Chunker) Chunk(text string) []Chunk {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []Chunk
	stride := storageChunkTokens - storageChunkOverlap
	if stride <= 0 {
		stride = storageChunkTokens
	}

	for start, idx := 0, 0; start < len(tokens); start, idx = start+stride, idx+1 {
		end := start + storageChunkTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		storageWindow := tokens[start:end]

		extractEnd := start + extractionChunkTokens
		if extractEnd > len(tokens) {
			extractEnd = len(tokens)
		}
		extractionWindow := tokens[start:extractEnd]

		chunks = append(chunks, Chunk{
			Index:          idx,
			StorageText:    c.enc.Decode(storageWindow),
			ExtractionText: c.enc.Decode(extractionWindow),
		})

		if end == len(tokens) {
			break
		}
	}
	return chunks
}
