package llmgateway

import "errors"

// ErrMalformedExtraction indicates the model's reply to a structured
// extraction call (facts, think) did not parse as the expected JSON
// shape, corresponding to the "LLM malformed" taxonomy entry (spec.md §7).
var ErrMalformedExtraction = errors.New("llmgateway: malformed structured reply")
