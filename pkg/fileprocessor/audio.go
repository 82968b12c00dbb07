package fileprocessor

import (
	"context"
	"fmt"
	"sync"
)

// asrMu serialises ASR calls process-wide to avoid GPU contention
// (spec.md §4.3: "ASR is serialised (single-flight)"): every call across
// every goroutine waits for the one in flight, regardless of which file
// triggered it, and then transcribes its own audio.
var asrMu sync.Mutex

// TranscribeAudio runs ASR over raw audio bytes, one call at a time.
func (p *Processor) TranscribeAudio(ctx context.Context, audioBytes []byte, filename string) (*Result, error) {
	asrMu.Lock()
	text, err := p.llm.Transcribe(ctx, audioBytes, filename)
	asrMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("fileprocessor: transcribe audio: %w", err)
	}
	return &Result{Class: ClassAudioRecording, Text: text}, nil
}
