// Package tts defines the interface boundary toward speech-synthesis
// backends. The segmentation pipeline only ever hands a provider finished,
// normalized sentence chunks; it never retries and never re-sends.
package tts

import (
	"context"
)

// SynthesizeRequest represents a request to synthesize one sentence chunk.
type SynthesizeRequest struct {
	Text     string // Chunk text, already normalized and trimmed
	Voice    string // Voice ID or name
	Language string // Language code (e.g., "en-US", "zh-CN")

	// PreviousText is the trailing window of already-spoken text. Some
	// backends use it for prosody continuity; it must never be synthesized
	// again.
	PreviousText string
}

// SynthesizeResponse represents the synthesized audio for one chunk.
type SynthesizeResponse struct {
	AudioData  []byte
	SampleRate int
	Channels   int
	Encoding   string // e.g., "pcm_s16le"
}

// TTSProvider is implemented by every synthesis backend.
type TTSProvider interface {
	// Name returns the provider name (e.g., "mock", "rime", "cartesia").
	Name() string

	// Synthesize converts one chunk to speech. Called strictly in chunk
	// order, one call at a time.
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)

	// ValidateConfig reports whether credentials and required settings are
	// present.
	ValidateConfig() error
}
