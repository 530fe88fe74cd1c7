package tts

import (
	"context"
	"math"
	"sync"
)

// MockProvider turns any chunk into a short sine-wave beep. It exists so
// pipelines and examples can run end to end without a real backend, and it
// records what it was asked to speak for assertions.
type MockProvider struct {
	mu       sync.Mutex
	requests []SynthesizeRequest
}

var _ TTSProvider = (*MockProvider)(nil)

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string {
	return "mock"
}

// Synthesize generates ~120ms of a 440Hz tone per chunk, 16kHz mono PCM16LE.
func (m *MockProvider) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.requests = append(m.requests, *req)
	m.mu.Unlock()

	const sampleRate = 16000
	const durationSamples = 1920 // 120ms
	const freq = 440.0
	buf := make([]byte, durationSamples*2)
	for i := 0; i < durationSamples; i++ {
		val := int16(3000 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
		buf[2*i] = byte(val)
		buf[2*i+1] = byte(val >> 8)
	}

	return &SynthesizeResponse{
		AudioData:  buf,
		SampleRate: sampleRate,
		Channels:   1,
		Encoding:   "pcm_s16le",
	}, nil
}

func (m *MockProvider) ValidateConfig() error {
	return nil
}

// Requests returns a copy of every request seen so far, in call order.
func (m *MockProvider) Requests() []SynthesizeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SynthesizeRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
