package tokenizer

import "fmt"

// Config controls sentence segmentation. Configuration is fixed for the
// lifetime of a stream; changing thresholds mid-stream is not supported.
type Config struct {
	// Language selects the boundary punctuation set: "english", "chinese",
	// "japanese", "multilingual" (or their short tags). Empty selects
	// "english".
	Language string

	// MinSentenceLen is the minimum trimmed chunk length in runes before a
	// chunk may be emitted standalone. Shorter terminated sentences are
	// merged with their successors: a bare "Ok." sounds abrupt and wastes a
	// synthesis round trip. Zero disables merging. Negative is an error.
	MinSentenceLen int

	// ContextLen is how many trailing runes of emitted text each stream
	// retains as context. The window is never re-emitted. Zero disables it.
	// Negative is an error.
	ContextLen int
}

// DefaultConfig returns the standard configuration: English boundaries with
// the thresholds the voice agents ship with. The minimum length is a tuning
// knob, not a constant; latency-sensitive callers lower it.
func DefaultConfig() Config {
	return Config{
		Language:       "english",
		MinSentenceLen: 10,
		ContextLen:     10,
	}
}

var _ SentenceTokenizer = (*BoundaryTokenizer)(nil)

// BoundaryTokenizer is the punctuation-based SentenceTokenizer. It is
// stateless; all mutable state lives in the streams it creates, so one
// tokenizer can serve any number of concurrent sessions.
type BoundaryTokenizer struct {
	config Config
	set    *BoundarySet
}

// NewBoundaryTokenizer validates the configuration and builds a tokenizer.
// Negative thresholds and unknown language tags fail here, never at feed
// time and never by silent substitution.
func NewBoundaryTokenizer(config Config) (*BoundaryTokenizer, error) {
	if config.MinSentenceLen < 0 {
		return nil, fmt.Errorf("%w: negative MinSentenceLen %d", ErrInvalidConfig, config.MinSentenceLen)
	}
	if config.ContextLen < 0 {
		return nil, fmt.Errorf("%w: negative ContextLen %d", ErrInvalidConfig, config.ContextLen)
	}
	if config.Language == "" {
		config.Language = "english"
	}
	set, err := BoundarySetForLanguage(config.Language)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &BoundaryTokenizer{config: config, set: set}, nil
}

// Config returns a copy of the tokenizer configuration.
func (t *BoundaryTokenizer) Config() Config {
	return t.config
}

// Tokenize segments a complete text. Implemented as one Feed of the whole
// text followed by Close on a fresh stream, which is what guarantees batch
// and streaming mode can never diverge.
func (t *BoundaryTokenizer) Tokenize(text string) ([]string, error) {
	stream, err := t.Stream()
	if err != nil {
		return nil, err
	}
	chunks, err := stream.Feed([]byte(text))
	if err != nil {
		return nil, err
	}
	final, ok, err := stream.Close()
	if err != nil {
		return nil, err
	}
	if ok {
		chunks = append(chunks, final)
	}
	return chunks, nil
}

// Stream creates a live stream with this tokenizer's configuration.
func (t *BoundaryTokenizer) Stream() (*BufferedSentenceStream, error) {
	return newBufferedSentenceStream(t.set, t.config.MinSentenceLen, t.config.ContextLen), nil
}
