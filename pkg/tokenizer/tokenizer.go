// Package tokenizer provides incremental sentence segmentation for
// LLM-to-TTS pipelines.
//
// Text generated by a language model arrives as a stream of small deltas.
// Sending those deltas to a speech backend one by one produces choppy,
// unnatural audio; waiting for the full response adds seconds of latency.
// This package sits in between: it buffers deltas, detects sentence
// boundaries as soon as they appear, and hands complete, speakable chunks
// downstream.
//
// Two modes share one implementation:
//
//	tok, _ := tokenizer.NewBoundaryTokenizer(tokenizer.DefaultConfig())
//
//	// Batch: segment a complete text.
//	chunks, _ := tok.Tokenize("Hello world. How are you?")
//
//	// Streaming: feed deltas as they arrive.
//	st, _ := tok.Stream()
//	chunks, _ = st.Feed([]byte("Hello wor"))
//	chunks, _ = st.Feed([]byte("ld. How are you?"))
//	final, ok, _ := st.Close()
//
// Tokenize is implemented on top of the stream, so both modes produce
// identical output for identical input and configuration.
package tokenizer

// SentenceTokenizer segments text into speakable sentence chunks.
type SentenceTokenizer interface {
	// Tokenize segments an already-complete text and returns the chunks
	// in order. Equivalent to streaming the text through Feed and Close.
	Tokenize(text string) ([]string, error)

	// Stream creates a new stream for incremental input. Each stream owns
	// its own buffer; streams never share state.
	Stream() (*BufferedSentenceStream, error)
}
