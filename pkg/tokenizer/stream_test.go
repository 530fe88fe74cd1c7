package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStream(t *testing.T, config Config) *BufferedSentenceStream {
	t.Helper()
	tok, err := NewBoundaryTokenizer(config)
	require.NoError(t, err)
	stream, err := tok.Stream()
	require.NoError(t, err)
	return stream
}

func feedAll(t *testing.T, stream *BufferedSentenceStream, deltas ...string) []string {
	t.Helper()
	var chunks []string
	for _, d := range deltas {
		out, err := stream.Feed([]byte(d))
		require.NoError(t, err)
		chunks = append(chunks, out...)
	}
	return chunks
}

func TestStream_MergesShortSentences(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 10})

	chunks := feedAll(t, stream, "Hi. Ok.")
	assert.Empty(t, chunks, "below the minimum, nothing should be emitted yet")

	chunks = feedAll(t, stream, " Sure thing. And")
	assert.Equal(t, []string{"Hi. Ok. Sure thing."}, chunks,
		"short sentences merge into one chunk once the minimum is reached")
}

func TestStream_EmitsPerSentenceWithoutMinimum(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 1})

	chunks := feedAll(t, stream, "Hello world. How are you? Good")
	assert.Equal(t, []string{"Hello world.", "How are you?"}, chunks)

	final, ok, err := stream.Close()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Good", final)
}

func TestStream_SplitFragments(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 1})

	chunks := feedAll(t, stream, "Hel", "lo, wor", "ld. Bye.")
	final, ok, err := stream.Close()
	require.NoError(t, err)
	if ok {
		chunks = append(chunks, final)
	}

	tok, err := NewBoundaryTokenizer(Config{Language: "english", MinSentenceLen: 1})
	require.NoError(t, err)
	batch, err := tok.Tokenize("Hello, world. Bye.")
	require.NoError(t, err)

	assert.Equal(t, batch, chunks, "fragmented input must segment like one block")
}

func TestStream_SplitMultiByteCharacter(t *testing.T) {
	stream := newStream(t, Config{Language: "chinese", MinSentenceLen: 1})

	raw := []byte("你好。") // three runes, three bytes each
	chunks, err := stream.Feed(raw[:4])
	require.NoError(t, err)
	assert.Empty(t, chunks, "a split codepoint must wait for its remaining bytes")

	chunks, err = stream.Feed(raw[4:])
	require.NoError(t, err)
	require.Empty(t, chunks)

	chunks, err = stream.Feed([]byte("再见"))
	require.NoError(t, err)
	assert.Equal(t, []string{"你好。"}, chunks)
}

func TestStream_SplitFourByteCharacter(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 1})

	raw := []byte("😀. Ok")
	var chunks []string
	for i := 0; i < len(raw); i++ {
		out, err := stream.Feed(raw[i : i+1])
		require.NoError(t, err)
		chunks = append(chunks, out...)
	}
	assert.Equal(t, []string{"😀."}, chunks)
}

func TestStream_ConsecutivePunctuationAcrossDeltas(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 1})

	chunks := feedAll(t, stream, "What?", "!", " Really? Yes")
	assert.Equal(t, []string{"What?!", "Really?"}, chunks,
		"a boundary run split across deltas stays one chunk")

	final, ok, err := stream.Close()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Yes", final)
}

func TestStream_PunctuationOnlyInput(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 1})

	chunks := feedAll(t, stream, "!", "?")
	assert.Empty(t, chunks, "a run still touching the buffer end may keep growing")

	final, ok, err := stream.Close()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "!?", final)
}

func TestStream_InvalidUTF8(t *testing.T) {
	t.Run("Undecodable byte fails the feed", func(t *testing.T) {
		stream := newStream(t, Config{Language: "english"})

		_, err := stream.Feed([]byte{0xff, 0xfe})
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})

	t.Run("Invalid continuation fails the feed", func(t *testing.T) {
		stream := newStream(t, Config{Language: "english"})

		// 0xe4 starts a three-byte sequence; 'A' can never continue it.
		_, err := stream.Feed([]byte{0xe4, 'A'})
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})

	t.Run("Surrogate lead fails the feed", func(t *testing.T) {
		stream := newStream(t, Config{Language: "english"})

		// 0xed 0xa0 opens a UTF-16 surrogate, which UTF-8 forbids; no
		// continuation bytes can ever complete it.
		_, err := stream.Feed([]byte{0xed, 0xa0})
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})

	t.Run("Overlong prefix fails the feed", func(t *testing.T) {
		stream := newStream(t, Config{Language: "english"})

		// 0xe0 0x80 can only start an overlong encoding.
		_, err := stream.Feed([]byte{0xe0, 0x80})
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})

	t.Run("Incomplete tail at close is an encoding error", func(t *testing.T) {
		stream := newStream(t, Config{Language: "chinese"})

		_, err := stream.Feed([]byte("你")[:2])
		require.NoError(t, err)

		_, _, err = stream.Close()
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})
}

func TestStream_CloseFlushesPendingContent(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 10})

	chunks := feedAll(t, stream, "Hello wor")
	assert.Empty(t, chunks)

	final, ok, err := stream.Close()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hello wor", final, "close flushes even without a boundary mark")
}

func TestStream_CloseFlushesBelowMinimum(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 50})

	chunks := feedAll(t, stream, "Short. Also short.")
	assert.Empty(t, chunks)

	final, ok, err := stream.Close()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Short. Also short.", final)
}

func TestStream_AbortDropsPendingContent(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 10})

	chunks := feedAll(t, stream, "Hello wor")
	assert.Empty(t, chunks)

	require.NoError(t, stream.Abort())
	assert.Empty(t, stream.Pending())
}

func TestStream_TerminationStateErrors(t *testing.T) {
	t.Run("Feed after close", func(t *testing.T) {
		stream := newStream(t, Config{Language: "english"})
		_, _, err := stream.Close()
		require.NoError(t, err)

		_, err = stream.Feed([]byte("more"))
		assert.ErrorIs(t, err, ErrStreamTerminated)
	})

	t.Run("Feed after abort", func(t *testing.T) {
		stream := newStream(t, Config{Language: "english"})
		require.NoError(t, stream.Abort())

		_, err := stream.Feed([]byte("more"))
		assert.ErrorIs(t, err, ErrStreamTerminated)
	})

	t.Run("Second termination", func(t *testing.T) {
		stream := newStream(t, Config{Language: "english"})
		_, _, err := stream.Close()
		require.NoError(t, err)

		assert.ErrorIs(t, stream.Abort(), ErrStreamTerminated)
		_, _, err = stream.Close()
		assert.ErrorIs(t, err, ErrStreamTerminated)
	})
}

func TestStream_MinimumLengthRespected(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 12})

	text := "Hi. Ok. Sure. This one is long enough. No. Yes. Another long sentence here."
	var chunks []string
	for _, r := range text {
		out, err := stream.Feed([]byte(string(r)))
		require.NoError(t, err)
		chunks = append(chunks, out...)
	}

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.GreaterOrEqual(t, len([]rune(c)), 12, "chunk %q under minimum", c)
	}
}

func TestStream_ContextWindow(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 1, ContextLen: 10})

	assert.Empty(t, stream.Context())

	chunks := feedAll(t, stream, "Hello there. General Kenobi. Bye")
	assert.Equal(t, []string{"Hello there.", "General Kenobi."}, chunks)

	// Only the last ten runes of emitted text are retained.
	assert.Equal(t, "al Kenobi.", stream.Context())
}

func TestStream_ContextDisabled(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 1, ContextLen: 0})

	feedAll(t, stream, "Hello there. General Kenobi.")
	assert.Empty(t, stream.Context())
}

func TestStream_NormalizedOutput(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 1})

	chunks := feedAll(t, stream, "It’s a nice day. Indeed. Yes")
	assert.Equal(t, []string{"It's a nice day.", "Indeed."}, chunks)
}

func TestStream_EmptyDelta(t *testing.T) {
	stream := newStream(t, Config{Language: "english", MinSentenceLen: 1})

	chunks, err := stream.Feed(nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = stream.Feed([]byte{})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func BenchmarkStreamFeed(b *testing.B) {
	tok, _ := NewBoundaryTokenizer(DefaultConfig())
	deltas := []string{"Hello", " ", "world", ".", " ", "How", " ", "are", " ", "you", "?"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stream, _ := tok.Stream()
		for _, d := range deltas {
			if _, err := stream.Feed([]byte(d)); err != nil {
				b.Fatal(err)
			}
		}
		if _, _, err := stream.Close(); err != nil {
			b.Fatal(err)
		}
	}
}
