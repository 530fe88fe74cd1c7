package tokenizer

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// BufferedSentenceStream accumulates arbitrarily fragmented text deltas and
// emits sentence chunks once they satisfy the minimum-length policy.
//
// The stream is synchronous and never blocks internally; any backpressure or
// asynchronous handoff belongs to the caller. Each stream owns its buffer
// exclusively and is meant for a single producer, though a mutex guards the
// state so accidental misuse does not corrupt it.
//
// A stream that never sees boundary punctuation buffers until Close or
// Abort; callers are responsible for eventually terminating the stream.
type BufferedSentenceStream struct {
	mu sync.Mutex

	set    *BoundarySet
	minLen int
	ctxLen int

	carry   []byte // raw bytes of a split multi-byte character, awaiting the rest
	buf     string // normalized, unconsumed text
	context string // trailing runes of emitted text, never re-emitted

	terminated bool
}

func newBufferedSentenceStream(set *BoundarySet, minLen, ctxLen int) *BufferedSentenceStream {
	return &BufferedSentenceStream{set: set, minLen: minLen, ctxLen: ctxLen}
}

// Feed appends one delta to the stream and returns any chunks that became
// complete, in input order. Deltas may split sentences, words or even
// multi-byte characters at any byte position.
//
// Every returned chunk has trimmed length >= the configured minimum; shorter
// terminated sentences are merged with their successors before emission.
// Trailing text without a boundary mark stays buffered for the next call, as
// does a sentence whose closing punctuation sits at the very end of the
// buffer, so that "What?" followed by a delta starting with "!" still comes
// out as one "What?!" chunk.
func (s *BufferedSentenceStream) Feed(delta []byte) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return nil, fmt.Errorf("feed: %w", ErrStreamTerminated)
	}
	text, err := s.decode(delta)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	s.buf += NormalizeQuotes(text)
	return s.drain(), nil
}

// Close terminates the stream and flushes whatever is still buffered,
// terminated or not, as one final chunk. This is the single exception to the
// minimum-length policy; without it, trailing text that never received a
// boundary mark would be lost. The second return value reports whether a
// chunk was produced.
func (s *BufferedSentenceStream) Close() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return "", false, fmt.Errorf("close: %w", ErrStreamTerminated)
	}
	s.terminated = true

	if len(s.carry) > 0 {
		s.carry = nil
		s.buf = ""
		return "", false, fmt.Errorf("close: %w", ErrInvalidUTF8)
	}
	chunk := strings.TrimSpace(s.buf)
	s.buf = ""
	if chunk == "" {
		return "", false, nil
	}
	s.pushContext(chunk)
	return chunk, true, nil
}

// Abort terminates the stream and discards all buffered, unemitted content.
// Used when the producer or consumer is cancelled mid-utterance: a partial,
// unterminated fragment would sound broken if synthesized.
func (s *BufferedSentenceStream) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return fmt.Errorf("abort: %w", ErrStreamTerminated)
	}
	s.terminated = true
	s.carry = nil
	s.buf = ""
	return nil
}

// Context returns the trailing window of already-emitted text. Some synthesis
// backends produce better prosody when shown a little preceding text; the
// window is bookkeeping only and is never emitted twice.
func (s *BufferedSentenceStream) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context
}

// Pending returns the current unconsumed buffer. Debugging aid.
func (s *BufferedSentenceStream) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// decode appends delta to the raw carry buffer and returns the longest
// decodable prefix. An incomplete multi-byte sequence at the tail stays in
// the carry until its remaining bytes arrive; bytes that can never form
// valid UTF-8 are an error, not silently dropped.
func (s *BufferedSentenceStream) decode(delta []byte) (string, error) {
	s.carry = append(s.carry, delta...)

	valid := 0
	for valid < len(s.carry) {
		r, size := utf8.DecodeRune(s.carry[valid:])
		if r == utf8.RuneError && size <= 1 {
			if incompleteRunePrefix(s.carry[valid:]) {
				break
			}
			return "", ErrInvalidUTF8
		}
		valid += size
	}

	text := string(s.carry[:valid])
	s.carry = s.carry[valid:]
	return text, nil
}

// incompleteRunePrefix reports whether b is a proper prefix of a single
// valid multi-byte UTF-8 sequence. The second-byte ranges follow the UTF-8
// accept table, so sequences that can never complete, like a surrogate lead
// (0xed 0xa0) or an overlong form (0xe0 0x80), are rejected here instead of
// sitting in the carry until Close.
func incompleteRunePrefix(b []byte) bool {
	if len(b) == 0 || len(b) >= utf8.UTFMax {
		return false
	}
	first := b[0]
	want := 0
	lo, hi := byte(0x80), byte(0xbf)
	switch {
	case first >= 0xc2 && first <= 0xdf:
		want = 2
	case first == 0xe0:
		want, lo = 3, 0xa0
	case first == 0xed:
		want, hi = 3, 0x9f
	case first >= 0xe1 && first <= 0xef:
		want = 3
	case first == 0xf0:
		want, lo = 4, 0x90
	case first == 0xf4:
		want, hi = 4, 0x8f
	case first >= 0xf1 && first <= 0xf3:
		want = 4
	default:
		return false
	}
	if len(b) >= want {
		return false
	}
	if len(b) >= 2 && (b[1] < lo || b[1] > hi) {
		return false
	}
	for _, c := range b[2:] {
		if c < 0x80 || c > 0xbf {
			return false
		}
	}
	return true
}

// drain repeatedly scans the unconsumed buffer and emits merged terminated
// spans whose trimmed length reaches the minimum. The trailing unterminated
// span, if any, is never consumed, and neither is a terminated span whose
// boundary run touches the end of the buffer: the next delta may open with
// more punctuation, and emitting early would split a run like "?!" into two
// chunks. Held spans are released once non-boundary text follows, or by
// Close.
func (s *BufferedSentenceStream) drain() []string {
	var out []string
	for {
		spans := s.set.Scan(s.buf)

		emitted := false
		accStart := -1
		for _, sp := range spans {
			if !sp.Terminated {
				break
			}
			if sp.End == len(s.buf) {
				break
			}
			if accStart < 0 {
				accStart = sp.Start
			}
			chunk := strings.TrimSpace(s.buf[accStart:sp.End])
			if utf8.RuneCountInString(chunk) < s.minLen {
				continue
			}
			out = append(out, chunk)
			s.buf = s.buf[sp.End:]
			s.pushContext(chunk)
			emitted = true
			break
		}
		if !emitted {
			return out
		}
	}
}

// pushContext folds an emitted chunk into the trailing context window,
// keeping only the last ctxLen runes.
func (s *BufferedSentenceStream) pushContext(chunk string) {
	if s.ctxLen == 0 {
		return
	}
	joined := s.context
	if joined != "" {
		joined += " "
	}
	joined += chunk
	if runes := []rune(joined); len(runes) > s.ctxLen {
		joined = string(runes[len(runes)-s.ctxLen:])
	}
	s.context = joined
}
