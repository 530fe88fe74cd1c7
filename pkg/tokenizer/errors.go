package tokenizer

import "errors"

var (
	// ErrInvalidConfig indicates a configuration with negative length
	// thresholds.
	ErrInvalidConfig = errors.New("invalid tokenizer config")

	// ErrUnknownLanguage indicates a language tag with no boundary set.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrStreamTerminated indicates Feed, Close or Abort on a stream that
	// was already closed or aborted.
	ErrStreamTerminated = errors.New("stream already terminated")

	// ErrInvalidUTF8 indicates buffered bytes that can never decode to
	// valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8 in stream")
)
