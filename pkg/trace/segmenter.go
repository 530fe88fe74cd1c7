package trace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys used throughout the application
const (
	AttrSessionID = "session.id"

	// Segmentation attributes
	AttrSegmenterLanguage = "segmenter.language"
	AttrDeltaSize         = "segmenter.delta_size"
	AttrChunkCount        = "segmenter.chunk_count"
	AttrChunkSeq          = "segmenter.chunk_seq"
	AttrChunkLen          = "segmenter.chunk_len"
)

// SessionAttrs creates attributes for session information
func SessionAttrs(sessionID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSessionID, sessionID),
	}
}

// InstrumentFeed creates a span for one delta fed into a session's stream.
func InstrumentFeed(ctx context.Context, sessionID string, deltaSize int) (context.Context, trace.Span) {
	return StartSpan(ctx, "segmenter.feed",
		trace.WithAttributes(
			attribute.String(AttrSessionID, sessionID),
			attribute.Int(AttrDeltaSize, deltaSize),
		),
	)
}

// InstrumentFlush creates a span for closing and flushing a session.
func InstrumentFlush(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return StartSpan(ctx, "segmenter.flush",
		trace.WithAttributes(
			attribute.String(AttrSessionID, sessionID),
		),
	)
}

// InstrumentAbort creates a span for aborting a session.
func InstrumentAbort(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return StartSpan(ctx, "segmenter.abort",
		trace.WithAttributes(
			attribute.String(AttrSessionID, sessionID),
		),
	)
}

// ChunkAttrs creates attributes for one emitted chunk.
func ChunkAttrs(seq, chunkLen int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrChunkSeq, seq),
		attribute.Int(AttrChunkLen, chunkLen),
	}
}
