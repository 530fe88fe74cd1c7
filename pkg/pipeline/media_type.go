package pipeline

// TextMediaType represents the media type for text payloads.
type TextMediaType string

const (
	// Incremental generation delta, arbitrary fragmentation
	TextMediaTypeDelta TextMediaType = "text/x-delta"
	// Complete, speakable sentence chunk
	TextMediaTypeChunk TextMediaType = "text/x-chunk"
)

// String returns the string representation of TextMediaType.
func (tmt TextMediaType) String() string {
	return string(tmt)
}

// AudioMediaType represents the media type for audio data.
type AudioMediaType string

const (
	// Raw PCM audio (default)
	AudioMediaTypeRaw AudioMediaType = "audio/x-raw"
	// PCM audio format
	AudioMediaTypePCM AudioMediaType = "audio/pcm"
	// WAV audio format
	AudioMediaTypeWAV AudioMediaType = "audio/wav"
)

// String returns the string representation of AudioMediaType.
func (amt AudioMediaType) String() string {
	return string(amt)
}
