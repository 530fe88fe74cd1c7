package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSet(t *testing.T, language string) *BoundarySet {
	t.Helper()
	set, err := BoundarySetForLanguage(language)
	require.NoError(t, err)
	return set
}

func TestBoundarySetForLanguage(t *testing.T) {
	tests := []struct {
		tag      string
		wantName string
		wantErr  bool
	}{
		{tag: "english", wantName: "english"},
		{tag: "en", wantName: "english"},
		{tag: "Chinese", wantName: "chinese"},
		{tag: "zh", wantName: "chinese"},
		{tag: "ja", wantName: "japanese"},
		{tag: "auto", wantName: "multilingual"},
		{tag: "multilingual", wantName: "multilingual"},
		{tag: "klingon", wantErr: true},
		{tag: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			set, err := BoundarySetForLanguage(tt.tag)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownLanguage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, set.Name())
		})
	}
}

func TestScan_BasicPunctuation(t *testing.T) {
	tests := []struct {
		name     string
		language string
		input    string
		expected []string
	}{
		{
			name:     "English sentences",
			language: "english",
			input:    "Hello world. How are you?",
			expected: []string{"Hello world.", "How are you?"},
		},
		{
			name:     "Comma and colon are strong pauses",
			language: "english",
			input:    "Hello, world: yes",
			expected: []string{"Hello,", "world:", "yes"},
		},
		{
			name:     "Exclamations",
			language: "english",
			input:    "Amazing! This works!",
			expected: []string{"Amazing!", "This works!"},
		},
		{
			name:     "Chinese full-width punctuation",
			language: "chinese",
			input:    "你好世界。今天天气真好。",
			expected: []string{"你好世界。", "今天天气真好。"},
		},
		{
			name:     "Japanese",
			language: "japanese",
			input:    "こんにちは。元気ですか？",
			expected: []string{"こんにちは。", "元気ですか？"},
		},
		{
			name:     "Mixed scripts with multilingual set",
			language: "multilingual",
			input:    "Hello你好。Nice to meet you.",
			expected: []string{"Hello你好。", "Nice to meet you."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := mustSet(t, tt.language).Scan(tt.input)
			var texts []string
			for _, sp := range spans {
				texts = append(texts, sp.Text)
				assert.True(t, sp.Terminated, "span %q should be terminated", sp.Text)
			}
			assert.Equal(t, tt.expected, texts)
		})
	}
}

func TestScan_TrailingUnterminatedSpan(t *testing.T) {
	spans := mustSet(t, "english").Scan("Hello world. And then")

	require.Len(t, spans, 2)
	assert.Equal(t, "Hello world.", spans[0].Text)
	assert.True(t, spans[0].Terminated)
	assert.Equal(t, "And then", spans[1].Text)
	assert.False(t, spans[1].Terminated)
}

func TestScan_ConsecutivePunctuation(t *testing.T) {
	spans := mustSet(t, "english").Scan("What?! Are you serious?!")

	require.Len(t, spans, 2)
	assert.Equal(t, "What?!", spans[0].Text)
	assert.Equal(t, "Are you serious?!", spans[1].Text)
}

func TestScan_EmptyAndWhitespace(t *testing.T) {
	set := mustSet(t, "english")

	assert.Empty(t, set.Scan(""))
	assert.Empty(t, set.Scan("   \n\t  "))

	// Trailing whitespace after the last boundary is not a span, but the
	// terminated span before it survives.
	spans := set.Scan("Hi.   ")
	require.Len(t, spans, 1)
	assert.Equal(t, "Hi.", spans[0].Text)
}

func TestScan_OffsetsAreOrderedAndDisjoint(t *testing.T) {
	spans := mustSet(t, "english").Scan("One. Two! Three? Four")

	require.Len(t, spans, 4)
	prevEnd := 0
	for _, sp := range spans {
		assert.GreaterOrEqual(t, sp.Start, prevEnd)
		assert.Greater(t, sp.End, sp.Start)
		prevEnd = sp.End
	}
}

func TestNormalizeQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "right single quote", input: "It’s fine.", expected: "It's fine."},
		{name: "left single quote", input: "‘quoted’", expected: "'quoted'"},
		{name: "double quotes", input: "“hello”", expected: `"hello"`},
		{name: "plain ascii untouched", input: `it's "fine"`, expected: `it's "fine"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeQuotes(tt.input))
		})
	}
}

func TestScan_NormalizesBeforeScanning(t *testing.T) {
	spans := mustSet(t, "english").Scan("It’s done. Next.")

	require.Len(t, spans, 2)
	assert.Equal(t, "It's done.", spans[0].Text)
	// Offsets refer to the normalized text.
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len("It's done."), spans[0].End)
}

func BenchmarkScan(b *testing.B) {
	set, _ := BoundarySetForLanguage("multilingual")
	text := "Hello world. This is a test sentence. How are you? I am fine. 你好世界。"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		set.Scan(text)
	}
}
