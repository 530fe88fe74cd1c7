package tokenizer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Span is one boundary-delimited region of a scanned text. Start and End are
// byte offsets into the normalized text, half-open. Text is the region with
// leading and trailing whitespace removed. Terminated reports whether the
// region ends in boundary punctuation; only terminated spans (or the trailing
// unterminated span at true end of stream) may be spoken.
type Span struct {
	Start      int
	End        int
	Text       string
	Terminated bool
}

// quoteReplacer rewrites typographic quotes to their ASCII equivalents.
// The synthesis backends we target reject non-ASCII quote glyphs.
var quoteReplacer = strings.NewReplacer(
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
)

// NormalizeQuotes replaces typographic quote variants with plain ASCII
// quotes. Idempotent.
func NormalizeQuotes(text string) string {
	return quoteReplacer.Replace(text)
}

// asciiEnders are treated as sentence boundaries in every language. Comma and
// colon count as strong pauses, which keeps emitted chunks short enough for
// low-latency synthesis.
var asciiEnders = map[rune]bool{
	',': true, '.': true, '!': true, '?': true, ':': true, ';': true,
}

// chineseEnders adds the full-width punctuation used in Chinese text.
var chineseEnders = map[rune]bool{
	'，': true, '。': true, '！': true, '？': true,
	'：': true, '；': true, '、': true, '…': true,
}

// japaneseEnders adds the punctuation used in Japanese text.
var japaneseEnders = map[rune]bool{
	'。': true, '！': true, '？': true, '．': true, '、': true, '…': true,
}

// BoundarySet is the language-specific set of sentence-ending punctuation.
// Sets are data, selected once per tokenizer; Scan never consults global
// state.
type BoundarySet struct {
	name   string
	enders map[rune]bool
}

// Name returns the canonical language name of the set.
func (b *BoundarySet) Name() string { return b.name }

func newBoundarySet(name string, extra ...map[rune]bool) *BoundarySet {
	enders := make(map[rune]bool, len(asciiEnders))
	for r := range asciiEnders {
		enders[r] = true
	}
	for _, m := range extra {
		for r := range m {
			enders[r] = true
		}
	}
	return &BoundarySet{name: name, enders: enders}
}

var (
	englishSet      = newBoundarySet("english")
	chineseSet      = newBoundarySet("chinese", chineseEnders)
	japaneseSet     = newBoundarySet("japanese", japaneseEnders)
	multilingualSet = newBoundarySet("multilingual", chineseEnders, japaneseEnders)
)

var boundarySets = map[string]*BoundarySet{
	"english":      englishSet,
	"en":           englishSet,
	"chinese":      chineseSet,
	"zh":           chineseSet,
	"japanese":     japaneseSet,
	"ja":           japaneseSet,
	"multilingual": multilingualSet,
	"auto":         multilingualSet,
}

// BoundarySetForLanguage returns the boundary set for a language tag.
// Tags are matched case-insensitively; unknown tags are an error, never a
// silent fallback.
func BoundarySetForLanguage(language string) (*BoundarySet, error) {
	set, ok := boundarySets[strings.ToLower(language)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}
	return set, nil
}

// Scan splits text into ordered, non-overlapping spans. Pure and
// deterministic: no stream state is consulted or mutated.
//
// The text is quote-normalized first; span offsets refer to the normalized
// text. Scanning matches the shortest run of characters ending in a boundary
// rune, left to right. A run of consecutive boundary runes extends the same
// span, so "What?!" is one span rather than a sentence and an empty "!".
// Whitespace-only regions are dropped, though their offsets still advance.
// Anything after the last boundary becomes one final unterminated span.
func (b *BoundarySet) Scan(text string) []Span {
	text = NormalizeQuotes(text)

	var spans []Span
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !b.enders[r] {
			continue
		}
		// Consume any directly following boundary runes into this span.
		for i < len(text) {
			next, nextSize := utf8.DecodeRuneInString(text[i:])
			if !b.enders[next] {
				break
			}
			i += nextSize
		}
		if trimmed := strings.TrimSpace(text[start:i]); trimmed != "" {
			spans = append(spans, Span{Start: start, End: i, Text: trimmed, Terminated: true})
		}
		start = i
	}
	if start < len(text) {
		if trimmed := strings.TrimSpace(text[start:]); trimmed != "" {
			spans = append(spans, Span{Start: start, End: len(text), Text: trimmed})
		}
	}
	return spans
}
