package segmenters

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/netest/netest-core/internal/core/domain"
)

// PunctuationSegmenter is the language-agnostic fallback: it splits
// paragraphs into sentences on `.?!` followed by whitespace or end of
// string, preserving the terminal punctuation in the sentence. Used when no
// more specific segmenter is registered for the requested language.
type PunctuationSegmenter struct{}

func (s *PunctuationSegmenter) Segment(text string) []*domain.Paragraph {
	paragraphs := splitParagraphs(text)
	return applySentences(paragraphs, splitOnTerminalPunctuation)
}

func (s *PunctuationSegmenter) Supports(lang string) bool {
	return supportsLang([]string{"*"}, lang)
}

func (s *PunctuationSegmenter) Priority() int {
	return 10
}

// splitOnTerminalPunctuation splits text at '.', '?' or '!' followed by
// whitespace or end-of-string, preserving the punctuation in the emitted
// sentence and reporting byte offsets relative to text.
func splitOnTerminalPunctuation(text string) []sentenceSpan {
	return splitOnBoundary(text, func(r rune) bool {
		return r == '.' || r == '?' || r == '!'
	}, nil)
}

// splitOnBoundary is the shared sentence-boundary scanner: it walks text
// rune by rune, and whenever isTerminal matches a rune that is followed by
// whitespace or end-of-string, it closes a sentence there — unless
// isAbbreviation (when non-nil) says the text just before the boundary is
// an abbreviation that should not end a sentence.
func splitOnBoundary(text string, isTerminal func(rune) bool, isAbbreviation func(text string, boundaryByteEnd int) bool) []sentenceSpan {
	var spans []sentenceSpan
	start := 0 // byte offset of current sentence's first non-space rune, -1 sentinel via skipSpaces below

	skipSpacesFrom := func(i int) int {
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		return i
	}

	start = skipSpacesFrom(0)
	cursor := start

	for cursor < len(text) {
		r, size := utf8.DecodeRuneInString(text[cursor:])
		if isTerminal(r) {
			boundaryEnd := cursor + size
			next := boundaryEnd
			atEOS := next >= len(text)
			followedBySpace := false
			if !atEOS {
				nr, _ := utf8.DecodeRuneInString(text[next:])
				followedBySpace = unicode.IsSpace(nr)
			}
			if (atEOS || followedBySpace) && (isAbbreviation == nil || !isAbbreviation(text, boundaryEnd)) {
				segment := strings.TrimSpace(text[start:boundaryEnd])
				if segment != "" {
					spans = append(spans, sentenceSpan{text: segment, start: start, end: boundaryEnd})
				}
				start = skipSpacesFrom(boundaryEnd)
				cursor = start
				continue
			}
		}
		cursor += size
	}

	if start < len(text) {
		segment := strings.TrimSpace(text[start:])
		if segment != "" {
			spans = append(spans, sentenceSpan{text: segment, start: start, end: len(text)})
		}
	}

	return spans
}
