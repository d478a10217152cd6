package segmenters

import (
	"strings"

	"github.com/netest/netest-core/internal/core/domain"
)

// portugueseAbbreviations lists common Portuguese abbreviations whose
// trailing period must not be treated as a sentence boundary, per spec.md
// §4.1's "Dr., Sr., p. ex." edge case.
var portugueseAbbreviations = []string{
	"sr.", "sra.", "srta.", "dr.", "dra.", "prof.", "profa.",
	"eng.", "exmo.", "exma.", "ilmo.", "ilma.",
	"p.", "pp.", "ex.", "etc.", "cf.", "vs.",
	"art.", "arts.", "§.", "n.", "núm.", "num.",
	"av.", "al.", "rod.", "km.",
	"jan.", "fev.", "mar.", "abr.", "mai.", "jun.",
	"jul.", "ago.", "set.", "out.", "nov.", "dez.",
}

// PortugueseSegmenter splits sentences with awareness of common Portuguese
// abbreviations, so "p. ex." or "Dr." does not fracture a sentence. It
// handles both "pt" and "pt-BR" and is preferred over the generic
// punctuation fallback whenever available.
type PortugueseSegmenter struct{}

func (s *PortugueseSegmenter) Segment(text string) []*domain.Paragraph {
	paragraphs := splitParagraphs(text)
	return applySentences(paragraphs, func(paragraphText string) []sentenceSpan {
		return splitOnBoundary(paragraphText, func(r rune) bool {
			return r == '.' || r == '?' || r == '!'
		}, isPortugueseAbbreviation)
	})
}

func (s *PortugueseSegmenter) Supports(lang string) bool {
	return supportsLang([]string{"pt", "pt-br", "pt-pt"}, lang)
}

func (s *PortugueseSegmenter) Priority() int {
	return 95
}

// isPortugueseAbbreviation reports whether the period ending at
// text[:boundaryEnd] closes a known abbreviation rather than a sentence.
// Only periods are checked — '?' and '!' never end an abbreviation.
func isPortugueseAbbreviation(text string, boundaryEnd int) bool {
	if boundaryEnd == 0 || text[boundaryEnd-1] != '.' {
		return false
	}
	// Walk back to the start of the last whitespace-delimited token ending
	// at boundaryEnd.
	start := boundaryEnd - 1
	for start > 0 && !isWordBreak(text[start-1]) {
		start--
	}
	token := strings.ToLower(text[start:boundaryEnd])
	for _, abbr := range portugueseAbbreviations {
		if token == abbr {
			return true
		}
	}
	return false
}

func isWordBreak(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '('
}
