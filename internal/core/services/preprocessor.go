package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
)

// defaultLang is the segmenter language used when a request does not
// specify one; NET-EST's corpus is Portuguese, so this is the sane default.
const defaultLang = "pt"

// strategyMarkerLine matches a line that is nothing but bracketed strategy
// tags, e.g. "[OM+]" or "[RP+ RD+]" -- a residue of the annotated source
// corpus that must not leak into the text the aligner and classifier see.
var strategyMarkerLine = regexp.MustCompile(`^\s*(\[\s*([A-Z]{2,3}\+\s*)+\]\s*)+$`)

// zeroWidthChars are stripped entirely; none of them carry meaning for
// sentence segmentation or alignment and some CAT-tool exports leave them
// behind as artifacts (BOM, zero-width space/joiner).
var zeroWidthChars = map[rune]bool{
	0xFEFF: true, // BOM
	'​': true, // zero-width space
	'‌': true, // zero-width non-joiner
	'‍': true, // zero-width joiner
	'⁠': true, // word joiner
}

// Preprocessor normalizes raw submitted text and segments it into
// paragraphs and sentences, per spec.md §4.1.
type Preprocessor struct {
	registry driven.SegmenterRegistry
	maxWords int
}

// NewPreprocessor builds a Preprocessor over the given segmenter registry.
// maxWords <= 0 disables the length check.
func NewPreprocessor(registry driven.SegmenterRegistry, maxWords int) *Preprocessor {
	return &Preprocessor{registry: registry, maxWords: maxWords}
}

// Process normalizes raw text and segments it into a Document. It returns
// domain.ErrInvalidInput if the normalized text is empty and
// domain.ErrInputTooLong if it exceeds maxWords.
func (p *Preprocessor) Process(raw string) (*domain.Document, error) {
	normalized := normalizeText(raw)
	if strings.TrimSpace(normalized) == "" {
		return nil, domain.ErrInvalidInput
	}
	if p.maxWords > 0 && domain.CountWords(normalized) > p.maxWords {
		return nil, fmt.Errorf("%w: %d words exceeds max_words=%d",
			domain.ErrInputTooLong, domain.CountWords(normalized), p.maxWords)
	}

	seg := p.registry.Get(defaultLang)
	if seg == nil {
		return nil, fmt.Errorf("preprocessor: %w: no segmenter registered for %q", domain.ErrServiceUnavailable, defaultLang)
	}

	return &domain.Document{
		RawText:    normalized,
		Paragraphs: seg.Segment(normalized),
	}, nil
}

// normalizeText applies the normalization rules from spec.md §4.1: strip
// bracketed strategy-marker lines, Unicode NFC-normalize, strip zero-width
// characters, collapse internal whitespace runs, and trim each paragraph.
func normalizeText(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strategyMarkerLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}

	text := norm.NFC.String(strings.Join(kept, "\n"))
	text = stripZeroWidth(text)

	paragraphs := strings.Split(text, "\n\n")
	for i, para := range paragraphs {
		paragraphs[i] = collapseWhitespace(para)
	}
	return strings.Trim(strings.Join(paragraphs, "\n\n"), "\n")
}

func stripZeroWidth(s string) string {
	return strings.Map(func(r rune) rune {
		if zeroWidthChars[r] {
			return -1
		}
		return r
	}, s)
}

// collapseWhitespace trims each physical line and collapses runs of
// horizontal whitespace within a line to a single space, while preserving
// line breaks so paragraph-internal sentence boundaries stay intact.
func collapseWhitespace(paragraph string) string {
	lines := strings.Split(paragraph, "\n")
	for i, line := range lines {
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r != '\n' && unicode.IsSpace(r)
		})
		lines[i] = strings.TrimSpace(strings.Join(fields, " "))
	}
	// Drop blank lines introduced by an all-whitespace original line, but
	// keep the paragraph's own boundaries intact for the caller.
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
