package segmenters

import (
	"strings"

	"github.com/netest/netest-core/internal/core/domain"
)

// splitParagraphs splits normalized text into maximal runs of non-blank
// lines, separated by one or more blank lines, each carrying its absolute
// character offsets into text.
func splitParagraphs(text string) []*domain.Paragraph {
	var paragraphs []*domain.Paragraph

	lines := strings.Split(text, "\n")
	offset := 0
	var buf strings.Builder
	bufStart := -1
	bufEnd := 0
	index := 0

	flush := func(end int) {
		if buf.Len() == 0 {
			return
		}
		content := buf.String()
		paragraphs = append(paragraphs, &domain.Paragraph{
			Index:     index,
			Text:      content,
			CharStart: bufStart,
			CharEnd:   end,
		})
		index++
		buf.Reset()
		bufStart = -1
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush(bufEnd)
		} else {
			if bufStart == -1 {
				bufStart = offset
			}
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
			bufEnd = offset + len(line)
		}
		offset += len(line)
		if i < len(lines)-1 {
			offset++ // account for the '\n' joining character
		}
	}
	flush(bufEnd)

	return paragraphs
}

// applySentences runs split over each paragraph's text, translating the
// resulting paragraph-relative offsets into absolute offsets and global
// sentence indices.
func applySentences(paragraphs []*domain.Paragraph, split func(string) []sentenceSpan) []*domain.Paragraph {
	globalIndex := 0
	for _, p := range paragraphs {
		spans := split(p.Text)
		p.Sentences = make([]*domain.Sentence, 0, len(spans))
		for i, span := range spans {
			p.Sentences = append(p.Sentences, &domain.Sentence{
				IndexInParagraph: i,
				GlobalIndex:      globalIndex,
				Text:             span.text,
				CharStart:        p.CharStart + span.start,
				CharEnd:          p.CharStart + span.end,
			})
			globalIndex++
		}
	}
	return paragraphs
}

// sentenceSpan is one sentence's text and paragraph-relative offsets.
type sentenceSpan struct {
	text  string
	start int
	end   int
}
