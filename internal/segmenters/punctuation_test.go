package segmenters

import "testing"

func TestPunctuationSegmenterSplitsOnTerminalPunctuation(t *testing.T) {
	seg := &PunctuationSegmenter{}
	paragraphs := seg.Segment("First sentence. Second sentence? Third sentence!")

	if len(paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paragraphs))
	}
	sentences := paragraphs[0].Sentences
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
	want := []string{"First sentence.", "Second sentence?", "Third sentence!"}
	for i, s := range sentences {
		if s.Text != want[i] {
			t.Errorf("sentence %d: got %q, want %q", i, s.Text, want[i])
		}
	}
}

func TestPunctuationSegmenterHandlesAbbreviationsNaively(t *testing.T) {
	// The generic fallback has no abbreviation knowledge, so "Dr." does
	// fracture the sentence -- this is the documented tradeoff motivating
	// the Portuguese-aware segmenter.
	seg := &PunctuationSegmenter{}
	paragraphs := seg.Segment("Dr. Silva chegou.")

	sentences := paragraphs[0].Sentences
	if len(sentences) != 2 {
		t.Fatalf("expected naive fallback to split into 2 sentences, got %d", len(sentences))
	}
}

func TestPunctuationSegmenterNoTerminalPunctuation(t *testing.T) {
	seg := &PunctuationSegmenter{}
	paragraphs := seg.Segment("no terminal punctuation here")

	if len(paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paragraphs))
	}
	if len(paragraphs[0].Sentences) != 1 {
		t.Fatalf("expected 1 sentence (unterminated remainder), got %d", len(paragraphs[0].Sentences))
	}
	if paragraphs[0].Sentences[0].Text != "no terminal punctuation here" {
		t.Errorf("unexpected sentence text: %q", paragraphs[0].Sentences[0].Text)
	}
}

func TestPunctuationSegmenterOffsetsRoundTrip(t *testing.T) {
	text := "Alpha beta. Gamma delta? Epsilon."
	seg := &PunctuationSegmenter{}
	paragraphs := seg.Segment(text)

	for _, p := range paragraphs {
		for _, s := range p.Sentences {
			if text[s.CharStart:s.CharEnd] != s.Text {
				t.Errorf("offset mismatch: text[%d:%d]=%q, want %q",
					s.CharStart, s.CharEnd, text[s.CharStart:s.CharEnd], s.Text)
			}
		}
	}
}

func TestSplitParagraphsBlankLineSeparated(t *testing.T) {
	text := "Paragraph one.\nStill paragraph one.\n\nParagraph two."
	paragraphs := splitParagraphs(text)

	if len(paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(paragraphs))
	}
	if paragraphs[0].Text != "Paragraph one.\nStill paragraph one." {
		t.Errorf("unexpected paragraph 0 text: %q", paragraphs[0].Text)
	}
	if paragraphs[1].Text != "Paragraph two." {
		t.Errorf("unexpected paragraph 1 text: %q", paragraphs[1].Text)
	}
	for _, p := range paragraphs {
		if text[p.CharStart:p.CharEnd] != p.Text {
			t.Errorf("paragraph offset mismatch: text[%d:%d]=%q, want %q",
				p.CharStart, p.CharEnd, text[p.CharStart:p.CharEnd], p.Text)
		}
	}
}
