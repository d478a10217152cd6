package segmenters

import "testing"

func TestPortugueseSegmenterSplitsOnSentenceBoundaries(t *testing.T) {
	seg := &PortugueseSegmenter{}
	paragraphs := seg.Segment("Este é o primeiro período. Este é o segundo período!")

	if len(paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paragraphs))
	}
	sentences := paragraphs[0].Sentences
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}
	if sentences[0].Text != "Este é o primeiro período." {
		t.Errorf("unexpected first sentence: %q", sentences[0].Text)
	}
	if sentences[1].Text != "Este é o segundo período!" {
		t.Errorf("unexpected second sentence: %q", sentences[1].Text)
	}
}

func TestPortugueseSegmenterDoesNotSplitOnAbbreviations(t *testing.T) {
	seg := &PortugueseSegmenter{}
	paragraphs := seg.Segment("O Dr. Silva chegou cedo. Ele trouxe exemplos, p. ex. frutas e legumes.")

	if len(paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paragraphs))
	}
	sentences := paragraphs[0].Sentences
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
}

func TestPortugueseSegmenterOffsetsAreStable(t *testing.T) {
	text := "Primeira frase. Segunda frase."
	seg := &PortugueseSegmenter{}
	paragraphs := seg.Segment(text)

	for _, p := range paragraphs {
		for _, s := range p.Sentences {
			if text[s.CharStart:s.CharEnd] != s.Text {
				t.Errorf("offset mismatch: text[%d:%d]=%q, sentence.Text=%q",
					s.CharStart, s.CharEnd, text[s.CharStart:s.CharEnd], s.Text)
			}
		}
	}
}

func TestPortugueseSegmenterSupports(t *testing.T) {
	seg := &PortugueseSegmenter{}
	for _, lang := range []string{"pt", "pt-BR", "pt-PT"} {
		if !seg.Supports(lang) {
			t.Errorf("expected Supports(%q) to be true", lang)
		}
	}
	if seg.Supports("en") {
		t.Error("expected Supports(en) to be false")
	}
}

func TestPortugueseSegmenterMultipleParagraphs(t *testing.T) {
	text := "Primeiro parágrafo aqui.\n\nSegundo parágrafo aqui."
	seg := &PortugueseSegmenter{}
	paragraphs := seg.Segment(text)

	if len(paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(paragraphs))
	}
	if paragraphs[0].Index != 0 || paragraphs[1].Index != 1 {
		t.Error("expected paragraph indices 0 and 1")
	}
	if paragraphs[1].Sentences[0].GlobalIndex != 1 {
		t.Errorf("expected global sentence index 1 for second paragraph's first sentence, got %d",
			paragraphs[1].Sentences[0].GlobalIndex)
	}
}
