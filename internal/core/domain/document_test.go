package domain

import "testing"

func TestParagraphWordCount(t *testing.T) {
	p := &Paragraph{Text: "A Lei de Responsabilidade Fiscal é importante."}
	if got := p.WordCount(); got != 7 {
		t.Errorf("expected 7 words, got %d", got)
	}
}

func TestParagraphSentenceCount(t *testing.T) {
	p := &Paragraph{Sentences: []*Sentence{{Text: "Uma frase."}, {Text: "Outra frase."}}}
	if got := p.SentenceCount(); got != 2 {
		t.Errorf("expected 2 sentences, got %d", got)
	}
}

func TestIsHeadingLike(t *testing.T) {
	tests := []struct {
		name string
		p    *Paragraph
		want bool
	}{
		{
			name: "short heading, no punctuation",
			p:    &Paragraph{Text: "Introdução", Sentences: []*Sentence{{Text: "Introdução"}}},
			want: true,
		},
		{
			name: "ends with period",
			p:    &Paragraph{Text: "Isto não é um título.", Sentences: []*Sentence{{Text: "Isto não é um título."}}},
			want: false,
		},
		{
			name: "multi-sentence paragraph",
			p: &Paragraph{
				Text:      "Frase um Frase dois",
				Sentences: []*Sentence{{Text: "Frase um"}, {Text: "Frase dois"}},
			},
			want: false,
		},
		{
			name: "too many words",
			p: &Paragraph{
				Text:      "Este é um título longo demais para ser considerado um cabeçalho válido",
				Sentences: []*Sentence{{Text: "Este é um título longo demais para ser considerado um cabeçalho válido"}},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsHeadingLike(12); got != tt.want {
				t.Errorf("IsHeadingLike() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"uma", 1},
		{"uma duas", 2},
		{"  espaços   extras  ", 2},
		{"linha\num\nquebrada", 3},
	}
	for _, tt := range tests {
		if got := CountWords(tt.text); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
