package services

import (
	"testing"

	"github.com/netest/netest-core/internal/core/domain"
)

func TestSpanPipelineOrdersProposers(t *testing.T) {
	p := DefaultSpanPipeline()
	names := p.List()
	want := []string{"sentence_anchor", "inserted_span", "deleted_span"}
	if len(names) != len(want) {
		t.Fatalf("expected %d proposers, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("proposer %d: got %q, want %q", i, names[i], name)
		}
	}
}

func TestSpanPipelineAlwaysIncludesParagraphDefault(t *testing.T) {
	p := DefaultSpanPipeline()
	source := paragraphWithSentences(0, "fonte")
	target := paragraphWithSentences(0, "alvo")

	candidates := p.Propose(source, target, &domain.FeatureVector{})
	if len(candidates) == 0 || candidates[0].Kind != "paragraph" {
		t.Fatal("expected paragraph default as first candidate")
	}
}

func TestSentenceAnchorProposerFindsHighOverlapSentence(t *testing.T) {
	proposer := &SentenceAnchorProposer{}
	source := paragraphWithSentences(0, "",
		&domain.Sentence{Text: "o gato correu rapido", CharStart: 0, CharEnd: 20})
	target := paragraphWithSentences(0, "",
		&domain.Sentence{Text: "o gato correu rapido", CharStart: 0, CharEnd: 20},
		&domain.Sentence{Text: "algo completamente diferente", CharStart: 21, CharEnd: 50})

	candidates := proposer.Propose(source, target, &domain.FeatureVector{})
	if len(candidates) != 1 {
		t.Fatalf("expected 1 high-overlap sentence anchor, got %d", len(candidates))
	}
	if candidates[0].Offset.Start != 0 || candidates[0].Offset.End != 20 {
		t.Errorf("unexpected anchor offsets: %+v", candidates[0].Offset)
	}
}

func TestInsertedSpanProposerAnchorsGainedConnector(t *testing.T) {
	proposer := &InsertedSpanProposer{}
	target := paragraphWithSentences(0, "ele saiu porque estava atrasado")
	fv := &domain.FeatureVector{ConnectorsGained: []string{"porque"}}

	candidates := proposer.Propose(nil, target, fv)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 inserted-span candidate, got %d", len(candidates))
	}
	if target.Text[candidates[0].Offset.Start:candidates[0].Offset.End] != "porque" {
		t.Errorf("offset does not point at connector: %q",
			target.Text[candidates[0].Offset.Start:candidates[0].Offset.End])
	}
}

func TestDeletedSpanProposerFlagsLowOverlapSourceSentences(t *testing.T) {
	proposer := &DeletedSpanProposer{}
	source := paragraphWithSentences(0, "",
		&domain.Sentence{Text: "conteudo removido completamente", CharStart: 0, CharEnd: 32})
	target := paragraphWithSentences(0, "texto alvo sem relacao")

	candidates := proposer.Propose(source, target, &domain.FeatureVector{})
	if len(candidates) != 1 {
		t.Fatalf("expected 1 deleted-span candidate, got %d", len(candidates))
	}
	if candidates[0].Side != "source" {
		t.Errorf("expected source-side candidate, got %q", candidates[0].Side)
	}
}
