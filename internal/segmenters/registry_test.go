package segmenters

import "testing"

func TestDefaultRegistryPrefersPortugueseForPT(t *testing.T) {
	r := DefaultRegistry()

	seg := r.Get("pt")
	if seg == nil {
		t.Fatal("expected a segmenter for pt")
	}
	if _, ok := seg.(*PortugueseSegmenter); !ok {
		t.Errorf("expected PortugueseSegmenter for pt, got %T", seg)
	}
}

func TestDefaultRegistryFallsBackForUnknownLang(t *testing.T) {
	r := DefaultRegistry()

	seg := r.Get("fr")
	if seg == nil {
		t.Fatal("expected a fallback segmenter for fr")
	}
	if _, ok := seg.(*PunctuationSegmenter); !ok {
		t.Errorf("expected PunctuationSegmenter fallback for fr, got %T", seg)
	}
}

func TestRegistryGetAllSortedByPriority(t *testing.T) {
	r := DefaultRegistry()

	matches := r.GetAll("pt")
	if len(matches) != 2 {
		t.Fatalf("expected 2 segmenters to support pt, got %d", len(matches))
	}
	if matches[0].Priority() < matches[1].Priority() {
		t.Error("expected segmenters sorted by descending priority")
	}
}

func TestRegistryGetNoMatch(t *testing.T) {
	r := NewRegistry()
	if got := r.Get("pt"); got != nil {
		t.Errorf("expected nil for empty registry, got %v", got)
	}
}
