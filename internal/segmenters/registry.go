// Package segmenters implements Segmenter, the priority-dispatched
// paragraph/sentence splitter described in spec.md §4.1.
package segmenters

import (
	"sort"
	"strings"
	"sync"

	"github.com/netest/netest-core/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.SegmenterRegistry = (*Registry)(nil)

// Registry implements SegmenterRegistry with priority-based selection. When
// multiple segmenters support a language, the highest priority one is used.
type Registry struct {
	mu         sync.RWMutex
	segmenters []driven.Segmenter
}

// NewRegistry creates a new, empty segmenter registry.
func NewRegistry() *Registry {
	return &Registry{
		segmenters: make([]driven.Segmenter, 0),
	}
}

// Register registers a segmenter.
func (r *Registry) Register(seg driven.Segmenter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.segmenters = append(r.segmenters, seg)
}

// Get retrieves the best-matching segmenter for a language tag. Returns nil
// if none is registered.
func (r *Registry) Get(lang string) driven.Segmenter {
	matches := r.GetAll(lang)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// GetAll retrieves all segmenters that support a language, sorted by
// priority (highest first).
func (r *Registry) GetAll(lang string) []driven.Segmenter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []driven.Segmenter
	for _, s := range r.segmenters {
		if s.Supports(lang) {
			matches = append(matches, s)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})

	return matches
}

// List returns the language tags of the built-in segmenters ("*", "pt",
// "pt-BR"), sorted. It does not inspect the registered segmenters, so the
// list is the same for every registry, including an empty one.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{"pt": {}, "pt-BR": {}, "*": {}}
	var langs []string
	for l := range seen {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// DefaultRegistry creates a registry with the built-in segmenters
// pre-registered: the Portuguese-aware segmenter (highest priority for
// pt/pt-BR) and the punctuation fallback (handles everything, including pt).
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PortugueseSegmenter{})
	r.Register(&PunctuationSegmenter{})
	return r
}

// supportsLang is the shared Supports implementation for segmenters keyed
// on a fixed set of language tags.
func supportsLang(tags []string, lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, t := range tags {
		if t == "*" {
			return true
		}
		if strings.ToLower(t) == lang {
			return true
		}
	}
	return false
}
