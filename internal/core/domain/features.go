package domain

// FeatureVector is the per-aligned-pair feature set computed by the
// Feature & Span Extractor (spec.md §4.4) and consumed by the Strategy
// Classifier's rules (spec.md §4.5).
type FeatureVector struct {
	SourceParagraphIndex int
	TargetParagraphIndex int

	LengthRatio          float64 // target_words / source_words
	SentenceCountRatio   float64 // target_sentences / source_sentences
	AvgSentenceLenSource float64
	AvgSentenceLenTarget float64
	AvgWordCharLenSource float64 // average characters per word, source
	AvgWordCharLenTarget float64 // average characters per word, target
	LexicalOverlap       float64 // Jaccard over lower-cased, punctuation-trimmed word tokens; no lemmatization or stop-word removal
	SemanticSimilarity   float64 // cosine from the aligner

	SourceWordCount     int
	TargetWordCount     int
	SourceSentenceCount int
	TargetSentenceCount int

	// Linguistic deltas, populated only when a LinguisticPipeline is
	// configured; zero-valued (and Degraded=true) otherwise.
	PassiveParticipleDeltaHasData bool
	PassiveParticipleDelta        float64 // target density - source density
	PronounDensitySource          float64
	PronounDensityTarget          float64
	ProperNounDensityTarget       float64
	CommonNounDensityTarget       float64

	ConnectorsGained []string // connectors present in target, absent from source
	ConnectorsLost   []string // connectors present in source, absent from target

	ReorderDistance float64 // 0 = no detectable reordering

	IsHeading bool // paragraph looks like a heading (MT+ candidate)

	Degraded bool // true if computed without embeddings and/or linguistics
}
