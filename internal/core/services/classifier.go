package services

import (
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
)

// ClassifierConfig carries the spec.md §6 classifier.* options.
type ClassifierConfig struct {
	MinConfidence  float64
	EnableOM       bool
	Weights        RuleWeights
	CustomRuleLua  string // optional Lua source overriding/extending StandardRules
}

// Classifier turns a FeatureVector and its span candidates into zero or
// more StrategyPredictions, per spec.md §4.5.
type Classifier struct {
	cfg   ClassifierConfig
	rules []Rule
}

// NewClassifier builds a Classifier. When cfg.EnableOM is true, OMRule is
// appended to the standard rule table; PRO+ never appears regardless of
// configuration, per spec.md §4.5.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.3
	}
	if cfg.Weights.PassiveDeltaMin == 0 {
		cfg.Weights.PassiveDeltaMin = DefaultRuleWeights().PassiveDeltaMin
	}
	rules := make([]Rule, len(StandardRules))
	copy(rules, StandardRules)
	if cfg.EnableOM {
		rules = append(rules, OMRule)
	}
	return &Classifier{cfg: cfg, rules: rules}
}

// Classify evaluates every rule against fv and assembles the target/source
// offsets for each triggered tag from the span candidates produced by the
// Feature & Span Extractor.
func (c *Classifier) Classify(fv *domain.FeatureVector, candidates []driven.SpanCandidate) []*domain.StrategyPrediction {
	var predictions []*domain.StrategyPrediction
	now := time.Now()

	for _, rule := range c.rules {
		matched, confidence, evidence := rule.Trigger(fv, c.cfg.Weights)
		if c.cfg.CustomRuleLua != "" {
			if overrideMatched, overrideConfidence, ok := c.evalCustomRule(rule.Code, fv); ok {
				matched, confidence = overrideMatched, overrideConfidence
			}
		}
		if !matched || confidence < c.cfg.MinConfidence {
			continue
		}

		evidenceList := []string{evidence}
		if fv.Degraded {
			evidenceList = append(evidenceList, "degraded_mode")
		}

		targetOffsets, sourceOffsets := offsetsFor(rule.Code, candidates)

		predictions = append(predictions, &domain.StrategyPrediction{
			StrategyID:    domain.GenerateID(),
			Code:          rule.Code,
			Confidence:    clampConfidence(confidence),
			Evidence:      evidenceList,
			TargetOffsets: targetOffsets,
			SourceOffsets: sourceOffsets,
			Origin:        domain.OriginMachine,
			Status:        domain.StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return predictions
}

// offsetsFor picks the finest-grained span candidate relevant to tag: an
// OM+-style deletion prefers the deleted source span, EXP+ and IN+ prefer
// the inserted target span, and any tag still without target offsets takes
// a sentence anchor, or else the paragraph default.
func offsetsFor(tag domain.StrategyCode, candidates []driven.SpanCandidate) (target, source []domain.Offset) {
	var paragraphTarget *domain.Offset
	var sentenceTarget *domain.Offset
	var insertedTarget *domain.Offset
	var deletedSource *domain.Offset

	for i := range candidates {
		c := &candidates[i]
		switch {
		case c.Side == "target" && c.Kind == "paragraph" && paragraphTarget == nil:
			paragraphTarget = &c.Offset
		case c.Side == "target" && c.Kind == "sentence" && sentenceTarget == nil:
			sentenceTarget = &c.Offset
		case c.Side == "target" && c.Kind == "inserted" && insertedTarget == nil:
			insertedTarget = &c.Offset
		case c.Side == "source" && c.Kind == "deleted" && deletedSource == nil:
			deletedSource = &c.Offset
		}
	}

	switch tag {
	case domain.StrategyEXP, domain.StrategyIN:
		if insertedTarget != nil {
			target = append(target, *insertedTarget)
		}
	case domain.StrategyOM:
		if deletedSource != nil {
			source = append(source, *deletedSource)
		}
	}

	if len(target) == 0 {
		if sentenceTarget != nil {
			target = append(target, *sentenceTarget)
		} else if paragraphTarget != nil {
			target = append(target, *paragraphTarget)
		}
	}
	return target, source
}

// evalCustomRule runs cfg.CustomRuleLua's "evaluate(tag, fv)" function when
// configured, letting an operator override or add rules without a Go
// rebuild. ok is false when the script does not handle this tag, in which
// case the Go rule's own verdict stands.
func (c *Classifier) evalCustomRule(tag domain.StrategyCode, fv *domain.FeatureVector) (matched bool, confidence float64, ok bool) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(c.cfg.CustomRuleLua); err != nil {
		return false, 0, false
	}

	fn := L.GetGlobal("evaluate")
	if fn.Type() != lua.LTFunction {
		return false, 0, false
	}

	fvTable := L.NewTable()
	fvTable.RawSetString("length_ratio", lua.LNumber(fv.LengthRatio))
	fvTable.RawSetString("sentence_count_ratio", lua.LNumber(fv.SentenceCountRatio))
	fvTable.RawSetString("lexical_overlap", lua.LNumber(fv.LexicalOverlap))
	fvTable.RawSetString("semantic_similarity", lua.LNumber(fv.SemanticSimilarity))

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true}, lua.LString(string(tag)), fvTable); err != nil {
		return false, 0, false
	}
	result := L.Get(-1)
	matchedVal := L.Get(-2)
	L.Pop(2)

	if matchedVal.Type() == lua.LTNil {
		return false, 0, false
	}
	matched = lua.LVAsBool(matchedVal)
	if n, isNum := result.(lua.LNumber); isNum {
		confidence = float64(n)
	}
	return matched, confidence, true
}
