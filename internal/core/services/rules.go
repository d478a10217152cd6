package services

import "github.com/netest/netest-core/internal/core/domain"

// Rule is one entry of the classifier's decision table: a predicate over a
// FeatureVector plus a confidence-scaling function, evaluated independently
// of every other rule. Modeled as data, not a chain of if-statements, per
// spec.md §9's "rules are data" design note.
type Rule struct {
	Code    domain.StrategyCode
	Trigger func(fv *domain.FeatureVector, weights RuleWeights) (bool, float64, string)
}

// RuleWeights carries the configurable thresholds from spec.md §6's
// classifier.rule_weights map. Zero-valued fields fall back to the default
// below via DefaultRuleWeights.
type RuleWeights struct {
	PassiveDeltaMin float64
}

// DefaultRuleWeights returns the compiled-in defaults, overridable by
// classifier.rule_weights in configuration.
func DefaultRuleWeights() RuleWeights {
	return RuleWeights{PassiveDeltaMin: 0.1}
}

// clampConfidence bounds a rule's computed confidence to [0,1].
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// StandardRules is the spec.md §4.5 decision table. OM+ and PRO+ are
// handled separately by the classifier (disabled-by-default and
// never-auto-emitted respectively) and do not appear here.
var StandardRules = []Rule{
	{
		Code: domain.StrategySL,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			wordLenDelta := fv.AvgWordCharLenSource - fv.AvgWordCharLenTarget
			if fv.LexicalOverlap >= 0.2 && wordLenDelta > 0 && fv.SemanticSimilarity >= 0.75 {
				return true, clampConfidence(0.5 + wordLenDelta/4), "Vocabulary simplified: shorter average word length with preserved meaning"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyRP,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if fv.TargetSentenceCount > fv.SourceSentenceCount && fv.SemanticSimilarity >= 0.7 {
				return true, clampConfidence(0.5 + (fv.SentenceCountRatio-1)*0.3), "Sentence count increased from source to target"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyRF,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if fv.LengthRatio <= 0.6 && fv.LexicalOverlap < 0.4 && fv.SemanticSimilarity >= 0.65 {
				return true, clampConfidence(0.5 + (0.6-fv.LengthRatio)*0.8), "Large length reduction with low lexical overlap suggests global rewrite"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyEXP,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if fv.LengthRatio >= 1.15 && len(fv.ConnectorsGained) > 0 && fv.SemanticSimilarity >= 0.75 {
				return true, clampConfidence(0.5 + float64(len(fv.ConnectorsGained))*0.1), "New connectors introduced in target"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyMV,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if !fv.PassiveParticipleDeltaHasData {
				return false, 0, ""
			}
			delta := fv.PassiveParticipleDelta
			if delta < 0 {
				delta = -delta
			}
			if delta >= w.PassiveDeltaMin {
				return true, clampConfidence(0.4 + delta*2), "Passive-participle density changed between source and target"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyTA,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if !fv.PassiveParticipleDeltaHasData {
				return false, 0, ""
			}
			pronounDrop := fv.PronounDensitySource - fv.PronounDensityTarget
			nounRise := fv.ProperNounDensityTarget + fv.CommonNounDensityTarget
			if pronounDrop > 0 && nounRise > 0 {
				return true, clampConfidence(0.4 + pronounDrop*2), "Pronouns replaced by clearer referential expressions"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyMOD,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if fv.SemanticSimilarity >= 0.55 && fv.SemanticSimilarity <= 0.8 && fv.LexicalOverlap < 0.5 && fv.LengthRatio > 0.85 && fv.LengthRatio < 1.15 {
				return true, clampConfidence(0.8 - fv.LexicalOverlap), "Reframed perspective without clear sense loss"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyAS,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if fv.SemanticSimilarity < 0.55 && fv.LexicalOverlap < 0.3 {
				return true, clampConfidence(1 - fv.SemanticSimilarity), "Low semantic similarity and lexical overlap suggest sense alteration"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyDL,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if fv.SemanticSimilarity >= 0.8 && fv.LexicalOverlap >= 0.6 && fv.ReorderDistance > 0.15 {
				return true, clampConfidence(0.5 + fv.ReorderDistance), "Content lemmas reordered between source and target"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyRD,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if fv.SourceSentenceCount == 1 && fv.TargetSentenceCount > 1 && fv.SemanticSimilarity >= 0.7 {
				return true, clampConfidence(0.4 + fv.SentenceCountRatio*0.1), "One long sentence restructured into several shorter ones"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyMT,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if fv.IsHeading && fv.LexicalOverlap < 0.9 {
				return true, 0.6, "Heading reworded for clarity"
			}
			return false, 0, ""
		},
	},
	{
		Code: domain.StrategyIN,
		Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
			if len(fv.ConnectorsGained)+len(fv.ConnectorsLost) > 0 && !fv.IsHeading {
				return true, 0.5, "Parenthetical or appositive content added or removed"
			}
			return false, 0, ""
		},
	},
}

// OMRule is spec.md §4.5's disabled-by-default selective-suppression rule.
// The classifier only evaluates it when classifier.enable_om is true.
var OMRule = Rule{
	Code: domain.StrategyOM,
	Trigger: func(fv *domain.FeatureVector, w RuleWeights) (bool, float64, string) {
		if fv.LengthRatio <= 0.75 && fv.LexicalOverlap >= 0.3 && fv.LexicalOverlap < 0.7 && fv.SemanticSimilarity >= 0.7 {
			return true, clampConfidence(0.5 + (0.75-fv.LengthRatio)), "Source content appears omitted from target"
		}
		return false, 0, ""
	},
}
