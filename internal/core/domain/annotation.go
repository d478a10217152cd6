package domain

import "time"

// StrategyCode is one of the fourteen canonical simplification strategy
// tags. The vocabulary is fixed; see StrategyVocabulary.
type StrategyCode string

const (
	StrategyAS  StrategyCode = "AS+" // sense alteration
	StrategyDL  StrategyCode = "DL+" // reorganization / reordering
	StrategyEXP StrategyCode = "EXP+" // explicitation
	StrategyIN  StrategyCode = "IN+" // insertion handling
	StrategyMOD StrategyCode = "MOD+" // perspective reinterpretation
	StrategyMT  StrategyCode = "MT+" // title optimization
	StrategyOM  StrategyCode = "OM+" // selective suppression
	StrategyPRO StrategyCode = "PRO+" // semantic drift / meaning deviation
	StrategyRF  StrategyCode = "RF+" // global rewrite
	StrategyRD  StrategyCode = "RD+" // content structuring
	StrategyRP  StrategyCode = "RP+" // syntactic fragmentation
	StrategySL  StrategyCode = "SL+" // vocabulary adequation
	StrategyTA  StrategyCode = "TA+" // referential clarity
	StrategyMV  StrategyCode = "MV+" // voice change
)

// StrategyInfo is the glossary entry for a tag: human-readable name and
// short description, kept alongside the code so the classifier, the store
// and any future UI read the same vocabulary.
type StrategyInfo struct {
	Code        StrategyCode
	Name        string
	Description string
}

// StrategyVocabulary is the fixed 14-tag vocabulary from spec.md §4.5.
var StrategyVocabulary = []StrategyInfo{
	{StrategyAS, "Alteração de sentido", "Sense alteration: the target diverges in meaning from the source."},
	{StrategyDL, "Reorganização", "Content reordered within or across sentences while meaning is preserved."},
	{StrategyEXP, "Explicitação", "Implicit source content made explicit (added connectors, clarifications)."},
	{StrategyIN, "Tratamento de inserções", "A parenthetical or appositive is added or removed."},
	{StrategyMOD, "Reinterpretação perspectiva", "The target reframes the source's perspective without clear sense loss."},
	{StrategyMT, "Otimização de título", "A heading/title is reworded for clarity."},
	{StrategyOM, "Supressão seletiva", "Content present in the source is omitted from the target."},
	{StrategyPRO, "Desvio de sentido", "Meaning deviation flagged only by a human reviewer."},
	{StrategyRF, "Reescrita global", "The paragraph is substantially rewritten rather than locally edited."},
	{StrategyRD, "Estruturação de conteúdo", "One long sentence is restructured into several shorter ones."},
	{StrategyRP, "Fragmentação sintática", "A sentence is split into multiple sentences."},
	{StrategySL, "Adequação vocabular", "Vocabulary is simplified to more common or shorter words."},
	{StrategyTA, "Clareza referencial", "Pronouns are replaced by clearer referential expressions."},
	{StrategyMV, "Mudança de voz", "Grammatical voice (active/passive) changes between source and target."},
}

// IsKnownStrategyCode reports whether code is in the fixed vocabulary.
func IsKnownStrategyCode(code StrategyCode) bool {
	for _, s := range StrategyVocabulary {
		if s.Code == code {
			return true
		}
	}
	return false
}

// AnnotationOrigin records who produced a StrategyPrediction.
type AnnotationOrigin string

const (
	OriginMachine AnnotationOrigin = "machine"
	OriginHuman   AnnotationOrigin = "human"
)

// AnnotationStatus is the tagged-variant status of a StrategyPrediction, per
// spec.md §9's "heterogeneous annotation statuses → tagged variant" note.
type AnnotationStatus string

const (
	StatusPending   AnnotationStatus = "pending"
	StatusAccepted  AnnotationStatus = "accepted"
	StatusRejected  AnnotationStatus = "rejected"
	StatusModified  AnnotationStatus = "modified"
	StatusCreated   AnnotationStatus = "created"
)

// Offset is a half-open character interval [Start, End) into a document's
// normalized text.
type Offset struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the offset is well-formed against a text of the
// given length.
func (o Offset) Valid(textLen int) bool {
	return o.Start >= 0 && o.End > o.Start && o.End <= textLen
}

// StrategyPrediction binds a strategy tag to spans in the target (and
// optionally the source), with confidence, evidence and lifecycle status.
// See spec.md §3 for the full invariant list.
type StrategyPrediction struct {
	StrategyID     string           `json:"strategy_id"`
	Code           StrategyCode     `json:"code"`
	Confidence     float64          `json:"confidence"`
	Evidence       []string         `json:"evidence"`
	TargetOffsets  []Offset         `json:"target_offsets"`
	SourceOffsets  []Offset         `json:"source_offsets,omitempty"`
	Origin         AnnotationOrigin `json:"origin"`
	Status         AnnotationStatus `json:"status"`
	OriginalCode   *StrategyCode    `json:"original_code,omitempty"`
	Comment        string           `json:"comment,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// allowedTransitions enumerates the legal status transitions from spec.md
// §3's StrategyPrediction lifecycle row. Modeled as data (a map of sets) so
// CanTransition is one lookup, not a chain of if-statements.
var allowedTransitions = map[AnnotationStatus]map[AnnotationStatus]bool{
	StatusPending:  {StatusAccepted: true, StatusRejected: true, StatusModified: true},
	StatusModified: {StatusRejected: true},
	StatusCreated:  {StatusRejected: true},
}

// CanTransition reports whether moving from 'from' to 'to' is legal. Status
// is unchanged by a span-edit unless the prior status was pending (handled
// by the caller, not here, since span-edit is not a status-to-status move).
func CanTransition(from, to AnnotationStatus) bool {
	set, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return set[to]
}

// AuditAction identifies the kind of mutation recorded in an AuditEntry.
type AuditAction string

const (
	ActionCreate     AuditAction = "create"
	ActionAccept     AuditAction = "accept"
	ActionReject     AuditAction = "reject"
	ActionModifyCode AuditAction = "modify_code"
	ActionModifySpan AuditAction = "modify_span"
)

// AuditEntry is one append-only record of a state change applied to a
// StrategyPrediction. Audit entries are never deleted or edited.
type AuditEntry struct {
	StrategyID string           `json:"strategy_id"`
	Action     AuditAction      `json:"action"`
	FromStatus AnnotationStatus `json:"from_status"`
	ToStatus   AnnotationStatus `json:"to_status"`
	FromCode   StrategyCode     `json:"from_code,omitempty"`
	ToCode     StrategyCode     `json:"to_code,omitempty"`
	FromOffsets []Offset        `json:"from_offsets,omitempty"`
	ToOffsets   []Offset        `json:"to_offsets,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
	Comment    string           `json:"comment,omitempty"`
}

// ExportableStatuses are the statuses included in an Annotation Store export
// (spec.md §4.6 "export" operation).
var ExportableStatuses = map[AnnotationStatus]bool{
	StatusAccepted: true,
	StatusModified: true,
	StatusCreated:  true,
}
