package domain

import "time"

// Session owns its Documents, AlignedPairs and annotations exclusively, per
// spec.md §3's ownership rule. It is created per analysis request and
// persisted until explicitly purged.
type Session struct {
	SessionID  string     `json:"session_id"`
	SourceText string     `json:"source_text"`
	TargetText string     `json:"target_text"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// ModelVersion and Degraded record which embedder produced the
	// predictions seeded into this session, for reproducibility.
	ModelVersion string `json:"model_version,omitempty"`
	Degraded     bool   `json:"degraded"`
	Truncated    bool   `json:"truncated"`
}

// SessionRecord is the full persisted shape of a session: metadata plus its
// annotations and audit entries, matching the filesystem backend's one
// file per session (spec.md §6 "Persisted state layout").
type SessionRecord struct {
	Session     *Session               `json:"session"`
	Annotations []*StrategyPrediction  `json:"annotations"`
	AuditLog    []*AuditEntry          `json:"audit_log"`
}

// AnalysisReport is what the pipeline returns to the caller of Analyze: the
// aligned pairs and the machine predictions proposed for seeding, alongside
// whatever degraded/truncated flags accumulated along the way.
type AnalysisReport struct {
	Session     *Session
	Alignment   *AlignmentResult
	Predictions []*StrategyPrediction
}
