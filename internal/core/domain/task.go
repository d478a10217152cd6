package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerateID creates a unique random ID, used for session and strategy_id
// generation.
func GenerateID() string {
	return uuid.NewString()
}

// TaskType identifies the type of background task.
type TaskType string

const (
	// TaskTypeAnalyze runs the full pipeline (preprocess → embed → align →
	// extract → classify → seed) for one source/target pair.
	TaskTypeAnalyze TaskType = "analyze"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a background job to be processed by workers.
type Task struct {
	// ID is the unique identifier for this task
	ID string `json:"id"`

	// Type identifies what kind of task this is
	Type TaskType `json:"type"`

	// Payload contains task-specific data.
	// For analyze: {"session_id": "...", "source_text": "...", "target_text": "..."}
	Payload map[string]string `json:"payload"`

	// Status is the current state of the task
	Status TaskStatus `json:"status"`

	// Attempts is how many times this task has been attempted
	Attempts int `json:"attempts"`

	// MaxAttempts is the maximum retry count before giving up
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	// CreatedAt is when the task was enqueued
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified
	UpdatedAt time.Time `json:"updated_at"`

	// StartedAt is when processing began (nil if not started)
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when processing finished (nil if not complete)
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ScheduledFor is when the task should be processed (for delayed retries)
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewAnalyzeTask creates a task to run the pipeline for sessionID, carrying
// the raw source and target texts in its payload.
func NewAnalyzeTask(sessionID, sourceText, targetText string) *Task {
	now := time.Now()
	return &Task{
		ID:   GenerateID(),
		Type: TaskTypeAnalyze,
		Payload: map[string]string{
			"session_id":  sessionID,
			"source_text": sourceText,
			"target_text": targetText,
		},
		Status:       TaskStatusPending,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// SessionID extracts the session_id this task analyzes.
func (t *Task) SessionID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["session_id"]
}

// SourceText extracts the raw source text from the payload.
func (t *Task) SourceText() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["source_text"]
}

// TargetText extracts the raw target text from the payload.
func (t *Task) TargetText() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["target_text"]
}

// CanRetry returns true if the task can be retried.
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady returns true if the task is ready to be processed.
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && time.Now().After(t.ScheduledFor)
}

// MarkProcessing updates the task to processing state.
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state.
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state.
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry resets the task for retry with exponential backoff.
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err

	// Exponential backoff: 1s, 2s, 4s, 8s, etc.
	backoff := time.Duration(1<<t.Attempts) * time.Second
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute // Cap at 5 minutes
	}
	t.ScheduledFor = now.Add(backoff)
}

// TaskResult represents the outcome of processing an analyze task.
type TaskResult struct {
	TaskID    string        `json:"task_id"`
	SessionID string        `json:"session_id"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Truncated bool          `json:"truncated"`
}
