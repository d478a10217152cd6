package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/netest/netest-core/internal/core/domain"
)

// MockAnnotationStore is an in-memory implementation of driven.AnnotationStore
// for testing the classifier pipeline and the annotation lifecycle service
// without a real filesystem/SQLite/Postgres backend.
type MockAnnotationStore struct {
	mu          sync.RWMutex
	sessions    map[string]*domain.Session
	annotations map[string]map[string]*domain.StrategyPrediction // sessionID -> strategyID -> prediction
	auditLog    map[string][]*domain.AuditEntry                  // sessionID -> entries
}

// NewMockAnnotationStore creates a new MockAnnotationStore.
func NewMockAnnotationStore() *MockAnnotationStore {
	return &MockAnnotationStore{
		sessions:    make(map[string]*domain.Session),
		annotations: make(map[string]map[string]*domain.StrategyPrediction),
		auditLog:    make(map[string][]*domain.AuditEntry),
	}
}

func (m *MockAnnotationStore) CreateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = session
	m.annotations[session.SessionID] = make(map[string]*domain.StrategyPrediction)
	m.auditLog[session.SessionID] = nil
	return nil
}

func (m *MockAnnotationStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockAnnotationStore) GetSessionRecord(ctx context.Context, id string) (*domain.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var annotations []*domain.StrategyPrediction
	for _, a := range m.annotations[id] {
		annotations = append(annotations, a)
	}
	return &domain.SessionRecord{
		Session:     session,
		Annotations: annotations,
		AuditLog:    m.auditLog[id],
	}, nil
}

func (m *MockAnnotationStore) ListSessions(ctx context.Context, limit, offset int) ([]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*domain.Session
	for _, s := range m.sessions {
		all = append(all, s)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockAnnotationStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.annotations, id)
	delete(m.auditLog, id)
	return nil
}

func (m *MockAnnotationStore) SeedAnnotations(ctx context.Context, sessionID string, predictions []*domain.StrategyPrediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.annotations[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	for _, p := range predictions {
		if _, exists := bucket[p.StrategyID]; exists {
			continue
		}
		bucket[p.StrategyID] = p
	}
	return nil
}

func (m *MockAnnotationStore) GetAnnotation(ctx context.Context, sessionID, strategyID string) (*domain.StrategyPrediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket, ok := m.annotations[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	a, ok := bucket[strategyID]
	if !ok {
		return nil, domain.ErrAnnotationNotFound
	}
	return a, nil
}

func (m *MockAnnotationStore) ListAnnotations(ctx context.Context, sessionID string) ([]*domain.StrategyPrediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket, ok := m.annotations[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var out []*domain.StrategyPrediction
	for _, a := range bucket {
		out = append(out, a)
	}
	return out, nil
}

func (m *MockAnnotationStore) ApplyTransition(ctx context.Context, sessionID string, entry *domain.AuditEntry, updated *domain.StrategyPrediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.annotations[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if _, ok := bucket[updated.StrategyID]; !ok {
		return domain.ErrAnnotationNotFound
	}
	bucket[updated.StrategyID] = updated
	entry.Timestamp = time.Now()
	m.auditLog[sessionID] = append(m.auditLog[sessionID], entry)
	return nil
}

func (m *MockAnnotationStore) CreateAnnotation(ctx context.Context, sessionID string, prediction *domain.StrategyPrediction, entry *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.annotations[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	bucket[prediction.StrategyID] = prediction
	entry.Timestamp = time.Now()
	m.auditLog[sessionID] = append(m.auditLog[sessionID], entry)
	return nil
}

func (m *MockAnnotationStore) GetAuditLog(ctx context.Context, sessionID string) ([]*domain.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return nil, domain.ErrSessionNotFound
	}
	return m.auditLog[sessionID], nil
}

func (m *MockAnnotationStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MockAnnotationStore) Close() error {
	return nil
}

// Reset clears all sessions, annotations and audit entries (useful between
// tests).
func (m *MockAnnotationStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*domain.Session)
	m.annotations = make(map[string]map[string]*domain.StrategyPrediction)
	m.auditLog = make(map[string][]*domain.AuditEntry)
}

// Count returns the number of sessions currently stored (for test
// assertions).
func (m *MockAnnotationStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
