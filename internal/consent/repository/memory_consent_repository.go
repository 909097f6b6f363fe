package repository

import (
	"context"
	"sync"

	consentDomain "github.com/medmarket/phiguard/internal/consent/domain"
)

type consentKey struct {
	subjectID string
	purpose   string
}

// MemoryConsentRepository keeps consent state in process memory. Transactions
// are not supported; pair it with a TxManager that runs the function inline.
type MemoryConsentRepository struct {
	mu      sync.RWMutex
	records map[consentKey]consentDomain.Record
	events  map[consentKey][]consentDomain.Event
}

// Get returns a copy of the record with its history.
func (m *MemoryConsentRepository) Get(
	_ context.Context,
	subjectID, purpose string,
) (*consentDomain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := consentKey{subjectID, purpose}
	record, ok := m.records[key]
	if !ok {
		return nil, consentDomain.ErrConsentNotFound
	}
	record.History = append([]consentDomain.Event(nil), m.events[key]...)
	return &record, nil
}

// Upsert stores the current state of record.
func (m *MemoryConsentRepository) Upsert(_ context.Context, record *consentDomain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *record
	stored.History = nil
	m.records[consentKey{record.SubjectID, record.Purpose}] = stored
	return nil
}

// AppendEvent appends a history event.
func (m *MemoryConsentRepository) AppendEvent(
	_ context.Context,
	subjectID, purpose string,
	event consentDomain.Event,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := consentKey{subjectID, purpose}
	m.events[key] = append(m.events[key], event)
	return nil
}

// NewMemoryConsentRepository creates an empty in-memory consent repository.
func NewMemoryConsentRepository() *MemoryConsentRepository {
	return &MemoryConsentRepository{
		records: make(map[consentKey]consentDomain.Record),
		events:  make(map[consentKey][]consentDomain.Event),
	}
}
