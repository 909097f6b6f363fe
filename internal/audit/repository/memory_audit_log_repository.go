package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
)

// MemoryAuditLogRepository is an in-process sink and reader used in tests and
// development. Entries live only as long as the process.
type MemoryAuditLogRepository struct {
	mu      sync.RWMutex
	entries []*auditDomain.Entry
	ids     map[uuid.UUID]struct{}
}

// Name returns the sink name.
func (m *MemoryAuditLogRepository) Name() string {
	return "memory"
}

// Write appends a copy of entry. Duplicate IDs are ignored.
func (m *MemoryAuditLogRepository) Write(_ context.Context, entry *auditDomain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[entry.ID]; ok {
		return nil
	}
	clone := *entry
	m.entries = append(m.entries, &clone)
	m.ids[entry.ID] = struct{}{}
	return nil
}

// Entries returns a snapshot of every stored entry in write order.
func (m *MemoryAuditLogRepository) Entries() []*auditDomain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*auditDomain.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// List returns entries matching filter, newest first.
func (m *MemoryAuditLogRepository) List(
	_ context.Context,
	filter auditDomain.ListFilter,
) ([]*auditDomain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*auditDomain.Entry, 0)
	for _, e := range m.entries {
		if filter.From != nil && e.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Timestamp.After(*filter.To) {
			continue
		}
		if filter.ActorID != "" && e.Actor.ID != filter.ActorID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if filter.Offset >= len(matched) {
		return []*auditDomain.Entry{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// ListBetween returns every entry in [from, to], oldest first.
func (m *MemoryAuditLogRepository) ListBetween(
	_ context.Context,
	from, to time.Time,
) ([]*auditDomain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*auditDomain.Entry, 0)
	for _, e := range m.entries {
		if !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// ListByRequestID returns the entries recorded for requestID in write order.
func (m *MemoryAuditLogRepository) ListByRequestID(
	_ context.Context,
	requestID string,
) ([]*auditDomain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*auditDomain.Entry, 0)
	for _, e := range m.entries {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

// NewMemoryAuditLogRepository creates an empty in-memory repository.
func NewMemoryAuditLogRepository() *MemoryAuditLogRepository {
	return &MemoryAuditLogRepository{ids: make(map[uuid.UUID]struct{})}
}
