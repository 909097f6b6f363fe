// Package repository provides emergency grant stores.
package repository

import (
	"context"
	"sync"
	"time"

	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
)

type grantKey struct {
	grantee  string
	resource string
}

// MemoryGrantStore keeps the latest grant per grantee and resource in memory.
type MemoryGrantStore struct {
	now func() time.Time

	mu     sync.RWMutex
	grants map[grantKey]emergencyDomain.Grant
}

// NewMemoryGrantStore creates an empty store.
func NewMemoryGrantStore() *MemoryGrantStore {
	return &MemoryGrantStore{
		now:    time.Now,
		grants: make(map[grantKey]emergencyDomain.Grant),
	}
}

// Save stores grant, replacing an older grant for the same pair, and drops
// grants that expired.
func (m *MemoryGrantStore) Save(_ context.Context, grant *emergencyDomain.Grant) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, g := range m.grants {
		if !now.Before(g.ExpiresAt) {
			delete(m.grants, k)
		}
	}
	m.grants[grantKey{grant.Grantee, grant.Resource}] = *grant
	return nil
}

// Find returns a copy of the grant for grantee on resource, or nil.
func (m *MemoryGrantStore) Find(_ context.Context, grantee, resource string) (*emergencyDomain.Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.grants[grantKey{grantee, resource}]
	if !ok {
		return nil, nil
	}
	return &g, nil
}
