package auth

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. It
// backs tests and DSN-less development runs; production uses Postgres.
type InMemory struct {
	mu      sync.RWMutex
	staff   map[string]*Staff
	byEmail map[string]string // normalized email -> staff id
	byToken map[string]string // session token -> staff id
	catalog map[string]PermissionDefinition
	grants  map[string]map[string]Grant // staff id -> key -> grant
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		staff:   make(map[string]*Staff),
		byEmail: make(map[string]string),
		byToken: make(map[string]string),
		catalog: make(map[string]PermissionDefinition),
		grants:  make(map[string]map[string]Grant),
	}
}

var _ Store = (*InMemory)(nil)

func (m *InMemory) Staff(context.Context) StaffStore     { return m }
func (m *InMemory) Catalog(context.Context) CatalogStore { return m }
func (m *InMemory) Grants(context.Context) GrantStore    { return m }

// Staff store --------------------------------------------------------------

func (m *InMemory) Create(ctx context.Context, s *Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[s.Email]; ok {
		return ErrConflict
	}
	cp := *s
	m.staff[cp.ID] = &cp
	m.byEmail[cp.Email] = cp.ID
	return nil
}

func (m *InMemory) Find(ctx context.Context, id string) (*Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyLocked(id)
}

func (m *InMemory) FindByEmail(ctx context.Context, email string) (*Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return m.copyLocked(id)
}

func (m *InMemory) FindBySessionToken(ctx context.Context, token string) (*Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	return m.copyLocked(id)
}

func (m *InMemory) ListByOwner(ctx context.Context, ownerID string) ([]*Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Staff
	for _, s := range m.staff {
		if s.OwnerID != ownerID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *InMemory) StartSession(ctx context.Context, staffID, token string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[staffID]
	if !ok {
		return ErrNotFound
	}
	// The record holds one token; replacing it drops the old index entry
	// so the prior value stops matching the moment this commits.
	if s.SessionToken != "" {
		delete(m.byToken, s.SessionToken)
	}
	s.SessionToken = token
	s.SessionExpiry = expiry
	s.FailedLoginAttempts = 0
	s.UpdatedAt = time.Now().UTC()
	m.byToken[token] = staffID
	return nil
}

func (m *InMemory) ClearSession(ctx context.Context, staffID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[staffID]
	if !ok {
		return ErrNotFound
	}
	if s.SessionToken != "" {
		delete(m.byToken, s.SessionToken)
	}
	s.SessionToken = ""
	s.SessionExpiry = time.Time{}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *InMemory) RecordLoginFailure(ctx context.Context, staffID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[staffID]
	if !ok {
		return ErrNotFound
	}
	s.FailedLoginAttempts++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *InMemory) SetActive(ctx context.Context, staffID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[staffID]
	if !ok {
		return ErrNotFound
	}
	s.Active = active
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *InMemory) Delete(ctx context.Context, staffID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[staffID]
	if !ok {
		return ErrNotFound
	}
	delete(m.byEmail, s.Email)
	if s.SessionToken != "" {
		delete(m.byToken, s.SessionToken)
	}
	delete(m.staff, staffID)
	delete(m.grants, staffID)
	return nil
}

func (m *InMemory) copyLocked(id string) (*Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// Catalog store ------------------------------------------------------------

func (m *InMemory) Ensure(ctx context.Context, defs []PermissionDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range defs {
		if _, ok := m.catalog[d.Key]; ok {
			continue
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = time.Now().UTC()
		}
		m.catalog[d.Key] = d
	}
	return nil
}

func (m *InMemory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.catalog[key]
	return ok, nil
}

func (m *InMemory) List(ctx context.Context) ([]PermissionDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PermissionDefinition, 0, len(m.catalog))
	for _, d := range m.catalog {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// UpdateLabel exists so tests can edit a live catalog row and prove the
// seed never clobbers it.
func (m *InMemory) UpdateLabel(key, label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.catalog[key]
	if !ok {
		return false
	}
	d.Label = label
	m.catalog[key] = d
	return true
}

// Grant store --------------------------------------------------------------

func (m *InMemory) IsGranted(ctx context.Context, staffID, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.grants[staffID][key]
	if !ok {
		return false, nil
	}
	return g.Enabled, nil
}

func (m *InMemory) Set(ctx context.Context, staffID, key string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.grants[staffID] == nil {
		m.grants[staffID] = make(map[string]Grant)
	}
	m.grants[staffID][key] = Grant{
		StaffID:       staffID,
		PermissionKey: key,
		Enabled:       enabled,
		UpdatedAt:     time.Now().UTC(),
	}
	return nil
}

func (m *InMemory) ListByStaff(ctx context.Context, staffID string) ([]Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Grant, 0, len(m.grants[staffID]))
	for _, g := range m.grants[staffID] {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PermissionKey < out[j].PermissionKey })
	return out, nil
}
