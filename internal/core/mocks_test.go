package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Mock implementations

type mockClient struct {
	mu           sync.Mutex
	creds        Credentials
	refreshed    *Credentials // pair handed out by the next successful refresh
	refreshErr   error
	updateErrs   []error // consumed one per Update call
	fetch        []Thermostat
	thermostats  []Thermostat
	updateCalls  int
	refreshCalls int
}

func newMockClient(creds Credentials) *mockClient {
	return &mockClient{
		creds: creds,
		fetch: []Thermostat{{Identifier: "311000000001", Name: "Living Room"}},
	}
}

func (m *mockClient) RefreshTokens(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshCalls++
	if m.refreshErr != nil {
		return m.refreshErr
	}
	if m.refreshed != nil {
		m.creds = *m.refreshed
	}
	return nil
}

func (m *mockClient) Update(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	if len(m.updateErrs) > 0 {
		err := m.updateErrs[0]
		m.updateErrs = m.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	m.thermostats = m.fetch
	return nil
}

func (m *mockClient) Credentials() Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

func (m *mockClient) Thermostats() []Thermostat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thermostats
}

func (m *mockClient) calls() (update, refresh int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCalls, m.refreshCalls
}

type mockStore struct {
	mu        sync.Mutex
	entries   map[string]*Entry
	updateErr error
	listErr   error
	updates   int
}

func newMockStore(entries ...*Entry) *mockStore {
	s := &mockStore{entries: make(map[string]*Entry)}
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return s
}

func (s *mockStore) CreateEntry(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	return nil
}

func (s *mockStore) GetEntry(ctx context.Context, id string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

func (s *mockStore) ListEntries(ctx context.Context, domain string) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	entries := make([]*Entry, 0)
	for _, e := range s.entries {
		if e.Domain == domain {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (s *mockStore) UpdateEntryData(ctx context.Context, id string, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	entry, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	stored := make(map[string]string, len(data))
	for k, v := range data {
		stored[k] = v
	}
	entry.Data = stored
	return nil
}

func (s *mockStore) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *mockStore) storedData(id string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		return e.Data
	}
	return nil
}

type mockPlatform struct {
	name      string
	setupErr  error
	unloadErr error
	delay     time.Duration

	mu      sync.Mutex
	setups  []string
	unloads []string
}

func (p *mockPlatform) Name() string {
	return p.name
}

func (p *mockPlatform) SetupEntry(ctx context.Context, entry *Entry, coordinator *Coordinator) error {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setups = append(p.setups, entry.ID)
	return p.setupErr
}

func (p *mockPlatform) UnloadEntry(ctx context.Context, entry *Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unloads = append(p.unloads, entry.ID)
	return p.unloadErr
}

func (p *mockPlatform) setupCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.setups)
}

func (p *mockPlatform) unloadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.unloads)
}

var errBoom = errors.New("boom")

func testEntry(id string) *Entry {
	return &Entry{
		ID:     id,
		Domain: Domain,
		Title:  Domain,
		Source: SourceUser,
		Data: map[string]string{
			ConfAPIKey:       "K1",
			ConfRefreshToken: "R1",
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
