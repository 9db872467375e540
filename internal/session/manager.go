package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcd-community/handbook/internal/models"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Snapshot is a point-in-time copy of a session's readable state.
type Snapshot struct {
	ID              string                `json:"id"`
	State           State                 `json:"state"`
	Query           string                `json:"query"`
	HighlightedTerm string                `json:"highlighted_term"`
	Results         []models.SearchResult `json:"results"`
	Cursor          int                   `json:"cursor"`
	Active          *models.SearchResult  `json:"active,omitempty"`
}

func snapshot(id string, s *Session) Snapshot {
	return Snapshot{
		ID:              id,
		State:           s.State(),
		Query:           s.Query(),
		HighlightedTerm: s.HighlightedTerm(),
		Results:         append([]models.SearchResult{}, s.Results()...),
		Cursor:          s.Cursor(),
		Active:          s.Active(),
	}
}

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastUsed time.Time
}

// Manager owns the sessions of all clients and expires idle ones.
type Manager struct {
	source      SectionSource
	sessionOpts []Option
	ttl         time.Duration
	maxSessions int
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL sets how long an unused session is kept. Zero disables expiry.
func WithTTL(d time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = d }
}

// WithMaxSessions caps the number of live sessions; the least recently used
// session is evicted when a new one would exceed it. Zero means no cap.
func WithMaxSessions(n int) ManagerOption {
	return func(m *Manager) { m.maxSessions = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithSessionOptions applies opts to every session the manager creates.
func WithSessionOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.sessionOpts = append(m.sessionOpts, opts...) }
}

// NewManager creates a session manager over source.
func NewManager(source SectionSource, opts ...ManagerOption) *Manager {
	m := &Manager{
		source:   source,
		logger:   zap.NewNop(),
		now:      time.Now,
		sessions: make(map[string]*entry),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new idle session and returns its snapshot.
func (m *Manager) Create() Snapshot {
	id := uuid.NewString()
	e := &entry{session: New(m.source, m.sessionOpts...), lastUsed: m.now()}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.evictOldestLocked()
	}
	m.sessions[id] = e
	m.mu.Unlock()

	m.logger.Debug("session created", zap.String("id", id))
	return snapshot(id, e.session)
}

// evictOldestLocked removes the least recently used session. m.mu must be held.
func (m *Manager) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range m.sessions {
		e.mu.Lock()
		used := e.lastUsed
		e.mu.Unlock()
		if oldestID == "" || used.Before(oldest) {
			oldestID, oldest = id, used
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
		m.logger.Debug("session evicted", zap.String("id", oldestID))
	}
}

// Do runs fn with exclusive access to the session and returns its state
// afterwards. fn may be nil to only read.
func (m *Manager) Do(id string, fn func(*Session)) (Snapshot, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if fn != nil {
		fn(e.session)
	}
	e.lastUsed = m.now()
	return snapshot(id, e.session), nil
}

// Get returns the session's current state.
func (m *Manager) Get(id string) (Snapshot, error) {
	return m.Do(id, nil)
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions unused for longer than the TTL and returns how many were removed.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.sessions {
		e.mu.Lock()
		expired := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if expired {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Start runs the expiry loop until ctx is done or Close is called.
func (m *Manager) Start(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.logger.Debug("expired sessions removed", zap.Int("count", n))
				}
			}
		}
	}()
}

// Close stops the expiry loop and waits for it to exit.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.stop) })
	m.wg.Wait()
}
