package session

import (
	"log"
	"sync"
	"time"

	"smartpark/ledger-service/internal/store"

	"github.com/google/uuid"
)

// Manager holds sessions keyed by opaque id. Each access extends the
// session's expiry by the TTL.
type Manager struct {
	mu       sync.Mutex
	dir      Directory
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*entry
}

type entry struct {
	session   Session
	expiresAt time.Time
}

type Options struct {
	TTL time.Duration
	Now func() time.Time
}

func NewManager(dir Directory, options Options) *Manager {
	ttl := options.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		dir:      dir,
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]*entry),
	}
}

// Login starts a session for username and returns its id with the
// resolved view.
func (m *Manager) Login(username string) (string, View, error) {
	var session Session
	if err := session.Login(m.dir, username); err != nil {
		return "", View{}, err
	}
	view, err := session.Resolve(m.dir)
	if err != nil {
		return "", View{}, err
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &entry{session: session, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	log.Printf("session started session=%s user=%s role=%s", shortID(id), view.User.Username, view.User.Role)
	return id, view, nil
}

func (m *Manager) Logout(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.session.Logout()
		delete(m.sessions, id)
	}
}

// Resolve returns the current view of a live session.
func (m *Manager) Resolve(id string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}
	view, err := e.session.Resolve(m.dir)
	if err != nil {
		delete(m.sessions, id)
		return View{}, err
	}
	return view, nil
}

func (m *Manager) SwitchBranch(id, branchID string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}
	if err := e.session.SwitchBranch(m.dir, branchID); err != nil {
		return View{}, err
	}
	return e.session.Resolve(m.dir)
}

// lookup finds a live session and slides its expiry. Callers hold m.mu.
func (m *Manager) lookup(id string) (*entry, error) {
	e, ok := m.sessions[id]
	now := m.now()
	if !ok || !now.Before(e.expiresAt) {
		delete(m.sessions, id)
		return nil, store.ErrSessionNotFound
	}
	e.expiresAt = now.Add(m.ttl)
	return e, nil
}

// Sweep drops expired sessions and reports how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, e := range m.sessions {
		if !now.Before(e.expiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// shortID keeps enough of a session id to correlate log lines.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
