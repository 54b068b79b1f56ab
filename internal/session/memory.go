package session

import "sync"

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	locksMu sync.Mutex
	locks   map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryStore constructs an in-process Store. Sessions do not survive a restart.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*userLock),
	}
}

// Get returns a copy of the stored session.
func (m *memoryStore) Get(userID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Put stores a copy of s under s.UserID.
func (m *memoryStore) Put(s *Session) {
	if s == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s.Clone()
}

// Delete removes the user's session.
func (m *memoryStore) Delete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Len returns the number of stored sessions.
func (m *memoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Lock acquires the per-user mutex. Entries are reference counted and dropped
// once no goroutine holds or waits for them.
func (m *memoryStore) Lock(userID int64) func() {
	m.locksMu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &userLock{}
		m.locks[userID] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			m.locksMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(m.locks, userID)
			}
			m.locksMu.Unlock()
		})
	}
}
