package execution

import (
	"sync"

	"github.com/viant/stepflow/internal/idgen"
)

// Session is the caller-owned shared state threaded through an entire run.
// The engine never inspects or copies its contents - only node hooks read
// and write it. Access is guarded so that parallel batch branches can use
// the same session, though concurrent writers to overlapping keys remain a
// caller concern.
type Session struct {
	ID        string
	mu        sync.RWMutex
	state     map[string]interface{}
	listeners []StateListener
}

// StateListener is invoked every time Session.Set overwrites an existing key
// or inserts a new one.
type StateListener func(s *Session, key string, oldVal, newVal interface{})

// SessionOption customises a new session.
type SessionOption func(*Session)

// WithID overrides the generated session ID.
func WithID(id string) SessionOption {
	return func(s *Session) {
		s.ID = id
	}
}

// WithState seeds the session with the supplied values.
func WithState(values map[string]interface{}) SessionOption {
	return func(s *Session) {
		for k, v := range values {
			s.state[k] = v
		}
	}
}

// NewSession creates a new session.
func NewSession(options ...SessionOption) *Session {
	session := &Session{
		ID:    idgen.New(),
		state: make(map[string]interface{}),
	}
	for _, option := range options {
		option(session)
	}
	return session
}

// RegisterListeners attaches callbacks that will be called on every Set.
// Listeners are invoked outside the session mutex and therefore MUST NOT
// assume they observe every intermediate value under concurrent writers.
func (s *Session) RegisterListeners(fn ...StateListener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn...)
}

// Set adds or updates a value in the session
func (s *Session) Set(key string, value interface{}) {
	s.mu.Lock()
	old := s.state[key]
	s.state[key] = value
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(s, key, old, value)
	}
}

// Get retrieves a value from the session
func (s *Session) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, exists := s.state[key]
	return value, exists
}

// Delete removes a key from the session
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, key)
}

// Append accumulates value under key; an existing non-slice value becomes
// the first element of the resulting slice.
func (s *Session) Append(key string, value interface{}) {
	if value == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var dst []interface{}
	if cur, ok := s.state[key]; ok && cur != nil {
		switch actual := cur.(type) {
		case []interface{}:
			dst = actual
		default:
			dst = []interface{}{actual}
		}
	}
	s.state[key] = append(dst, value)
}

// Snapshot returns a shallow copy of the session state suitable for
// read-only inspection.
func (s *Session) Snapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]interface{}, len(s.state))
	for k, v := range s.state {
		result[k] = v
	}
	return result
}
