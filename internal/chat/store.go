package chat

import (
	"sync"

	"github.com/campgen/campgen/internal/catalog"
	"github.com/campgen/campgen/internal/pipeline"
)

// Store manages sessions by key. Sessions are in-memory only; conversation
// persistence is deliberately not part of this core.
type Store struct {
	mu       sync.RWMutex
	gen      *pipeline.Generator
	registry *catalog.Registry
	sink     EventSink
	sessions map[string]*Session
}

func NewStore(gen *pipeline.Generator, registry *catalog.Registry, sink EventSink) *Store {
	return &Store{
		gen:      gen,
		registry: registry,
		sink:     sink,
		sessions: make(map[string]*Session),
	}
}

// Get returns an existing session, or nil.
func (s *Store) Get(key string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[key]
}

// GetOrCreate returns an existing session or creates a new one.
func (s *Store) GetOrCreate(key string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	sess := NewSession(key, s.gen, s.registry, s.sink)
	s.sessions[key] = sess
	return sess
}

// List returns all sessions.
func (s *Store) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
