package source

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps source id -> Source. New boards register themselves; the
// orchestrator never branches on a concrete adapter type.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*Source)}
}

func (r *Registry) Register(s *Source) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("register: source id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.sources[s.ID]; dup {
		return fmt.Errorf("register: duplicate source %q", s.ID)
	}
	r.sources[s.ID] = s
	return nil
}

func (r *Registry) Get(id string) (*Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[id]
	return s, ok
}

// IDs returns registered ids in stable order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for id := range r.sources {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
