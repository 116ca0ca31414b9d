package catalog

import (
	"sort"
	"sync"
)

// CapabilityRegistry remembers filter keys the backend index cannot honor.
// It grows monotonically for the process lifetime: a restart is required to
// re-probe. Safe for concurrent discovery; marking a key twice is a no-op.
type CapabilityRegistry struct {
	mu     sync.RWMutex
	broken map[string]struct{}
}

// NewCapabilityRegistry creates an empty registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{broken: make(map[string]struct{})}
}

// MarkUnsupported records filter keys as unsupported by the index.
func (r *CapabilityRegistry) MarkUnsupported(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		r.broken[k] = struct{}{}
	}
}

// IsUnsupported reports whether a filter key is known-unsupported.
func (r *CapabilityRegistry) IsUnsupported(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.broken[key]
	return ok
}

// AnyUnsupported reports whether any of the keys is known-unsupported.
func (r *CapabilityRegistry) AnyUnsupported(keys []string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range keys {
		if _, ok := r.broken[k]; ok {
			return true
		}
	}
	return false
}

// Snapshot returns the known-unsupported keys sorted, for diagnostics.
func (r *CapabilityRegistry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.broken))
	for k := range r.broken {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
