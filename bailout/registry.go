package bailout

import (
	"sync"
)

// Registry holds the global default, per-pattern, and per-match bailout
// configs, and resolves them into an Effective limit set on demand.
// Queries (GetEffective) may proceed concurrently; registrations acquire
// an exclusive lock, matching the read-heavy/single-writer contract VMs
// depend on when sharing one Registry across goroutines.
type Registry struct {
	mu       sync.RWMutex
	global   Config
	patterns map[int64]Config
	matches  map[int64]Config
}

// New returns a Registry seeded with DefaultConfig as its global layer.
func New() *Registry {
	return &Registry{
		global:   DefaultConfig(),
		patterns: make(map[int64]Config),
		matches:  make(map[int64]Config),
	}
}

// SetGlobal replaces the registry's global config.
func (r *Registry) SetGlobal(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global = cfg
	return nil
}

// RegisterPattern associates cfg with pattern id pid.
func (r *Registry) RegisterPattern(pid int64, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[pid] = cfg
	return nil
}

// RegisterMatch associates cfg with match id mid.
func (r *Registry) RegisterMatch(mid int64, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[mid] = cfg
	return nil
}

// UnregisterMatch drops the match-scoped config for mid, once that match
// has finished and its id can be reused.
func (r *Registry) UnregisterMatch(mid int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matches, mid)
}

// GetEffective resolves the layered configuration for (pid, mid): global,
// then pattern (if registered and overriding), then match (if registered
// and overriding).
func (r *Registry) GetEffective(pid, mid int64) Effective {
	r.mu.RLock()
	defer r.mu.RUnlock()

	eff := overlay(Effective{}, r.global)
	if pc, ok := r.patterns[pid]; ok {
		eff = overlay(eff, pc)
	}
	if mc, ok := r.matches[mid]; ok {
		eff = overlay(eff, mc)
	}
	return eff
}

// Free releases the registry's registrations. Safe to call multiple
// times; the Go GC would reclaim the Registry regardless, but Free
// matches the create/free discipline of every other component here.
func (r *Registry) Free() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = nil
	r.matches = nil
}
