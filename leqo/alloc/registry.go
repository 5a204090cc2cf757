package alloc

import (
	"fmt"
	"sync"
)

// Strategy computes a slot assignment from a set of live intervals. It is
// the unit a Registry stores by name (spec.md §4.4 "Fallback"); the
// pipeline calls AllocateGreedy or UniqueSlot directly rather than looking
// one up. Mirrors the named-factory registry idiom of
// _examples/kegliz-qplay/qc/simulator.RunnerRegistry.
type Strategy func(intervals []Interval) (Assignment, error)

// Registry holds named allocation Strategies.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a named strategy. Re-registering an existing name is an
// error — callers that want to override a default must Unregister first.
func (r *Registry) Register(name string, s Strategy) error {
	if name == "" {
		return fmt.Errorf("alloc: strategy name cannot be empty")
	}
	if s == nil {
		return fmt.Errorf("alloc: strategy cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("alloc: strategy %q already registered", name)
	}
	r.strategies[name] = s
	return nil
}

// MustRegister panics on registration failure; for use in init().
func (r *Registry) MustRegister(name string, s Strategy) {
	if err := r.Register(name, s); err != nil {
		panic(err)
	}
}

// Get returns the named strategy.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("alloc: unknown strategy %q", name)
	}
	return s, nil
}

// Unregister removes a strategy, for tests that want a clean slate.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.strategies[name]
	delete(r.strategies, name)
	return exists
}

// Names lists every registered strategy name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		out = append(out, name)
	}
	return out
}

// Default is the package-level registry pre-populated with the two
// strategies spec.md §4.4 names: "greedy-interval" (the optimizing
// default) and "unique-slot" (the optimize=false fallback).
var Default = NewRegistry()

func init() {
	Default.MustRegister("greedy-interval", AllocateGreedy)
	Default.MustRegister("unique-slot", UniqueSlot)
}

// UniqueSlot implements the optimize=false fallback: every interval is
// treated as live for the whole program ([0, +inf)), so the greedy
// colourer necessarily gives each logical qubit its own slot — a correct,
// width-suboptimal baseline (spec.md §4.4).
func UniqueSlot(intervals []Interval) (Assignment, error) {
	widened := make([]Interval, len(intervals))
	for i, iv := range intervals {
		widened[i] = iv
		if !iv.Pinned {
			widened[i].Birth = 0
			widened[i].Death = Infinite
		}
	}
	return AllocateGreedy(widened)
}
