// Package registry tracks the named handles of a built scenario graph.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/anchorgraph/anchor"
	"github.com/vk/anchorgraph/internal/builder"
)

type entry struct {
	// node is the owning handle; nil once the scenario released it. The ref
	// stays usable either way, so expectations can probe collected nodes.
	node *anchor.Node[*builder.Entity]
	ref  anchor.Ref[*builder.Entity]
}

// Registry is a thread-safe name-to-handle store for one scenario run.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates a registry holding the given owning handles.
func New(nodes map[string]*anchor.Node[*builder.Entity]) *Registry {
	r := &Registry{entries: make(map[string]*entry, len(nodes))}
	for name, n := range nodes {
		r.entries[name] = &entry{node: n, ref: n.Downgrade()}
	}
	return r
}

// Ref returns the non-owning reference registered under name.
func (r *Registry) Ref(name string) (anchor.Ref[*builder.Entity], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return anchor.Ref[*builder.Entity]{}, fmt.Errorf("no node named %q", name)
	}
	return e.ref, nil
}

// Alive reports whether the named node can still be upgraded to an owning
// handle.
func (r *Registry) Alive(name string) (bool, error) {
	ref, err := r.Ref(name)
	if err != nil {
		return false, err
	}
	return ref.Alive(), nil
}

// Release drops the owning handle registered under name. Releasing a name
// twice is an error; the collector outcome of the underlying drop is
// returned as-is.
func (r *Registry) Release(name string) error {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("no node named %q", name)
	}
	node := e.node
	e.node = nil
	r.mu.Unlock()

	if node == nil {
		return fmt.Errorf("node %q already released", name)
	}
	// Finalizers run inside Release; the lock is dropped first so they may
	// call back into the registry.
	return node.Release()
}

// ReleaseAll drops every owning handle still held, in name order. The first
// release error is returned after all releases were attempted.
func (r *Registry) ReleaseAll() error {
	r.mu.Lock()
	var pending []string
	for name, e := range r.entries {
		if e.node != nil {
			pending = append(pending, name)
		}
	}
	r.mu.Unlock()
	sort.Strings(pending)

	var firstErr error
	for _, name := range pending {
		if err := r.Release(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
