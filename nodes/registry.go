// Package nodes provides builtin chainz nodes for map records and a registry
// that builds nodes by reference name, as used by declarative pipeline
// definitions.
package nodes

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zoobzio/chainz"
)

// ErrUnknownRef is returned when no factory is registered for a reference.
var ErrUnknownRef = errors.New("nodes: unknown node reference")

// Factory builds a node with the given id from its parameters.
type Factory func(id string, params Params) (chainz.Node, error)

// Entry is a registered factory together with its documentation.
type Entry struct {
	Factory Factory
	Doc     chainz.Doc
	Ref     string
}

// Registry maps reference names to node factories. It is safe for
// concurrent use.
type Registry struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Default returns a new registry holding every builtin node.
func Default() *Registry {
	r := NewRegistry()
	for _, e := range builtins() {
		r.MustRegister(e.Ref, e.Doc, e.Factory)
	}
	return r
}

// Register adds a factory under ref. Registering the same ref twice fails.
func (r *Registry) Register(ref string, doc chainz.Doc, factory Factory) error {
	if ref == "" {
		return errors.New("nodes: empty reference")
	}
	if factory == nil {
		return fmt.Errorf("nodes: nil factory for %q", ref)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[ref]; exists {
		return fmt.Errorf("nodes: %q already registered", ref)
	}
	r.entries[ref] = Entry{Ref: ref, Doc: doc, Factory: factory}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(ref string, doc chainz.Doc, factory Factory) {
	if err := r.Register(ref, doc, factory); err != nil {
		panic(err)
	}
}

// Build creates the node registered under ref. An empty id defaults to ref.
func (r *Registry) Build(ref, id string, params Params) (chainz.Node, error) {
	r.mu.RLock()
	entry, ok := r.entries[ref]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRef, ref)
	}
	if id == "" {
		id = ref
	}
	n, err := entry.Factory(id, params)
	if err != nil {
		return nil, fmt.Errorf("nodes: build %s %q: %w", ref, id, err)
	}
	return n, nil
}

// Entries returns every registered entry sorted by reference.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}
