package adapter

import (
	"fmt"
	"sort"

	"github.com/kaiachai/scanpipe/proc"
)

// Registry holds registered tool adapters keyed by Name().
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter to the registry, keyed by its Name().
func (r *Registry) Register(a Adapter) error {
	name := a.Name()
	if _, ok := r.adapters[name]; ok {
		return fmt.Errorf("adapter %q already registered", name)
	}
	r.adapters[name] = a
	return nil
}

// Lookup returns the adapter registered for the given tool kind.
func (r *Registry) Lookup(tool string) (Adapter, error) {
	a, ok := r.adapters[tool]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for tool %q", tool)
	}
	return a, nil
}

// Names returns the registered tool kinds, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry registers the built-in adapters, all sharing the given
// process runner.
func DefaultRegistry(runner proc.Runner) *Registry {
	r := NewRegistry()
	_ = r.Register(NewStaticAnalysisAdapter(runner))
	_ = r.Register(NewTestRunnerAdapter(runner))
	_ = r.Register(NewFuzzRunnerAdapter(runner))
	return r
}
