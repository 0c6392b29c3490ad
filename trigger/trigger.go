// Package trigger compiles and evaluates the trigger predicate of a pipeline
// definition. The predicate is an expression over the event context, e.g.
//
//	event == "push" && branch == "master"
//	event == "pull_request" && target == "master"
package trigger

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Event is the context a trigger predicate is evaluated against.
type Event struct {
	// Kind is the event kind: "push", "pull_request", or "manual".
	Kind string
	// Branch is the ref the event happened on.
	Branch string
	// Target is the target branch for pull_request events.
	Target string
}

// Env returns the expression environment for the event.
func (e Event) Env() map[string]any {
	return map[string]any{
		"event":  e.Kind,
		"branch": e.Branch,
		"target": e.Target,
	}
}

// Predicate is a compiled trigger expression.
type Predicate struct {
	src  string
	prog *vm.Program
}

// Compile compiles a trigger expression. An empty expression compiles to a
// predicate that matches every event.
func Compile(src string) (*Predicate, error) {
	if src == "" {
		return &Predicate{src: src}, nil
	}
	prog, err := expr.Compile(src, expr.Env(Event{}.Env()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling trigger expression %q: %w", src, err)
	}
	return &Predicate{src: src, prog: prog}, nil
}

// Match evaluates the predicate against the event.
func (p *Predicate) Match(evt Event) (bool, error) {
	if p.prog == nil {
		return true, nil
	}
	out, err := expr.Run(p.prog, evt.Env())
	if err != nil {
		return false, fmt.Errorf("evaluating trigger expression %q: %w", p.src, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("trigger expression %q did not evaluate to a boolean", p.src)
	}
	return matched, nil
}

// String returns the source expression.
func (p *Predicate) String() string { return p.src }
