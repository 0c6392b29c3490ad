package adapter

import (
	"context"
	"sync"

	"github.com/kaiachai/scanpipe/proc"
)

// fakeRunner is the fake process boundary the adapter tests run against.
type fakeRunner struct {
	mu    sync.Mutex
	specs []proc.Spec
	// handle produces the outcome for one invocation. When nil, the
	// runner returns an empty successful output.
	handle func(ctx context.Context, spec proc.Spec) (*proc.Output, error)
}

func (f *fakeRunner) Run(ctx context.Context, spec proc.Spec) (*proc.Output, error) {
	f.mu.Lock()
	f.specs = append(f.specs, spec)
	f.mu.Unlock()
	if f.handle == nil {
		return &proc.Output{}, nil
	}
	return f.handle(ctx, spec)
}

func (f *fakeRunner) recorded() []proc.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]proc.Spec{}, f.specs...)
}

func fixedOutput(out *proc.Output, err error) func(context.Context, proc.Spec) (*proc.Output, error) {
	return func(context.Context, proc.Spec) (*proc.Output, error) {
		return out, err
	}
}
