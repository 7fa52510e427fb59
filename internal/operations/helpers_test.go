package operations

import (
	"context"
	"sync"
)

// fakeStep is a configurable step for orchestration tests
type fakeStep struct {
	BaseStep
	execute  func(ctx context.Context, state *OperationState) error
	validate func(state *OperationState) error
	recorder *callRecorder
}

func newFakeStep(id string, deps ...string) *fakeStep {
	return &fakeStep{BaseStep: NewBaseStep(id, "Fake "+id, deps)}
}

func (s *fakeStep) Validate(state *OperationState) error {
	if s.validate != nil {
		return s.validate(state)
	}
	return nil
}

func (s *fakeStep) Execute(ctx context.Context, state *OperationState) error {
	if s.recorder != nil {
		s.recorder.add(s.ID())
	}
	if s.execute != nil {
		return s.execute(ctx, state)
	}
	return nil
}

type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, id)
}

func (r *callRecorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func stepIDs(steps []Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	return ids
}
