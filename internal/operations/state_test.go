package operations

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepStateTransitions(t *testing.T) {
	s := NewStepState("master", "Build Master Tables")
	assert.Equal(t, StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.GetStatus())

	s.SetMetadata(MetadataRows, 10)
	v, ok := s.GetMetadata(MetadataRows)
	require.True(t, ok)
	assert.Equal(t, 10, v)

	s.Fail(errors.New("boom"))
	assert.Equal(t, StepStatusFailed, s.GetStatus())
	assert.Equal(t, "boom", s.Message)
	assert.NotNil(t, s.EndTime)

	skipped := NewStepState("coordinates", "Attach Coordinates")
	skipped.Skip("dependency prevalent_zip failed")
	assert.Equal(t, StepStatusSkipped, skipped.GetStatus())
	assert.Equal(t, "dependency prevalent_zip failed", skipped.Message)
}

func TestOperationStateLifecycle(t *testing.T) {
	state := NewOperationState("op-1")
	assert.Equal(t, OperationStatusPending, state.Status)

	state.Start()
	assert.Equal(t, OperationStatusRunning, state.Status)

	state.SetStep("a", NewStepState("a", "A"))
	state.SetStep("b", NewStepState("b", "B"))
	assert.False(t, state.HasFailures())

	state.GetStep("b").Fail(errors.New("bad input"))
	assert.True(t, state.HasFailures())

	state.Fail(errors.New("bad input"))
	assert.Equal(t, OperationStatusFailed, state.Status)
	require.NotNil(t, state.EndTime)

	d := state.Duration()
	time.Sleep(2 * time.Millisecond)
	assert.Equal(t, d, state.Duration(), "duration is fixed once the operation ends")

	cancelled := NewOperationState("op-2")
	cancelled.Cancel(errors.New("interrupted"))
	assert.Equal(t, OperationStatusCancelled, cancelled.Status)
}

func TestOperationStateSnapshotIsolation(t *testing.T) {
	state := NewOperationState("op-1")
	state.SetStep("a", NewStepState("a", "A"))
	state.GetStep("a").SetMetadata(MetadataRows, 1)

	snap := state.Snapshot()
	state.GetStep("a").SetMetadata(MetadataRows, 2)
	state.GetStep("a").Complete()

	assert.Equal(t, 1, snap["a"].Metadata[MetadataRows])
	assert.Equal(t, StepStatusPending, snap["a"].Status)
}

func TestContextValue(t *testing.T) {
	state := NewOperationState("op-1")
	state.SetContext("count", 7)
	state.SetContext("names", []string{"a"})

	n, ok := ContextValue[int](state, "count")
	require.True(t, ok)
	assert.Equal(t, 7, n)

	names, ok := ContextValue[[]string](state, "names")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, names)

	_, ok = ContextValue[string](state, "count")
	assert.False(t, ok, "wrong type")

	_, ok = ContextValue[int](state, "missing")
	assert.False(t, ok)
}

func TestOperationErrors(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "validation",
			err:      NewValidationError("standardize", cause),
			wantType: ErrorTypeValidation,
			wantMsg:  "[validation] standardize: step validation failed: disk full",
		},
		{
			name:     "execution",
			err:      NewExecutionError("master", cause),
			wantType: ErrorTypeExecution,
			wantMsg:  "[execution] master: step execution failed: disk full",
		},
		{
			name:     "timeout",
			err:      NewTimeoutError("master", "1s", cause),
			wantType: ErrorTypeTimeout,
			wantMsg:  "[timeout] master: step exceeded timeout of 1s: disk full",
		},
		{
			name:     "cancellation",
			err:      NewCancellationError("master", cause),
			wantType: ErrorTypeCancellation,
			wantMsg:  "[cancellation] master: operation was cancelled: disk full",
		},
		{
			name:     "dependency",
			err:      NewDependencyError("coordinates", "prevalent_zip", "dependency prevalent_zip not completed"),
			wantType: ErrorTypeDependency,
			wantMsg:  "[dependency] coordinates: dependency prevalent_zip not completed",
		},
		{
			name:     "fatal",
			err:      NewFatalError("failed to get dependency order", nil),
			wantType: ErrorTypeFatal,
			wantMsg:  "[fatal] failed to get dependency order",
		},
		{
			name:     "not found",
			err:      NewStepNotFoundError("geocode"),
			wantType: ErrorTypeNotFound,
			wantMsg:  "[not_found] geocode: requested step is not registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, GetErrorType(tt.err))
			assert.Equal(t, tt.wantMsg, tt.err.Error())

			wrapped := fmt.Errorf("run: %w", tt.err)
			assert.Equal(t, tt.wantType, GetErrorType(wrapped))
		})
	}

	assert.ErrorIs(t, NewExecutionError("master", cause), cause)
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(cause))
}
