package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"soiagi/internal/infrastructure"
)

// Manager orchestrates operation execution
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	tracer   *OperationTracer
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, config *Config, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	tracer, _ := NewOperationTracer(nil)

	return &Manager{
		registry: registry,
		config:   config,
		logger:   logger.With("component", "operation_manager"),
		tracer:   tracer,
	}
}

// SetTracer replaces the tracer used for spans and metrics
func (m *Manager) SetTracer(tracer *OperationTracer) {
	if tracer != nil {
		m.tracer = tracer
	}
}

// RegisterStep registers a step with the manager
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs an operation with the given request. The response is always
// returned, also when err is non-nil, so callers can report per-step state.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.GetTraceID(ctx)
	}
	if req.ID == "" {
		req.ID = infrastructure.GenerateTraceID()
	}
	if infrastructure.GetTraceID(ctx) == "" {
		ctx = infrastructure.WithTraceID(ctx, req.ID)
	}

	state := NewOperationState(req.ID)
	for k, v := range req.Parameters {
		state.SetConfig(k, v)
	}

	steps, err := m.resolveSteps(req.Step)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
		state.Fail(err)
		return m.createResponse(state, nil), err
	}

	order := make([]string, len(steps))
	for i, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
		order[i] = step.ID()
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, req)
	defer span.End()

	m.logOperationStart(ctx, req.ID, steps)
	state.Start()

	err = m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, req.ID, state.Duration(), err)
	m.logOperationComplete(ctx, req.ID, state.Duration(), state.Status)

	return m.createResponse(state, order), err
}

// resolveSteps returns every registered step, or one step with its
// prerequisites, in dependency order
func (m *Manager) resolveSteps(stepID string) ([]Step, error) {
	if stepID == "" || stepID == StepAll {
		steps, err := m.registry.GetDependencyOrder()
		if err != nil {
			return nil, NewFatalError("failed to get dependency order", err)
		}
		return steps, nil
	}
	if !m.registry.Has(stepID) {
		return nil, NewStepNotFoundError(stepID)
	}
	steps, err := m.registry.ResolveStep(stepID)
	if err != nil {
		return nil, NewFatalError("failed to resolve step dependencies", err)
	}
	return steps, nil
}

// executeSequential executes steps one by one. A failed step skips its
// dependents; without ContinueOnError it also stops the run.
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	var firstErr error

	for i, step := range steps {
		stepState := state.GetStep(step.ID())

		if err := ctx.Err(); err != nil {
			cancelErr := NewCancellationError(step.ID(), err)
			m.skipRemaining(ctx, state, steps[i:], "operation cancelled")
			m.logStepError(ctx, state.ID, step.ID(), cancelErr)
			return cancelErr
		}

		if stepState.GetStatus() == StepStatusSkipped {
			continue
		}

		m.logStepStart(ctx, state.ID, step.ID(), i+1, len(steps))
		err := m.executeStep(ctx, state, step)
		if err == nil {
			continue
		}

		m.logStepError(ctx, state.ID, step.ID(), err)
		m.skipDependentSteps(ctx, state, steps, step.ID())

		if GetErrorType(err) == ErrorTypeCancellation {
			m.skipRemaining(ctx, state, steps[i+1:], "operation cancelled")
			return err
		}
		if !m.config.ContinueOnError {
			m.skipRemaining(ctx, state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// executeStep validates and runs a single step under its timeout
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state for step %s not found", step.ID()), nil)
	}

	if err := m.checkDependencies(state, step); err != nil {
		stepState.Skip(err.Error())
		return err
	}

	ctx, span := m.tracer.TraceStepExecution(ctx, state.ID, step.ID())
	defer span.End()

	stepState.Start()
	start := time.Now()

	if err := step.Validate(state); err != nil {
		vErr := NewValidationError(step.ID(), err)
		stepState.Fail(vErr)
		m.tracer.RecordStepCompletion(ctx, span, step.ID(), time.Since(start), vErr)
		return vErr
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	if err != nil {
		switch {
		case ctx.Err() != nil:
			err = NewCancellationError(step.ID(), err)
		case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
			err = NewTimeoutError(step.ID(), timeout.String(), err)
		default:
			err = NewExecutionError(step.ID(), err)
		}
		stepState.Fail(err)
		m.tracer.RecordStepCompletion(ctx, span, step.ID(), duration, err)
		return err
	}

	stepState.Complete()
	m.tracer.RecordStepCompletion(ctx, span, step.ID(), duration, nil)
	m.logStepComplete(ctx, state.ID, step.ID(), duration)
	return nil
}

// skipDependentSteps marks all pending steps that transitively depend on
// the failed step as skipped
func (m *Manager) skipDependentSteps(ctx context.Context, state *OperationState, steps []Step, failedID string) {
	for _, step := range steps {
		for _, dep := range step.GetDependencies() {
			if dep != failedID {
				continue
			}
			stepState := state.GetStep(step.ID())
			if stepState != nil && stepState.GetStatus() == StepStatusPending {
				reason := fmt.Sprintf("dependency %s failed", failedID)
				stepState.Skip(reason)
				m.logStepSkipped(ctx, state.ID, step.ID(), reason)
				m.skipDependentSteps(ctx, state, steps, step.ID())
			}
			break
		}
	}
}

func (m *Manager) skipRemaining(ctx context.Context, state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		stepState := state.GetStep(step.ID())
		if stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(reason)
			m.logStepSkipped(ctx, state.ID, step.ID(), reason)
		}
	}
}

// checkDependencies verifies that all dependencies in this run completed
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStep(dep)
		if depState == nil {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s is not part of this run", dep))
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s not completed (status: %s)", dep, status))
		}
	}
	return nil
}

func (m *Manager) createResponse(state *OperationState, order []string) *OperationResponse {
	state.mu.RLock()
	status := state.Status
	opErr := state.Error
	state.mu.RUnlock()

	resp := &OperationResponse{
		ID:       state.ID,
		Status:   status,
		Duration: state.Duration(),
		Order:    order,
		Steps:    state.Snapshot(),
	}
	if opErr != nil {
		resp.Error = opErr.Error()
	}
	return resp
}
