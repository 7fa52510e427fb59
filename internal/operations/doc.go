// Package operations orchestrates the pipeline steps of a run.
//
// Core Components:
//
// Manager: Runs an operation request. It resolves which steps to run from
// the Registry, executes them sequentially, records each step's state and
// skips every dependent of a failed step. Cancellation is honoured between
// steps.
//
// Step: A single unit of work (standardize, master, prevalent_zip,
// coordinates). Steps declare the IDs of the steps they depend on and share
// loaded tables through OperationState.Context.
//
// Registry: Holds the registered steps and orders them topologically using
// registration order to break ties.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	for _, step := range operations.PipelineSteps(deps) {
//	    registry.Register(step)
//	}
//	manager := operations.NewManager(registry, operations.NewConfig(), logger)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{Step: operations.StepIDCoordinates})
//
// Requesting a single step runs that step together with the steps it
// depends on.
package operations
