// Package app provides application initialization and lifecycle management.
// It wires configuration loading, logging, telemetry and the operation
// manager for a single CLI invocation.
//
// # Initialization Flow
//
//	1. Load configuration from environment and files
//	2. Apply invocation overrides and validate
//	3. Resolve paths and create the output and log directories
//	4. Initialize logging and OpenTelemetry
//	5. Register the pipeline steps with the operation manager
//
// # Usage
//
//	application, err := app.NewApplication(app.Options{ConfigFile: path})
//	if err != nil {
//	    return err
//	}
//	defer application.Stop(context.Background())
//	resp, err := application.RunWithSignals(ctx, operations.StepAll)
//	app.RenderSummary(os.Stdout, resp)
//
// # Shutdown
//
// Stop flushes telemetry: trace spans are exported, the metrics textfile is
// written when configured, and the log file is closed.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The app does not
// call os.Exit() directly, allowing the main function to control the exit
// code.
package app
