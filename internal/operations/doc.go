// Package operations runs the cleaning pipeline as an ordered list of steps.
//
// A Registry holds the steps in registration order and a Manager executes
// them one at a time against a shared OperationState. Each step reads the
// previous step's output from the state and stores its own. The first
// failure aborts the run; the error is an OperationError naming the step,
// and every later step is marked skipped.
//
// Every step runs inside an OpenTelemetry span and its duration and status
// are recorded on the pipeline metrics.
package operations
