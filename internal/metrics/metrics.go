// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Account metrics
	IncSignup(result string)
	IncLogin(result string)
	IncLogout()

	// Todo metrics
	IncTodoCreated()
	IncTodoUpdated()
	IncTodoDeleted()
	IncOwnershipDenied(operation string) // operation: "update" or "delete"

	// HTTP metrics, route is the chi pattern, not the raw path.
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

