package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncSignup(result string) {}
func (n *NoopRecorder) IncLogin(result string) {}
func (n *NoopRecorder) IncLogout() {}
func (n *NoopRecorder) IncTodoCreated() {}
func (n *NoopRecorder) IncTodoUpdated() {}
func (n *NoopRecorder) IncTodoDeleted() {}
func (n *NoopRecorder) IncOwnershipDenied(operation string) {}

func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}
