package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups          map[string]uint64
	Logins           map[string]uint64
	Logouts          uint64
	TodosCreated     uint64
	TodosUpdated     uint64
	TodosDeleted     uint64
	OwnershipDenied  map[string]uint64
	HTTPRequestCount uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu              sync.Mutex
	signups         map[string]uint64
	logins          map[string]uint64
	ownershipDenied map[string]uint64

	logouts      uint64
	todosCreated uint64
	todosUpdated uint64
	todosDeleted uint64
	httpRequests uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		signups:         make(map[string]uint64),
		logins:          make(map[string]uint64),
		ownershipDenied: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Signups:          copyCounts(m.signups),
		Logins:           copyCounts(m.logins),
		Logouts:          atomic.LoadUint64(&m.logouts),
		TodosCreated:     atomic.LoadUint64(&m.todosCreated),
		TodosUpdated:     atomic.LoadUint64(&m.todosUpdated),
		TodosDeleted:     atomic.LoadUint64(&m.todosDeleted),
		OwnershipDenied:  copyCounts(m.ownershipDenied),
		HTTPRequestCount: atomic.LoadUint64(&m.httpRequests),
	}
}

func (m *InMemoryRecorder) IncSignup(result string) {
	m.mu.Lock()
	m.signups[result]++
	m.mu.Unlock()
}

func (m *InMemoryRecorder) IncLogin(result string) {
	m.mu.Lock()
	m.logins[result]++
	m.mu.Unlock()
}

func (m *InMemoryRecorder) IncLogout() {
	atomic.AddUint64(&m.logouts, 1)
}

func (m *InMemoryRecorder) IncTodoCreated() {
	atomic.AddUint64(&m.todosCreated, 1)
}

func (m *InMemoryRecorder) IncTodoUpdated() {
	atomic.AddUint64(&m.todosUpdated, 1)
}

func (m *InMemoryRecorder) IncTodoDeleted() {
	atomic.AddUint64(&m.todosDeleted, 1)
}

func (m *InMemoryRecorder) IncOwnershipDenied(operation string) {
	m.mu.Lock()
	m.ownershipDenied[operation]++
	m.mu.Unlock()
}

func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
