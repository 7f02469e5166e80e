// Package events defines the lifecycle event sink contract and its
// bundled implementations.
//
// The merge core only depends on the Sink interface; delivery is
// best-effort and append-only. A sink failure never alters the outcome of
// the operation that emitted the event.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Lifecycle event names emitted by the orchestrator.
const (
	AgentRegistered       = "agent.registered"
	ContributionSubmitted = "contribution.submitted"
	ContributionsCleared  = "contributions.cleared"
	MergeStarted          = "merge.started"
	MergeCompleted        = "merge.completed"
	Error                 = "error"
)

// Record is one structured lifecycle event.
type Record struct {
	ID          string         `json:"id"`
	Event       string         `json:"event"`
	TimestampMs int64          `json:"timestamp_ms"`
	Source      string         `json:"source"`
	Data        map[string]any `json:"data,omitempty"`
}

// NewRecord builds a Record stamped with the current time and a fresh id.
func NewRecord(event, source string, data map[string]any) Record {
	return Record{
		ID:          uuid.New().String(),
		Event:       event,
		TimestampMs: time.Now().UnixMilli(),
		Source:      source,
		Data:        data,
	}
}

// Sink accepts lifecycle records. Implementations must be safe for
// concurrent use; Append is expected to be fast and non-blocking from the
// caller's perspective.
type Sink interface {
	Append(rec Record) error
}

// MemorySink buffers records in memory. Useful for tests and sink-free
// deployments that still want introspection.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append stores the record.
func (s *MemorySink) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Records returns a snapshot of all appended records in order.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Names returns the event names of all appended records in order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.Event
	}
	return out
}
