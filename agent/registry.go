// Package agent provides the agent registry.
//
// Information Hiding:
// - Agent storage and lookup implementation hidden
// - Registration order tracking hidden
package agent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/richinex/concord/model"
)

// Sentinel errors for registry operations. Callers discriminate with
// errors.Is; wrapped messages carry the offending agent id.
var (
	// ErrDuplicateID is returned when an agent id is already registered.
	ErrDuplicateID = errors.New("duplicate agent id")
	// ErrInvalid is returned when an agent definition fails validation.
	ErrInvalid = errors.New("invalid agent")
	// ErrNotFound is returned when an agent id is not registered.
	ErrNotFound = errors.New("agent not found")
)

// Registry holds agent identity and static capability metadata.
// Agents are immutable after registration; nothing removes them short of
// process teardown.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]model.Agent
	order  []string // registration order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[string]model.Agent),
	}
}

// Register adds an agent. The insert is atomic: on any error the registry
// is unchanged.
func (r *Registry) Register(a model.Agent) error {
	if a.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalid)
	}
	if len(a.Capabilities) == 0 {
		return fmt.Errorf("%w: agent %q has no capabilities", ErrInvalid, a.ID)
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("%w: agent %q confidence %v outside [0,1]", ErrInvalid, a.ID, a.Confidence)
	}
	if a.ResponseTimeMs < 0 {
		return fmt.Errorf("%w: agent %q negative response time", ErrInvalid, a.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[a.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, a.ID)
	}
	r.agents[a.ID] = a
	r.order = append(r.order, a.ID)
	return nil
}

// Get returns the agent with the given id.
func (r *Registry) Get(id string) (model.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[id]
	if !ok {
		return model.Agent{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return a, nil
}

// Has reports whether an agent id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.agents[id]
	return ok
}

// List returns a snapshot of all agents in registration order.
func (r *Registry) List() []model.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id])
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
