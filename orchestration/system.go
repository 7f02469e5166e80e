// Package orchestration provides the public merge coordinator.
//
// System sequences validation, strategy dispatch, and result assembly,
// and emits lifecycle events to an injected sink. Event delivery is
// best-effort: a sink failure is logged locally and never alters the
// outcome of the triggering operation.
package orchestration

import (
	"fmt"
	"os"

	"github.com/richinex/concord/agent"
	"github.com/richinex/concord/events"
	"github.com/richinex/concord/model"
	"github.com/richinex/concord/storage"
	"github.com/richinex/concord/synthesis"
	"github.com/richinex/concord/validate"
)

// eventSource identifies this engine in emitted records.
const eventSource = "concord"

// Config assembles a System. Zero values fall back to defaults: default
// validation weights, default synthesis thresholds, no event sink.
type Config struct {
	Weights   validate.Weights
	Synthesis synthesis.Config
	Sink      events.Sink
}

// System coordinates the registry, store, validator, and engine behind
// the public operation set. Safe for concurrent use.
type System struct {
	registry  *agent.Registry
	store     *storage.ContributionStore
	validator *validate.Validator
	engine    *synthesis.Engine
	sink      events.Sink
}

// NewSystem creates a System from the given configuration.
func NewSystem(cfg Config) (*System, error) {
	weights := cfg.Weights
	if weights == (validate.Weights{}) {
		weights = validate.DefaultWeights()
	}
	validator, err := validate.NewValidator(weights)
	if err != nil {
		return nil, err
	}

	registry := agent.NewRegistry()
	return &System{
		registry:  registry,
		store:     storage.NewContributionStore(registry),
		validator: validator,
		engine:    synthesis.NewEngine(cfg.Synthesis),
		sink:      cfg.Sink,
	}, nil
}

// Registry exposes the agent registry.
func (s *System) Registry() *agent.Registry {
	return s.registry
}

// Store exposes the contribution store.
func (s *System) Store() *storage.ContributionStore {
	return s.store
}

// RegisterAgent registers an agent and emits agent.registered.
func (s *System) RegisterAgent(a model.Agent) error {
	if err := s.registry.Register(a); err != nil {
		s.emitError("register_agent", err)
		return err
	}
	s.emit(events.AgentRegistered, map[string]any{
		"agent_id":     a.ID,
		"agent_name":   a.Name,
		"capabilities": a.Capabilities,
		"specialty":    a.Specialty,
	})
	return nil
}

// SubmitContribution stores a contribution and emits
// contribution.submitted. Returns the contribution hash.
func (s *System) SubmitContribution(agentID, content string, opts storage.SubmitOptions) (string, error) {
	hash, err := s.store.Submit(agentID, content, opts)
	if err != nil {
		s.emitError("submit_contribution", err)
		return "", err
	}
	s.emit(events.ContributionSubmitted, map[string]any{
		"agent_id":        agentID,
		"hash":            hash,
		"content_preview": preview(content, 100),
	})
	return hash, nil
}

// MergeAll merges every stored contribution with the given strategy.
// The batch is a point-in-time snapshot: submissions arriving after the
// snapshot do not affect the merge.
func (s *System) MergeAll(strategy model.Strategy, context string) (model.MergeResult, error) {
	return s.merge(s.store.All(), strategy, context)
}

// MergeSubset merges the named contributions with the given strategy.
func (s *System) MergeSubset(hashes []string, strategy model.Strategy, context string) (model.MergeResult, error) {
	batch, err := s.store.Subset(hashes)
	if err != nil {
		s.emitError("merge_subset", err)
		return model.MergeResult{}, err
	}
	return s.merge(batch, strategy, context)
}

func (s *System) merge(batch []model.Contribution, strategy model.Strategy, context string) (model.MergeResult, error) {
	if len(batch) == 0 {
		err := fmt.Errorf("%w: strategy %s", synthesis.ErrEmptyContributionSet, strategy)
		s.emitError("merge", err)
		return model.MergeResult{}, err
	}

	s.emit(events.MergeStarted, map[string]any{
		"strategy":      string(strategy),
		"contributions": len(batch),
	})

	validations := s.validator.ValidateBatch(batch, context)

	inputs := make([]synthesis.Input, 0, len(batch))
	for _, c := range batch {
		// Agents outlive their contributions, so the lookup only fails on
		// an internal invariant break.
		ag, err := s.registry.Get(c.AgentID)
		if err != nil {
			s.emitError("merge", err)
			return model.MergeResult{}, fmt.Errorf("contribution %s: %w", c.Hash, err)
		}
		inputs = append(inputs, synthesis.Input{
			Contribution: c,
			Agent:        ag,
			Validation:   validations[c.Hash],
		})
	}

	result, err := s.engine.Merge(inputs, strategy)
	if err != nil {
		s.emitError("merge", err)
		return model.MergeResult{}, err
	}

	s.emit(events.MergeCompleted, map[string]any{
		"strategy":            string(strategy),
		"confidence_score":    result.ConfidenceScore,
		"contributing_agents": result.ContributingAgents,
		"result_preview":      preview(result.MergedContent, 200),
	})
	return result, nil
}

// ContributionsByAgent returns the agent's contributions in submission
// order.
func (s *System) ContributionsByAgent(agentID string) []model.Contribution {
	return s.store.ByAgent(agentID)
}

// ClearContributions empties the contribution store. Agent registrations
// are untouched.
func (s *System) ClearContributions() {
	s.store.Clear()
	s.emit(events.ContributionsCleared, nil)
}

// emit delivers a lifecycle record to the sink. Failures are diagnosed to
// stderr and otherwise ignored.
func (s *System) emit(event string, data map[string]any) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Append(events.NewRecord(event, eventSource, data)); err != nil {
		fmt.Fprintf(os.Stderr, "orchestration: event sink append failed: %v\n", err)
	}
}

func (s *System) emitError(operation string, opErr error) {
	s.emit(events.Error, map[string]any{
		"operation": operation,
		"message":   opErr.Error(),
	})
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
