package orchestration

import (
	"errors"
	"reflect"
	"testing"

	"github.com/richinex/concord/agent"
	"github.com/richinex/concord/events"
	"github.com/richinex/concord/model"
	"github.com/richinex/concord/storage"
	"github.com/richinex/concord/synthesis"
)

func newTestSystem(t *testing.T, sink events.Sink) *System {
	t.Helper()
	sys, err := NewSystem(Config{Sink: sink})
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	return sys
}

func registerAgent(t *testing.T, sys *System, id string) {
	t.Helper()
	err := sys.RegisterAgent(model.Agent{
		ID:           id,
		Name:         id,
		Capabilities: []string{"analysis"},
		Confidence:   0.8,
	})
	if err != nil {
		t.Fatalf("RegisterAgent(%s) failed: %v", id, err)
	}
}

func TestLifecycleEventSequence(t *testing.T) {
	sink := events.NewMemorySink()
	sys := newTestSystem(t, sink)

	registerAgent(t, sys, "a-1")
	registerAgent(t, sys, "a-2")

	if _, err := sys.SubmitContribution("a-1", "Cache invalidation should follow writes, not timers.", storage.SubmitOptions{}); err != nil {
		t.Fatalf("SubmitContribution failed: %v", err)
	}
	if _, err := sys.SubmitContribution("a-2", "Batch the invalidation messages to cut broker load.", storage.SubmitOptions{}); err != nil {
		t.Fatalf("SubmitContribution failed: %v", err)
	}

	result, err := sys.MergeAll(model.StrategySynthesis, "cache invalidation")
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if result.MergedContent == "" {
		t.Error("empty merged content")
	}

	want := []string{
		events.AgentRegistered,
		events.AgentRegistered,
		events.ContributionSubmitted,
		events.ContributionSubmitted,
		events.MergeStarted,
		events.MergeCompleted,
	}
	if got := sink.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("event sequence = %v, want %v", got, want)
	}

	for _, rec := range sink.Records() {
		if rec.ID == "" || rec.TimestampMs == 0 || rec.Source != "concord" {
			t.Errorf("malformed record: %+v", rec)
		}
	}
}

func TestMergeEmptyStoreEmitsError(t *testing.T) {
	sink := events.NewMemorySink()
	sys := newTestSystem(t, sink)

	_, err := sys.MergeAll(model.StrategyConsensus, "")
	if !errors.Is(err, synthesis.ErrEmptyContributionSet) {
		t.Fatalf("expected ErrEmptyContributionSet, got %v", err)
	}
	if want := []string{events.Error}; !reflect.DeepEqual(sink.Names(), want) {
		t.Errorf("events = %v, want %v", sink.Names(), want)
	}
}

func TestSubmitUnknownAgent(t *testing.T) {
	sys := newTestSystem(t, nil)
	if _, err := sys.SubmitContribution("ghost", "content", storage.SubmitOptions{}); !errors.Is(err, agent.ErrNotFound) {
		t.Errorf("expected agent.ErrNotFound, got %v", err)
	}
}

func TestMergeSubsetUnknownHash(t *testing.T) {
	sys := newTestSystem(t, nil)
	registerAgent(t, sys, "a-1")
	hash, err := sys.SubmitContribution("a-1", "A real contribution for subset testing.", storage.SubmitOptions{})
	if err != nil {
		t.Fatalf("SubmitContribution failed: %v", err)
	}

	if _, err := sys.MergeSubset([]string{hash, "deadbeef"}, model.StrategySynthesis, ""); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected storage.ErrNotFound, got %v", err)
	}

	result, err := sys.MergeSubset([]string{hash}, model.StrategySynthesis, "")
	if err != nil {
		t.Fatalf("MergeSubset failed: %v", err)
	}
	if len(result.ContributingAgents) != 1 || result.ContributingAgents[0] != "a-1" {
		t.Errorf("contributing agents = %v", result.ContributingAgents)
	}
}

func TestClearPreservesRegistrations(t *testing.T) {
	sys := newTestSystem(t, nil)
	registerAgent(t, sys, "a-1")
	if _, err := sys.SubmitContribution("a-1", "Will be cleared shortly.", storage.SubmitOptions{}); err != nil {
		t.Fatalf("SubmitContribution failed: %v", err)
	}

	sys.ClearContributions()

	if sys.Store().Len() != 0 {
		t.Errorf("store length after clear = %d", sys.Store().Len())
	}
	if !sys.Registry().Has("a-1") {
		t.Error("clear dropped the agent registration")
	}
	// Re-submission after a clear works against the intact registry.
	if _, err := sys.SubmitContribution("a-1", "Fresh contribution after the clear.", storage.SubmitOptions{}); err != nil {
		t.Errorf("submit after clear failed: %v", err)
	}
}

// failingSink always errors; operations must stay unaffected.
type failingSink struct{}

func (failingSink) Append(events.Record) error { return errors.New("sink down") }

func TestSinkFailureDoesNotAffectOperations(t *testing.T) {
	sys := newTestSystem(t, failingSink{})
	registerAgent(t, sys, "a-1")

	hash, err := sys.SubmitContribution("a-1", "Delivery is best effort, state changes are not.", storage.SubmitOptions{})
	if err != nil {
		t.Fatalf("SubmitContribution failed: %v", err)
	}
	if hash == "" {
		t.Fatal("empty hash")
	}

	result, err := sys.MergeAll(model.StrategyCompetitiveEval, "")
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if len(result.ContributingAgents) != 1 {
		t.Errorf("contributing agents = %v", result.ContributingAgents)
	}
}

func TestMergeAllSnapshotIsolation(t *testing.T) {
	sink := events.NewMemorySink()
	sys := newTestSystem(t, sink)
	registerAgent(t, sys, "a-1")
	registerAgent(t, sys, "a-2")

	if _, err := sys.SubmitContribution("a-1", "Only contribution at snapshot time.", storage.SubmitOptions{}); err != nil {
		t.Fatalf("SubmitContribution failed: %v", err)
	}

	result, err := sys.MergeAll(model.StrategySynthesis, "")
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if got := result.Metadata["total_contributions"]; got != 1 {
		t.Errorf("total_contributions = %v, want 1", got)
	}

	if _, err := sys.SubmitContribution("a-2", "Late arrival, next merge only.", storage.SubmitOptions{}); err != nil {
		t.Fatalf("SubmitContribution failed: %v", err)
	}
	result, err = sys.MergeAll(model.StrategySynthesis, "")
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if got := result.Metadata["total_contributions"]; got != 2 {
		t.Errorf("total_contributions = %v, want 2", got)
	}
}

func TestMergeResultCarriesValidations(t *testing.T) {
	sys := newTestSystem(t, nil)
	registerAgent(t, sys, "a-1")
	hash, err := sys.SubmitContribution("a-1", "Password hashing must use a memory-hard function with tuned parameters.", storage.SubmitOptions{})
	if err != nil {
		t.Fatalf("SubmitContribution failed: %v", err)
	}

	result, err := sys.MergeAll(model.StrategySynthesis, "password hashing")
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	vr, ok := result.ValidationResults[hash]
	if !ok {
		t.Fatalf("validation result missing for %s", hash)
	}
	if vr.QualityScore <= 0 || vr.QualityScore > 1 {
		t.Errorf("quality score out of range: %v", vr.QualityScore)
	}
}
