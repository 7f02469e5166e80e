package storage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/richinex/concord/agent"
	"github.com/richinex/concord/model"
)

func newTestStore(t *testing.T, agentIDs ...string) (*agent.Registry, *ContributionStore) {
	t.Helper()
	registry := agent.NewRegistry()
	for _, id := range agentIDs {
		err := registry.Register(model.Agent{
			ID:           id,
			Name:         id,
			Capabilities: []string{"analysis"},
			Confidence:   0.8,
		})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	return registry, NewContributionStore(registry)
}

func TestSubmitAndGet(t *testing.T) {
	_, store := newTestStore(t, "a-1")

	hash, err := store.Submit("a-1", "a perfectly fine contribution", SubmitOptions{})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}

	c, err := store.Get(hash)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if c.AgentID != "a-1" || c.Content != "a perfectly fine contribution" {
		t.Errorf("unexpected contribution: %+v", c)
	}
	if c.Modality != model.ModalityText {
		t.Errorf("expected default text modality, got %q", c.Modality)
	}
	if c.Confidence != 0.8 {
		t.Errorf("expected baseline confidence 0.8, got %v", c.Confidence)
	}
}

func TestSubmitUnregisteredAgent(t *testing.T) {
	_, store := newTestStore(t)

	_, err := store.Submit("ghost", "content here", SubmitOptions{})
	if !errors.Is(err, agent.ErrNotFound) {
		t.Fatalf("expected agent.ErrNotFound, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("failed submission changed the store")
	}
}

func TestSubmitEmptyContent(t *testing.T) {
	_, store := newTestStore(t, "a-1")

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := store.Submit("a-1", content, SubmitOptions{}); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("content %q: expected ErrEmptyContent, got %v", content, err)
		}
	}
}

func TestSubmitUnsupportedModality(t *testing.T) {
	_, store := newTestStore(t, "a-1")

	_, err := store.Submit("a-1", "an image payload ref", SubmitOptions{Modality: model.ModalityImage})
	if !errors.Is(err, ErrUnsupportedModality) {
		t.Fatalf("expected ErrUnsupportedModality, got %v", err)
	}
}

func TestHashDeterminism(t *testing.T) {
	ts := time.Unix(1700000000, 0)

	h1 := ContributionHash("a-1", "same content", ts)
	h2 := ContributionHash("a-1", "same content", ts)
	if h1 != h2 {
		t.Errorf("identical inputs hashed differently: %s vs %s", h1, h2)
	}

	h3 := ContributionHash("a-1", "same content", ts.Add(time.Nanosecond))
	if h1 == h3 {
		t.Error("different timestamps produced the same hash")
	}

	h4 := ContributionHash("a-2", "same content", ts)
	if h1 == h4 {
		t.Error("different agents produced the same hash")
	}
}

func TestIdempotentResubmission(t *testing.T) {
	_, store := newTestStore(t, "a-1")
	ts := time.Unix(1700000000, 0)

	h1, err := store.Submit("a-1", "identical content", SubmitOptions{Timestamp: ts})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	h2, err := store.Submit("a-1", "identical content", SubmitOptions{Timestamp: ts})
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}

	if h1 != h2 {
		t.Errorf("resubmission returned a different hash: %s vs %s", h1, h2)
	}
	if store.Len() != 1 {
		t.Errorf("resubmission created a duplicate entry: len = %d", store.Len())
	}

	// Same content at a different instant is a new contribution.
	h3, err := store.Submit("a-1", "identical content", SubmitOptions{Timestamp: ts.Add(time.Second)})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if h3 == h1 {
		t.Error("new instant reused the old hash")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", store.Len())
	}
}

func TestByAgentSubmissionOrder(t *testing.T) {
	_, store := newTestStore(t, "a-1", "a-2")

	base := time.Unix(1700000000, 0)
	for i, content := range []string{"first thought", "second thought", "third thought"} {
		_, err := store.Submit("a-1", content, SubmitOptions{Timestamp: base.Add(time.Duration(i) * time.Second)})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	got := store.ByAgent("a-1")
	if len(got) != 3 {
		t.Fatalf("expected 3 contributions, got %d", len(got))
	}
	for i, want := range []string{"first thought", "second thought", "third thought"} {
		if got[i].Content != want {
			t.Errorf("contribution %d = %q, want %q", i, got[i].Content, want)
		}
	}

	if got := store.ByAgent("a-2"); len(got) != 0 {
		t.Errorf("agent without contributions should yield empty list, got %d", len(got))
	}
	if got := store.ByAgent("unknown"); len(got) != 0 {
		t.Errorf("unknown agent should yield empty list, got %d", len(got))
	}
	if n := store.CountByAgent("a-1"); n != 3 {
		t.Errorf("CountByAgent = %d, want 3", n)
	}
}

func TestSubsetMissingHashes(t *testing.T) {
	_, store := newTestStore(t, "a-1")

	hash, err := store.Submit("a-1", "real content here", SubmitOptions{})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	_, err = store.Subset([]string{hash, "deadbeef00000001", "deadbeef00000002"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, missing := range []string{"deadbeef00000001", "deadbeef00000002"} {
		if !strings.Contains(err.Error(), missing) {
			t.Errorf("error does not list missing hash %s: %v", missing, err)
		}
	}

	subset, err := store.Subset([]string{hash})
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}
	if len(subset) != 1 || subset[0].Hash != hash {
		t.Errorf("unexpected subset: %+v", subset)
	}
}

func TestClearPreservesRegistry(t *testing.T) {
	registry, store := newTestStore(t, "a-1")

	if _, err := store.Submit("a-1", "content to clear", SubmitOptions{}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	store.Clear()

	if store.Len() != 0 {
		t.Errorf("store not empty after Clear: %d", store.Len())
	}
	if len(store.ByAgent("a-1")) != 0 {
		t.Error("ByAgent not empty after Clear")
	}
	if !registry.Has("a-1") {
		t.Error("Clear removed an agent registration")
	}
}

func TestAllSnapshotIsolation(t *testing.T) {
	_, store := newTestStore(t, "a-1")

	if _, err := store.Submit("a-1", "snapshot me please", SubmitOptions{}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	snap := store.All()
	if _, err := store.Submit("a-1", "arrived after the snapshot", SubmitOptions{}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if len(snap) != 1 {
		t.Errorf("snapshot observed later submission: %d entries", len(snap))
	}
}
