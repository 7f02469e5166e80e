package collect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/richinex/concord/storage"
)

// stubProvider returns a canned reply or error.
type stubProvider struct {
	name  string
	model string
	reply string
	err   error
}

func (p stubProvider) Name() string  { return p.name }
func (p stubProvider) Model() string { return p.model }

func (p stubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

// recordingSubmitter captures submissions keyed by agent id.
type recordingSubmitter struct {
	mu          sync.Mutex
	submissions map[string]storage.SubmitOptions
	contents    map[string]string
	failFor     string
}

func newRecordingSubmitter() *recordingSubmitter {
	return &recordingSubmitter{
		submissions: make(map[string]storage.SubmitOptions),
		contents:    make(map[string]string),
	}
}

func (r *recordingSubmitter) SubmitContribution(agentID, content string, opts storage.SubmitOptions) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if agentID == r.failFor {
		return "", errors.New("store rejected contribution")
	}
	r.submissions[agentID] = opts
	r.contents[agentID] = content
	return fmt.Sprintf("hash-%s", agentID), nil
}

func TestCollectSubmitsEveryReply(t *testing.T) {
	sub := newRecordingSubmitter()
	c := NewCollector(sub)
	c.Bind("openai-gpt-4o", stubProvider{name: "openai", model: "gpt-4o", reply: "Use optimistic locking."})
	c.Bind("anthropic-claude", stubProvider{name: "anthropic", model: "claude-sonnet-4-20250514", reply: "Prefer idempotent writes."})

	results, err := c.Collect(context.Background(), "How should we handle concurrent updates?")
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	// Dispatch order follows bind order.
	if results[0].AgentID != "openai-gpt-4o" || results[1].AgentID != "anthropic-claude" {
		t.Errorf("result order = [%s %s]", results[0].AgentID, results[1].AgentID)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: unexpected error %v", r.AgentID, r.Err)
		}
		if r.Hash != "hash-"+r.AgentID {
			t.Errorf("%s: hash = %q", r.AgentID, r.Hash)
		}
	}

	if sub.contents["openai-gpt-4o"] != "Use optimistic locking." {
		t.Errorf("content = %q", sub.contents["openai-gpt-4o"])
	}
	opts := sub.submissions["anthropic-claude"]
	if opts.Metadata["provider"] != "anthropic" || opts.Metadata["model"] != "claude-sonnet-4-20250514" {
		t.Errorf("metadata = %+v", opts.Metadata)
	}
}

func TestCollectReportsProviderFailure(t *testing.T) {
	sub := newRecordingSubmitter()
	c := NewCollector(sub)
	boom := errors.New("rate limited")
	c.Bind("good", stubProvider{name: "openai", model: "gpt-4o", reply: "fine"})
	c.Bind("bad", stubProvider{name: "deepseek", model: "deepseek-chat", err: boom})

	results, err := c.Collect(context.Background(), "task")
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}

	var failed *Result
	for i := range results {
		if results[i].AgentID == "bad" {
			failed = &results[i]
		}
	}
	if failed == nil || !errors.Is(failed.Err, boom) {
		t.Errorf("failure not recorded per result: %+v", results)
	}
}

func TestCollectReportsSubmitFailure(t *testing.T) {
	sub := newRecordingSubmitter()
	sub.failFor = "rejected"
	c := NewCollector(sub)
	c.Bind("rejected", stubProvider{name: "openai", model: "gpt-4o", reply: "content"})

	results, err := c.Collect(context.Background(), "task")
	if err == nil {
		t.Fatal("expected submit error")
	}
	if results[0].Err == nil || results[0].Hash != "" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestBindRebindReplacesProviderKeepsOrder(t *testing.T) {
	sub := newRecordingSubmitter()
	c := NewCollector(sub)
	c.Bind("first", stubProvider{name: "openai", model: "gpt-4o", reply: "v1"})
	c.Bind("second", stubProvider{name: "gemini", model: "gemini-2.5-flash", reply: "v1"})
	c.Bind("first", stubProvider{name: "openai", model: "gpt-4o", reply: "v2"})

	results, err := c.Collect(context.Background(), "task")
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if results[0].AgentID != "first" || results[1].AgentID != "second" {
		t.Errorf("order = [%s %s]", results[0].AgentID, results[1].AgentID)
	}
	if sub.contents["first"] != "v2" {
		t.Errorf("rebind did not replace provider, content = %q", sub.contents["first"])
	}
}

func TestCollectHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sub := newRecordingSubmitter()
	c := NewCollector(sub)
	c.Bind("a", stubProvider{name: "openai", model: "gpt-4o", reply: "never delivered"})

	results, err := c.Collect(ctx, "task")
	if err == nil {
		t.Fatal("expected context error")
	}
	if results[0].Err == nil {
		t.Errorf("result error missing: %+v", results[0])
	}
	if len(sub.contents) != 0 {
		t.Errorf("submission happened despite cancelled context: %v", sub.contents)
	}
}
