// Package collect gathers live contributions by fanning a task prompt out
// to model providers and submitting each reply on behalf of its agent.
package collect

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/richinex/concord/llm"
	"github.com/richinex/concord/storage"
)

// Submitter accepts contributions. *orchestration.System satisfies it.
type Submitter interface {
	SubmitContribution(agentID, content string, opts storage.SubmitOptions) (string, error)
}

// Result is the outcome of one provider call.
type Result struct {
	AgentID string
	// Hash is the stored contribution hash on success.
	Hash string
	// Err is non-nil if the provider call or the submission failed.
	Err error
}

// Collector fans a task out to providers in parallel. Each provider is
// bound to the agent id it contributes as.
type Collector struct {
	mu        sync.Mutex
	providers map[string]llm.Provider // agent id -> provider
	order     []string
	submitter Submitter
}

// NewCollector creates a collector submitting through the given Submitter.
func NewCollector(submitter Submitter) *Collector {
	return &Collector{
		providers: make(map[string]llm.Provider),
		submitter: submitter,
	}
}

// Bind associates a provider with an agent id. Rebinding an id replaces
// its provider but keeps its position in the dispatch order.
func (c *Collector) Bind(agentID string, p llm.Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.providers[agentID]; !exists {
		c.order = append(c.order, agentID)
	}
	c.providers[agentID] = p
}

// Collect dispatches the task to every bound provider in parallel and
// submits each reply as a contribution. The first hard failure cancels
// the derived context so remaining calls return early; all results
// gathered so far are returned regardless.
func (c *Collector) Collect(ctx context.Context, task string) ([]Result, error) {
	c.mu.Lock()
	order := append([]string(nil), c.order...)
	providers := make(map[string]llm.Provider, len(c.providers))
	for id, p := range c.providers {
		providers[id] = p
	}
	c.mu.Unlock()

	results := make([]Result, len(order))
	g, ctx := errgroup.WithContext(ctx)

	for i, agentID := range order {
		provider := providers[agentID]
		g.Go(func() error {
			content, err := provider.Complete(ctx, task)
			if err != nil {
				results[i] = Result{AgentID: agentID, Err: err}
				return err
			}
			hash, err := c.submitter.SubmitContribution(agentID, content, storage.SubmitOptions{
				Metadata: map[string]any{
					"provider": provider.Name(),
					"model":    provider.Model(),
				},
			})
			if err != nil {
				results[i] = Result{AgentID: agentID, Err: err}
				return err
			}
			results[i] = Result{AgentID: agentID, Hash: hash}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
