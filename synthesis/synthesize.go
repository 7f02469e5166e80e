package synthesis

import (
	"strings"

	"github.com/richinex/concord/internal/text"
)

// chunk is one semantic unit of a contribution, at paragraph granularity.
type chunk struct {
	content string
	tokens  text.Set
	input   int // index into the batch
}

// synthesize segments every contribution into chunks, drops near-duplicate
// chunks across contributions, groups survivors by aspect (falling back to
// agent specialty), and concatenates groups in first-seen order.
//
// Confidence is the mean of each retained contribution's
// confidence*quality, weighted by how many of its chunks survived.
func (e *Engine) synthesize(batch []Input) outcome {
	var chunks []chunk
	for i, in := range batch {
		for _, p := range segment(in.Contribution.Content) {
			chunks = append(chunks, chunk{
				content: p,
				tokens:  text.SignificantSet(p),
				input:   i,
			})
		}
	}
	total := len(chunks)

	// Near-duplicate drop: first occurrence wins, later lookalikes go.
	var kept []chunk
	for _, c := range chunks {
		dup := false
		for _, k := range kept {
			if text.Jaccard(c.tokens, k.tokens) >= e.cfg.SimilarityThreshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}

	// Group surviving chunks in first-seen group order.
	var groupOrder []string
	groups := make(map[string][]chunk)
	survived := make(map[int]int) // batch index -> surviving chunk count
	var agents []string
	for _, c := range kept {
		key := batch[c.input].groupKey()
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], c)
		survived[c.input]++
		agents = appendAgent(agents, batch[c.input].Contribution.AgentID)
	}

	var parts []string
	for _, key := range groupOrder {
		var body []string
		for _, c := range groups[key] {
			body = append(body, c.content)
		}
		section := strings.Join(body, "\n\n")
		if len(groupOrder) > 1 {
			section = "[" + key + "]\n" + section
		}
		parts = append(parts, section)
	}

	var weighted, weightSum float64
	for i, w := range survived {
		weighted += float64(w) * batch[i].influence()
		weightSum += float64(w)
	}
	confidence := 0.0
	if weightSum > 0 {
		confidence = weighted / weightSum
	}

	return outcome{
		content:    strings.Join(parts, "\n\n"),
		agents:     agents,
		confidence: confidence,
		metadata: map[string]any{
			"total_chunks":    total,
			"retained_chunks": len(kept),
			"groups":          len(groupOrder),
		},
	}
}

// segment splits content into paragraph chunks; content without blank
// lines stays a single chunk.
func segment(content string) []string {
	if ps := text.SplitParagraphs(content); len(ps) > 0 {
		return ps
	}
	if t := strings.TrimSpace(content); t != "" {
		return []string{t}
	}
	return nil
}
