package synthesis

// competitiveEval scores every contribution by the composite
// agent.confidence × contribution.confidence × quality and returns the
// winner's content verbatim. Ties break first by lower agent response
// time, then by lexicographically smaller agent id.
func (e *Engine) competitiveEval(batch []Input) outcome {
	best := 0
	bestScore := batch[0].composite()
	for i := 1; i < len(batch); i++ {
		score := batch[i].composite()
		bi, bb := batch[i], batch[best]
		switch {
		case score > bestScore+scoreEpsilon:
		case score < bestScore-scoreEpsilon:
			continue
		case bi.Agent.ResponseTimeMs < bb.Agent.ResponseTimeMs:
		case bi.Agent.ResponseTimeMs > bb.Agent.ResponseTimeMs:
			continue
		case bi.Contribution.AgentID < bb.Contribution.AgentID:
		default:
			continue
		}
		best, bestScore = i, score
	}

	// The composite's factors are all bounded in [0,1], so the raw
	// product is already normalized.
	return outcome{
		content:    batch[best].Contribution.Content,
		agents:     []string{batch[best].Contribution.AgentID},
		confidence: bestScore,
		metadata: map[string]any{
			"winning_score": bestScore,
			"candidates":    len(batch),
		},
	}
}
