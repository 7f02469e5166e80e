package synthesis

import "strings"

// complementary groups contributions by aspect (falling back to agent
// specialty) and keeps exactly one representative per group: the
// contribution maximizing confidence*quality, earliest timestamp on ties.
// Representatives are concatenated in first-seen group order.
func (e *Engine) complementary(batch []Input) outcome {
	var groupOrder []string
	reps := make(map[string]int) // group key -> batch index of representative

	for i, in := range batch {
		key := in.groupKey()
		cur, ok := reps[key]
		if !ok {
			groupOrder = append(groupOrder, key)
			reps[key] = i
			continue
		}
		ci, cc := batch[i], batch[cur]
		switch {
		case ci.influence() > cc.influence()+scoreEpsilon:
		case ci.influence() < cc.influence()-scoreEpsilon:
			continue
		case ci.Contribution.Timestamp.Before(cc.Contribution.Timestamp):
		default:
			continue
		}
		reps[key] = i
	}

	var parts []string
	var agents []string
	var influenceSum float64
	for _, key := range groupOrder {
		in := batch[reps[key]]
		section := in.Contribution.Content
		if len(groupOrder) > 1 {
			section = "[" + key + "]\n" + section
		}
		parts = append(parts, section)
		agents = appendAgent(agents, in.Contribution.AgentID)
		influenceSum += in.influence()
	}

	return outcome{
		content:    strings.Join(parts, "\n\n"),
		agents:     agents,
		confidence: influenceSum / float64(len(groupOrder)),
		metadata: map[string]any{
			"groups":  len(groupOrder),
			"aspects": append([]string(nil), groupOrder...),
		},
	}
}
