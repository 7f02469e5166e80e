package synthesis

import (
	"sort"
	"strings"

	"github.com/richinex/concord/internal/text"
)

// consensus clusters contributions by pairwise token overlap and merges
// the largest cluster. When no cluster reaches the minimum size, the
// single highest-confidence contribution is returned on a penalized,
// explicitly flagged disagreement path instead of failing.
func (e *Engine) consensus(batch []Input) outcome {
	tokens := make([]text.Set, len(batch))
	for i, in := range batch {
		tokens[i] = text.SignificantSet(in.Contribution.Content)
	}

	uf := newUnionFind(len(batch))
	for i := 0; i < len(batch); i++ {
		for j := i + 1; j < len(batch); j++ {
			if text.Jaccard(tokens[i], tokens[j]) >= e.cfg.ClusterThreshold {
				uf.union(i, j)
			}
		}
	}

	winner := e.selectCluster(uf.components(), batch)
	if len(winner) < e.cfg.MinClusterSize {
		return e.disagreement(batch)
	}

	// Members in timestamp order define the selection order.
	members := append([]int(nil), winner...)
	sort.SliceStable(members, func(a, b int) bool {
		return batch[members[a]].Contribution.Timestamp.Before(batch[members[b]].Contribution.Timestamp)
	})

	content := e.commonPhrases(members, tokens, batch)

	var agents []string
	var qualitySum float64
	for _, i := range members {
		agents = appendAgent(agents, batch[i].Contribution.AgentID)
		qualitySum += batch[i].Validation.QualityScore
	}
	meanQuality := qualitySum / float64(len(members))
	confidence := float64(len(members)) / float64(len(batch)) * meanQuality

	return outcome{
		content:    content,
		agents:     agents,
		confidence: confidence,
		metadata: map[string]any{
			"cluster_size": len(members),
			"mean_quality": meanQuality,
		},
	}
}

// selectCluster picks the largest cluster; ties break by highest mean
// quality score, then earliest average timestamp.
func (e *Engine) selectCluster(clusters [][]int, batch []Input) []int {
	best := clusters[0]
	bestQuality, bestStamp := clusterStats(clusters[0], batch)
	for _, c := range clusters[1:] {
		quality, stamp := clusterStats(c, batch)
		switch {
		case len(c) > len(best):
		case len(c) < len(best):
			continue
		case quality > bestQuality+scoreEpsilon:
		case quality < bestQuality-scoreEpsilon:
			continue
		case stamp < bestStamp:
		default:
			continue
		}
		best, bestQuality, bestStamp = c, quality, stamp
	}
	return best
}

// clusterStats returns the mean quality score and mean timestamp
// (unix nanoseconds) of a cluster.
func clusterStats(cluster []int, batch []Input) (float64, int64) {
	var quality float64
	var stamp int64
	for _, i := range cluster {
		quality += batch[i].Validation.QualityScore
		stamp += batch[i].Contribution.Timestamp.UnixNano() / int64(len(cluster))
	}
	return quality / float64(len(cluster)), stamp
}

// commonPhrases builds the merged content: sentences (earliest member
// first) whose significant tokens are sufficiently covered by every other
// member, with near-duplicate sentences dropped. Falls back to a sorted
// common-term listing, then to the earliest member's content.
func (e *Engine) commonPhrases(members []int, tokens []text.Set, batch []Input) string {
	var sentences []string
	var sentenceSets []text.Set

	for _, i := range members {
		for _, sent := range text.SplitSentences(batch[i].Contribution.Content) {
			set := text.SignificantSet(sent)
			if len(set) == 0 {
				continue
			}
			shared := true
			for _, j := range members {
				if j == i {
					continue
				}
				if text.Overlap(set, tokens[j]) < e.cfg.ClusterThreshold {
					shared = false
					break
				}
			}
			if !shared {
				continue
			}
			dup := false
			for _, prev := range sentenceSets {
				if text.Jaccard(set, prev) >= e.cfg.SimilarityThreshold {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			sentences = append(sentences, sent)
			sentenceSets = append(sentenceSets, set)
		}
	}
	if len(sentences) > 0 {
		return strings.Join(sentences, " ")
	}

	// No whole sentence is shared; fall back to the common vocabulary.
	common := tokens[members[0]]
	for _, i := range members[1:] {
		next := make(text.Set)
		for t := range common {
			if tokens[i].Contains(t) {
				next[t] = struct{}{}
			}
		}
		common = next
	}
	if len(common) > 0 {
		terms := make([]string, 0, len(common))
		for t := range common {
			terms = append(terms, t)
		}
		sort.Strings(terms)
		return "Consensus terms: " + strings.Join(terms, ", ")
	}

	return batch[members[0]].Contribution.Content
}

// disagreement is the no-consensus path: the highest-confidence
// contribution is surfaced verbatim with a capped confidence and an
// explicit flag, never an error.
func (e *Engine) disagreement(batch []Input) outcome {
	best := 0
	for i := 1; i < len(batch); i++ {
		bi, bb := batch[i], batch[best]
		switch {
		case bi.Contribution.Confidence > bb.Contribution.Confidence+scoreEpsilon:
			best = i
		case bi.Contribution.Confidence < bb.Contribution.Confidence-scoreEpsilon:
		case bi.Contribution.Timestamp.Before(bb.Contribution.Timestamp):
			best = i
		}
	}

	confidence := batch[best].influence()
	if confidence > e.cfg.LowConfidenceCap {
		confidence = e.cfg.LowConfidenceCap
	}

	return outcome{
		content:    batch[best].Contribution.Content,
		agents:     []string{batch[best].Contribution.AgentID},
		confidence: confidence,
		metadata: map[string]any{
			"disagreement": true,
			"cluster_size": 1,
		},
	}
}
