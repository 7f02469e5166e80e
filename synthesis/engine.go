// Package synthesis implements the four merge strategies over a validated
// contribution batch.
//
// Information Hiding:
// - Chunk segmentation and dedup internals hidden
// - Similarity clustering internals hidden
// - Tie-break ordering encapsulated per strategy
package synthesis

import (
	"errors"
	"fmt"
	"time"

	"github.com/richinex/concord/model"
)

// ErrEmptyContributionSet is returned when a merge is requested over zero
// contributions.
var ErrEmptyContributionSet = errors.New("empty contribution set")

// Config holds the engine's tunable thresholds. All are explicit,
// overridable configuration.
type Config struct {
	// SimilarityThreshold is the token-set similarity at or above which
	// two chunks are near-duplicates (SYNTHESIS dedup).
	SimilarityThreshold float64
	// ClusterThreshold is the pairwise similarity at or above which two
	// contributions are connected into one cluster (CONSENSUS).
	ClusterThreshold float64
	// MinClusterSize is the smallest cluster CONSENSUS accepts before
	// falling back to the disagreement path.
	MinClusterSize int
	// LowConfidenceCap bounds the confidence reported on the CONSENSUS
	// disagreement path.
	LowConfidenceCap float64
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.8,
		ClusterThreshold:    0.6,
		MinClusterSize:      2,
		LowConfidenceCap:    0.3,
	}
}

// Input pairs a contribution with its validation result and its agent's
// static metadata. Strategies never mutate inputs.
type Input struct {
	Contribution model.Contribution
	Agent        model.Agent
	Validation   model.ValidationResult
}

// influence is the contribution's weight in confidence arithmetic:
// contribution confidence scaled by validated quality.
func (in Input) influence() float64 {
	return in.Contribution.Confidence * in.Validation.QualityScore
}

// composite is the COMPETITIVE_EVAL score: agent baseline trust times
// contribution confidence times validated quality. All factors are in
// [0,1], so the product already is.
func (in Input) composite() float64 {
	return in.Agent.Confidence * in.Contribution.Confidence * in.Validation.QualityScore
}

// groupKey resolves the grouping tag for SYNTHESIS and COMPLEMENTARY:
// aspect metadata when present, else agent specialty, else "general".
func (in Input) groupKey() string {
	if a := in.Contribution.Aspect(); a != "" {
		return a
	}
	if s := in.Agent.Specialty; s != "" {
		return s
	}
	return "general"
}

// Engine applies a merge strategy to a validated batch.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given thresholds. Zero-value
// threshold fields fall back to the defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = def.SimilarityThreshold
	}
	if cfg.ClusterThreshold <= 0 {
		cfg.ClusterThreshold = def.ClusterThreshold
	}
	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = def.MinClusterSize
	}
	if cfg.LowConfidenceCap <= 0 {
		cfg.LowConfidenceCap = def.LowConfidenceCap
	}
	return &Engine{cfg: cfg}
}

// outcome is what each strategy produces before result assembly.
type outcome struct {
	content    string
	agents     []string // selection order defined per strategy
	confidence float64
	metadata   map[string]any
}

// Merge applies the strategy to the batch and assembles the merge result.
func (e *Engine) Merge(batch []Input, strategy model.Strategy) (model.MergeResult, error) {
	if len(batch) == 0 {
		return model.MergeResult{}, fmt.Errorf("%w: strategy %s", ErrEmptyContributionSet, strategy)
	}

	var (
		out outcome
		err error
	)
	switch strategy {
	case model.StrategySynthesis:
		out = e.synthesize(batch)
	case model.StrategyConsensus:
		out = e.consensus(batch)
	case model.StrategyComplementary:
		out = e.complementary(batch)
	case model.StrategyCompetitiveEval:
		out = e.competitiveEval(batch)
	default:
		err = fmt.Errorf("%w: %q", model.ErrInvalidStrategy, strategy)
	}
	if err != nil {
		return model.MergeResult{}, err
	}

	metadata := out.metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["total_contributions"] = len(batch)

	validations := make(map[string]model.ValidationResult, len(batch))
	for _, in := range batch {
		validations[in.Contribution.Hash] = in.Validation
	}

	return model.MergeResult{
		Strategy:           strategy,
		MergedContent:      out.content,
		ContributingAgents: out.agents,
		ConfidenceScore:    clamp01(out.confidence),
		Metadata:           metadata,
		Timestamp:          time.Now(),
		ValidationResults:  validations,
	}, nil
}

// appendAgent appends id unless it is already the last-seen occurrence in
// the list.
func appendAgent(agents []string, id string) []string {
	for _, a := range agents {
		if a == id {
			return agents
		}
	}
	return append(agents, id)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scoreEpsilon is the tolerance for treating two floating-point scores as
// tied before applying the tie-break chain.
const scoreEpsilon = 1e-12
