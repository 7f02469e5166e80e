// Package model provides domain types shared across packages.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Strategy selects the merge policy applied to a batch of contributions.
type Strategy string

const (
	// StrategySynthesis combines chunks from all contributions into a new solution.
	StrategySynthesis Strategy = "synthesis"
	// StrategyConsensus finds the largest cluster of agreeing contributions.
	StrategyConsensus Strategy = "consensus"
	// StrategyComplementary combines one representative per aspect.
	StrategyComplementary Strategy = "complementary"
	// StrategyCompetitiveEval scores every contribution and selects the best.
	StrategyCompetitiveEval Strategy = "competitive_evaluation"
)

// ErrInvalidStrategy is returned when a strategy name is not recognized.
var ErrInvalidStrategy = errors.New("invalid merge strategy")

// ParseStrategy converts a strategy name (case-insensitive) to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "synthesis":
		return StrategySynthesis, nil
	case "consensus":
		return StrategyConsensus, nil
	case "complementary":
		return StrategyComplementary, nil
	case "competitive_evaluation", "competitive_eval", "competitive":
		return StrategyCompetitiveEval, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, name)
	}
}

// Strategies returns all supported strategies in a stable order.
func Strategies() []Strategy {
	return []Strategy{
		StrategySynthesis,
		StrategyConsensus,
		StrategyComplementary,
		StrategyCompetitiveEval,
	}
}

// Modality tags the payload type of a contribution. The core never decodes
// non-text payloads; the tag only selects the validator implementation.
type Modality string

const (
	ModalityText       Modality = "text"
	ModalityImage      Modality = "image"
	ModalityAudio      Modality = "audio"
	ModalityVideo      Modality = "video"
	ModalityMultimodal Modality = "multimodal"
)

// Agent is a registered producer of contributions. Agents are immutable
// after registration and are never removed by clearing contributions.
type Agent struct {
	ID           string
	Name         string
	Capabilities []string
	// Confidence is the agent's baseline trust in [0,1]. Contributions
	// submitted without an explicit confidence inherit it.
	Confidence float64
	// Specialty is used as the grouping fallback when a contribution
	// carries no aspect metadata.
	Specialty string
	// ResponseTimeMs is descriptive metadata used only as a tie-break
	// signal; it is never an enforced deadline.
	ResponseTimeMs int
	// Modalities lists the payload types the agent may submit.
	// Empty means text only.
	Modalities []Modality
}

// Supports reports whether the agent may submit contributions of the
// given modality.
func (a Agent) Supports(m Modality) bool {
	if len(a.Modalities) == 0 {
		return m == ModalityText
	}
	for _, s := range a.Modalities {
		if s == m {
			return true
		}
	}
	return false
}

// Contribution is one immutable submission of content from an agent.
// The hash is its sole external handle.
type Contribution struct {
	AgentID    string
	Content    string
	Modality   Modality
	Timestamp  time.Time
	Confidence float64
	Metadata   map[string]any
	Hash       string
}

// MetadataAspect is the metadata key that drives complementary grouping.
const MetadataAspect = "aspect"

// Aspect returns the aspect metadata tag, or "" when absent.
func (c Contribution) Aspect() string {
	if c.Metadata == nil {
		return ""
	}
	if v, ok := c.Metadata[MetadataAspect].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// ValidationResult holds per-dimension quality scores for one contribution.
// All scores lie in [0,1]. Validation never rejects a contribution; low
// scores only reduce its influence on the merge.
type ValidationResult struct {
	Completeness float64
	Coherence    float64
	Relevance    float64
	Consistency  float64
	QualityScore float64
	Suggestions  []string
}

// MergeResult is the immutable outcome of one merge call.
type MergeResult struct {
	Strategy           Strategy
	MergedContent      string
	ContributingAgents []string
	ConfidenceScore    float64
	Metadata           map[string]any
	Timestamp          time.Time
	// ValidationResults maps contribution hash to its validation scores.
	ValidationResults map[string]ValidationResult
}
