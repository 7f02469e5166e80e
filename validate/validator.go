// Package validate scores contributions along four quality dimensions:
// completeness, coherence, relevance, and consistency.
//
// Validation never rejects a contribution. Low scores reduce the
// contribution's influence on a merge; they are reported inside the merge
// result, not raised as errors.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/richinex/concord/internal/text"
	"github.com/richinex/concord/model"
)

// Weights control the dimension mix of the aggregate quality score.
// They must sum to 1.
type Weights struct {
	Completeness float64
	Coherence    float64
	Relevance    float64
	Consistency  float64
}

// DefaultWeights returns the documented default dimension weights.
func DefaultWeights() Weights {
	return Weights{
		Completeness: 0.30,
		Coherence:    0.25,
		Relevance:    0.25,
		Consistency:  0.20,
	}
}

// Validate checks that every weight is non-negative and the sum is 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"completeness": w.Completeness,
		"coherence":    w.Coherence,
		"relevance":    w.Relevance,
		"consistency":  w.Consistency,
	} {
		if v < 0 {
			return fmt.Errorf("negative %s weight: %v", name, v)
		}
	}
	sum := w.Completeness + w.Coherence + w.Relevance + w.Consistency
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("validation weights must sum to 1, got %v", sum)
	}
	return nil
}

// scorer computes the single-contribution dimensions for one modality.
// Consistency is batch-aware and handled by the Validator itself.
type scorer interface {
	score(c model.Contribution, context string) (completeness, coherence, relevance float64, suggestions []string)
}

// Validator scores contributions. Safe for concurrent use; it holds no
// mutable state.
type Validator struct {
	weights Weights
	scorers map[model.Modality]scorer
}

// NewValidator creates a validator with the given weights.
func NewValidator(w Weights) (*Validator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	ts := textScorer{}
	return &Validator{
		weights: w,
		scorers: map[model.Modality]scorer{
			model.ModalityText:       ts,
			model.ModalityImage:      mediaScorer{},
			model.ModalityAudio:      mediaScorer{},
			model.ModalityVideo:      mediaScorer{},
			model.ModalityMultimodal: ts,
		},
	}, nil
}

// Validate scores a single contribution against an optional merge context.
// Without a batch there is no contradiction evidence, so consistency
// scores 1.
func (v *Validator) Validate(c model.Contribution, context string) model.ValidationResult {
	return v.validateOne(c, context, 1.0, nil)
}

// ValidateBatch scores every contribution in a merge batch, including the
// batch-aware consistency check, and returns results keyed by hash.
func (v *Validator) ValidateBatch(batch []model.Contribution, context string) map[string]model.ValidationResult {
	consistency := consistencyScores(batch)

	out := make(map[string]model.ValidationResult, len(batch))
	for i, c := range batch {
		score, sugg := consistency[i], []string(nil)
		if score < 0.8 {
			sugg = []string{"resolve the contradiction with other contributions in this batch"}
		}
		out[c.Hash] = v.validateOne(c, context, score, sugg)
	}
	return out
}

func (v *Validator) validateOne(c model.Contribution, context string, consistency float64, consistencySuggestions []string) model.ValidationResult {
	sc, ok := v.scorers[c.Modality]
	if !ok {
		sc = v.scorers[model.ModalityText]
	}

	completeness, coherence, relevance, suggestions := sc.score(c, context)
	suggestions = append(suggestions, consistencySuggestions...)

	quality := v.weights.Completeness*completeness +
		v.weights.Coherence*coherence +
		v.weights.Relevance*relevance +
		v.weights.Consistency*consistency

	return model.ValidationResult{
		Completeness: clamp(completeness),
		Coherence:    clamp(coherence),
		Relevance:    clamp(relevance),
		Consistency:  clamp(consistency),
		QualityScore: clamp(quality),
		Suggestions:  suggestions,
	}
}

// textScorer is the full lexical implementation used for text payloads.
type textScorer struct{}

func (textScorer) score(c model.Contribution, context string) (float64, float64, float64, []string) {
	var suggestions []string

	completeness, s := scoreCompleteness(c.Content)
	suggestions = append(suggestions, s...)

	coherence, s := scoreCoherence(c.Content)
	suggestions = append(suggestions, s...)

	relevance, s := scoreRelevance(c.Content, context)
	suggestions = append(suggestions, s...)

	return completeness, coherence, relevance, suggestions
}

// scoreCompleteness is a length-and-structure heuristic: trivially short
// content scores near the floor, multi-sentence and multi-paragraph
// content climbs toward 1.
func scoreCompleteness(content string) (float64, []string) {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < 10 {
		return 0.1, []string{"contribution is too brief to be meaningful"}
	}

	words := len(text.Tokenize(trimmed))
	score := 0.4 + 0.4*math.Min(float64(words)/60.0, 1.0)

	if len(text.SplitSentences(trimmed)) >= 2 {
		score += 0.1
	}
	if len(text.SplitParagraphs(trimmed)) >= 2 {
		score += 0.1
	}

	var suggestions []string
	if score < 0.6 {
		suggestions = append(suggestions, "expand the contribution with more detail or structure")
	}
	return clamp(score), suggestions
}

// repetitionThreshold is the token duplication ratio above which coherence
// degrades.
const repetitionThreshold = 0.5

// scoreCoherence penalizes heavy token repetition and fragments that trail
// off without a complete final thought.
func scoreCoherence(content string) (float64, []string) {
	trimmed := strings.TrimSpace(content)
	score := 1.0
	var suggestions []string

	tokens := text.Tokenize(trimmed)
	if dup := text.DuplicationRatio(tokens); dup > repetitionThreshold {
		score -= (dup - repetitionThreshold) * 1.2
		suggestions = append(suggestions, "reduce repeated phrasing")
	}

	if strings.HasSuffix(trimmed, "...") || strings.HasSuffix(trimmed, ". .") || strings.HasSuffix(trimmed, "..") {
		score -= 0.2
		suggestions = append(suggestions, "contribution appears incomplete")
	}

	if len(tokens) > 25 && !strings.ContainsAny(trimmed[len(trimmed)-1:], ".!?") {
		score -= 0.1
	}

	return clamp(score), suggestions
}

// scoreRelevance is the token-set overlap between content and the merge
// context. An empty context is no constraint: relevance scores zero
// without a suggestion.
func scoreRelevance(content, context string) (float64, []string) {
	if strings.TrimSpace(context) == "" {
		return 0, nil
	}

	contextSet := text.SignificantSet(context)
	if len(contextSet) == 0 {
		return 0, nil
	}
	contentSet := text.SignificantSet(content)

	score := text.Overlap(contentSet, contextSet)
	var suggestions []string
	if score < 0.2 {
		suggestions = append(suggestions, "address the merge context more directly")
	}
	return clamp(score), suggestions
}

// contradictionPenalty is deducted per contradicting batch member, capped
// at maxContradictionPenalty.
const (
	contradictionPenalty    = 0.25
	maxContradictionPenalty = 0.6
)

// consistencyScores cross-checks each contribution against the rest of the
// batch for direct lexical contradiction: one member negates a significant
// phrase another member states plainly.
func consistencyScores(batch []model.Contribution) []float64 {
	type view struct {
		plain   text.Set
		negated text.Set
	}
	views := make([]view, len(batch))
	for i, c := range batch {
		negated := text.NegatedTokens(c.Content)
		plain := text.SignificantSet(c.Content)
		for t := range negated {
			delete(plain, t)
		}
		views[i] = view{plain: plain, negated: negated}
	}

	scores := make([]float64, len(batch))
	for i := range batch {
		contradictions := 0
		for j := range batch {
			if i == j {
				continue
			}
			if views[i].negated.Intersection(views[j].plain) > 0 ||
				views[j].negated.Intersection(views[i].plain) > 0 {
				contradictions++
			}
		}
		penalty := math.Min(float64(contradictions)*contradictionPenalty, maxContradictionPenalty)
		scores[i] = clamp(1.0 - penalty)
	}
	return scores
}

// mediaScorer handles non-text payload tags. The core never decodes media;
// scores come from declared metadata only, with a neutral midpoint
// baseline.
type mediaScorer struct{}

func (mediaScorer) score(c model.Contribution, context string) (float64, float64, float64, []string) {
	completeness := 0.5
	var suggestions []string

	// A description makes the payload addressable by the lexical pipeline.
	desc, _ := c.Metadata["description"].(string)
	if strings.TrimSpace(desc) != "" {
		completeness = 0.7
	} else {
		suggestions = append(suggestions, "add a textual description for non-text content")
	}

	relevance, s := scoreRelevance(desc, context)
	suggestions = append(suggestions, s...)

	return completeness, 0.5, relevance, suggestions
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
