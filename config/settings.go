// Package config provides application settings loaded from environment
// variables.
//
// Settings are created via Load() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Weight-sum validation for the quality score mix
package config

import (
	"fmt"
	"math"

	"github.com/caarlos0/env/v11"
)

// Settings holds all application configuration.
type Settings struct {
	Validation ValidationSettings
	Synthesis  SynthesisSettings
	LLM        LLMSettings

	// EventLog is a JSONL event log path; empty disables persistent
	// event logging.
	EventLog string `env:"CONCORD_EVENT_LOG"`
	// EventDB is a SQLite event database path; empty disables it.
	EventDB string `env:"CONCORD_EVENT_DB"`
}

// ValidationSettings holds the quality-score dimension weights. The four
// weights must sum to 1.
type ValidationSettings struct {
	CompletenessWeight float64 `env:"CONCORD_WEIGHT_COMPLETENESS" envDefault:"0.30"`
	CoherenceWeight    float64 `env:"CONCORD_WEIGHT_COHERENCE" envDefault:"0.25"`
	RelevanceWeight    float64 `env:"CONCORD_WEIGHT_RELEVANCE" envDefault:"0.25"`
	ConsistencyWeight  float64 `env:"CONCORD_WEIGHT_CONSISTENCY" envDefault:"0.20"`
}

// SynthesisSettings holds the engine thresholds.
type SynthesisSettings struct {
	SimilarityThreshold float64 `env:"CONCORD_SIMILARITY_THRESHOLD" envDefault:"0.8"`
	ClusterThreshold    float64 `env:"CONCORD_CLUSTER_THRESHOLD" envDefault:"0.6"`
	MinClusterSize      int     `env:"CONCORD_MIN_CLUSTER_SIZE" envDefault:"2"`
	LowConfidenceCap    float64 `env:"CONCORD_LOW_CONFIDENCE_CAP" envDefault:"0.3"`
}

// LLMSettings configures the live-collection providers.
type LLMSettings struct {
	MaxTokens   int     `env:"CONCORD_LLM_MAX_TOKENS" envDefault:"1024"`
	Temperature float64 `env:"CONCORD_LLM_TEMPERATURE" envDefault:"0.7"`
}

// Load parses settings from the environment and validates them.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	v := s.Validation
	sum := v.CompletenessWeight + v.CoherenceWeight + v.RelevanceWeight + v.ConsistencyWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("validation weights must sum to 1, got %v", sum)
	}
	for name, t := range map[string]float64{
		"CONCORD_SIMILARITY_THRESHOLD": s.Synthesis.SimilarityThreshold,
		"CONCORD_CLUSTER_THRESHOLD":    s.Synthesis.ClusterThreshold,
		"CONCORD_LOW_CONFIDENCE_CAP":   s.Synthesis.LowConfidenceCap,
	} {
		if t <= 0 || t > 1 {
			return fmt.Errorf("%s must be in (0,1], got %v", name, t)
		}
	}
	if s.Synthesis.MinClusterSize < 1 {
		return fmt.Errorf("CONCORD_MIN_CLUSTER_SIZE must be at least 1, got %d", s.Synthesis.MinClusterSize)
	}
	return nil
}
