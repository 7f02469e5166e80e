// Package llm provides the completion providers used to collect live
// contributions from model APIs.
//
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific error handling
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider is the minimal completion interface the collector needs.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Complete sends a single-turn completion request.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options configure a provider.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

func (o Options) withDefaults(defaultModel string) Options {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 1024
	}
	if o.Temperature <= 0 {
		o.Temperature = 0.7
	}
	return o
}

// providerInfo holds per-provider defaults and environment lookups.
type providerInfo struct {
	apiKeyEnv    string
	modelEnv     string
	defaultModel string
	construct    func(apiKey string, opts Options) (Provider, error)
}

var providers = map[string]providerInfo{
	"openai": {
		apiKeyEnv:    "OPENAI_API_KEY",
		modelEnv:     "OPENAI_MODEL",
		defaultModel: "gpt-4o",
		construct: func(key string, opts Options) (Provider, error) {
			return NewOpenAIProvider(key, opts), nil
		},
	},
	"anthropic": {
		apiKeyEnv:    "ANTHROPIC_API_KEY",
		modelEnv:     "ANTHROPIC_MODEL",
		defaultModel: "claude-sonnet-4-20250514",
		construct: func(key string, opts Options) (Provider, error) {
			return NewAnthropicProvider(key, opts), nil
		},
	},
	"deepseek": {
		apiKeyEnv:    "DEEPSEEK_API_KEY",
		modelEnv:     "DEEPSEEK_MODEL",
		defaultModel: "deepseek-chat",
		construct: func(key string, opts Options) (Provider, error) {
			return NewDeepSeekProvider(key, opts), nil
		},
	},
	"gemini": {
		apiKeyEnv:    "GEMINI_API_KEY",
		modelEnv:     "GEMINI_MODEL",
		defaultModel: "gemini-2.5-flash",
		construct: func(key string, opts Options) (Provider, error) {
			return NewGeminiProvider(key, opts)
		},
	},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// Names returns the canonical provider names.
func Names() []string {
	return []string{"openai", "anthropic", "deepseek", "gemini"}
}

// FromEnv builds a provider by name, reading the API key (and optionally
// the model) from environment variables.
func FromEnv(name string, opts Options) (Provider, error) {
	canonical := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := providerAliases[canonical]; ok {
		canonical = alias
	}
	info, ok := providers[canonical]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (supported: %s)", name, strings.Join(Names(), ", "))
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}

	if opts.Model == "" {
		opts.Model = os.Getenv(info.modelEnv)
	}
	return info.construct(key, opts.withDefaults(info.defaultModel))
}
