package oracle

import (
	"context"
	"fmt"

	"github.com/vigil-app/vigil/internal/config"
)

// Payload is the multimodal input handed to the reasoning oracle
type Payload struct {
	Prompt string

	// ImagePaths are JPEG/PNG files attached to the prompt (keyframes,
	// page renders, uploaded images)
	ImagePaths []string

	// AudioPath is a 16 kHz mono WAV, when the audio chain extracted one
	AudioPath string

	// FileURI is a reference the provider ingests natively (YouTube URLs
	// on the direct_reference channel)
	FileURI string
}

// Reasoner is a reasoning-oracle provider
type Reasoner interface {
	// Name returns the provider name (e.g., "gemini", "openai")
	Name() string

	// Analyze sends the payload and returns the raw model output
	Analyze(ctx context.Context, p Payload) (string, error)

	// Close releases provider resources
	Close() error
}

// FailureError wraps a reasoning-oracle failure after retries
type FailureError struct {
	Provider string
	Err      error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("oracle %s failed: %v", e.Provider, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }

// NewReasoner creates the configured provider.
//
// Supported providers:
//   - "gemini" (default): full multimodal, native URI ingestion
//   - "openai": images via data URLs; audio represented by transcript text
func NewReasoner(ctx context.Context, cfg config.OracleConfig) (Reasoner, error) {
	switch cfg.Provider {
	case "", "gemini":
		apiKey := config.GeminiAPIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("%s not set", config.EnvGeminiAPIKey)
		}
		return newGeminiReasoner(ctx, apiKey, cfg.Model)

	case "openai":
		apiKey := config.OpenAIAPIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("%s not set", config.EnvOpenAIAPIKey)
		}
		return newOpenAIReasoner(apiKey, cfg.Model), nil

	default:
		return nil, fmt.Errorf("unknown oracle provider: %s (supported: gemini, openai)", cfg.Provider)
	}
}
