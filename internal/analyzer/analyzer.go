package analyzer

import (
	"context"
	"fmt"

	"github.com/BerylCAtieno/documind/internal/config"
	"github.com/BerylCAtieno/documind/internal/utils"
)

const (
	TopP            = 0.95
	TopK            = 40
	MaxOutputTokens = 8192
	SafetyThreshold = "BLOCK_ONLY_HIGH"
)

// HarmCategories are filtered with SafetyThreshold on every request.
var HarmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

type Request struct {
	Prompt      string
	Model       string
	Temperature float64
	// APIKey overrides the configured credential when set.
	APIKey string
}

// Generator issues exactly one generation request per call. There are no
// retries.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Validate checks the caller-controlled fields of req.
func (r Request) Validate() error {
	if r.APIKey == "" {
		return utils.NewValidationError("API key is required")
	}
	if !config.IsSupportedModel(r.Model) {
		return utils.NewValidationError(fmt.Sprintf("unsupported model %q", r.Model))
	}
	if r.Temperature < 0 || r.Temperature > 1 {
		return utils.NewValidationError("temperature must be between 0 and 1")
	}
	return nil
}

// New picks the client implementation named by cfg.GeminiClient.
func New(cfg *config.Config, logger *utils.Logger) Generator {
	if cfg.GeminiClient == config.ClientSDK {
		return NewSDKGenerator(cfg.GeminiAPIKey, logger)
	}
	return NewGeminiGenerator(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiTimeout, logger)
}
