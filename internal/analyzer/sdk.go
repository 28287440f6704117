package analyzer

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/BerylCAtieno/documind/internal/utils"
)

var sdkHarmCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// sdkGenerator talks to the same endpoint through the official client
// library. A client is opened per call because the key may differ per
// request.
type sdkGenerator struct {
	apiKey string
	logger *utils.Logger
	opts   []option.ClientOption
}

func NewSDKGenerator(apiKey string, logger *utils.Logger) Generator {
	return &sdkGenerator{apiKey: apiKey, logger: logger}
}

func (g *sdkGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		req.APIKey = g.apiKey
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	opts := append([]option.ClientOption{option.WithAPIKey(req.APIKey)}, g.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", utils.NewRemoteRequestError(err)
	}
	defer client.Close()

	m := client.GenerativeModel(req.Model)
	m.SetTemperature(float32(req.Temperature))
	m.SetTopP(TopP)
	m.SetTopK(TopK)
	m.SetMaxOutputTokens(MaxOutputTokens)
	for _, c := range sdkHarmCategories {
		m.SafetySettings = append(m.SafetySettings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockOnlyHigh,
		})
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		g.logger.Error("Gemini SDK request failed", "model", req.Model, "error", err)
		return "", mapSDKError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", utils.NewRemoteShapeError("unexpected response format: no candidate text")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", utils.NewRemoteShapeError("unexpected response format: first part is not text")
	}

	return string(text), nil
}

func mapSDKError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "API request failed"
		}
		return utils.NewRemoteResponseError(apiErr.Code, message)
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return utils.NewRemoteResponseError(http.StatusOK, blocked.Error())
	}

	return utils.NewRemoteRequestError(err)
}
