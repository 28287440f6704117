package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BerylCAtieno/documind/internal/utils"
)

type geminiGenerator struct {
	baseURL string
	apiKey  string
	logger  *utils.Logger
	client  *http.Client
}

type GenerateContentRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
	SafetySettings   []SafetySetting  `json:"safetySettings"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type GenerateContentResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func NewGeminiGenerator(baseURL, apiKey string, timeout time.Duration, logger *utils.Logger) Generator {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &geminiGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// BuildRequestBody returns the JSON body for prompt. The output only depends
// on prompt and temperature.
func BuildRequestBody(prompt string, temperature float64) ([]byte, error) {
	safety := make([]SafetySetting, 0, len(HarmCategories))
	for _, c := range HarmCategories {
		safety = append(safety, SafetySetting{Category: c, Threshold: SafetyThreshold})
	}

	return json.Marshal(GenerateContentRequest{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:     temperature,
			TopP:            TopP,
			TopK:            TopK,
			MaxOutputTokens: MaxOutputTokens,
		},
		SafetySettings: safety,
	})
}

func (g *geminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		req.APIKey = g.apiKey
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	jsonData, err := BuildRequestBody(req.Prompt, req.Temperature)
	if err != nil {
		return "", utils.NewInternalError(fmt.Sprintf("failed to marshal request: %v", err))
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(req.Model), url.QueryEscape(req.APIKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", utils.NewRemoteRequestError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	g.logger.Debug("Calling Gemini API", "model", req.Model, "prompt_length", len(req.Prompt))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		// never log the URL: it carries the key
		g.logger.Error("Gemini request failed", "model", req.Model, "error", redact(err.Error(), req.APIKey))
		return "", utils.NewRemoteRequestError(fmt.Errorf("%s", redact(err.Error(), req.APIKey)))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.NewRemoteRequestError(fmt.Errorf("failed to read response: %w", err))
	}

	var parsed GenerateContentResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := "API request failed"
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		g.logger.Error("Gemini API error", "status", resp.StatusCode, "message", message)
		return "", utils.NewRemoteResponseError(resp.StatusCode, message)
	}

	if decodeErr != nil {
		return "", utils.NewRemoteShapeError("failed to decode generation response")
	}

	text, ok := firstText(&parsed)
	if !ok {
		g.logger.Error("Unexpected Gemini response shape", "body_length", len(body))
		return "", utils.NewRemoteShapeError("unexpected response format: no candidate text")
	}

	g.logger.Debug("Gemini response received", "model", req.Model, "response_length", len(text))

	return text, nil
}

// firstText reads candidates[0].content.parts[0].text.
func firstText(resp *GenerateContentResponse) (string, bool) {
	if len(resp.Candidates) == 0 {
		return "", false
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == nil {
		return "", false
	}
	return *content.Parts[0].Text, true
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(secret), "REDACTED")
	return strings.ReplaceAll(s, secret, "REDACTED")
}
