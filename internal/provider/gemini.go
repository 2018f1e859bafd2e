package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/BTreeMap/JourneyMap/internal/models"
	"github.com/BTreeMap/JourneyMap/internal/prompt"
)

// geminiSafetySettings relaxes the default content filters. Journey
// narratives describe intimate wellness scenarios and the default
// thresholds reject them outright.
func geminiSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	}
}

func (c *Client) generateGemini(ctx context.Context, req GenerateRequest) (*models.JourneyData, error) {
	cfg := &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.opts.HTTPClient != nil {
		cfg.HTTPClient = c.opts.HTTPClient
	}
	if c.opts.GeminiBaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.opts.GeminiBaseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	system := prompt.SystemInstruction(req.Variables, models.ProviderGemini)
	user := prompt.UserMessage(req.Prompt, req.Background, models.ProviderGemini)

	resp, err := cli.Models.GenerateContent(ctx, geminiModel, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		SafetySettings:    geminiSafetySettings(),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiJourneySchema(),
		Temperature:       genai.Ptr[float32](generationTemperature),
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}
	return decodeJourney(resp.Candidates[0].Content.Parts[0].Text)
}
