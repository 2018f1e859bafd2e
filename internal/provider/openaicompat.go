package provider

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/BTreeMap/JourneyMap/internal/models"
	"github.com/BTreeMap/JourneyMap/internal/prompt"
)

// generateOpenAICompat serves both ChatGPT and DeepSeek. DeepSeek exposes
// an OpenAI-compatible chat completions API, so the only differences are
// the base URL, the model name and the prompt language.
func (c *Client) generateOpenAICompat(ctx context.Context, p models.Provider, req GenerateRequest) (*models.JourneyData, error) {
	reqOpts := []option.RequestOption{option.WithAPIKey(req.APIKey)}
	model := chatGPTModel
	if p == models.ProviderDeepSeek {
		model = deepSeekModel
		reqOpts = append(reqOpts, option.WithBaseURL(c.opts.DeepSeekBaseURL))
	} else if c.opts.ChatGPTBaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.opts.ChatGPTBaseURL))
	}
	if c.opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(c.opts.HTTPClient))
	}
	cli := openai.NewClient(reqOpts...)

	system := prompt.SystemInstruction(req.Variables, p)
	user := prompt.UserMessage(req.Prompt, req.Background, p)

	completion, err := cli.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(generationTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "journey_map",
					Strict: openai.Bool(true),
					Schema: openaiJourneySchema(),
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}
	return decodeJourney(completion.Choices[0].Message.Content)
}
