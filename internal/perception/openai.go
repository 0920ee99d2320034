package perception

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/mkralik/photo-insight/internal/signal"
)

const chatModel = openai.ChatModelGPT4_1Mini

// GPT-4.1-mini pricing per 1M tokens.
const (
	openAIInputPrice  = 0.40
	openAIOutputPrice = 1.60
)

// OpenAIProvider extracts perception signals with an OpenAI vision model.
type OpenAIProvider struct {
	client *openai.Client
	usage  Usage
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

func (p *OpenAIProvider) Name() string {
	return chatModel
}

func (p *OpenAIProvider) GetUsage() *Usage {
	return &p.usage
}

func (p *OpenAIProvider) trackUsage(inputTokens, outputTokens int64) {
	p.usage.InputTokens += int(inputTokens)
	p.usage.OutputTokens += int(outputTokens)
	p.usage.TotalCost += float64(inputTokens) / 1_000_000 * openAIInputPrice
	p.usage.TotalCost += float64(outputTokens) / 1_000_000 * openAIOutputPrice
}

func (p *OpenAIProvider) Perceive(ctx context.Context, imageData []byte) (*signal.Signals, error) {
	const maxRetries = 5

	width, height, err := DecodeDimensions(imageData)
	if err != nil {
		return nil, err
	}

	// Resize to max 800px to save costs; normalized coordinates survive
	// the resize unchanged.
	resizedData, err := ResizeImage(imageData, maxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	base64Image := base64.StdEncoding.EncodeToString(resizedData)
	imageURL := "data:image/jpeg;base64," + base64Image

	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(buildVisionPrompt()),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart("Analyze this image."),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imageURL,
							Detail: "low",
						}),
					},
				},
			},
		},
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    chatModel,
			Messages: messages,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
			MaxTokens: openai.Int(1500),
		})
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}

		if len(resp.Choices) == 0 {
			return nil, errors.New("no response from OpenAI")
		}

		if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
			p.trackUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		}

		content := resp.Choices[0].Message.Content
		lastResponse = content

		sig, err := parseSignals(content, width, height)
		if err != nil {
			lastError = err

			// Feed the parse error back so the model can fix its JSON.
			messages = append(messages,
				openai.ChatCompletionMessageParamUnion{
					OfAssistant: &openai.ChatCompletionAssistantMessageParam{
						Content: openai.ChatCompletionAssistantMessageParamContentUnion{
							OfString: openai.String(content),
						},
					},
				},
				openai.ChatCompletionMessageParamUnion{
					OfUser: &openai.ChatCompletionUserMessageParam{
						Content: openai.ChatCompletionUserMessageParamContentUnion{
							OfString: openai.String(fmt.Sprintf("JSON parse error: %v. Please fix the JSON and try again. Remember to escape quotes inside strings with backslash.", err)),
						},
					},
				},
			)
			continue
		}

		return sig, nil
	}

	return nil, fmt.Errorf("failed to parse signals JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}
