package perception

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/mkralik/photo-insight/internal/signal"
)

const geminiModel = "gemini-2.5-flash"

// Gemini 2.5 Flash pricing per 1M tokens.
const (
	geminiInputPrice  = 0.30
	geminiOutputPrice = 2.50
)

// GeminiProvider extracts perception signals with a Gemini vision model.
type GeminiProvider struct {
	client *genai.Client
	usage  Usage
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) GetUsage() *Usage {
	return &p.usage
}

func (p *GeminiProvider) trackUsage(inputTokens, outputTokens int32) {
	p.usage.InputTokens += int(inputTokens)
	p.usage.OutputTokens += int(outputTokens)
	p.usage.TotalCost += float64(inputTokens) / 1_000_000 * geminiInputPrice
	p.usage.TotalCost += float64(outputTokens) / 1_000_000 * geminiOutputPrice
}

func (p *GeminiProvider) Perceive(ctx context.Context, imageData []byte) (*signal.Signals, error) {
	const maxRetries = 5

	width, height, err := DecodeDimensions(imageData)
	if err != nil {
		return nil, err
	}

	resizedData, err := ResizeImage(imageData, maxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildVisionPrompt() + "\n\nAnalyze this image."},
				{InlineData: &genai.Blob{Data: resizedData, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini API error: %w", err)
		}

		if result.UsageMetadata != nil {
			p.trackUsage(result.UsageMetadata.PromptTokenCount, result.UsageMetadata.CandidatesTokenCount)
		}

		content := result.Text()
		if content == "" {
			return nil, errors.New("no response from Gemini")
		}
		lastResponse = content

		sig, err := parseSignals(content, width, height)
		if err != nil {
			lastError = err
			contents = append(contents,
				&genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: content}},
				},
				&genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: fmt.Sprintf("JSON parse error: %v. Please fix the JSON and try again.", err)}},
				},
			)
			continue
		}

		return sig, nil
	}

	return nil, fmt.Errorf("failed to parse signals JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}
