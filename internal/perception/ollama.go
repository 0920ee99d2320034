package perception

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mkralik/photo-insight/internal/signal"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2-vision:11b"
)

// OllamaProvider extracts perception signals with a local Ollama vision
// model over plain HTTP.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
	usage   Usage
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func (p *OllamaProvider) Name() string {
	return p.model
}

func (p *OllamaProvider) GetUsage() *Usage {
	return &p.usage
}

// ollamaRequest represents a request to the Ollama chat API.
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64 encoded images
}

// ollamaResponse represents a response from the Ollama chat API.
type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool `json:"done"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
}

func (p *OllamaProvider) Perceive(ctx context.Context, imageData []byte) (*signal.Signals, error) {
	const maxRetries = 5

	width, height, err := DecodeDimensions(imageData)
	if err != nil {
		return nil, err
	}

	resizedData, err := ResizeImage(imageData, maxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}
	base64Image := base64.StdEncoding.EncodeToString(resizedData)

	messages := []ollamaMessage{
		{Role: "system", Content: buildVisionPrompt()},
		{Role: "user", Content: "Analyze this image.", Images: []string{base64Image}},
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		resp, err := p.sendRequest(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("ollama API error: %w", err)
		}

		// Ollama is free, but we still track tokens for stats.
		p.usage.InputTokens += resp.PromptEvalCount
		p.usage.OutputTokens += resp.EvalCount

		content := resp.Message.Content
		lastResponse = content

		sig, err := parseSignals(content, width, height)
		if err != nil {
			lastError = err
			messages = append(messages,
				ollamaMessage{Role: "assistant", Content: content},
				ollamaMessage{Role: "user", Content: fmt.Sprintf("JSON parse error: %v. Please fix the JSON and try again.", err)},
			)
			continue
		}

		return sig, nil
	}

	return nil, fmt.Errorf("failed to parse signals JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}

func (p *OllamaProvider) sendRequest(ctx context.Context, messages []ollamaMessage) (*ollamaResponse, error) {
	reqBody := ollamaRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Format:   "json",
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}
