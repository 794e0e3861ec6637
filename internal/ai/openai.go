package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// OpenAIProvider calls an OpenAI compatible chat completion endpoint with image parts
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider; BaseURL allows compatible gateways
func NewOpenAIProvider(cfg models.OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// ExtractData sends the prompt and every document as one user message
func (p *OpenAIProvider) ExtractData(ctx context.Context, prompt string, docs []models.Document) (string, error) {
	parts, err := openAIParts(prompt, docs)
	if err != nil {
		return "", err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("OpenAI returned an empty message")
	}
	return content, nil
}

func openAIParts(prompt string, docs []models.Document) ([]openai.ChatMessagePart, error) {
	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: prompt,
		},
	}

	for i, doc := range docs {
		// image_url parts only carry images; PDFs need the gemini provider
		if !strings.HasPrefix(doc.ContentType, "image/") {
			return nil, fmt.Errorf("document %d: OpenAI vision accepts images only, got %s", i, doc.ContentType)
		}
		if len(doc.Data) == 0 {
			return nil, fmt.Errorf("document %d: empty image", i)
		}
		imageURL := fmt.Sprintf("data:%s;base64,%s", doc.ContentType, base64.StdEncoding.EncodeToString(doc.Data))

		if len(docs) > 1 {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: fmt.Sprintf("This is page %d.", i+1),
			})
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    imageURL,
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	return parts, nil
}
