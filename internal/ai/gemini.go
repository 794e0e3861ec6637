package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/wattwise/bill-ingest-service/internal/models"
	"google.golang.org/api/option"
)

// GeminiProvider calls Google Gemini with inline document blobs. Unlike the
// OpenAI path it accepts PDFs directly.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini client
func NewGeminiProvider(ctx context.Context, cfg models.GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Close releases the underlying client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// ExtractData asks for a JSON response over the prompt and all documents
func (p *GeminiProvider) ExtractData(ctx context.Context, prompt string, docs []models.Document) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	parts := []genai.Part{genai.Text(prompt)}
	for i, doc := range docs {
		if len(doc.Data) == 0 {
			return "", fmt.Errorf("document %d has no data", i)
		}
		parts = append(parts, genai.Blob{
			MIMEType: doc.ContentType,
			Data:     doc.Data,
		})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("Gemini response truncated at max tokens")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}
	return sb.String(), nil
}
