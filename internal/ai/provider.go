package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/wattwise/bill-ingest-service/internal/models"
)

// Provider is a vision-capable model that turns documents plus a prompt into JSON text
type Provider interface {
	Name() string
	ExtractData(ctx context.Context, prompt string, docs []models.Document) (string, error)
}

// NewProvider creates the configured default provider
func NewProvider(ctx context.Context, cfg models.AIConfig) (Provider, error) {
	switch strings.ToLower(cfg.DefaultProvider) {
	case "", "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.DefaultProvider)
	}
}
