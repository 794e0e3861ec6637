package ai

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// Extractor turns uploaded documents into a normalized Extraction
type Extractor struct {
	provider Provider
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewExtractor creates a new AI extractor
func NewExtractor(provider Provider, timeout time.Duration, logger zerolog.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		timeout:  timeout,
		logger:   logger.With().Str("component", "extractor").Str("provider", provider.Name()).Logger(),
	}
}

// Extract calls the provider and parses its answer. Any failure, including
// output that does not match the declared schema, is an extraction failure:
// there is no partial recovery.
func (e *Extractor) Extract(ctx context.Context, docs []models.Document) (*models.Extraction, error) {
	if len(docs) == 0 {
		return nil, models.NewAppError(models.CodeExtraction, "no documents", models.ErrExtractionFailed)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	response, err := e.provider.ExtractData(ctx, buildPrompt(), docs)
	if err != nil {
		e.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("AI extraction failed")
		return nil, failed("AI extraction failed", err)
	}

	e.logger.Debug().
		Int("documents", len(docs)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(start)).
		Msg("AI response received")

	cleaned := models.CleanModelResponse(response)
	if err := ValidateExtraction([]byte(cleaned)); err != nil {
		e.logger.Warn().Err(err).Msg("AI response rejected")
		return nil, failed("AI response does not match schema", err)
	}

	ext, err := models.ParseExtraction([]byte(cleaned))
	if err != nil {
		return nil, failed("failed to parse AI response", err)
	}

	return ext, nil
}

func failed(msg string, cause error) error {
	return models.NewAppError(models.CodeExtraction, msg, errors.Join(models.ErrExtractionFailed, cause))
}
