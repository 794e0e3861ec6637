package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wattwise/bill-ingest-service/internal/classify"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// FileSource fetches a previously uploaded document by reference
type FileSource interface {
	Fetch(ctx context.Context, ref string) (*models.Document, error)
}

// EndpointLister returns the service -> URL map calls may be sent to
type EndpointLister interface {
	Endpoints(ctx context.Context) map[string]string
}

// RetryRequest describes one previously failed call
type RetryRequest struct {
	Service  string            `json:"service"`
	Endpoint string            `json:"endpoint"`
	Fields   map[string]string `json:"fields"`
	Phone    string            `json:"phone"`
	FileRef  string            `json:"file_ref"`
}

// RetryResult is the last observed outcome
type RetryResult struct {
	OK       bool   `json:"ok"`
	Status   int    `json:"status"`
	Body     string `json:"body"`
	Attempts int    `json:"attempts"`
}

// Retrier re-executes a failed call with bounded exponential backoff
type Retrier struct {
	sender      Sender
	files       FileSource
	endpoints   EndpointLister
	maxAttempts int
	baseDelay   time.Duration
	logger      zerolog.Logger

	// sleep waits d or returns early with ctx.Err(); replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a Retrier. files may be nil when no retry carries a file ref.
// Only endpoints currently listed by endpoints for the requested service are called.
func NewRetrier(sender Sender, files FileSource, endpoints EndpointLister, cfg models.RetryConfig, logger zerolog.Logger) *Retrier {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseDelay := time.Duration(cfg.BaseDelayMS) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &Retrier{
		sender:      sender,
		files:       files,
		endpoints:   endpoints,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger.With().Str("component", "retrier").Logger(),
		sleep:       sleepContext,
	}
}

// Retry runs req up to maxAttempts times. Only transport errors, 429 and 5xx
// are retried; after attempt n (from 0) it waits baseDelay*2^n. Exhausting all
// attempts is not an error: the last result is returned and callers check OK.
// An error is returned only for an invalid request or a cancelled context.
func (r *Retrier) Retry(ctx context.Context, req RetryRequest) (RetryResult, error) {
	if !ValidService(req.Service) {
		return RetryResult{}, fmt.Errorf("%w: %q", models.ErrUnknownService, req.Service)
	}
	if req.Endpoint == "" {
		return RetryResult{}, fmt.Errorf("%w: endpoint is required", models.ErrInvalidInput)
	}
	if !r.knownEndpoint(ctx, req.Service, req.Endpoint) {
		return RetryResult{}, fmt.Errorf("%w: %s is not the configured %s endpoint", models.ErrInvalidInput, req.Endpoint, req.Service)
	}
	if req.FileRef != "" && r.files == nil {
		return RetryResult{}, fmt.Errorf("%w: file ref given but no file source configured", models.ErrInvalidInput)
	}

	fields := make(map[string]string, len(req.Fields)+1)
	for k, v := range req.Fields {
		fields[k] = v
	}
	if req.Phone != "" {
		fields["phone"] = classify.NormalizePhone(req.Phone)
	} else if p, ok := fields["phone"]; ok {
		fields["phone"] = classify.NormalizePhone(p)
	}

	spec := CallSpec{
		Service:      req.Service,
		Endpoint:     strings.TrimSpace(req.Endpoint),
		Fields:       fields,
		RequiresFile: req.FileRef != "",
	}

	var last RetryResult
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		res := r.attempt(ctx, spec, req.FileRef)
		last = RetryResult{
			OK:       res.OK,
			Status:   res.Status,
			Body:     res.Body,
			Attempts: attempt + 1,
		}
		if res.Error != "" && res.Body == "" {
			last.Body = res.Error
		}

		if !retryable(res.Status) {
			return last, nil
		}
		if attempt == r.maxAttempts-1 {
			break
		}

		delay := r.baseDelay * time.Duration(1<<attempt)
		r.logger.Info().
			Str("service", req.Service).
			Int("status", res.Status).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("retrying billing call")

		if err := r.sleep(ctx, delay); err != nil {
			return last, fmt.Errorf("context canceled during retry wait: %w", err)
		}
	}

	r.logger.Warn().Str("service", req.Service).Int("status", last.Status).Int("attempts", last.Attempts).Msg("retries exhausted")
	return last, nil
}

// knownEndpoint reports whether endpoint is where service calls are routed now.
// The billing token is attached to every call, so nothing else is reachable.
func (r *Retrier) knownEndpoint(ctx context.Context, service, endpoint string) bool {
	if r.endpoints == nil {
		return false
	}
	configured, ok := r.endpoints.Endpoints(ctx)[service]
	return ok && configured != "" && configured == strings.TrimSpace(endpoint)
}

func (r *Retrier) attempt(ctx context.Context, spec CallSpec, fileRef string) CallResult {
	var file *models.Document
	if fileRef != "" {
		f, err := r.files.Fetch(ctx, fileRef)
		if err != nil {
			// treated like any other transport failure
			return CallResult{Service: spec.Service, Endpoint: spec.Endpoint, Error: fmt.Sprintf("fetch file: %v", err)}
		}
		file = f
	}
	return r.sender.Send(ctx, spec, file)
}

// retryable reports whether status warrants another attempt; 0 means the
// request never got a response and counts as a 500.
func retryable(status int) bool {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status == http.StatusTooManyRequests || status >= 500
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
