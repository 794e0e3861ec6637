package dispatch

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/wattwise/bill-ingest-service/internal/models"
	"golang.org/x/sync/errgroup"
)

// Sender executes a single billing call
type Sender interface {
	Send(ctx context.Context, spec CallSpec, file *models.Document) CallResult
}

// Router issues every call of a request concurrently
type Router struct {
	sender Sender
	logger zerolog.Logger
}

// NewRouter creates a Router
func NewRouter(sender Sender, logger zerolog.Logger) *Router {
	return &Router{sender: sender, logger: logger}
}

// Dispatch sends all specs at once and waits for every result. The group has
// no shared cancelling context, so one failed call never stops another.
// ok is the AND of all individual results.
func (r *Router) Dispatch(ctx context.Context, specs []CallSpec, file *models.Document) ([]CallResult, bool) {
	results := make([]CallResult, len(specs))

	var g errgroup.Group
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			results[i] = r.sender.Send(ctx, spec, file)
			return nil
		})
	}
	_ = g.Wait()

	ok := true
	for _, res := range results {
		if !res.OK {
			ok = false
			r.logger.Warn().
				Str("service", res.Service).
				Int("status", res.Status).
				Str("error", res.Error).
				Msg("billing call not ok")
		}
	}
	return results, ok
}
