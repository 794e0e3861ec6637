package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubSource struct {
	rows  map[string]string
	err   error
	calls int
}

func (s *stubSource) ActiveEndpoints(ctx context.Context) (map[string]string, error) {
	s.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.rows, s.err
}

var defaultPaths = map[string]string{
	"electricity": "/electricity-file",
	"gas":         "gas-file",
	"meter":       "https://meters.example.ie/meter-file",
}

func TestResolver_Defaults(t *testing.T) {
	r := NewResolver("https://api.billing.ie/v1/", defaultPaths, nil, time.Minute, zerolog.Nop())

	got := r.Endpoints(context.Background())

	assert.Equal(t, map[string]string{
		"electricity": "https://api.billing.ie/v1/electricity-file",
		"gas":         "https://api.billing.ie/v1/gas-file",
		"meter":       "https://meters.example.ie/meter-file",
	}, got)
}

func TestResolver_ActiveOverridesAreCached(t *testing.T) {
	src := &stubSource{rows: map[string]string{
		"gas":       "https://gas.internal/upload",
		"broadband": "https://ignored",
	}}
	r := NewResolver("https://api.billing.ie", defaultPaths, src, time.Minute, zerolog.Nop())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	got := r.Endpoints(context.Background())
	assert.Equal(t, "https://gas.internal/upload", got["gas"])
	assert.Equal(t, "https://api.billing.ie/electricity-file", got["electricity"])
	assert.NotContains(t, got, "broadband")

	// callers cannot mutate the cache
	got["gas"] = "tampered"
	assert.Equal(t, "https://gas.internal/upload", r.Endpoints(context.Background())["gas"])
	assert.Equal(t, 1, src.calls)

	now = now.Add(2 * time.Minute)
	r.Endpoints(context.Background())
	assert.Equal(t, 2, src.calls)

	r.Invalidate()
	r.Endpoints(context.Background())
	assert.Equal(t, 3, src.calls)
}

func TestResolver_StoreFailureFallsBack(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	r := NewResolver("https://api.billing.ie", defaultPaths, src, time.Minute, zerolog.Nop())

	got := r.Endpoints(context.Background())

	assert.Equal(t, "https://api.billing.ie/gas-file", got["gas"])
	assert.Equal(t, 1, src.calls)
}

func TestResolver_FailureIsNotCached(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	r := NewResolver("https://api.billing.ie", defaultPaths, src, time.Minute, zerolog.Nop())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	assert.Equal(t, "https://api.billing.ie/gas-file", r.Endpoints(context.Background())["gas"])

	// store recovers within the ttl
	src.err = nil
	src.rows = map[string]string{"gas": "https://gas.internal/upload"}
	assert.Equal(t, "https://gas.internal/upload", r.Endpoints(context.Background())["gas"])
	assert.Equal(t, 2, src.calls)
}

func TestResolver_CancelledRequestStillLoadsOverrides(t *testing.T) {
	src := &stubSource{rows: map[string]string{"gas": "https://gas.internal/upload"}}
	r := NewResolver("https://api.billing.ie", defaultPaths, src, time.Minute, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, "https://gas.internal/upload", r.Endpoints(ctx)["gas"])
	assert.Equal(t, "https://gas.internal/upload", r.Endpoints(context.Background())["gas"])
	assert.Equal(t, 1, src.calls)
}

func TestResolver_ServesLastLoadedWhenStoreFails(t *testing.T) {
	src := &stubSource{rows: map[string]string{"gas": "https://gas.internal/upload"}}
	r := NewResolver("https://api.billing.ie", defaultPaths, src, time.Minute, zerolog.Nop())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Endpoints(context.Background())

	now = now.Add(2 * time.Minute)
	src.err = errors.New("connection refused")
	assert.Equal(t, "https://gas.internal/upload", r.Endpoints(context.Background())["gas"])

	// expired entries are retried on the next call
	assert.Equal(t, "https://gas.internal/upload", r.Endpoints(context.Background())["gas"])
	assert.Equal(t, 3, src.calls)
}
