package dispatch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EndpointSource returns active service_type -> URL overrides
type EndpointSource interface {
	ActiveEndpoints(ctx context.Context) (map[string]string, error)
}

// Resolver overlays configured endpoint URLs with active rows from the
// configuration store. Overrides are cached for ttl.
type Resolver struct {
	defaults map[string]string
	source   EndpointSource
	ttl      time.Duration
	logger   zerolog.Logger

	mu       sync.RWMutex
	cached   map[string]string
	loadedAt time.Time
	now      func() time.Time
}

// NewResolver builds the default endpoint map from baseURL and the configured
// paths. A path that is already an absolute URL is used as is. source may be nil.
func NewResolver(baseURL string, paths map[string]string, source EndpointSource, ttl time.Duration, logger zerolog.Logger) *Resolver {
	defaults := make(map[string]string, len(paths))
	for service, path := range paths {
		defaults[service] = joinURL(baseURL, path)
	}
	return &Resolver{
		defaults: defaults,
		source:   source,
		ttl:      ttl,
		logger:   logger.With().Str("component", "endpoint_resolver").Logger(),
		now:      time.Now,
	}
}

// storeTimeout bounds one read of the endpoint store
const storeTimeout = 5 * time.Second

// Endpoints returns the service -> URL map for routing. The store read is
// detached from ctx cancellation so one aborted request cannot poison the
// cache. A failing store is logged and not cached: the last good map is
// served if there is one, else the configured defaults.
func (r *Resolver) Endpoints(ctx context.Context) map[string]string {
	if r.source == nil {
		return copyMap(r.defaults)
	}

	r.mu.RLock()
	if r.cached != nil && r.now().Sub(r.loadedAt) < r.ttl {
		out := copyMap(r.cached)
		r.mu.RUnlock()
		return out
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if r.cached != nil && r.now().Sub(r.loadedAt) < r.ttl {
		return copyMap(r.cached)
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	overrides, err := r.source.ActiveEndpoints(loadCtx)
	if err != nil {
		if r.cached != nil {
			r.logger.Warn().Err(err).Msg("endpoint store unavailable, serving last loaded endpoints")
			return copyMap(r.cached)
		}
		r.logger.Warn().Err(err).Msg("endpoint store unavailable, using configured defaults")
		return copyMap(r.defaults)
	}

	merged := copyMap(r.defaults)
	for service, url := range overrides {
		if url = strings.TrimSpace(url); url != "" && ValidService(service) {
			merged[service] = url
		}
	}

	r.cached = merged
	r.loadedAt = r.now()
	return copyMap(merged)
}

// Invalidate drops the cached overrides
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

func joinURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || baseURL == "" {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
