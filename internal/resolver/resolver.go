// Package resolver turns an artist's tour locations into map markers.
//
// Locations are processed one at a time, in tour order. A location is
// resolved from the persistent cache when possible and otherwise geocoded
// upstream, with consecutive upstream calls spaced by a fixed delay. A
// location that cannot be resolved is skipped; it never stops the others.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tourmap/internal/mapview"
	"tourmap/internal/models"
	coords "tourmap/models"
	"tourmap/pkg/geo"
	"tourmap/pkg/logger"
	"tourmap/pkg/metrics"
)

// DefaultDelay is the spacing between two upstream geocoding calls.
// Nominatim rate-limits unauthenticated clients to one request per second.
const DefaultDelay = time.Second

var (
	ErrInvalidArtist = errors.New("invalid artist id")
	ErrMetadata      = errors.New("tour data unavailable")
)

// Source yields the tour stops of an artist.
type Source interface {
	LocationSet(ctx context.Context, artistID int) (models.ArtistLocationSet, error)
}

// Geocoder resolves a free-text query. ok is false when there is no candidate.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (c coords.Coordinate, ok bool, err error)
}

// Cache is the persistent query to coordinate store.
type Cache interface {
	Lookup(ctx context.Context, query string) (coords.Coordinate, bool, error)
	Store(ctx context.Context, query string, c coords.Coordinate) error
}

// Surface receives markers and is fitted once all locations are processed.
type Surface interface {
	AddMarker(m mapview.Marker)
	FitBounds() bool
}

// Result summarizes one resolution.
type Result struct {
	Markers  []mapview.Marker     `json:"markers"`
	Skipped  []models.LocationKey `json:"skipped"`
	Cached   int                  `json:"cached"`
	Geocoded int                  `json:"geocoded"`
	Fitted   bool                 `json:"fitted"`
}

// Resolver is safe for concurrent use. All resolutions share one throttle,
// so the process as a whole respects the upstream rate limit.
type Resolver struct {
	source   Source
	geocoder Geocoder
	cache    Cache
	limiter  *rate.Limiter
	log      *zap.Logger
	metrics  *metrics.Metrics
}

type Option func(*Resolver)

// WithDelay sets the minimum spacing between upstream geocoding calls.
func WithDelay(d time.Duration) Option {
	return func(r *Resolver) { r.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) { r.log = logger.OrNop(log) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

func New(source Source, geocoder Geocoder, cache Cache, opts ...Option) *Resolver {
	r := &Resolver{
		source:   source,
		geocoder: geocoder,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Every(DefaultDelay), 1),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches the tour of artistID and draws one marker per resolvable
// location on surface.
//
// A failed tour lookup returns an error wrapping ErrMetadata and leaves
// surface untouched. An empty tour is not an error.
func (r *Resolver) Resolve(ctx context.Context, artistID int, surface Surface) (Result, error) {
	if artistID <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidArtist, artistID)
	}

	set, err := r.source.LocationSet(ctx, artistID)
	if err != nil {
		r.log.Error("tour data lookup failed", zap.Int("artist_id", artistID), zap.Error(err))
		return Result{}, fmt.Errorf("%w: %w", ErrMetadata, err)
	}
	return r.ResolveStops(ctx, set.Stops, surface)
}

// ResolveStops runs the resolution loop over stops already at hand.
//
// If ctx is canceled between two locations the markers drawn so far are
// returned with ctx.Err() and the surface is not fitted.
func (r *Resolver) ResolveStops(ctx context.Context, stops []models.TourStop, surface Surface) (Result, error) {
	start := time.Now()
	defer func() { r.metrics.ObserveResolve(time.Since(start).Seconds()) }()

	res := Result{Markers: []mapview.Marker{}, Skipped: []models.LocationKey{}}
	if len(stops) == 0 {
		r.log.Info("no locations to resolve")
		return res, nil
	}

	for _, stop := range stops {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		query := geo.Normalize(string(stop.Name))
		pos, ok, err := r.locate(ctx, query, &res)
		if err != nil {
			return res, err
		}
		if !ok {
			res.Skipped = append(res.Skipped, stop.Name)
			continue
		}

		m := mapview.NewMarker(query, pos, stop.Dates)
		surface.AddMarker(m)
		res.Markers = append(res.Markers, m)
		r.metrics.Marker()
	}

	if len(res.Markers) > 0 {
		res.Fitted = surface.FitBounds()
	}
	r.log.Info("locations resolved",
		zap.Int("locations", len(stops)),
		zap.Int("markers", len(res.Markers)),
		zap.Int("cached", res.Cached),
		zap.Int("geocoded", res.Geocoded),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

// locate resolves one query. It only returns an error when ctx is done;
// every other failure is logged and reported as ok == false.
func (r *Resolver) locate(ctx context.Context, query string, res *Result) (coords.Coordinate, bool, error) {
	pos, hit, err := r.cache.Lookup(ctx, query)
	if err != nil {
		r.metrics.CacheError("lookup")
		r.log.Warn("cache lookup failed", zap.String("query", query), zap.Error(err))
	}
	if hit {
		r.metrics.CacheHit()
		res.Cached++
		return pos, true, nil
	}
	r.metrics.CacheMiss()

	if err := r.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return coords.Coordinate{}, false, ctxErr
		}
		return coords.Coordinate{}, false, err
	}

	r.metrics.GeocodeRequest()
	pos, ok, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return coords.Coordinate{}, false, ctxErr
		}
		r.metrics.GeocodeFailure()
		r.log.Warn("geocoding failed", zap.String("query", query), zap.Error(err))
		return coords.Coordinate{}, false, nil
	}
	if !ok {
		r.metrics.GeocodeEmpty()
		r.log.Warn("no geocoding result", zap.String("query", query))
		return coords.Coordinate{}, false, nil
	}
	res.Geocoded++

	if err := r.cache.Store(ctx, query, pos); err != nil {
		r.metrics.CacheError("store")
		r.log.Warn("cache store failed", zap.String("query", query), zap.Error(err))
	}
	return pos, true, nil
}
