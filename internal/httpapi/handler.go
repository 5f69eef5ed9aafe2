// Package httpapi exposes map resolution and search suggestions over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tourmap/internal/filter"
	"tourmap/internal/mapview"
	"tourmap/internal/models"
	"tourmap/internal/resolver"
	"tourmap/internal/suggest"
	"tourmap/internal/warmup"
	"tourmap/pkg/logger"
)

const (
	msgInvalidArtist  = "invalid artist id"
	msgInvalidPayload = "invalid tour payload"
	msgTourData       = "tour data unavailable"
	msgCanceled       = "request canceled"
	msgInternal       = "internal server error"
	msgSuggestions    = "suggestions unavailable"
	msgWarmDisabled   = "cache warming not configured"
	msgWarmFailed     = "could not queue warm request"
	msgClearDisabled  = "cache backend cannot be cleared"
	msgClearFailed    = "could not clear cache"
	msgInvalidFilter  = "invalid filter"
	msgArtists        = "artist list unavailable"
)

// Resolver draws an artist's tour onto a surface.
type Resolver interface {
	Resolve(ctx context.Context, artistID int, surface resolver.Surface) (resolver.Result, error)
	ResolveStops(ctx context.Context, stops []models.TourStop, surface resolver.Surface) (resolver.Result, error)
}

// Catalog is the artist side of the data API: the artist list and each
// artist's concert locations.
type Catalog interface {
	filter.Source
}

// Publisher queues warm requests.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// MapResponse is the body of the map endpoints. On a metadata failure View
// is the default world view and Error carries the reason.
type MapResponse struct {
	View   *mapview.View   `json:"view"`
	Result resolver.Result `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// Clearer empties the persistent cache.
type Clearer interface {
	Clear(ctx context.Context) error
}

type WarmResponse struct {
	ArtistID int    `json:"artist_id"`
	Status   string `json:"status"`
}

type Handler struct {
	resolver  Resolver
	artists   Catalog
	filter    *filter.Service
	publisher Publisher
	clearer   Clearer
	log       *zap.Logger
}

// NewHandler builds the handler. publisher may be nil, in which case the
// warm route answers 503.
func NewHandler(r Resolver, artists Catalog, publisher Publisher, log *zap.Logger) *Handler {
	return &Handler{
		resolver:  r,
		artists:   artists,
		filter:    filter.NewService(artists),
		publisher: publisher,
		log:       logger.OrNop(log),
	}
}

// WithClearer enables DELETE /geocache.
func (h *Handler) WithClearer(c Clearer) *Handler {
	h.clearer = c
	return h
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/artists", h.Artists)
	rg.GET("/artists/:id/map", h.ArtistMap)
	rg.POST("/artists/:id/map", h.EmbeddedMap)
	rg.POST("/artists/:id/warm", h.Warm)
	rg.GET("/suggestions", h.Suggestions)
	rg.DELETE("/geocache", h.ClearCache)
}

func artistID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		Error(c, http.StatusBadRequest, msgInvalidArtist, c.Param("id"))
		return 0, false
	}
	return id, true
}

// ArtistMap resolves the tour of one artist from the data API.
func (h *Handler) ArtistMap(c *gin.Context) {
	id, ok := artistID(c)
	if !ok {
		return
	}
	view := mapview.New()
	res, err := h.resolver.Resolve(c.Request.Context(), id, view)
	h.respondMap(c, view, res, err)
}

// EmbeddedMap resolves a tour supplied in the request body.
func (h *Handler) EmbeddedMap(c *gin.Context) {
	if _, ok := artistID(c); !ok {
		return
	}
	var stops []models.TourStop
	if err := c.ShouldBindJSON(&stops); err != nil {
		Error(c, http.StatusBadRequest, msgInvalidPayload, err.Error())
		return
	}
	view := mapview.New()
	res, err := h.resolver.ResolveStops(c.Request.Context(), stops, view)
	h.respondMap(c, view, res, err)
}

func (h *Handler) respondMap(c *gin.Context, view *mapview.View, res resolver.Result, err error) {
	switch {
	case err == nil:
		OK(c, MapResponse{View: view, Result: res})
	case errors.Is(err, resolver.ErrInvalidArtist):
		Error(c, http.StatusBadRequest, msgInvalidArtist, nil)
	case errors.Is(err, resolver.ErrMetadata):
		// The page stays usable with an empty world map.
		_ = c.Error(err)
		OK(c, MapResponse{View: mapview.New(), Result: emptyResult(), Error: msgTourData})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		_ = c.Error(err)
		Error(c, http.StatusServiceUnavailable, msgCanceled, nil)
	default:
		h.log.Error("map resolution failed", zap.Error(err))
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, msgInternal, nil)
	}
}

func emptyResult() resolver.Result {
	return resolver.Result{Markers: []mapview.Marker{}, Skipped: []models.LocationKey{}}
}

// Artists answers GET /artists with the artists matching the query filters
// and the list of every known concert location.
func (h *Handler) Artists(c *gin.Context) {
	var criteria filter.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		Error(c, http.StatusBadRequest, msgInvalidFilter, err.Error())
		return
	}
	res, err := h.filter.Filter(c.Request.Context(), criteria)
	if err != nil {
		h.log.Warn("artist filter failed", zap.Error(err))
		_ = c.Error(err)
		Error(c, http.StatusBadGateway, msgArtists, nil)
		return
	}
	OK(c, res)
}

// Suggestions answers GET /suggestions?q=.
func (h *Handler) Suggestions(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		OK(c, suggest.Response{Suggestions: []suggest.Suggestion{}})
		return
	}
	artists, err := h.artists.FetchArtists(c.Request.Context())
	if err != nil {
		h.log.Warn("artist list unavailable", zap.Error(err))
		_ = c.Error(err)
		Error(c, http.StatusBadGateway, msgSuggestions, nil)
		return
	}
	OK(c, suggest.Response{Suggestions: suggest.Find(artists, q, suggest.DefaultMax)})
}

// Warm queues a cache warm request for one artist.
func (h *Handler) Warm(c *gin.Context) {
	id, ok := artistID(c)
	if !ok {
		return
	}
	if h.publisher == nil {
		Error(c, http.StatusServiceUnavailable, msgWarmDisabled, nil)
		return
	}
	key, value, err := warmup.Request{ArtistID: id}.Encode()
	if err != nil {
		Error(c, http.StatusInternalServerError, msgInternal, nil)
		return
	}
	if err := h.publisher.Publish(c.Request.Context(), key, value); err != nil {
		h.log.Warn("publish warm request failed", zap.Int("artist_id", id), zap.Error(err))
		_ = c.Error(err)
		Error(c, http.StatusBadGateway, msgWarmFailed, nil)
		return
	}
	JSON(c, http.StatusAccepted, WarmResponse{ArtistID: id, Status: "queued"})
}

// ClearCache drops every cached geocode.
func (h *Handler) ClearCache(c *gin.Context) {
	if h.clearer == nil {
		Error(c, http.StatusNotImplemented, msgClearDisabled, nil)
		return
	}
	if err := h.clearer.Clear(c.Request.Context()); err != nil {
		h.log.Error("clear cache failed", zap.Error(err))
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, msgClearFailed, nil)
		return
	}
	h.log.Info("geocache cleared")
	c.Status(http.StatusNoContent)
}
