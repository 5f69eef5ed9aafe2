// Package tourdata reads artists, locations and concert dates from the
// groupie tracker data API.
package tourdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tourmap/internal/models"
	"tourmap/pkg/logger"
)

const DefaultBaseURL = "https://groupietrackers.herokuapp.com/api"

// ErrArtistNotFound is returned when the location index has no entry for the
// requested artist.
var ErrArtistNotFound = errors.New("artist not found")

// LocationIndex is the payload of GET /locations.
type LocationIndex struct {
	Index []struct {
		ID        int      `json:"id"`
		Locations []string `json:"locations"`
	} `json:"index"`
}

// RelationIndex is the payload of GET /relation.
type RelationIndex struct {
	Index []struct {
		ID             int                 `json:"id"`
		DatesLocations map[string][]string `json:"datesLocations"`
	} `json:"index"`
}

// Client talks to the data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	artistsTTL time.Duration
	log        *zap.Logger

	mu           sync.Mutex
	artists      []models.Artist
	artistsFetch time.Time
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithArtistsTTL sets how long the artist list is reused. Zero disables reuse.
func WithArtistsTTL(d time.Duration) Option {
	return func(c *Client) { c.artistsTTL = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(log) }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
		artistsTTL: 5 * time.Minute,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchLocations(ctx context.Context) (*LocationIndex, error) {
	var idx LocationIndex
	if err := c.getJSON(ctx, "locations", &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

func (c *Client) FetchRelations(ctx context.Context) (*RelationIndex, error) {
	var idx RelationIndex
	if err := c.getJSON(ctx, "relation", &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// FetchArtists returns the artist list, reusing the previous response while
// it is younger than the configured TTL.
func (c *Client) FetchArtists(ctx context.Context) ([]models.Artist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.artists != nil && time.Since(c.artistsFetch) < c.artistsTTL {
		return c.artists, nil
	}

	var artists []models.Artist
	if err := c.getJSON(ctx, "artists", &artists); err != nil {
		return nil, err
	}
	c.artists = artists
	c.artistsFetch = time.Now()
	return artists, nil
}

// LocationsByArtist returns the concert locations of every artist, keyed by
// artist id.
func (c *Client) LocationsByArtist(ctx context.Context) (map[int][]models.LocationKey, error) {
	idx, err := c.FetchLocations(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int][]models.LocationKey, len(idx.Index))
	for _, entry := range idx.Index {
		keys := make([]models.LocationKey, len(entry.Locations))
		for i, l := range entry.Locations {
			keys[i] = models.LocationKey(l)
		}
		out[entry.ID] = keys
	}
	return out, nil
}

// LocationSet builds the ordered tour stops of one artist from the location
// and relation lookups, which run concurrently.
func (c *Client) LocationSet(ctx context.Context, artistID int) (models.ArtistLocationSet, error) {
	var (
		locations *LocationIndex
		relations *RelationIndex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		locations, err = c.FetchLocations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		relations, err = c.FetchRelations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ArtistLocationSet{}, err
	}

	var keys []string
	found := false
	for _, entry := range locations.Index {
		if entry.ID == artistID {
			keys = entry.Locations
			found = true
			break
		}
	}
	if !found {
		return models.ArtistLocationSet{}, fmt.Errorf("%w: id %d", ErrArtistNotFound, artistID)
	}

	var dates map[string][]string
	for _, entry := range relations.Index {
		if entry.ID == artistID {
			dates = entry.DatesLocations
			break
		}
	}

	set := models.ArtistLocationSet{ArtistID: artistID, Stops: make([]models.TourStop, 0, len(keys))}
	for _, key := range keys {
		d := dates[key]
		if d == nil {
			d = []string{}
		}
		set.Stops = append(set.Stops, models.TourStop{Name: models.LocationKey(key), Dates: d})
	}
	return set, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("data api request failed", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.log.Debug("data api request", zap.String("url", url), zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
