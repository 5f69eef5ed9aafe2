package filter

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tourmap/internal/models"
)

// Source supplies the artist list and each artist's concert locations.
type Source interface {
	FetchArtists(ctx context.Context) ([]models.Artist, error)
	LocationsByArtist(ctx context.Context) (map[int][]models.LocationKey, error)
}

// Result is the body of GET /api/artists.
type Result struct {
	Artists   []models.Artist `json:"artists"`
	Locations []string        `json:"locations"`
	Count     int             `json:"count"`
}

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Filter fetches artists and locations concurrently and applies c.
func (s *Service) Filter(ctx context.Context, c Criteria) (Result, error) {
	var (
		artists   []models.Artist
		locations map[int][]models.LocationKey
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		artists, err = s.source.FetchArtists(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = s.source.LocationsByArtist(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	matched := Apply(artists, c, locations)
	return Result{Artists: matched, Locations: UniqueLocations(locations), Count: len(matched)}, nil
}
