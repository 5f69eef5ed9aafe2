// Package geocache is the persistent geocoding cache. Entries are keyed by
// the lower-cased query, hold a JSON encoded [lat, lon] pair and never expire.
package geocache

import (
	"context"
	"encoding/json"
	"fmt"

	"tourmap/internal/keys"
	"tourmap/models"
)

// Backend is a durable byte store. Get reports false when key is absent.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Cache maps geocoding queries to coordinates on top of a Backend.
type Cache struct {
	backend Backend
}

func New(backend Backend) *Cache {
	return &Cache{backend: backend}
}

// Lookup returns the cached coordinate for query.
func (c *Cache) Lookup(ctx context.Context, query string) (models.Coordinate, bool, error) {
	data, ok, err := c.backend.Get(ctx, keys.Geo(query))
	if err != nil || !ok {
		return models.Coordinate{}, false, err
	}
	coord, err := Decode(data)
	if err != nil {
		return models.Coordinate{}, false, err
	}
	return coord, true, nil
}

// Store writes coord for query. An existing entry is overwritten.
func (c *Cache) Store(ctx context.Context, query string, coord models.Coordinate) error {
	data, err := Encode(coord)
	if err != nil {
		return err
	}
	return c.backend.Put(ctx, keys.Geo(query), data)
}

// Encode renders coord as the stored [lat, lon] value.
func Encode(coord models.Coordinate) ([]byte, error) {
	return json.Marshal(coord.Pair())
}

// Decode parses a stored [lat, lon] value.
func Decode(data []byte) (models.Coordinate, error) {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return models.Coordinate{}, fmt.Errorf("decode cache entry: %w", err)
	}
	if len(pair) != 2 {
		return models.Coordinate{}, fmt.Errorf("decode cache entry: want 2 values, got %d", len(pair))
	}
	return models.Coordinate{Lat: pair[0], Lon: pair[1]}, nil
}
