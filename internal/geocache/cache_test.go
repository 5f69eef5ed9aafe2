package geocache_test

import (
	"context"
	"errors"
	"testing"

	"tourmap/internal/geocache"
	"tourmap/internal/storage"
	"tourmap/models"
)

func TestCache_StoreLookup(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	c := geocache.New(mem)

	coord := models.Coordinate{Lat: 35.7796, Lon: -78.6382}
	if err := c.Store(ctx, "North Carolina, United States", coord); err != nil {
		t.Fatalf("Store() returned error: %v", err)
	}

	raw, ok, err := mem.Get(ctx, "geo:north carolina, united states")
	if err != nil || !ok {
		t.Fatalf("backend entry missing: ok=%v err=%v", ok, err)
	}
	if string(raw) != "[35.7796,-78.6382]" {
		t.Errorf("stored value = %s", raw)
	}

	got, ok, err := c.Lookup(ctx, "north carolina, united states")
	if err != nil {
		t.Fatalf("Lookup() returned error: %v", err)
	}
	if !ok || got != coord {
		t.Errorf("Lookup() = %+v, %v; want %+v, true", got, ok, coord)
	}
}

func TestCache_LookupMiss(t *testing.T) {
	c := geocache.New(storage.NewMemory())
	_, ok, err := c.Lookup(context.Background(), "nowhere")
	if err != nil || ok {
		t.Fatalf("Lookup() = ok %v err %v; want miss", ok, err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    models.Coordinate
		wantErr bool
	}{
		{name: "pair", input: "[48.85,2.35]", want: models.Coordinate{Lat: 48.85, Lon: 2.35}},
		{name: "not json", input: "lat", wantErr: true},
		{name: "wrong length", input: "[1,2,3]", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := geocache.Decode([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}
func (failingBackend) Put(context.Context, string, []byte) error { return errors.New("down") }

func TestCache_BackendErrors(t *testing.T) {
	c := geocache.New(failingBackend{})
	if _, _, err := c.Lookup(context.Background(), "x"); err == nil {
		t.Error("Lookup() error = nil, want error")
	}
	if err := c.Store(context.Background(), "x", models.Coordinate{}); err == nil {
		t.Error("Store() error = nil, want error")
	}
}
