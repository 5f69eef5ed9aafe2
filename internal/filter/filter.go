// Package filter narrows the artist list by formation year, first album
// year, member count, concert location and a free text query.
package filter

import (
	"slices"
	"strconv"
	"strings"

	"tourmap/internal/models"
	"tourmap/pkg/geo"
)

// Criteria are the filters of GET /api/artists. Zero values disable a bound;
// an empty list disables the list filter.
type Criteria struct {
	CreationYearMin int      `form:"creation_year_min"`
	CreationYearMax int      `form:"creation_year_max"`
	AlbumYearMin    int      `form:"album_year_min"`
	AlbumYearMax    int      `form:"album_year_max"`
	MemberCounts    []int    `form:"member_count"`
	Locations       []string `form:"location"`
	Query           string   `form:"q"`
}

// Normalize drops non-positive and duplicate member counts, trims locations
// and the query, and drops empty locations.
func (c Criteria) Normalize() Criteria {
	out := c
	out.MemberCounts = nil
	for _, n := range c.MemberCounts {
		if n > 0 && !slices.Contains(out.MemberCounts, n) {
			out.MemberCounts = append(out.MemberCounts, n)
		}
	}
	out.Locations = nil
	for _, loc := range c.Locations {
		if loc = strings.TrimSpace(loc); loc != "" {
			out.Locations = append(out.Locations, loc)
		}
	}
	out.Query = strings.TrimSpace(c.Query)
	return out
}

// AlbumYear reads the year from a first album date such as "14-12-1973".
// Only the last four characters are considered.
func AlbumYear(firstAlbum string) (int, bool) {
	if len(firstAlbum) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(firstAlbum[len(firstAlbum)-4:])
	if err != nil {
		return 0, false
	}
	return year, true
}

// Apply returns the artists matching every active criterion, in input order.
// locations maps artist ids to their concert locations and is only consulted
// when a location filter is set.
func Apply(artists []models.Artist, c Criteria, locations map[int][]models.LocationKey) []models.Artist {
	c = c.Normalize()
	query := strings.ToLower(c.Query)

	out := make([]models.Artist, 0, len(artists))
	for _, a := range artists {
		if !inRange(a.CreationDate, c.CreationYearMin, c.CreationYearMax) {
			continue
		}
		if c.AlbumYearMin > 0 || c.AlbumYearMax > 0 {
			// Unparseable dates are not excluded by the album bounds.
			if year, ok := AlbumYear(a.FirstAlbum); ok && !inRange(year, c.AlbumYearMin, c.AlbumYearMax) {
				continue
			}
		}
		if len(c.MemberCounts) > 0 && !slices.Contains(c.MemberCounts, len(a.Members)) {
			continue
		}
		if len(c.Locations) > 0 && !playedAny(locations[a.ID], c.Locations) {
			continue
		}
		if query != "" && !matchesQuery(a, query) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// UniqueLocations returns every location key once, sorted.
func UniqueLocations(locations map[int][]models.LocationKey) []string {
	seen := make(map[string]struct{})
	for _, keys := range locations {
		for _, k := range keys {
			seen[string(k)] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func inRange(v, lo, hi int) bool {
	if lo > 0 && v < lo {
		return false
	}
	if hi > 0 && v > hi {
		return false
	}
	return true
}

// playedAny accepts either the raw key ("london-uk") or its display form
// ("london, united kingdom").
func playedAny(keys []models.LocationKey, wanted []string) bool {
	for _, k := range keys {
		display := geo.Normalize(string(k))
		for _, w := range wanted {
			if strings.EqualFold(string(k), w) || strings.EqualFold(display, w) {
				return true
			}
		}
	}
	return false
}

func matchesQuery(a models.Artist, query string) bool {
	if strings.Contains(strings.ToLower(a.Name), query) {
		return true
	}
	for _, m := range a.Members {
		if strings.Contains(strings.ToLower(m), query) {
			return true
		}
	}
	return false
}
