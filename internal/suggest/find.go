// Package suggest provides search-as-you-type suggestions for artists and
// band members, and the dropdown component that displays them.
package suggest

import (
	"strings"

	"tourmap/internal/models"
)

// DefaultMax caps the number of suggestions returned for one query.
const DefaultMax = 8

const (
	TypeArtist = "artist"
	TypeMember = "member"
)

type Suggestion struct {
	Text     string `json:"text"`
	Type     string `json:"type"`
	ArtistID int    `json:"artist_id"`
}

// Find returns up to max case-insensitive substring matches over artist
// names and their members, in artist order. max <= 0 means DefaultMax.
func Find(artists []models.Artist, query string, max int) []Suggestion {
	suggestions := []Suggestion{}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return suggestions
	}
	if max <= 0 {
		max = DefaultMax
	}

	for _, artist := range artists {
		if len(suggestions) >= max {
			break
		}
		if strings.Contains(strings.ToLower(artist.Name), q) {
			suggestions = append(suggestions, Suggestion{Text: artist.Name, Type: TypeArtist, ArtistID: artist.ID})
		}
		for _, member := range artist.Members {
			if len(suggestions) >= max {
				break
			}
			if strings.Contains(strings.ToLower(member), q) {
				suggestions = append(suggestions, Suggestion{Text: member, Type: TypeMember, ArtistID: artist.ID})
			}
		}
	}
	return suggestions
}
