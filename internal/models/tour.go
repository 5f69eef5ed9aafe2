package models

// LocationKey identifies a concert location in the tour data API, for
// example "north_carolina-usa".
type LocationKey string

// TourStop is one location of an artist's tour with its concert dates.
// It is also the shape of the payload a host page can embed directly.
type TourStop struct {
	Name  LocationKey `json:"name"`
	Dates []string    `json:"dates"`
}

// ArtistLocationSet holds the ordered tour stops of one artist.
type ArtistLocationSet struct {
	ArtistID int
	Stops    []TourStop
}

type Artist struct {
	ID           int      `json:"id"`
	Image        string   `json:"image"`
	Name         string   `json:"name"`
	Members      []string `json:"members"`
	CreationDate int      `json:"creationDate"`
	FirstAlbum   string   `json:"firstAlbum"`
}
