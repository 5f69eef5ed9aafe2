package models

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Pair returns the coordinate as [lat, lon].
func (c Coordinate) Pair() [2]float64 {
	return [2]float64{c.Lat, c.Lon}
}
