// Package mapview models the map a front end draws: default viewport, tile
// layer, circle markers with popups and the fitted bounds.
package mapview

import (
	"html"
	"math"
	"strings"

	"tourmap/models"
)

const (
	TileURL     = "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png"
	Attribution = "© OpenStreetMap contributors · © CARTO"
	MaxZoom     = 19

	DefaultZoom   = 2
	BoundsPadding = 20

	// NoDatePlaceholder is shown in a popup when a location has no dates.
	NoDatePlaceholder = "No date"
)

// DefaultCenter is the world view shown until markers are fitted.
var DefaultCenter = models.Coordinate{Lat: 20, Lon: 0}

// Bounds is the south-west / north-east box around all markers.
type Bounds struct {
	SouthWest models.Coordinate `json:"southWest"`
	NorthEast models.Coordinate `json:"northEast"`
}

// Marker is a circle marker with its popup.
type Marker struct {
	Position    models.Coordinate `json:"position"`
	Radius      int               `json:"radius"`
	Color       string            `json:"color"`
	Weight      int               `json:"weight"`
	FillColor   string            `json:"fillColor"`
	FillOpacity float64           `json:"fillOpacity"`
	Popup       string            `json:"popup"`
}

// NewMarker builds the marker for one resolved location.
func NewMarker(query string, pos models.Coordinate, dates []string) Marker {
	return Marker{
		Position:    pos,
		Radius:      8,
		Color:       "#fff",
		Weight:      2,
		FillColor:   "#00e5ff",
		FillOpacity: 0.8,
		Popup:       Popup(query, dates),
	}
}

// Popup renders the popup HTML: the query in bold, then one date per line.
func Popup(query string, dates []string) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(query))
	b.WriteString("</b><br>")
	if len(dates) == 0 {
		b.WriteString(NoDatePlaceholder)
		return b.String()
	}
	for i, d := range dates {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(d))
	}
	return b.String()
}

// View is the state of one map. It is not safe for concurrent use.
type View struct {
	Center      models.Coordinate `json:"center"`
	Zoom        int               `json:"zoom"`
	TileURL     string            `json:"tileUrl"`
	Attribution string            `json:"attribution"`
	MaxZoom     int               `json:"maxZoom"`
	Markers     []Marker          `json:"markers"`
	Bounds      *Bounds           `json:"bounds,omitempty"`
	Padding     [2]int            `json:"padding"`
}

// New returns a world view with no markers.
func New() *View {
	return &View{
		Center:      DefaultCenter,
		Zoom:        DefaultZoom,
		TileURL:     TileURL,
		Attribution: Attribution,
		MaxZoom:     MaxZoom,
		Markers:     []Marker{},
		Padding:     [2]int{BoundsPadding, BoundsPadding},
	}
}

// AddMarker appends m; markers keep insertion order.
func (v *View) AddMarker(m Marker) {
	v.Markers = append(v.Markers, m)
}

// FitBounds sets the viewport to enclose every marker. With no markers the
// view is left unchanged and false is returned.
func (v *View) FitBounds() bool {
	if len(v.Markers) == 0 {
		return false
	}
	sw := models.Coordinate{Lat: math.Inf(1), Lon: math.Inf(1)}
	ne := models.Coordinate{Lat: math.Inf(-1), Lon: math.Inf(-1)}
	for _, m := range v.Markers {
		sw.Lat = math.Min(sw.Lat, m.Position.Lat)
		sw.Lon = math.Min(sw.Lon, m.Position.Lon)
		ne.Lat = math.Max(ne.Lat, m.Position.Lat)
		ne.Lon = math.Max(ne.Lon, m.Position.Lon)
	}
	v.Bounds = &Bounds{SouthWest: sw, NorthEast: ne}
	v.Center = models.Coordinate{Lat: (sw.Lat + ne.Lat) / 2, Lon: (sw.Lon + ne.Lon) / 2}
	return true
}
