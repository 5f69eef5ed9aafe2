package mapview

import (
	"testing"

	"tourmap/models"
)

func TestPopup(t *testing.T) {
	tests := []struct {
		name  string
		query string
		dates []string
		want  string
	}{
		{
			name:  "dates joined",
			query: "london, united kingdom",
			dates: []string{"01-01-2020", "02-01-2020"},
			want:  "<b>london, united kingdom</b><br>01-01-2020<br>02-01-2020",
		},
		{
			name:  "placeholder without dates",
			query: "osaka, japan",
			want:  "<b>osaka, japan</b><br>No date",
		},
		{
			name:  "escaped",
			query: "a<b>",
			dates: []string{"x&y"},
			want:  "<b>a&lt;b&gt;</b><br>x&amp;y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Popup(tt.query, tt.dates); got != tt.want {
				t.Errorf("Popup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewMarker_Style(t *testing.T) {
	m := NewMarker("paris, france", models.Coordinate{Lat: 48.85, Lon: 2.35}, nil)
	if m.Radius != 8 || m.Color != "#fff" || m.Weight != 2 || m.FillColor != "#00e5ff" || m.FillOpacity != 0.8 {
		t.Errorf("unexpected style %+v", m)
	}
}

func TestView_Defaults(t *testing.T) {
	v := New()
	if v.Center != (models.Coordinate{Lat: 20, Lon: 0}) || v.Zoom != 2 {
		t.Errorf("default viewport = %+v zoom %d", v.Center, v.Zoom)
	}
	if v.FitBounds() {
		t.Error("FitBounds() with no markers returned true")
	}
	if v.Bounds != nil || v.Center != DefaultCenter {
		t.Error("FitBounds() with no markers changed the view")
	}
}

func TestView_FitBounds(t *testing.T) {
	v := New()
	v.AddMarker(NewMarker("a", models.Coordinate{Lat: 51.5, Lon: -0.12}, nil))
	v.AddMarker(NewMarker("b", models.Coordinate{Lat: 35.7, Lon: 139.7}, nil))
	v.AddMarker(NewMarker("c", models.Coordinate{Lat: -33.9, Lon: 151.2}, nil))

	if !v.FitBounds() {
		t.Fatal("FitBounds() returned false")
	}
	want := Bounds{
		SouthWest: models.Coordinate{Lat: -33.9, Lon: -0.12},
		NorthEast: models.Coordinate{Lat: 51.5, Lon: 151.2},
	}
	if *v.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", *v.Bounds, want)
	}
	if v.Padding != [2]int{20, 20} {
		t.Errorf("Padding = %v", v.Padding)
	}
	if v.Markers[0].Popup != "<b>a</b><br>No date" {
		t.Errorf("marker order not preserved: %+v", v.Markers[0])
	}
}
