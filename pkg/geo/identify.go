package geo

import "strings"

// countryCodes maps the abbreviations used by the tour data API to the names
// the geocoder understands.
var countryCodes = map[string]string{
	"usa": "united states",
	"uk":  "united kingdom",
}

// ExpandCountry returns the full country name for a known abbreviation, or
// code unchanged.
func ExpandCountry(code string) string {
	if name, ok := countryCodes[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}

// Normalize turns a location key such as "north_carolina-usa" into the
// free-text query "north carolina, united states".
//
// Only the first two dash separated parts are used. A key without a country
// part normalizes to the place alone.
func Normalize(key string) string {
	parts := strings.Split(key, "-")
	place := strings.ReplaceAll(parts[0], "_", " ")
	if len(parts) < 2 {
		return strings.TrimSpace(place)
	}
	country := ExpandCountry(strings.ReplaceAll(parts[1], "_", " "))
	return strings.TrimSpace(place + ", " + country)
}
