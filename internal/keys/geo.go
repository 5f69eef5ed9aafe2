package keys

import (
	"fmt"
	"net/url"
	"strings"
)

// Geo returns the persistent cache key for a geocoding query.
func Geo(query string) string {
	return "geo:" + strings.ToLower(query)
}

// Object returns the object store key for a cache key. The key is
// path-escaped, so distinct cache keys never share an object and the
// original key can be recovered with url.PathUnescape.
func Object(cacheKey string) string {
	return fmt.Sprintf("geo/%s.json", url.PathEscape(cacheKey))
}
