package geo

// Bounds is a latitude/longitude bounding box. The zero value is empty
// until the first Extend.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`

	set bool
}

// Extend grows the box to include (lat, lon).
func (b *Bounds) Extend(lat, lon float64) {
	if !b.set {
		b.MinLat, b.MaxLat = lat, lat
		b.MinLon, b.MaxLon = lon, lon
		b.set = true
		return
	}
	b.MinLat = min(b.MinLat, lat)
	b.MaxLat = max(b.MaxLat, lat)
	b.MinLon = min(b.MinLon, lon)
	b.MaxLon = max(b.MaxLon, lon)
}

// Contains reports whether (lat, lon) lies inside the box, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
