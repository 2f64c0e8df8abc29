package markercanvas

import "math"

// LatLng is a geographic position in WGS-84 decimal degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Valid reports whether the position is a finite coordinate within ±90/±180.
func (ll LatLng) Valid() bool {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) {
		return false
	}
	return ll.Lat >= -90 && ll.Lat <= 90 && ll.Lng >= -180 && ll.Lng <= 180
}

// Point is a position in pixel space.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Bounds represents a geographic bounding box in WGS-84 coordinates.
//
// Coordinates are in decimal degrees. The zero value is the degenerate box
// at (0, 0).
type Bounds struct {
	MinLon float64 // Western edge
	MaxLon float64 // Eastern edge
	MinLat float64 // Southern edge
	MaxLat float64 // Northern edge
}

// BoundsFromLatLng returns the degenerate box holding a single position.
func BoundsFromLatLng(ll LatLng) Bounds {
	return Bounds{MinLon: ll.Lng, MaxLon: ll.Lng, MinLat: ll.Lat, MaxLat: ll.Lat}
}

// Contains returns true if the point (lon, lat) is within the bounds.
// Edges are inclusive.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon &&
		lat >= b.MinLat && lat <= b.MaxLat
}

// ContainsLatLng is Contains for a LatLng.
func (b Bounds) ContainsLatLng(ll LatLng) bool {
	return b.Contains(ll.Lng, ll.Lat)
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxLon < b.MinLon ||
		other.MinLon > b.MaxLon ||
		other.MaxLat < b.MinLat ||
		other.MinLat > b.MaxLat)
}

// Extend returns the smallest bounds containing both b and ll.
func (b Bounds) Extend(ll LatLng) Bounds {
	if ll.Lng < b.MinLon {
		b.MinLon = ll.Lng
	}
	if ll.Lng > b.MaxLon {
		b.MaxLon = ll.Lng
	}
	if ll.Lat < b.MinLat {
		b.MinLat = ll.Lat
	}
	if ll.Lat > b.MaxLat {
		b.MaxLat = ll.Lat
	}
	return b
}

// Expand returns a new Bounds expanded by the given margin in all directions.
//
// Margin is in decimal degrees.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinLon: b.MinLon - margin,
		MaxLon: b.MaxLon + margin,
		MinLat: b.MinLat - margin,
		MaxLat: b.MaxLat + margin,
	}
}

// IsEmpty reports whether the bounds has zero area.
func (b Bounds) IsEmpty() bool {
	return b.MaxLon <= b.MinLon || b.MaxLat <= b.MinLat
}

// Box returns the bounds as an index box with X as longitude and Y as latitude.
func (b Bounds) Box() Box {
	return Box{MinX: b.MinLon, MinY: b.MinLat, MaxX: b.MaxLon, MaxY: b.MaxLat}
}

// Box is an axis-aligned box. The geo index stores longitude/latitude boxes,
// the screen index stores pixel boxes.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// PointBox returns the zero-area box at p.
func PointBox(p Point) Box {
	return Box{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
}

// Intersects reports whether b and o share at least one point. Touching
// edges count as intersecting.
func (b Box) Intersects(o Box) bool {
	return !(o.MaxX < b.MinX ||
		o.MinX > b.MaxX ||
		o.MaxY < b.MinY ||
		o.MinY > b.MaxY)
}

// ContainsPoint reports whether p lies inside b, edges included.
func (b Box) ContainsPoint(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Width returns the extent along X.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the extent along Y.
func (b Box) Height() float64 { return b.MaxY - b.MinY }
