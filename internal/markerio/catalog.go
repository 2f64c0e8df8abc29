package markerio

import (
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

// IconDefaults fill in the icon fields a record leaves empty.
type IconDefaults struct {
	URL    string
	Width  float64
	Height float64

	// Anchors maps icon URLs to the anchor used when a record sets none,
	// such as the tip of a pin. Icons not listed are centered.
	Anchors map[string]markercanvas.Point
}

// Catalog holds the markers built from a set of records and maps each one
// back to its record.
type Catalog struct {
	markers []*markercanvas.Marker
	records map[*markercanvas.Marker]Record
}

// NewCatalog builds one marker per record. Records with bad coordinates
// are kept; the layer rejects them when they are added.
func NewCatalog(records []Record, defaults IconDefaults) *Catalog {
	c := &Catalog{
		markers: make([]*markercanvas.Marker, 0, len(records)),
		records: make(map[*markercanvas.Marker]Record, len(records)),
	}
	for _, rec := range records {
		m := markercanvas.NewMarker(rec.LatLng, rec.icon(defaults))
		c.markers = append(c.markers, m)
		c.records[m] = rec
	}
	return c
}

// Markers returns the markers in record order.
func (c *Catalog) Markers() []*markercanvas.Marker {
	return c.markers
}

// Len returns the number of markers.
func (c *Catalog) Len() int {
	return len(c.markers)
}

// Record returns the record m was built from.
func (c *Catalog) Record(m *markercanvas.Marker) (Record, bool) {
	rec, ok := c.records[m]
	return rec, ok
}

// Bounds returns the area covering every valid record.
func (c *Catalog) Bounds() markercanvas.Bounds {
	var b markercanvas.Bounds
	first := true
	for _, m := range c.markers {
		ll := m.LatLng()
		if !ll.Valid() {
			continue
		}
		if first {
			b = markercanvas.BoundsFromLatLng(ll)
			first = false
			continue
		}
		b = b.Extend(ll)
	}
	return b
}

// Label is the text shown for a record: its name, else its ID.
func (r Record) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

func (r Record) icon(defaults IconDefaults) *markercanvas.Icon {
	ic := &markercanvas.Icon{
		URL:           r.Icon,
		Size:          r.Size,
		Anchor:        r.Anchor,
		RotationAngle: r.Rotation,
	}
	if ic.URL == "" {
		ic.URL = defaults.URL
	}
	if ic.Size.X <= 0 {
		ic.Size.X = defaults.Width
	}
	if ic.Size.Y <= 0 {
		ic.Size.Y = defaults.Height
	}
	if ic.Anchor == (markercanvas.Point{}) {
		if a, ok := defaults.Anchors[ic.URL]; ok {
			ic.Anchor = a
		} else {
			ic.Anchor = markercanvas.Point{X: ic.Size.X / 2, Y: ic.Size.Y / 2}
		}
	}
	return ic
}
