package markercanvas

// registry is the ordered collection of registered markers. It backs
// GetBounds and iteration; the geo index mirrors it entry for entry.
type registry struct {
	markers []*Marker
	byID    map[uint64]int
}

func newRegistry() *registry {
	return &registry{byID: make(map[uint64]int)}
}

func (r *registry) len() int {
	return len(r.markers)
}

func (r *registry) has(m *Marker) bool {
	_, ok := r.byID[m.id]
	return ok
}

// add appends a stamped marker.
func (r *registry) add(m *Marker) {
	r.byID[m.id] = len(r.markers)
	r.markers = append(r.markers, m)
}

// remove drops the given markers, keeping the order of the rest.
func (r *registry) remove(markers ...*Marker) {
	gone := make(map[uint64]bool, len(markers))
	for _, m := range markers {
		if r.has(m) {
			gone[m.id] = true
		}
	}
	if len(gone) == 0 {
		return
	}

	kept := r.markers[:0]
	for _, m := range r.markers {
		if gone[m.id] {
			delete(r.byID, m.id)
			continue
		}
		r.byID[m.id] = len(kept)
		kept = append(kept, m)
	}
	clear(r.markers[len(kept):])
	r.markers = kept
}

func (r *registry) reset() {
	r.markers = nil
	r.byID = make(map[uint64]int)
}

// bounds returns the box around every registered marker, or the degenerate
// zero Bounds when there are none.
func (r *registry) bounds() Bounds {
	if len(r.markers) == 0 {
		return Bounds{}
	}

	bounds := BoundsFromLatLng(r.markers[0].latLng)
	for _, m := range r.markers[1:] {
		bounds = bounds.Extend(m.latLng)
	}
	return bounds
}

// all returns a copy of the markers in registration order.
func (r *registry) all() []*Marker {
	out := make([]*Marker, len(r.markers))
	copy(out, r.markers)
	return out
}
