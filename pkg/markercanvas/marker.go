package markercanvas

import "sync/atomic"

// MarkerPane is the rendering category a marker must belong to before a
// layer accepts it.
const MarkerPane = "markerPane"

// EventType names host and marker notifications.
type EventType string

// Host notifications the layer subscribes to, and the marker events it
// synthesizes from them.
const (
	EventMoveEnd   EventType = "moveend"
	EventResize    EventType = "resize"
	EventClick     EventType = "click"
	EventMouseMove EventType = "mousemove"
	EventMouseOver EventType = "mouseover"
	EventMouseOut  EventType = "mouseout"
)

// Icon is the static rendering descriptor of a marker.
type Icon struct {
	// URL identifies the image. Markers sharing a URL share one load.
	URL string

	// Size is the drawn icon width (X) and height (Y) in pixels.
	Size Point

	// Anchor is the pixel inside the icon that sits on the marker position.
	Anchor Point

	// RotationAngle rotates the icon clockwise about the anchor, in degrees.
	RotationAngle float64
}

// box returns the screen box of the icon drawn at p.
func (ic *Icon) box(p Point) Box {
	return Box{
		MinX: p.X - ic.Anchor.X,
		MinY: p.Y - ic.Anchor.Y,
		MaxX: p.X + ic.Size.X - ic.Anchor.X,
		MaxY: p.Y + ic.Size.Y - ic.Anchor.Y,
	}
}

// MarkerEvent is delivered to marker listeners.
type MarkerEvent struct {
	Type           EventType
	Target         *Marker
	ContainerPoint Point
	LatLng         LatLng
}

// Listener handles a marker event.
type Listener func(MarkerEvent)

// lastMarkerID backs stamp. IDs are unique across all layers.
var lastMarkerID atomic.Uint64

// Marker is a point of interest drawn by a Layer.
//
// A marker's position is fixed at construction. Layers only ever write the
// stamped ID and the bound icon image.
type Marker struct {
	Icon *Icon
	Pane string

	latLng    LatLng
	id        uint64
	image     *IconImage
	listeners map[EventType][]Listener
}

// NewMarker returns a marker at ll in the marker pane.
func NewMarker(ll LatLng, icon *Icon) *Marker {
	return &Marker{
		Icon:   icon,
		Pane:   MarkerPane,
		latLng: ll,
	}
}

// ID returns the marker's stamped ID, or 0 if it was never registered.
func (m *Marker) ID() uint64 {
	return m.id
}

// LatLng returns the marker position.
func (m *Marker) LatLng() LatLng {
	return m.latLng
}

// Image returns the bound icon image, nil before the first draw attempt.
func (m *Marker) Image() *IconImage {
	return m.image
}

// On registers fn for events of type t.
func (m *Marker) On(t EventType, fn Listener) *Marker {
	if m.listeners == nil {
		m.listeners = make(map[EventType][]Listener)
	}
	m.listeners[t] = append(m.listeners[t], fn)
	return m
}

// Off removes every listener for t.
func (m *Marker) Off(t EventType) *Marker {
	delete(m.listeners, t)
	return m
}

// Listens reports whether the marker has a listener for t.
func (m *Marker) Listens(t EventType) bool {
	return len(m.listeners[t]) > 0
}

// Fire calls the listeners for ev.Type in registration order.
func (m *Marker) Fire(ev MarkerEvent) {
	if ev.Target == nil {
		ev.Target = m
	}
	for _, fn := range m.listeners[ev.Type] {
		fn(ev)
	}
}

// stamp assigns the marker an ID if it has none and returns it.
func stamp(m *Marker) uint64 {
	if m.id == 0 {
		m.id = lastMarkerID.Add(1)
	}
	return m.id
}

// sameMarker is the equality used to remove index entries: markers with
// identical boxes are told apart by ID.
func sameMarker(a, b *Marker) bool {
	return a.id == b.id
}
