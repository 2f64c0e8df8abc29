package markercanvas

import "image"

// Event is a host notification. ContainerPoint is set for pointer events.
type Event struct {
	Type           EventType
	ContainerPoint Point
}

// Viewport is the host map a layer is attached to.
type Viewport interface {
	// Bounds returns the geographic area currently shown.
	Bounds() Bounds

	// Size returns the container size in pixels.
	Size() (width, height int)

	LatLngToContainerPoint(ll LatLng) Point
	ContainerPointToLatLng(p Point) LatLng
	ContainerPointToLayerPoint(p Point) Point

	// Subscribe registers fn for host events of type t and returns a
	// function that removes it.
	Subscribe(t EventType, fn func(Event)) (unsubscribe func())

	// SetCursor sets the pointer affordance of the container. The empty
	// string restores the default.
	SetCursor(cursor string)

	AddSurface(s Surface)
	RemoveSurface(s Surface)
}

// AddTo attaches the layer to v and returns the layer.
func (l *Layer) AddTo(v Viewport) *Layer {
	l.OnAdd(v)
	return l
}

// OnAdd attaches the layer to v: it creates the surface, hands it to the
// host, subscribes to move, resize and pointer events, and paints the
// markers already registered. A host integration may call it directly.
func (l *Layer) OnAdd(v Viewport) {
	if l.viewport == v {
		return
	}
	if l.viewport != nil {
		l.OnRemove(l.viewport)
	}

	l.viewport = v

	w, h := v.Size()
	if l.opts.NewSurface != nil {
		l.surface = l.opts.NewSurface(w, h)
	} else {
		l.log.Warn("no surface factory configured; markers will not be visible")
		l.surface = newBlankSurface(w, h)
	}
	v.AddSurface(l.surface)

	l.unsubscribe = append(l.unsubscribe,
		v.Subscribe(EventMoveEnd, l.onReset),
		v.Subscribe(EventResize, l.onReset),
		v.Subscribe(EventClick, l.fire),
		v.Subscribe(EventMouseMove, l.fire),
	)

	l.log.Debug("layer attached", "width", w, "height", h, "markers", l.registry.len())
	l.reset()
}

// OnRemove detaches the layer from v. Registered markers are kept and are
// painted again on the next OnAdd.
func (l *Layer) OnRemove(v Viewport) {
	if l.viewport == nil || l.viewport != v {
		return
	}

	for _, unsubscribe := range l.unsubscribe {
		unsubscribe()
	}
	l.unsubscribe = nil

	v.RemoveSurface(l.surface)
	v.SetCursor("")

	l.viewport = nil
	l.surface = nil
	l.hover = nil
	l.boxes.Clear()

	l.log.Debug("layer detached")
}

func (l *Layer) onReset(Event) {
	l.reset()
}

// reset realigns the surface with the viewport and repaints. The resize
// wipes the surface, so the redraw itself does not clear.
func (l *Layer) reset() {
	if l.viewport == nil || l.surface == nil {
		return
	}

	l.surface.SetPosition(l.viewport.ContainerPointToLayerPoint(Point{}))

	w, h := l.viewport.Size()
	l.surface.Resize(w, h)

	l.redraw(false)
}

// blankSurface stands in when no surface factory is configured.
type blankSurface struct {
	width, height int
}

func newBlankSurface(width, height int) *blankSurface {
	return &blankSurface{width: width, height: height}
}

func (s *blankSurface) Context() Context2D       { return blankContext{} }
func (s *blankSurface) Size() (int, int)         { return s.width, s.height }
func (s *blankSurface) Resize(width, height int) { s.width, s.height = width, height }
func (s *blankSurface) SetPosition(Point)        {}

type blankContext struct{}

func (blankContext) ClearRect(x, y, width, height float64)                  {}
func (blankContext) Save()                                                  {}
func (blankContext) Restore()                                               {}
func (blankContext) Translate(x, y float64)                                 {}
func (blankContext) Rotate(angle float64)                                   {}
func (blankContext) DrawImage(img image.Image, x, y, width, height float64) {}
