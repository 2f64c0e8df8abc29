package markercanvas

import (
	"errors"
	"log/slog"
)

// Layer draws markers onto one shared surface instead of one element per
// marker.
//
// The layer keeps two spatial indexes. The geo index holds the position of
// every registered marker whether or not it is on screen; viewport changes
// query it for the markers to paint. The screen index holds the pixel box
// of every icon painted by the last redraw and answers pointer hit tests.
//
// A Layer is not safe for concurrent use. Call it, and let loaders deliver
// icons, from a single goroutine.
//
// Example:
//
//	layer := markercanvas.New(markercanvas.Options{
//	    NewSurface:  raster.NewSurface,
//	    Loader:      iconload.NewLoader(loop),
//	    Interactive: true,
//	    Cursor:      "pointer",
//	})
//	layer.AddTo(view)
//	layer.AddMarkers(markers)
type Layer struct {
	opts Options
	log  *slog.Logger

	viewport    Viewport
	surface     Surface
	unsubscribe []func()

	registry  *registry
	positions *Index[*Marker] // every registered marker, lon/lat
	boxes     *Index[*Marker] // icons painted by the last redraw, pixels
	icons     *iconCache

	hover   *Marker
	paints  int
	painted map[*Marker]int // paint order of the last draw of each marker
}

// New returns an unattached layer.
func New(opts Options) *Layer {
	l := &Layer{
		opts:      opts,
		log:       layerLogger(opts.Logger),
		registry:  newRegistry(),
		positions: NewIndex[*Marker](),
		boxes:     NewIndex[*Marker](),
		painted:   make(map[*Marker]int),
	}
	l.icons = newIconCache(opts.Loader, l.drawImage, l.log)
	return l
}

// Options returns the layer options.
func (l *Layer) Options() Options {
	return l.opts
}

// SetOptions replaces the layer options and redraws. A new surface factory
// takes effect the next time the layer is attached. Turning interaction off
// ends the current hover with a mouseout.
func (l *Layer) SetOptions(opts Options) *Layer {
	l.opts = opts
	l.log = layerLogger(opts.Logger)
	l.icons.loader = opts.Loader
	l.icons.log = l.log

	if !opts.Interactive {
		l.leave()
	}

	l.Redraw()
	return l
}

// Viewport returns the attached viewport, or nil.
func (l *Layer) Viewport() Viewport {
	return l.viewport
}

// Surface returns the drawing surface while attached, or nil.
func (l *Layer) Surface() Surface {
	return l.surface
}

// GetBounds returns the box around every registered marker. A layer with
// no markers returns the zero Bounds.
func (l *Layer) GetBounds() Bounds {
	return l.registry.bounds()
}

// Redraw clears the surface and repaints the markers in view.
func (l *Layer) Redraw() {
	l.redraw(true)
}

// Clear removes every marker and wipes the surface. Loaded icons stay
// cached.
func (l *Layer) Clear() {
	l.positions.Clear()
	l.boxes.Clear()
	l.registry.reset()
	l.painted = make(map[*Marker]int)
	l.hover = nil

	l.redraw(true)
}

// Len returns the number of registered markers.
func (l *Layer) Len() int {
	return l.registry.len()
}

// Markers returns the registered markers in registration order.
func (l *Layer) Markers() []*Marker {
	return l.registry.all()
}

// VisibleMarkers returns the markers painted by the last redraw and those
// added in view since, in paint order.
func (l *Layer) VisibleMarkers() []*Marker {
	entries := l.boxes.All()
	out := make([]*Marker, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// IconStats reports on the icon cache.
func (l *Layer) IconStats() IconStats {
	return l.icons.stats()
}

// placement is the outcome of registering one marker.
type placement struct {
	marker  *Marker
	screen  Box
	visible bool
}

// place validates and registers m, painting it when it is in view. ok is
// false for invalid markers and markers already registered.
func (l *Layer) place(m *Marker) (pl placement, ok bool, err error) {
	if err := validateMarker(m); err != nil {
		l.log.Warn("skipping marker", "error", err)
		return placement{}, false, err
	}

	stamp(m)
	if l.registry.has(m) {
		l.log.Debug("marker already registered", "id", m.id)
		return placement{}, false, nil
	}

	pl.marker = m
	if l.viewport != nil && l.viewport.Bounds().ContainsLatLng(m.latLng) {
		p := l.viewport.LatLngToContainerPoint(m.latLng)
		pl.screen = m.Icon.box(p)
		pl.visible = true
		l.icons.requestDraw(m, p)
	}

	l.registry.add(m)
	return pl, true, nil
}

// geoBox is the degenerate position box of m.
func geoBox(m *Marker) Box {
	return BoundsFromLatLng(m.latLng).Box()
}

// AddMarker registers m and paints it if it is in view. Invalid markers are
// skipped and reported; adding a registered marker again does nothing.
func (l *Layer) AddMarker(m *Marker) error {
	pl, ok, err := l.place(m)
	if !ok {
		return err
	}

	if pl.visible {
		if err := l.boxes.Insert(pl.screen, m); err != nil {
			l.log.Warn("icon box not indexed", "id", m.id, "error", err)
		}
	}
	if err := l.positions.Insert(geoBox(m), m); err != nil {
		l.log.Warn("position not indexed", "id", m.id, "error", err)
	}
	return nil
}

// AddMarkers registers many markers with one bulk load per index. Invalid
// markers are skipped; the rest are added. The returned error joins one
// *InvalidMarkerError per skipped marker.
func (l *Layer) AddMarkers(markers []*Marker) error {
	var (
		errs      []error
		screen    []Entry[*Marker]
		positions []Entry[*Marker]
	)

	for _, m := range markers {
		pl, ok, err := l.place(m)
		if err != nil {
			errs = append(errs, err)
		}
		if !ok {
			continue
		}

		if pl.visible {
			screen = append(screen, Entry[*Marker]{Box: pl.screen, Value: m})
		}
		positions = append(positions, Entry[*Marker]{Box: geoBox(m), Value: m})
	}

	if err := l.boxes.Load(screen); err != nil {
		l.log.Warn("icon boxes not indexed", "error", err)
	}
	if err := l.positions.Load(positions); err != nil {
		l.log.Warn("positions not indexed", "error", err)
	}

	if len(errs) > 0 {
		l.log.Warn("markers skipped", "skipped", len(errs), "added", len(positions))
	}
	return errors.Join(errs...)
}

// unregister drops m from the registry and the geo index and reports
// whether it was in view.
func (l *Layer) unregister(m *Marker) (visible, ok bool) {
	if m == nil || !l.registry.has(m) {
		return false, false
	}

	visible = l.viewport != nil && l.viewport.Bounds().ContainsLatLng(m.latLng)
	l.positions.Remove(geoBox(m), m, sameMarker)
	delete(l.painted, m)
	if l.hover == m {
		l.hover = nil
	}
	return visible, true
}

// RemoveMarker unregisters m. If it was in view the surface is redrawn so
// its pixels disappear; removing an off-screen marker paints nothing.
func (l *Layer) RemoveMarker(m *Marker) {
	visible, ok := l.unregister(m)
	if !ok {
		return
	}
	l.registry.remove(m)

	if visible {
		l.redraw(true)
	}
}

// RemoveMarkers unregisters many markers and redraws at most once.
func (l *Layer) RemoveMarkers(markers []*Marker) {
	changed := false
	removed := make([]*Marker, 0, len(markers))

	for _, m := range markers {
		visible, ok := l.unregister(m)
		if !ok {
			continue
		}
		removed = append(removed, m)
		changed = changed || visible
	}
	l.registry.remove(removed...)

	if changed {
		l.redraw(true)
	}
}
