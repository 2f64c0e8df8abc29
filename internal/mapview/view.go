// Package mapview is a Web Mercator map that hosts marker layers.
//
// A View tracks a center, a fractional zoom level and a pixel size, and
// turns pan, zoom, resize and pointer input into the host events a
// markercanvas.Layer subscribes to.
package mapview

import (
	"log/slog"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

const (
	// TileSize is the width of the world in pixels at zoom 0.
	TileSize = 256

	// MaxLatitude is the northern limit of Web Mercator.
	MaxLatitude = 85.0511287798

	MinZoom = 0
	MaxZoom = 22

	earthRadius = 6378137.0
)

// View is a markercanvas.Viewport. It is not safe for concurrent use.
//
// Example:
//
//	view := mapview.New(orb.Point{-71.06, 42.36}, 12, 1024, 768)
//	layer := markercanvas.New(opts).AddTo(view)
//	view.PanBy(markercanvas.Point{X: 100})
type View struct {
	center        orb.Point // lon, lat
	zoom          float64
	width, height int

	// pixelOrigin is the world pixel of the layer origin, fixed between
	// zoom changes like a map pane.
	pixelOrigin markercanvas.Point

	subs     map[markercanvas.EventType]map[int]func(markercanvas.Event)
	nextSub  int
	cursor   string
	surfaces []markercanvas.Surface

	log *slog.Logger
}

// New returns a view of width x height pixels centered on center.
func New(center orb.Point, zoom float64, width, height int) *View {
	v := &View{
		width:  width,
		height: height,
		subs:   make(map[markercanvas.EventType]map[int]func(markercanvas.Event)),
		log:    slog.New(slog.DiscardHandler),
	}
	v.center = clampPoint(center)
	v.zoom = clampZoom(zoom)
	v.resetOrigin()
	return v
}

// SetLogger sets the logger for view diagnostics.
func (v *View) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	v.log = l.With("component", "mapview")
}

// Center returns the center as lon/lat.
func (v *View) Center() orb.Point { return v.center }

// Zoom returns the zoom level.
func (v *View) Zoom() float64 { return v.zoom }

// Cursor returns the cursor last set by a layer.
func (v *View) Cursor() string { return v.cursor }

// Surfaces returns the surfaces of attached layers in attach order.
func (v *View) Surfaces() []markercanvas.Surface {
	return append([]markercanvas.Surface(nil), v.surfaces...)
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

func clampPoint(p orb.Point) orb.Point {
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, p.Lat()))
	lon := p.Lon()
	if lon < -180 || lon > 180 {
		lon = math.Mod(lon+180, 360)
		if lon < 0 {
			lon += 360
		}
		lon -= 180
	}
	return orb.Point{lon, lat}
}

// projectAt returns the world pixel of a lon/lat point at zoom.
func projectAt(p orb.Point, zoom float64) markercanvas.Point {
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, p.Lat()))
	m := project.WGS84.ToMercator(orb.Point{p.Lon(), lat})

	size := TileSize * math.Exp2(zoom)
	half := math.Pi * earthRadius
	return markercanvas.Point{
		X: (m.X() + half) / (2 * half) * size,
		Y: (half - m.Y()) / (2 * half) * size,
	}
}

// unprojectAt is the inverse of projectAt.
func unprojectAt(p markercanvas.Point, zoom float64) orb.Point {
	size := TileSize * math.Exp2(zoom)
	half := math.Pi * earthRadius
	m := orb.Point{
		p.X/size*2*half - half,
		half - p.Y/size*2*half,
	}
	return project.Mercator.ToWGS84(m)
}

func (v *View) project(p orb.Point) markercanvas.Point   { return projectAt(p, v.zoom) }
func (v *View) unproject(p markercanvas.Point) orb.Point { return unprojectAt(p, v.zoom) }

// topLeft is the world pixel of the container's top-left corner.
func (v *View) topLeft() markercanvas.Point {
	c := v.project(v.center)
	return markercanvas.Point{X: c.X - float64(v.width)/2, Y: c.Y - float64(v.height)/2}
}

func (v *View) resetOrigin() {
	v.pixelOrigin = v.topLeft()
}

// Bounds returns the lon/lat box shown in the container.
func (v *View) Bounds() markercanvas.Bounds {
	tl := v.topLeft()
	nw := v.unproject(tl)
	se := v.unproject(tl.Add(markercanvas.Point{X: float64(v.width), Y: float64(v.height)}))

	b := orb.MultiPoint{nw, se}.Bound()
	return markercanvas.Bounds{
		MinLon: math.Max(-180, b.Left()),
		MaxLon: math.Min(180, b.Right()),
		MinLat: b.Bottom(),
		MaxLat: b.Top(),
	}
}

// Size returns the container size in pixels.
func (v *View) Size() (int, int) { return v.width, v.height }

// LatLngToContainerPoint returns the container pixel of ll.
func (v *View) LatLngToContainerPoint(ll markercanvas.LatLng) markercanvas.Point {
	return v.project(orb.Point{ll.Lng, ll.Lat}).Sub(v.topLeft())
}

// ContainerPointToLatLng returns the position under container pixel p.
func (v *View) ContainerPointToLatLng(p markercanvas.Point) markercanvas.LatLng {
	ll := v.unproject(p.Add(v.topLeft()))
	return markercanvas.LatLng{Lat: ll.Lat(), Lng: ll.Lon()}
}

// ContainerPointToLayerPoint converts a container pixel to the layer pixel
// space, which only moves when the zoom changes.
func (v *View) ContainerPointToLayerPoint(p markercanvas.Point) markercanvas.Point {
	return p.Add(v.topLeft()).Sub(v.pixelOrigin)
}

// Subscribe registers fn for events of type t.
func (v *View) Subscribe(t markercanvas.EventType, fn func(markercanvas.Event)) func() {
	if v.subs[t] == nil {
		v.subs[t] = make(map[int]func(markercanvas.Event))
	}
	v.nextSub++
	id := v.nextSub
	v.subs[t][id] = fn
	return func() { delete(v.subs[t], id) }
}

// SetCursor records the pointer affordance.
func (v *View) SetCursor(cursor string) { v.cursor = cursor }

// AddSurface stacks s above the surfaces already added.
func (v *View) AddSurface(s markercanvas.Surface) {
	v.surfaces = append(v.surfaces, s)
}

// RemoveSurface removes s.
func (v *View) RemoveSurface(s markercanvas.Surface) {
	for i, other := range v.surfaces {
		if other == s {
			v.surfaces = append(v.surfaces[:i], v.surfaces[i+1:]...)
			return
		}
	}
}

// emit delivers an event to subscribers in subscription order.
func (v *View) emit(t markercanvas.EventType, p markercanvas.Point) {
	subs := v.subs[t]
	if len(subs) == 0 {
		return
	}
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	ev := markercanvas.Event{Type: t, ContainerPoint: p}
	for _, id := range ids {
		// An earlier subscriber may have unsubscribed this one
		if fn, ok := subs[id]; ok {
			fn(ev)
		}
	}
}

// SetView moves to center and zoom and reports the end of the move.
func (v *View) SetView(center orb.Point, zoom float64) {
	zoom = clampZoom(zoom)
	zoomed := zoom != v.zoom

	v.center = clampPoint(center)
	v.zoom = zoom
	if zoomed {
		v.resetOrigin()
	}

	v.log.Debug("view changed", "lon", v.center.Lon(), "lat", v.center.Lat(), "zoom", v.zoom)
	v.emit(markercanvas.EventMoveEnd, markercanvas.Point{})
}

// PanBy moves the view by offset pixels; positive X pans east, positive Y
// south.
func (v *View) PanBy(offset markercanvas.Point) {
	c := v.project(v.center).Add(offset)
	v.SetView(v.unproject(c), v.zoom)
}

// SetZoom zooms about the center.
func (v *View) SetZoom(zoom float64) {
	v.SetView(v.center, zoom)
}

// ZoomAround changes the zoom by delta keeping the position under container
// point p fixed.
func (v *View) ZoomAround(p markercanvas.Point, delta float64) {
	zoom := clampZoom(v.zoom + delta)
	if zoom == v.zoom {
		return
	}

	anchor := p.Add(v.topLeft())
	center := v.project(v.center)

	// The anchor keeps its container position at the new scale
	scale := math.Exp2(zoom - v.zoom)
	c := markercanvas.Point{
		X: center.X + anchor.X*(scale-1),
		Y: center.Y + anchor.Y*(scale-1),
	}
	v.SetView(unprojectAt(c, zoom), zoom)
}

// FitBounds centers the view on b at the largest zoom that shows it with
// padding pixels on every side.
func (v *View) FitBounds(b markercanvas.Bounds, padding float64) {
	bound := orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}

	// Measure at zoom 0; every zoom level doubles it
	nw := projectAt(orb.Point{bound.Left(), bound.Top()}, 0)
	se := projectAt(orb.Point{bound.Right(), bound.Bottom()}, 0)

	w := math.Max(se.X-nw.X, 1e-9)
	h := math.Max(se.Y-nw.Y, 1e-9)
	availW := math.Max(float64(v.width)-2*padding, 1)
	availH := math.Max(float64(v.height)-2*padding, 1)

	zoom := math.Floor(math.Log2(math.Min(availW/w, availH/h)))
	mid := markercanvas.Point{X: (nw.X + se.X) / 2, Y: (nw.Y + se.Y) / 2}
	v.SetView(unprojectAt(mid, 0), zoom)
}

// Resize changes the container size, keeping the center, and reports it.
func (v *View) Resize(width, height int) {
	if width == v.width && height == v.height {
		return
	}
	v.width, v.height = width, height
	v.resetOrigin()
	v.emit(markercanvas.EventResize, markercanvas.Point{})
}

// Click reports a click at container point p.
func (v *View) Click(p markercanvas.Point) {
	v.emit(markercanvas.EventClick, p)
}

// MouseMove reports the pointer at container point p.
func (v *View) MouseMove(p markercanvas.Point) {
	v.emit(markercanvas.EventMouseMove, p)
}
