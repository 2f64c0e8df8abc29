package markercanvas

import (
	"image"
	"math"
)

// Context2D is the drawing capability of a Surface. Angles are in radians,
// coordinates in surface pixels.
type Context2D interface {
	ClearRect(x, y, width, height float64)
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(angle float64)
	DrawImage(img image.Image, x, y, width, height float64)
}

// Surface is the raster the layer draws every marker onto.
type Surface interface {
	Context() Context2D

	// Size returns the surface size in pixels.
	Size() (width, height int)

	// Resize sets the surface size. Resizing always wipes the pixels, even
	// when the size does not change.
	Resize(width, height int)

	// SetPosition places the surface's top-left corner in layer pixels.
	SetPosition(p Point)
}

// SurfaceFactory creates a surface of the given size.
type SurfaceFactory func(width, height int) Surface

// drawImage paints the marker's bound image with its top-left corner at
// -anchor relative to p, rotated about p. The transform is scoped to this
// one icon. Images that have not loaded paint nothing.
func (l *Layer) drawImage(m *Marker, p Point) {
	if l.surface == nil || m.image == nil || m.image.img == nil {
		return
	}

	ic := m.Icon
	ctx := l.surface.Context()

	ctx.Save()
	ctx.Translate(p.X, p.Y)
	ctx.Rotate(ic.RotationAngle * math.Pi / 180)
	ctx.DrawImage(m.image.img, -ic.Anchor.X, -ic.Anchor.Y, ic.Size.X, ic.Size.Y)
	ctx.Restore()

	l.paints++
	if l.registry.has(m) {
		l.painted[m] = l.paints
	}
}

// redraw repaints every marker inside the viewport and rebuilds the screen
// index from exactly that set.
//
// clearFirst wipes the whole surface before painting. Without a viewport
// or surface the pass does nothing.
func (l *Layer) redraw(clearFirst bool) {
	if clearFirst && l.surface != nil {
		w, h := l.surface.Size()
		l.surface.Context().ClearRect(0, 0, float64(w), float64(h))
	}

	if l.viewport == nil || l.surface == nil {
		return
	}

	view := l.viewport.Bounds()
	hits := l.positions.Search(view.Box())

	boxes := make([]Entry[*Marker], 0, len(hits))
	for _, hit := range hits {
		m := hit.Value
		p := l.viewport.LatLngToContainerPoint(m.latLng)

		boxes = append(boxes, Entry[*Marker]{Box: m.Icon.box(p), Value: m})
		l.icons.requestDraw(m, p)
	}

	l.boxes.Clear()
	if err := l.boxes.Load(boxes); err != nil {
		l.log.Warn("icon boxes not indexed", "error", err)
	}

	l.log.Debug("redraw",
		"cleared", clearFirst,
		"visible", len(boxes),
		"registered", l.registry.len())
}
