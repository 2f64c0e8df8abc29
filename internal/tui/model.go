// Package tui is the interactive terminal host of a marker layer. The map
// is drawn in braille characters; keys pan and zoom the view and the mouse
// hovers and clicks markers.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/markercanvas/internal/app"
	"github.com/beetlebugorg/markercanvas/internal/braille"
	"github.com/beetlebugorg/markercanvas/internal/loop"
	"github.com/beetlebugorg/markercanvas/internal/mapview"
	"github.com/beetlebugorg/markercanvas/internal/markerio"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

// Layout rows outside the map.
const (
	headerHeight = 1
	footerHeight = 2
)

// Model is the bubbletea model. It owns the layer: every layer call and
// icon completion runs inside Update.
type Model struct {
	app   *app.App
	view  *mapview.View
	layer *markercanvas.Layer
	grid  *braille.Surface

	width  int
	height int

	helpVisible bool
	status      string

	hovered  *markercanvas.Marker
	selected *markercanvas.Marker
	detail   string

	// last pointer position, in map cells
	hoverCellX, hoverCellY int
	hovering               bool
}

// loopReadyMsg reports icon completions waiting on the loop.
type loopReadyMsg struct{}

// New builds the view and layer for a. The view starts at the configured
// center and zoom, or fitted to the markers.
func New(a *app.App) *Model {
	cfg := a.Config.View
	m := &Model{
		app:         a,
		view:        mapview.New(orb.Point{cfg.Lng, cfg.Lat}, cfg.Zoom, 2, 4),
		grid:        braille.New(1, 1),
		helpVisible: true,
		status:      "markerview ready",
	}
	m.grid.Ink = gridInk
	m.view.SetLogger(a.Log)

	m.layer = markercanvas.New(a.LayerOptions(braille.NewSurface)).AddTo(m.view)
	for _, mk := range a.Catalog.Markers() {
		m.listen(mk)
	}
	a.AddMarkers(m.layer)
	return m
}

func (m *Model) listen(mk *markercanvas.Marker) {
	mk.On(markercanvas.EventMouseOver, func(ev markercanvas.MarkerEvent) {
		m.hovered = ev.Target
	})
	mk.On(markercanvas.EventMouseOut, func(ev markercanvas.MarkerEvent) {
		if m.hovered == ev.Target {
			m.hovered = nil
		}
	})
	mk.On(markercanvas.EventClick, func(ev markercanvas.MarkerEvent) {
		m.selected = ev.Target
		m.detail = m.describe(ev.Target)
		m.status = "selected " + m.label(ev.Target)
	})
}

// Init starts waiting for icon completions.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitLoop(m.app.Loop), tea.SetWindowTitle("markerview"))
}

// waitLoop delivers a loopReadyMsg once work is posted to l.
func waitLoop(l *loop.Loop) tea.Cmd {
	return func() tea.Msg {
		<-l.Ready()
		return loopReadyMsg{}
	}
}

// Layer returns the marker layer.
func (m *Model) Layer() *markercanvas.Layer {
	return m.layer
}

// MapView returns the map view.
func (m *Model) MapView() *mapview.View {
	return m.view
}

func (m *Model) record(mk *markercanvas.Marker) (markerio.Record, bool) {
	return m.app.Catalog.Record(mk)
}

func (m *Model) label(mk *markercanvas.Marker) string {
	if rec, ok := m.record(mk); ok && rec.Label() != "" {
		return rec.Label()
	}
	ll := mk.LatLng()
	return formatLatLng(ll)
}

// mapSize returns the map area in cells.
func (m *Model) mapSize() (cols, rows int) {
	return max(m.width, 1), max(m.height-headerHeight-footerHeight, 1)
}

// cellPoint returns the container point at the middle of map cell (cx, cy).
func cellPoint(cx, cy int) markercanvas.Point {
	return markercanvas.Point{X: float64(cx*2 + 1), Y: float64(cy*4 + 2)}
}
