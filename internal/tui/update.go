package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

// fitPadding is kept around the markers when fitting, in pixels.
const fitPadding = 8

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loopReadyMsg:
		m.app.Loop.Drain()
		return m, waitLoop(m.app.Loop)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cols, rows := m.mapSize()
		m.view.Resize(cols*2, rows*4)
		m.grid.Resize(cols*2, rows*4)
		m.drawGrid()

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	w, h := m.view.Size()
	stepX, stepY := float64(w)/4, float64(h)/4

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "esc":
		m.detail = ""
		m.selected = nil
	case "up", "k":
		m.panBy(0, -stepY)
	case "down", "j":
		m.panBy(0, stepY)
	case "left", "h":
		m.panBy(-stepX, 0)
	case "right", "l":
		m.panBy(stepX, 0)
	case "+", "=":
		m.zoomBy(1)
	case "-", "_":
		m.zoomBy(-1)
	case "f":
		if m.app.Catalog.Len() > 0 {
			m.view.FitBounds(m.app.Catalog.Bounds(), fitPadding)
			m.drawGrid()
			m.status = fmt.Sprintf("fitted %d markers", m.app.Catalog.Len())
		}
	case "i":
		opts := m.layer.Options()
		opts.Interactive = !opts.Interactive
		m.layer.SetOptions(opts)
		if !opts.Interactive {
			m.hovered = nil
		}
		m.status = fmt.Sprintf("interactive: %v", opts.Interactive)
	case "x":
		target := m.selected
		if target == nil {
			target = m.hovered
		}
		if target != nil {
			m.layer.RemoveMarker(target)
			m.status = "removed " + m.label(target)
			m.hovered, m.selected, m.detail = nil, nil, ""
		}
	case "a":
		m.app.AddMarkers(m.layer)
		m.status = fmt.Sprintf("markers: %d", m.layer.Len())
	case "r":
		m.layer.Redraw()
		m.status = "redrawn"
	case "?":
		m.helpVisible = !m.helpVisible
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	cx, cy := msg.X, msg.Y-headerHeight
	cols, rows := m.mapSize()
	if cx < 0 || cy < 0 || cx >= cols || cy >= rows {
		m.hovering = false
		return
	}
	m.hovering = true
	m.hoverCellX, m.hoverCellY = cx, cy
	p := cellPoint(cx, cy)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.zoomAround(p, 1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.zoomAround(p, -1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.view.Click(p)
	case msg.Action == tea.MouseActionMotion:
		m.view.MouseMove(p)
	}
}

func (m *Model) panBy(dx, dy float64) {
	m.view.PanBy(markercanvas.Point{X: dx, Y: dy})
	m.drawGrid()
}

func (m *Model) zoomBy(delta float64) {
	w, h := m.view.Size()
	m.zoomAround(markercanvas.Point{X: float64(w) / 2, Y: float64(h) / 2}, delta)
}

func (m *Model) zoomAround(p markercanvas.Point, delta float64) {
	m.view.ZoomAround(p, delta)
	m.drawGrid()
	m.status = fmt.Sprintf("zoom: %.0f", m.view.Zoom())
}
