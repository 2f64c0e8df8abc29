package tui

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/beetlebugorg/markercanvas/internal/braille"
	"github.com/beetlebugorg/markercanvas/internal/mapview"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	cols, rows := m.mapSize()

	header := titleStyle.Render(" markerview ")
	header = lipgloss.NewStyle().Width(cols).Render(header)

	var mapView string
	if s, ok := m.layer.Surface().(*braille.Surface); ok {
		mapView = braille.Compose(m.grid, s)
	} else {
		mapView = braille.Compose(m.grid)
	}
	mapView = lipgloss.NewStyle().Width(cols).Height(rows).MaxHeight(rows).Render(mapView)

	bottom := m.renderHelp()
	if m.detail != "" {
		bottom = selectedStyle.Render(" " + m.detail)
	}
	bottom = lipgloss.NewStyle().MaxWidth(cols).Render(bottom)

	footer := lipgloss.JoinVertical(lipgloss.Left, m.statusLine(cols), bottom)
	ui := lipgloss.JoinVertical(lipgloss.Left, header, mapView, footer)
	return appStyle.Width(cols).Height(m.height).MaxHeight(m.height).Render(ui)
}

func (m *Model) statusLine(width int) string {
	left := dimStyle.Render(" " + m.status + " ")
	if m.hovered != nil {
		left += hoverStyle.Render(" ▸ " + m.label(m.hovered) + " ")
	}

	stats := m.layer.IconStats()
	right := fmt.Sprintf(" %d/%d markers  z%.0f ", len(m.layer.VisibleMarkers()), m.layer.Len(), m.view.Zoom())
	if stats.Pending > 0 {
		right = fmt.Sprintf(" loading %d ", stats.Pending) + right
	}
	if m.hovering {
		ll := m.view.ContainerPointToLatLng(cellPoint(m.hoverCellX, m.hoverCellY))
		right = " " + formatLatLng(ll) + " " + right
	}
	right = dimStyle.Render(right)

	gap := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"f fit",
		"x remove",
		"a add all",
		"i interactive",
		"? help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}

// describe is the one-line summary of a clicked marker.
func (m *Model) describe(mk *markercanvas.Marker) string {
	parts := []string{m.label(mk), formatLatLng(mk.LatLng())}
	if mk.Icon != nil {
		parts = append(parts, "icon: "+mk.Icon.URL)
		if mk.Icon.RotationAngle != 0 {
			parts = append(parts, fmt.Sprintf("rotation: %.0f°", mk.Icon.RotationAngle))
		}
	}
	if rec, ok := m.record(mk); ok {
		for _, k := range slices.Sorted(maps.Keys(rec.Properties)) {
			parts = append(parts, fmt.Sprintf("%s: %v", k, rec.Properties[k]))
		}
	}
	return strings.Join(parts, "  ")
}

func formatLatLng(ll markercanvas.LatLng) string {
	return fmt.Sprintf("lat=%.5f lon=%.5f", ll.Lat, ll.Lng)
}

// drawGrid redraws the graticule for the current view.
func (m *Model) drawGrid() {
	w, h := m.grid.Size()
	m.grid.Context().ClearRect(0, 0, float64(w), float64(h))

	b := m.view.Bounds()
	step := gridStep(m.view.Zoom())

	for lon := math.Ceil(b.MinLon/step) * step; lon <= b.MaxLon; lon += step {
		top := m.view.LatLngToContainerPoint(markercanvas.LatLng{Lat: math.Min(b.MaxLat, mapview.MaxLatitude), Lng: lon})
		bottom := m.view.LatLngToContainerPoint(markercanvas.LatLng{Lat: math.Max(b.MinLat, -mapview.MaxLatitude), Lng: lon})
		m.grid.DrawLine(int(top.X), int(top.Y), int(bottom.X), int(bottom.Y))
	}
	for lat := math.Ceil(b.MinLat/step) * step; lat <= b.MaxLat; lat += step {
		left := m.view.LatLngToContainerPoint(markercanvas.LatLng{Lat: lat, Lng: b.MinLon})
		right := m.view.LatLngToContainerPoint(markercanvas.LatLng{Lat: lat, Lng: b.MaxLon})
		m.grid.DrawLine(int(left.X), int(left.Y), int(right.X), int(right.Y))
	}
}

// gridStep returns the graticule spacing in degrees for zoom.
func gridStep(zoom float64) float64 {
	switch {
	case zoom < 3:
		return 30
	case zoom < 5:
		return 10
	case zoom < 7:
		return 5
	case zoom < 9:
		return 1
	case zoom < 12:
		return 0.5
	default:
		return 0.1
	}
}
