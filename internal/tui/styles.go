package tui

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")

	appStyle      = lipgloss.NewStyle().Foreground(baseFg)
	selectedStyle = lipgloss.NewStyle().Foreground(baseFg).Background(borderCol)
	titleStyle    = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(baseDimFg)
	hoverStyle    = lipgloss.NewStyle().Foreground(accentFg)
)

// gridInk colors the graticule.
var gridInk = color.RGBA{R: 0x34, G: 0x41, B: 0x55, A: 0xff}
