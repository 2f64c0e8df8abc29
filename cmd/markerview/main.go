// Command markerview shows a marker file on a map in the terminal.
//
// Usage:
//
//	markerview -m ports.geojson [--log.file markerview.log]
//
// Arrow keys pan, +/- zoom, the mouse hovers and selects markers.
package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/beetlebugorg/markercanvas/internal/app"
	"github.com/beetlebugorg/markercanvas/internal/config"
	"github.com/beetlebugorg/markercanvas/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "markerview: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.Flags("markerview")
	scale := fs.Float64("icon-scale", 0.4, "icon size relative to markers.iconWidth/iconHeight; a cell is 2x4 pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFlags(fs)
	if err != nil {
		return err
	}
	cfg.Markers.IconWidth = max(cfg.Markers.IconWidth*(*scale), 2)
	cfg.Markers.IconHeight = max(cfg.Markers.IconHeight*(*scale), 4)

	// The terminal belongs to the UI; logs only go to the log file
	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(tui.New(a), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}
