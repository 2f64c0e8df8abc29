// Command markercanvas renders a marker file to a PNG image.
//
// Usage:
//
//	markercanvas -m ports.geojson -o ports.png [--view.zoom 4] [-c markercanvas.yaml]
//
// Every setting can also come from a config file or a MARKERCANVAS_
// environment variable, e.g. MARKERCANVAS_VIEW_WIDTH=2048.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/gogpu/gg"
	"github.com/paulmach/orb"
	"github.com/spf13/pflag"

	"github.com/beetlebugorg/markercanvas/internal/app"
	"github.com/beetlebugorg/markercanvas/internal/config"
	"github.com/beetlebugorg/markercanvas/internal/mapview"
	"github.com/beetlebugorg/markercanvas/internal/raster"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

// fitPadding is the margin kept around the markers when fitting, in
// pixels.
const fitPadding = 32

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "markercanvas: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.Flags("markercanvas")
	fs.StringP("render.output", "o", "markers.png", "output PNG file")
	fs.String("render.background", "", "background color as hex, e.g. #f4f1ea")
	fs.String("render.visible", "", "also write the markers in view to this .geojson or .csv file")
	fs.Int("view.width", 1024, "image width in pixels")
	fs.Int("view.height", 768, "image height in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFlags(fs)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	view := mapview.New(orb.Point{cfg.View.Lng, cfg.View.Lat}, cfg.View.Zoom, cfg.View.Width, cfg.View.Height)
	view.SetLogger(a.Log)
	if cfg.View.Fit && a.Catalog.Len() > 0 {
		view.FitBounds(a.Catalog.Bounds(), fitPadding)
	}

	layer := markercanvas.New(a.LayerOptions(raster.NewSurface)).AddTo(view)
	a.AddMarkers(layer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cfg.Icons.Timeout > 0 {
		// Every fetch is bounded by the timeout; allow one extra round for
		// the queue
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*cfg.Icons.Timeout)
		defer cancel()
	}

	err = a.Loop.RunUntil(ctx, func() bool {
		return layer.IconStats().Pending == 0
	})
	if err != nil {
		a.Log.Warn("icons still loading; writing what has been drawn", "error", err)
	}

	stats := layer.IconStats()
	a.Log.Info("render complete",
		"markers", layer.Len(),
		"visible", len(layer.VisibleMarkers()),
		"icons", stats.Icons,
		"failed", stats.Failed,
		"center", view.Center(),
		"zoom", view.Zoom())

	surface, ok := layer.Surface().(*raster.Surface)
	if !ok {
		return errors.New("layer has no raster surface")
	}
	if err := save(surface, cfg.Render.Background, cfg.Render.Output); err != nil {
		return err
	}
	a.Log.Info("image written", "path", cfg.Render.Output)

	if cfg.Render.Visible != "" {
		if err := a.WriteVisible(cfg.Render.Visible, layer.VisibleMarkers()); err != nil {
			return fmt.Errorf("write visible markers: %w", err)
		}
		a.Log.Info("visible markers written", "path", cfg.Render.Visible)
	}
	return nil
}

// save writes the surface to path, over background when one is given.
func save(surface *raster.Surface, background, path string) error {
	if background == "" {
		return surface.SavePNG(path)
	}

	w, h := surface.Size()
	dc := gg.NewContext(w, h)
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(background))
	dc.DrawImage(gg.ImageBufFromImage(surface.Image()), 0, 0)
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
