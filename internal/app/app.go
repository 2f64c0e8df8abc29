// Package app wires the pieces shared by the markercanvas commands: logging,
// the marker catalog, the event loop and the icon loader.
package app

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"

	"github.com/beetlebugorg/markercanvas/internal/config"
	"github.com/beetlebugorg/markercanvas/internal/iconload"
	"github.com/beetlebugorg/markercanvas/internal/logging"
	"github.com/beetlebugorg/markercanvas/internal/loop"
	"github.com/beetlebugorg/markercanvas/internal/markerio"
	"github.com/beetlebugorg/markercanvas/internal/raster"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

// BuiltinPrefix names icons drawn in process, e.g. "builtin:pin".
const BuiltinPrefix = "builtin:"

// DefaultIcon is used when neither the record nor the config names one.
const DefaultIcon = BuiltinPrefix + "pin"

var builtinFill = color.RGBA{R: 0xd9, G: 0x3f, B: 0x2b, A: 0xff}

// App holds the shared state of a command run.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Catalog *markerio.Catalog
	Loop    *loop.Loop
	Loader  *iconload.Loader

	logFile *os.File
}

// New sets up logging, loads the marker file and starts an icon loader
// that completes on the returned Loop. Log records go to logOut, if not
// nil, and to the configured log file.
func New(cfg *config.Config, logOut io.Writer) (*App, error) {
	a := &App{Config: cfg, Loop: loop.New()}

	writers := []io.Writer{logOut}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		writers = append(writers, f)
	}
	a.Log = logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Writers: writers,
	})

	records, err := a.readMarkers()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Catalog = markerio.NewCatalog(records, a.iconDefaults())
	a.Log.Info("markers loaded", "file", cfg.Markers.File, "count", a.Catalog.Len())

	a.Loader = iconload.New(a.Loop, iconload.Options{
		BaseDir: cfg.Icons.BaseDir,
		Timeout: cfg.Icons.Timeout,
		Workers: cfg.Icons.Workers,
		Logger:  a.Log,
	})
	RegisterBuiltins(a.Loader, int(max(cfg.Markers.IconWidth, cfg.Markers.IconHeight)), builtinFill)

	return a, nil
}

func (a *App) readMarkers() ([]markerio.Record, error) {
	if a.Config.Markers.File == "" {
		return nil, nil
	}
	format, err := markerio.ParseFormat(a.Config.Markers.Format)
	if err != nil {
		return nil, err
	}
	return markerio.ReadFile(a.Config.Markers.File, format)
}

func (a *App) iconDefaults() markerio.IconDefaults {
	url := a.Config.Markers.Icon
	if url == "" {
		url = DefaultIcon
	}
	w, h := a.Config.Markers.IconWidth, a.Config.Markers.IconHeight
	return markerio.IconDefaults{
		URL:    url,
		Width:  w,
		Height: h,
		Anchors: map[string]markercanvas.Point{
			DefaultIcon: {X: w / 2, Y: h},
		},
	}
}

// LayerOptions returns layer options using the app's loader and logger.
func (a *App) LayerOptions(newSurface markercanvas.SurfaceFactory) markercanvas.Options {
	opts := markercanvas.DefaultOptions()
	opts.NewSurface = newSurface
	opts.Loader = a.Loader
	opts.Logger = a.Log
	opts.Interactive = a.Config.Layer.Interactive
	opts.Cursor = a.Config.Layer.Cursor
	return opts
}

// AddMarkers adds the catalog to layer and logs how many were refused.
func (a *App) AddMarkers(layer *markercanvas.Layer) {
	err := layer.AddMarkers(a.Catalog.Markers())
	if err == nil {
		return
	}
	skipped := 1
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		skipped = len(joined.Unwrap())
	}
	a.Log.Warn("markers skipped", "count", skipped, "first", firstError(err))
}

func firstError(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
	}
	return err
}

// WriteVisible writes the records of markers to path, choosing the format
// from its extension.
func (a *App) WriteVisible(path string, markers []*markercanvas.Marker) error {
	format, err := markerio.DetectFormat(path)
	if err != nil {
		return err
	}

	records := make([]markerio.Record, 0, len(markers))
	for _, m := range markers {
		if rec, ok := a.Catalog.Record(m); ok {
			records = append(records, rec)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case markerio.FormatCSV:
		err = markerio.WriteCSV(f, records)
	default:
		err = markerio.WriteGeoJSON(f, records)
	}
	return errors.Join(err, f.Close())
}

// Close stops the icon loader and closes the log file.
func (a *App) Close() {
	if a.Loader != nil {
		a.Loader.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// RegisterBuiltins registers the raster icons under BuiltinPrefix names.
func RegisterBuiltins(loader *iconload.Loader, size int, fill color.Color) {
	for _, name := range []string{"pin", "dot", "arrow"} {
		if img, ok := raster.Builtin(name, size, fill); ok {
			loader.Register(BuiltinPrefix+name, img)
		}
	}
}
