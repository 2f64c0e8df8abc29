package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/markercanvas/internal/logging"
	"github.com/beetlebugorg/markercanvas/internal/mapview"
	"github.com/beetlebugorg/markercanvas/internal/markerio"
	"github.com/beetlebugorg/markercanvas/internal/raster"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

func main() {
	logger := logging.New(logging.Options{Level: "warn", Writers: []io.Writer{os.Stderr}})

	view := mapview.New(orb.Point{0, 0}, 2, 800, 600)
	opts := markercanvas.DefaultOptions()
	opts.NewSurface = raster.NewSurface
	opts.Logger = logger
	opts.Loader = markercanvas.ImageLoaderFunc(func(url string, done func(image.Image, error)) {
		if url == "missing.png" {
			done(nil, os.ErrNotExist)
			return
		}
		done(raster.Dot(12, color.Black), nil)
	})
	layer := markercanvas.New(opts).AddTo(view)
	dot := &markercanvas.Icon{URL: "dot", Size: markercanvas.Point{X: 12, Y: 12}}

	fmt.Println("=== Invalid markers ===")
	bad := []*markercanvas.Marker{
		markercanvas.NewMarker(markercanvas.LatLng{Lat: 91, Lng: 0}, dot),
		markercanvas.NewMarker(markercanvas.LatLng{}, nil),
		markercanvas.NewMarker(markercanvas.LatLng{Lat: 10, Lng: 10}, dot),
	}
	err := layer.AddMarkers(bad)
	var invalid *markercanvas.InvalidMarkerError
	if errors.As(err, &invalid) {
		fmt.Printf("First rejected: %v\n", invalid)
	}
	fmt.Printf("Bad coordinate: %v\n", errors.Is(err, markercanvas.ErrInvalidCoordinate))
	fmt.Printf("Missing icon:   %v\n", errors.Is(err, markercanvas.ErrMissingIcon))
	fmt.Printf("Markers added:  %d\n", layer.Len())

	fmt.Println("\n=== Failed icons ===")
	broken := markercanvas.NewMarker(markercanvas.LatLng{Lat: 20, Lng: 20},
		&markercanvas.Icon{URL: "missing.png", Size: markercanvas.Point{X: 12, Y: 12}})
	_ = layer.AddMarker(broken)

	var loadErr *markercanvas.IconLoadError
	if errors.As(broken.Image().Err(), &loadErr) {
		fmt.Printf("Icon %s: %v\n", loadErr.URL, loadErr.Err)
	}
	fmt.Printf("Not found: %v\n", errors.Is(broken.Image().Err(), os.ErrNotExist))
	fmt.Printf("Icons: %+v\n", layer.IconStats())

	fmt.Println("\n=== Marker files ===")
	_, err = markerio.ReadFile("does-not-exist.csv", "")
	fmt.Printf("Missing file: %v\n", errors.Is(err, os.ErrNotExist))

	_, err = markerio.ReadFile("markers.kml", "")
	fmt.Printf("Unknown format: %v\n", errors.Is(err, markerio.ErrUnknownFormat))
}
