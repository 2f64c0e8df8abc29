package main

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/markercanvas/internal/mapview"
	"github.com/beetlebugorg/markercanvas/internal/raster"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

func randomMarkers(n int, icon *markercanvas.Icon) []*markercanvas.Marker {
	markers := make([]*markercanvas.Marker, n)
	for i := range markers {
		ll := markercanvas.LatLng{Lat: rand.Float64()*140 - 70, Lng: rand.Float64()*360 - 180}
		ic := *icon
		ic.RotationAngle = rand.Float64() * 360
		markers[i] = markercanvas.NewMarker(ll, &ic)
	}
	return markers
}

func main() {
	view := mapview.New(orb.Point{0, 0}, 3, 1920, 1080)

	opts := markercanvas.DefaultOptions()
	opts.NewSurface = raster.NewSurface
	opts.Loader = markercanvas.ImageLoaderFunc(func(url string, done func(image.Image, error)) {
		done(raster.Arrow(16, color.RGBA{R: 30, G: 90, B: 200, A: 255}), nil)
	})
	layer := markercanvas.New(opts).AddTo(view)

	icon := &markercanvas.Icon{URL: "arrow", Size: markercanvas.Point{X: 16, Y: 16}, Anchor: markercanvas.Point{X: 8, Y: 8}}
	markers := randomMarkers(50000, icon)

	fmt.Println("=== One at a time ===")
	start := time.Now()
	for _, m := range markers[:5000] {
		_ = layer.AddMarker(m)
	}
	fmt.Printf("AddMarker x5000: %v\n", time.Since(start))
	layer.RemoveMarkers(markers[:5000])

	fmt.Println("\n=== Bulk ===")
	start = time.Now()
	_ = layer.AddMarkers(markers)
	fmt.Printf("AddMarkers x%d: %v\n", len(markers), time.Since(start))
	fmt.Printf("Visible: %d\n", len(layer.VisibleMarkers()))

	fmt.Println("\n=== Panning ===")
	start = time.Now()
	for range 20 {
		view.PanBy(markercanvas.Point{X: 200, Y: 50})
	}
	fmt.Printf("20 pans: %v\n", time.Since(start))

	fmt.Println("\n=== Hit testing ===")
	start = time.Now()
	hits := 0
	for range 10000 {
		p := markercanvas.Point{X: rand.Float64() * 1920, Y: rand.Float64() * 1080}
		if layer.MarkerAt(p) != nil {
			hits++
		}
	}
	fmt.Printf("10000 lookups: %v (%d hits)\n", time.Since(start), hits)

	fmt.Println("\n=== Bulk removal ===")
	start = time.Now()
	layer.RemoveMarkers(markers[:len(markers)/2])
	fmt.Printf("RemoveMarkers x%d: %v, %d left\n", len(markers)/2, time.Since(start), layer.Len())

	// Every icon copy shares one URL
	fmt.Printf("\nIcons: %+v\n", layer.IconStats())
}
