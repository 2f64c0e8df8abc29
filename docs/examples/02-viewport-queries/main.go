package main

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/markercanvas/internal/mapview"
	"github.com/beetlebugorg/markercanvas/internal/raster"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

func printView(view *mapview.View, layer *markercanvas.Layer) {
	b := view.Bounds()
	fmt.Printf("zoom %.0f  [%.2f,%.2f] to [%.2f,%.2f]  visible %d of %d\n",
		view.Zoom(), b.MinLon, b.MinLat, b.MaxLon, b.MaxLat,
		len(layer.VisibleMarkers()), layer.Len())
}

func main() {
	view := mapview.New(orb.Point{0, 0}, 2, 1024, 768)

	opts := markercanvas.DefaultOptions()
	opts.NewSurface = raster.NewSurface
	opts.Loader = markercanvas.ImageLoaderFunc(func(url string, done func(image.Image, error)) {
		done(raster.Dot(12, color.Black), nil)
	})
	layer := markercanvas.New(opts).AddTo(view)

	icon := &markercanvas.Icon{URL: "dot", Size: markercanvas.Point{X: 12, Y: 12}, Anchor: markercanvas.Point{X: 6, Y: 6}}
	markers := make([]*markercanvas.Marker, 5000)
	for i := range markers {
		ll := markercanvas.LatLng{Lat: rand.Float64()*160 - 80, Lng: rand.Float64()*360 - 180}
		markers[i] = markercanvas.NewMarker(ll, icon)
	}
	_ = layer.AddMarkers(markers)
	printView(view, layer)

	// Only markers inside the view are drawn and hit-tested
	view.SetZoom(5)
	printView(view, layer)

	view.PanBy(markercanvas.Point{X: 512})
	printView(view, layer)

	// The topmost icon under a container point
	if m := layer.MarkerAt(markercanvas.Point{X: 512, Y: 384}); m != nil {
		fmt.Printf("marker at center: %+v\n", m.LatLng())
	} else {
		fmt.Println("no marker at center")
	}

	// Zoom to everything again
	view.FitBounds(layer.GetBounds(), 16)
	printView(view, layer)
}
