package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/markercanvas/internal/mapview"
	"github.com/beetlebugorg/markercanvas/internal/raster"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

func main() {
	view := mapview.New(orb.Point{-71.06, 42.36}, 12, 800, 600)

	opts := markercanvas.DefaultOptions()
	opts.NewSurface = raster.NewSurface
	opts.Loader = markercanvas.ImageLoaderFunc(func(url string, done func(image.Image, error)) {
		done(raster.Dot(20, color.RGBA{B: 200, A: 255}), nil)
	})
	layer := markercanvas.New(opts).AddTo(view)

	icon := &markercanvas.Icon{URL: "dot", Size: markercanvas.Point{X: 20, Y: 20}, Anchor: markercanvas.Point{X: 10, Y: 10}}
	buoy := markercanvas.NewMarker(markercanvas.LatLng{Lat: 42.36, Lng: -71.06}, icon)

	buoy.On(markercanvas.EventMouseOver, func(ev markercanvas.MarkerEvent) {
		fmt.Printf("enter at %v (cursor %q)\n", ev.ContainerPoint, view.Cursor())
	})
	buoy.On(markercanvas.EventMouseOut, func(ev markercanvas.MarkerEvent) {
		fmt.Printf("leave at %v\n", ev.ContainerPoint)
	})
	buoy.On(markercanvas.EventClick, func(ev markercanvas.MarkerEvent) {
		fmt.Printf("click on marker at %.4f,%.4f\n", ev.LatLng.Lat, ev.LatLng.Lng)
	})
	_ = layer.AddMarker(buoy)

	// The host reports pointer input in container pixels
	center := markercanvas.Point{X: 400, Y: 300}
	view.MouseMove(markercanvas.Point{X: 100, Y: 100})
	view.MouseMove(center)
	view.MouseMove(center.Add(markercanvas.Point{X: 5}))
	view.Click(center)
	view.MouseMove(markercanvas.Point{X: 700, Y: 500})

	// Non-interactive layers ignore the pointer
	opts.Interactive = false
	layer.SetOptions(opts)
	view.Click(center)
	fmt.Println("done")
}
