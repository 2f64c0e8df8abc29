package main

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/markercanvas/internal/mapview"
	"github.com/beetlebugorg/markercanvas/internal/raster"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

func main() {
	// A 800x600 map of the North Sea
	view := mapview.New(orb.Point{4.0, 54.0}, 5, 800, 600)

	// Icons are drawn in process; a real loader fetches them
	pin := raster.Pin(32, color.RGBA{R: 200, A: 255})
	opts := markercanvas.DefaultOptions()
	opts.NewSurface = raster.NewSurface
	opts.Loader = markercanvas.ImageLoaderFunc(func(url string, done func(image.Image, error)) {
		done(pin, nil)
	})

	layer := markercanvas.New(opts).AddTo(view)

	icon := &markercanvas.Icon{
		URL:    "pin",
		Size:   markercanvas.Point{X: 32, Y: 32},
		Anchor: markercanvas.Point{X: 16, Y: 32},
	}
	ports := []markercanvas.LatLng{
		{Lat: 51.92, Lng: 4.48},  // Rotterdam
		{Lat: 53.55, Lng: 9.99},  // Hamburg
		{Lat: 51.23, Lng: 4.40},  // Antwerp
		{Lat: 57.70, Lng: 11.94}, // Gothenburg
	}
	for _, ll := range ports {
		if err := layer.AddMarker(markercanvas.NewMarker(ll, icon)); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("Markers: %d\n", layer.Len())
	fmt.Printf("Visible: %d\n", len(layer.VisibleMarkers()))

	b := layer.GetBounds()
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)

	surface := layer.Surface().(*raster.Surface)
	if err := surface.SavePNG("ports.png"); err != nil {
		log.Fatal(err)
	}
}
