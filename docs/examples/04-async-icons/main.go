package main

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"time"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/markercanvas/internal/iconload"
	"github.com/beetlebugorg/markercanvas/internal/logging"
	"github.com/beetlebugorg/markercanvas/internal/loop"
	"github.com/beetlebugorg/markercanvas/internal/mapview"
	"github.com/beetlebugorg/markercanvas/internal/raster"
	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go <icon.png|https://...>")
		os.Exit(1)
	}
	iconURL := os.Args[1]

	logger := logging.New(logging.Options{Level: "debug", Writers: []io.Writer{os.Stderr}})

	// Completions are posted to the loop and run on this goroutine
	l := loop.New()
	loader := iconload.New(l, iconload.Options{Timeout: 10 * time.Second, Workers: 4, Logger: logger})
	defer loader.Close()
	loader.Register("fallback", raster.Dot(16, color.RGBA{G: 160, A: 255}))

	view := mapview.New(orb.Point{0, 0}, 3, 800, 600)
	opts := markercanvas.DefaultOptions()
	opts.NewSurface = raster.NewSurface
	opts.Loader = loader
	opts.Logger = logger
	layer := markercanvas.New(opts).AddTo(view)

	remote := &markercanvas.Icon{URL: iconURL, Size: markercanvas.Point{X: 24, Y: 24}, Anchor: markercanvas.Point{X: 12, Y: 24}}
	local := &markercanvas.Icon{URL: "fallback", Size: markercanvas.Point{X: 16, Y: 16}, Anchor: markercanvas.Point{X: 8, Y: 8}}
	for i := range 10 {
		ll := markercanvas.LatLng{Lat: float64(i*4 - 20), Lng: float64(i*8 - 40)}
		_ = layer.AddMarker(markercanvas.NewMarker(ll, remote))
		_ = layer.AddMarker(markercanvas.NewMarker(ll, local))
	}

	// Nothing is drawn until the loop runs the completions
	fmt.Printf("Before: %+v\n", layer.IconStats())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := l.RunUntil(ctx, func() bool { return layer.IconStats().Pending == 0 })
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("After:  %+v\n", layer.IconStats())

	// One load per URL no matter how many markers share it
	for _, m := range layer.Markers()[:2] {
		img := m.Image()
		if img == nil {
			continue
		}
		if img.Err() != nil {
			fmt.Printf("  %s failed: %v\n", img.URL(), img.Err())
		} else {
			b := img.Image().Bounds()
			fmt.Printf("  %s loaded (%dx%d)\n", img.URL(), b.Dx(), b.Dy())
		}
	}

	if err := layer.Surface().(*raster.Surface).SavePNG("async.png"); err != nil {
		log.Fatal(err)
	}
}
