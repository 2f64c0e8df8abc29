// Package markercanvas draws large numbers of map markers onto a single
// raster surface.
//
// Instead of one element per marker, a Layer paints every icon in view onto
// one Surface and answers pointer events itself, using two R-tree spatial
// indexes: one over marker positions and one over the pixel boxes of the
// icons it last painted.
//
// # Basic Usage
//
//	layer := markercanvas.New(markercanvas.Options{
//	    NewSurface:  raster.NewSurface,
//	    Loader:      loader,
//	    Interactive: true,
//	    Cursor:      "pointer",
//	})
//	layer.AddTo(view)
//
//	icon := &markercanvas.Icon{
//	    URL:    "icons/ship.png",
//	    Size:   markercanvas.Point{X: 24, Y: 24},
//	    Anchor: markercanvas.Point{X: 12, Y: 12},
//	}
//	ship := markercanvas.NewMarker(markercanvas.LatLng{Lat: 42.35, Lng: -71.05}, icon)
//	ship.On(markercanvas.EventClick, func(ev markercanvas.MarkerEvent) {
//	    fmt.Println("clicked", ev.Target.ID())
//	})
//	layer.AddMarker(ship)
//
// # Bulk Updates
//
// AddMarkers and RemoveMarkers batch index updates and redraw at most once.
// Their result is the same as adding or removing each marker in turn.
//
//	if err := layer.AddMarkers(markers); err != nil {
//	    // Invalid markers were skipped; the rest were added.
//	    log.Println(err)
//	}
//
// # Redrawing
//
// The layer repaints on its own when the viewport reports a move or resize,
// and when a marker in view is removed. Adding a marker in view paints it
// without a redraw. Call Redraw after changing what icons look like.
//
// # Icons
//
// Icon images are fetched once per URL through the ImageLoader. Markers
// that ask for an icon still loading are queued and painted, in request
// order, when it arrives, at the screen position they had when queued.
//
// # Concurrency
//
// A Layer runs on a single goroutine. Loaders may fetch on other goroutines
// but must deliver the result on the layer's goroutine.
package markercanvas
