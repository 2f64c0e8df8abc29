package markercanvas

import "log/slog"

// Options configures a Layer.
type Options struct {
	// NewSurface creates the drawing surface when the layer is attached.
	NewSurface SurfaceFactory

	// Loader fetches icon images. Every URL is requested at most once.
	Loader ImageLoader

	// Logger receives diagnostics such as skipped markers and icons that
	// failed to load. Nil discards them.
	Logger *slog.Logger

	// Interactive enables click and hover events on markers.
	Interactive bool

	// Cursor is set on the host container while the pointer is over a
	// marker.
	Cursor string
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Interactive: true,
		Cursor:      "pointer",
	}
}
