package markercanvas

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAMarker indicates a nil marker or one outside the marker pane.
	ErrNotAMarker = errors.New("not a marker")

	// ErrMissingIcon indicates a marker without an icon or icon URL.
	ErrMissingIcon = errors.New("marker has no icon")

	// ErrInvalidCoordinate indicates a marker position outside ±90/±180.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// InvalidMarkerError reports a marker the layer refused to add.
type InvalidMarkerError struct {
	Marker *Marker
	Err    error
}

func (e *InvalidMarkerError) Error() string {
	if e.Marker == nil {
		return fmt.Sprintf("invalid marker: %v", e.Err)
	}
	if e.Err == ErrInvalidCoordinate {
		ll := e.Marker.LatLng()
		return fmt.Sprintf("invalid marker: %v: lat=%f lon=%f (lat must be ±90, lon must be ±180)",
			e.Err, ll.Lat, ll.Lng)
	}
	return fmt.Sprintf("invalid marker (pane %q): %v", e.Marker.Pane, e.Err)
}

func (e *InvalidMarkerError) Unwrap() error {
	return e.Err
}

// IconLoadError reports an icon image that could not be loaded.
type IconLoadError struct {
	URL string
	Err error
}

func (e *IconLoadError) Error() string {
	return fmt.Sprintf("load icon %s: %v", e.URL, e.Err)
}

func (e *IconLoadError) Unwrap() error {
	return e.Err
}

// validateMarker checks that m can be rendered by a layer.
func validateMarker(m *Marker) error {
	if m == nil || m.Pane != MarkerPane {
		return &InvalidMarkerError{Marker: m, Err: ErrNotAMarker}
	}
	if m.Icon == nil || m.Icon.URL == "" {
		return &InvalidMarkerError{Marker: m, Err: ErrMissingIcon}
	}
	if !m.latLng.Valid() {
		return &InvalidMarkerError{Marker: m, Err: ErrInvalidCoordinate}
	}
	return nil
}
