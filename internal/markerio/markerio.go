// Package markerio reads marker descriptors from GeoJSON and CSV files.
package markerio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

// Format identifies a marker file encoding.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatCSV     Format = "csv"
)

var (
	// ErrUnknownFormat indicates a file whose format could not be determined.
	ErrUnknownFormat = errors.New("unknown marker file format")

	// ErrMissingCoordinate indicates a CSV row without a latitude or
	// longitude.
	ErrMissingCoordinate = errors.New("missing coordinate")
)

// Record is one marker read from a file. Zero icon fields fall back to the
// defaults passed to NewCatalog.
type Record struct {
	ID       string
	Name     string
	LatLng   markercanvas.LatLng
	Icon     string
	Rotation float64

	// Size and Anchor are in pixels. A zero Anchor centers the icon.
	Size   markercanvas.Point
	Anchor markercanvas.Point

	Properties map[string]any
}

// ParseError reports a record that could not be read.
type ParseError struct {
	Line  int // CSV line or GeoJSON feature index
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("record %d: field %q: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DetectFormat guesses the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ParseFormat validates a format name. The empty string is returned as is
// and means detect from the file name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatGeoJSON, FormatCSV:
		return f, nil
	case "json":
		return FormatGeoJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// ReadFile reads the records of a marker file. An empty format is
// detected from the extension.
func ReadFile(path string, format Format) ([]Record, error) {
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open marker file: %w", err)
	}
	defer f.Close()

	records, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// Read reads records in the given format.
func Read(r io.Reader, format Format) ([]Record, error) {
	switch format {
	case FormatGeoJSON:
		return ReadGeoJSON(r)
	case FormatCSV:
		return ReadCSV(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
