package markerio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/beetlebugorg/markercanvas/pkg/markercanvas"
)

// GeoJSON feature properties read into a Record. Other properties are kept
// in Record.Properties.
const (
	PropName       = "name"
	PropIcon       = "icon"
	PropRotation   = "rotation"
	PropIconSize   = "iconSize"   // [width, height]
	PropIconAnchor = "iconAnchor" // [x, y]
)

// ReadGeoJSON reads a FeatureCollection or a single Feature. Point features
// give one record and MultiPoint features one record per point. Features
// of other geometry types are skipped.
func ReadGeoJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	var features []*geojson.Feature
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		features = fc.Features
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		features = []*geojson.Feature{f}
	default:
		return nil, fmt.Errorf("decode geojson: unsupported type %q", head.Type)
	}

	var records []Record
	for i, f := range features {
		var points []orb.Point
		switch g := f.Geometry.(type) {
		case orb.Point:
			points = []orb.Point{g}
		case orb.MultiPoint:
			points = g
		default:
			continue
		}

		base, err := featureRecord(f)
		if err != nil {
			return nil, &ParseError{Line: i, Field: err.field, Err: err.err}
		}
		for _, p := range points {
			rec := base
			rec.LatLng = markercanvas.LatLng{Lat: p.Lat(), Lng: p.Lon()}
			records = append(records, rec)
		}
	}
	return records, nil
}

type fieldError struct {
	field string
	err   error
}

func featureRecord(f *geojson.Feature) (Record, *fieldError) {
	props := f.Properties
	rec := Record{
		Name:       props.MustString(PropName, ""),
		Icon:       props.MustString(PropIcon, ""),
		Rotation:   props.MustFloat64(PropRotation, 0),
		Properties: map[string]any(props.Clone()),
	}
	if f.ID != nil {
		rec.ID = fmt.Sprint(f.ID)
	}

	var err error
	if rec.Size, err = pointProperty(props, PropIconSize); err != nil {
		return Record{}, &fieldError{PropIconSize, err}
	}
	if rec.Anchor, err = pointProperty(props, PropIconAnchor); err != nil {
		return Record{}, &fieldError{PropIconAnchor, err}
	}
	return rec, nil
}

// pointProperty reads a [x, y] number pair. A missing property is the zero
// point.
func pointProperty(props geojson.Properties, key string) (markercanvas.Point, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return markercanvas.Point{}, nil
	}

	pair, ok := v.([]any)
	if !ok || len(pair) != 2 {
		return markercanvas.Point{}, fmt.Errorf("want [x, y], got %v", v)
	}
	x, xok := pair[0].(float64)
	y, yok := pair[1].(float64)
	if !xok || !yok {
		return markercanvas.Point{}, fmt.Errorf("want numbers, got %v", v)
	}
	return markercanvas.Point{X: x, Y: y}, nil
}

// WriteGeoJSON writes records as a FeatureCollection of points that
// ReadGeoJSON reads back.
func WriteGeoJSON(w io.Writer, records []Record) error {
	fc := geojson.NewFeatureCollection()
	for _, rec := range records {
		f := geojson.NewFeature(orb.Point{rec.LatLng.Lng, rec.LatLng.Lat})
		for k, v := range rec.Properties {
			f.Properties[k] = v
		}
		if rec.ID != "" {
			f.ID = rec.ID
		}
		if rec.Name != "" {
			f.Properties[PropName] = rec.Name
		}
		if rec.Icon != "" {
			f.Properties[PropIcon] = rec.Icon
		}
		if rec.Rotation != 0 {
			f.Properties[PropRotation] = rec.Rotation
		}
		if rec.Size != (markercanvas.Point{}) {
			f.Properties[PropIconSize] = []float64{rec.Size.X, rec.Size.Y}
		}
		if rec.Anchor != (markercanvas.Point{}) {
			f.Properties[PropIconAnchor] = []float64{rec.Anchor.X, rec.Anchor.Y}
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	_, err = w.Write(data)
	return err
}
