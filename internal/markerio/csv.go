package markerio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSV columns. The header row is required; column names are matched
// case-insensitively and lat/lon accept the usual aliases. Columns not
// listed here are kept in Record.Properties.
var (
	latColumns = []string{"lat", "latitude", "y"}
	lonColumns = []string{"lon", "lng", "long", "longitude", "x"}
)

const (
	colID       = "id"
	colName     = "name"
	colIcon     = "icon"
	colRotation = "rotation"
	colWidth    = "icon_width"
	colHeight   = "icon_height"
	colAnchorX  = "anchor_x"
	colAnchorY  = "anchor_y"
)

// ReadCSV reads one record per row.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}

	latCol, ok := findColumn(columns, latColumns)
	if !ok {
		return nil, fmt.Errorf("latitude column not found in csv; available columns: %v", header)
	}
	lonCol, ok := findColumn(columns, lonColumns)
	if !ok {
		return nil, fmt.Errorf("longitude column not found in csv; available columns: %v", header)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rec, err := csvRecord(row, header, columns, latCol, lonCol)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = line
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func findColumn(columns map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if i, ok := columns[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func csvRecord(row, header []string, columns map[string]int, latCol, lonCol int) (Record, error) {
	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	named := func(name string) string {
		if i, ok := columns[name]; ok {
			return field(i)
		}
		return ""
	}
	number := func(name string, col int) (float64, error) {
		s := field(col)
		if s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &ParseError{Field: name, Err: err}
		}
		return v, nil
	}
	optional := func(name string) (float64, error) {
		i, ok := columns[name]
		if !ok {
			return 0, nil
		}
		return number(name, i)
	}

	if field(latCol) == "" || field(lonCol) == "" {
		return Record{}, &ParseError{Field: header[latCol] + "/" + header[lonCol], Err: ErrMissingCoordinate}
	}

	rec := Record{
		ID:   named(colID),
		Name: named(colName),
		Icon: named(colIcon),
	}

	var err error
	if rec.LatLng.Lat, err = number(header[latCol], latCol); err != nil {
		return Record{}, err
	}
	if rec.LatLng.Lng, err = number(header[lonCol], lonCol); err != nil {
		return Record{}, err
	}

	nums := []struct {
		name string
		dst  *float64
	}{
		{colRotation, &rec.Rotation},
		{colWidth, &rec.Size.X},
		{colHeight, &rec.Size.Y},
		{colAnchorX, &rec.Anchor.X},
		{colAnchorY, &rec.Anchor.Y},
	}
	for _, n := range nums {
		if *n.dst, err = optional(n.name); err != nil {
			return Record{}, err
		}
	}

	known := map[int]bool{latCol: true, lonCol: true}
	for _, name := range []string{colID, colName, colIcon, colRotation, colWidth, colHeight, colAnchorX, colAnchorY} {
		if i, ok := columns[name]; ok {
			known[i] = true
		}
	}
	for i, col := range header {
		if known[i] || i >= len(row) {
			continue
		}
		if rec.Properties == nil {
			rec.Properties = make(map[string]any)
		}
		rec.Properties[strings.TrimSpace(col)] = row[i]
	}
	return rec, nil
}

// WriteCSV writes records with the columns ReadCSV understands. Properties
// are not written.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	header := []string{colID, colName, "lat", "lon", colIcon, colRotation, colWidth, colHeight, colAnchorX, colAnchorY}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	num := func(v float64) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	for _, rec := range records {
		row := []string{
			rec.ID, rec.Name,
			strconv.FormatFloat(rec.LatLng.Lat, 'f', -1, 64),
			strconv.FormatFloat(rec.LatLng.Lng, 'f', -1, 64),
			rec.Icon, num(rec.Rotation),
			num(rec.Size.X), num(rec.Size.Y),
			num(rec.Anchor.X), num(rec.Anchor.Y),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
