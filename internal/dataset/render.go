package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	FormatGeoJSON = "geojson"
	FormatKML     = "kml"
)

var ErrUnknownFormat = errors.New("unknown format")

// Render writes every record to w as a GeoJSON FeatureCollection or a KML
// Document. Format names are case-insensitive and default to GeoJSON. Nothing
// is written for an unknown format.
func (s *Set) Render(w io.Writer, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatGeoJSON:
		return s.renderGeoJSON(w)
	case FormatKML:
		return s.renderKML(w)
	default:
		return fmt.Errorf("%w '%s'", ErrUnknownFormat, format)
	}
}

func (s *Set) renderGeoJSON(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, `{"type": "FeatureCollection","features": [`)
	for i, loc := range s.locations {
		feature, err := loc.AsGeoJSON()
		if err != nil {
			return err
		}

		if i > 0 {
			bw.WriteString(",")
		}
		bw.Write(feature)
		bw.WriteString("\n")
	}
	fmt.Fprintln(bw, `]}`)

	return bw.Flush()
}

func (s *Set) renderKML(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintln(bw, `<kml xmlns="http://www.opengis.net/kml/2.2">`)
	fmt.Fprintln(bw, `<Document>`)
	for _, loc := range s.locations {
		fmt.Fprintln(bw, loc.AsKML())
	}
	fmt.Fprintln(bw, `</Document>`)
	fmt.Fprintln(bw, `</kml>`)

	return bw.Flush()
}
