// Package location holds the canonical record of one geotagged file and its
// conversions from EXIF metadata, GeoJSON features and KML placemarks.
package location

import (
	"errors"
	"strings"
	"time"
)

// TimestampLayout is the layout EXIF uses for DateTimeOriginal.
const TimestampLayout = "2006:01:02 15:04:05"

var ErrNoRecord = errors.New("no location record")

// Location describes where a single file was captured. Latitude and Longitude
// are always set; every pointer field is optional and absent when nil.
type Location struct {
	File      string
	Latitude  float64
	Longitude float64
	Altitude  *float64 // reference (sea level, ellipsoid) is not interpreted
	Direction *float64 // reference (true, magnetic) is not interpreted
	Timestamp *string
	Thumbnail *string
}

// TimestampParsed parses Timestamp with TimestampLayout. It reports false when
// the timestamp is absent or malformed.
func (l *Location) TimestampParsed() (time.Time, bool) {
	if l.Timestamp == nil {
		return time.Time{}, false
	}

	t, err := time.Parse(TimestampLayout, *l.Timestamp)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// ThumbnailFunc produces an unpadded base64 JPEG preview of a file.
type ThumbnailFunc func(path string) (string, error)

// GenerateMissingThumbnail fills Thumbnail using fn unless it is already set.
// Failures leave the thumbnail absent and are returned for logging only.
func (l *Location) GenerateMissingThumbnail(fn ThumbnailFunc) error {
	if l.Thumbnail != nil {
		return nil
	}

	encoded, err := fn(l.File)
	if err != nil {
		return err
	}

	l.Thumbnail = &encoded
	return nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func (l *Location) nameXMLEscaped() string {
	return xmlEscaper.Replace(l.File)
}

func float64Ptr(v float64) *float64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
