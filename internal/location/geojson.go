package location

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type property struct {
	path  string
	value interface{}
}

// AsGeoJSON renders l as a GeoJSON Point Feature. Optional properties are only
// emitted when present.
func (l *Location) AsGeoJSON() ([]byte, error) {
	props := []property{
		{"type", "Feature"},
		{"geometry.type", "Point"},
		{"geometry.coordinates", []float64{l.Longitude, l.Latitude}},
		{"properties.name", l.File},
	}

	if l.Altitude != nil {
		props = append(props, property{"properties.altitude", *l.Altitude})
	}
	if l.Direction != nil {
		props = append(props, property{"properties.direction", *l.Direction})
	}
	if l.Timestamp != nil {
		props = append(props, property{"properties.timestamp", *l.Timestamp})
	}
	if l.Thumbnail != nil {
		props = append(props, property{"properties.thumbnail", *l.Thumbnail})
	}

	body := []byte(`{}`)

	var err error
	for _, p := range props {
		body, err = sjson.SetBytes(body, p.path, p.value)
		if err != nil {
			return nil, fmt.Errorf("failed to set %s for %s: %w", p.path, l.File, err)
		}
	}

	return body, nil
}

// FromGeoJSONFeature reads a Location from a GeoJSON Feature with a Point
// geometry. The name and both coordinates are mandatory; altitude and direction
// must be numeric when present.
func FromGeoJSONFeature(feature gjson.Result) (*Location, error) {
	if feature.Get("type").String() != "Feature" {
		return nil, fmt.Errorf("%w: not a Feature", ErrNoRecord)
	}

	geometry := feature.Get("geometry")
	if geometry.Get("type").String() != "Point" {
		return nil, fmt.Errorf("%w: not a Point geometry", ErrNoRecord)
	}

	coordinates := geometry.Get("coordinates").Array()
	if len(coordinates) < 2 || coordinates[0].Type != gjson.Number || coordinates[1].Type != gjson.Number {
		return nil, fmt.Errorf("%w: invalid Point coordinates", ErrNoRecord)
	}

	properties := feature.Get("properties")

	name := properties.Get("name")
	if name.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing name", ErrNoRecord)
	}

	loc := &Location{
		File:      name.String(),
		Longitude: coordinates[0].Float(),
		Latitude:  coordinates[1].Float(),
	}

	var err error
	if loc.Altitude, err = optionalNumber(properties, "altitude"); err != nil {
		return nil, err
	}
	if loc.Direction, err = optionalNumber(properties, "direction"); err != nil {
		return nil, err
	}

	if ts := properties.Get("timestamp"); ts.Type == gjson.String {
		loc.Timestamp = stringPtr(ts.String())
	}
	if thumb := properties.Get("thumbnail"); thumb.Type == gjson.String {
		loc.Thumbnail = stringPtr(thumb.String())
	}

	return loc, nil
}

func optionalNumber(properties gjson.Result, key string) (*float64, error) {
	v := properties.Get(key)
	if !v.Exists() {
		return nil, nil
	}

	if v.Type != gjson.Number {
		return nil, fmt.Errorf("%w: %s is not numeric", ErrNoRecord, key)
	}

	return float64Ptr(v.Float()), nil
}
