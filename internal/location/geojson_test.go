package location

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
)

func sunrise() *Location {
	return &Location{
		File:      "test_files/sunrise.jpg",
		Latitude:  45.6789,
		Longitude: 12.345,
		Altitude:  float64Ptr(46.79),
		Direction: float64Ptr(11),
		Timestamp: stringPtr("2025:03:06 05:41:42"),
		Thumbnail: stringPtr("base64"),
	}
}

func TestAsGeoJSON(t *testing.T) {
	body, err := sunrise().AsGeoJSON()
	if err != nil {
		t.Fatal(err)
	}

	if !gjson.ValidBytes(body) {
		t.Fatalf("Expected valid JSON but got %s instead", body)
	}

	cases := []struct {
		path     string
		expected string
	}{
		{"type", "Feature"},
		{"geometry.type", "Point"},
		{"geometry.coordinates.0", "12.345"},
		{"geometry.coordinates.1", "45.6789"},
		{"properties.name", "test_files/sunrise.jpg"},
		{"properties.altitude", "46.79"},
		{"properties.direction", "11"},
		{"properties.timestamp", "2025:03:06 05:41:42"},
		{"properties.thumbnail", "base64"},
	}

	for _, c := range cases {
		got := gjson.GetBytes(body, c.path).String()
		if got != c.expected {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.path, c.expected, got)
		}
	}
}

func TestAsGeoJSONOmitsAbsentProperties(t *testing.T) {
	loc := &Location{File: "a.jpg", Latitude: -1.5, Longitude: 2.25}

	body, err := loc.AsGeoJSON()
	if err != nil {
		t.Fatal(err)
	}

	expected := `{"type":"Feature","geometry":{"type":"Point","coordinates":[2.25,-1.5]},"properties":{"name":"a.jpg"}}`
	if string(body) != expected {
		t.Errorf("Expected %v but got %s instead", expected, body)
	}

	for _, key := range []string{"altitude", "direction", "timestamp", "thumbnail"} {
		if gjson.GetBytes(body, "properties."+key).Exists() {
			t.Errorf("Expected no %v property in %s", key, body)
		}
	}
}

func TestFromGeoJSONFeature(t *testing.T) {
	feature := `{
		"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [12.345, 45.6789]},
		"properties": {
			"name": "test_files/sunrise.jpg",
			"altitude": 46.79,
			"direction": 11.0,
			"timestamp": "2025:03:06 05:41:42",
			"thumbnail": "base64"
		}
	}`

	loc, err := FromGeoJSONFeature(gjson.Parse(feature))
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(loc, sunrise()) {
		t.Errorf("Expected %+v but got %+v instead", sunrise(), loc)
	}
}

func TestFromGeoJSONFeatureOptional(t *testing.T) {
	feature := `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2,3]},"properties":{"name":"a.jpg","timestamp":42,"thumbnail":null}}`

	loc, err := FromGeoJSONFeature(gjson.Parse(feature))
	if err != nil {
		t.Fatal(err)
	}

	expected := &Location{File: "a.jpg", Latitude: 2, Longitude: 1}
	if !reflect.DeepEqual(loc, expected) {
		t.Errorf("Expected %+v but got %+v instead", expected, loc)
	}
}

func TestFromGeoJSONFeatureNoRecord(t *testing.T) {
	cases := []struct {
		name    string
		feature string
	}{
		{
			name:    "not a feature",
			feature: `{"type":"FeatureCollection","features":[]}`,
		},
		{
			name:    "line string geometry",
			feature: `{"type":"Feature","geometry":{"type":"LineString","coordinates":[[1,2],[3,4]]},"properties":{"name":"a.jpg"}}`,
		},
		{
			name:    "missing geometry",
			feature: `{"type":"Feature","properties":{"name":"a.jpg"}}`,
		},
		{
			name:    "single coordinate",
			feature: `{"type":"Feature","geometry":{"type":"Point","coordinates":[1]},"properties":{"name":"a.jpg"}}`,
		},
		{
			name:    "non numeric coordinate",
			feature: `{"type":"Feature","geometry":{"type":"Point","coordinates":["1",2]},"properties":{"name":"a.jpg"}}`,
		},
		{
			name:    "missing name",
			feature: `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}`,
		},
		{
			name:    "missing properties",
			feature: `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]}}`,
		},
		{
			name:    "non numeric altitude discards the feature",
			feature: `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"a.jpg","altitude":"high"}}`,
		},
		{
			name:    "non numeric direction discards the feature",
			feature: `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"a.jpg","direction":true}}`,
		},
	}

	for _, c := range cases {
		loc, err := FromGeoJSONFeature(gjson.Parse(c.feature))
		if !errors.Is(err, ErrNoRecord) {
			t.Errorf("%v\n\tExpected ErrNoRecord but got %v (%+v) instead", c.name, err, loc)
		}
	}
}

func TestGeoJSONRoundTrip(t *testing.T) {
	locations := []*Location{
		sunrise(),
		{File: `/photos/"quoted" & <odd>.jpg`, Latitude: -33.8688, Longitude: 151.2093},
		{File: "b.jpg", Latitude: 0, Longitude: 0, Direction: float64Ptr(359.5)},
	}

	for _, loc := range locations {
		body, err := loc.AsGeoJSON()
		if err != nil {
			t.Fatal(err)
		}

		got, err := FromGeoJSONFeature(gjson.ParseBytes(body))
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(got, loc) {
			t.Errorf("Expected %+v but got %+v instead", loc, got)
		}
	}
}
