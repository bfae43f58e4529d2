package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fedragon/go-imgcoords/internal/location"
	"github.com/tidwall/gjson"
)

func sample() *Set {
	s := New(nil, 1)
	s.locations = []*location.Location{
		{File: "a.jpg", Latitude: 1, Longitude: 2},
		{File: "b.jpg", Latitude: 3, Longitude: 4, Timestamp: stringPtr("2025:03:06 05:41:42")},
	}
	return s
}

func TestRenderGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := sample().Render(&buf, " GeoJSON "); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	expected := []string{
		`{"type": "FeatureCollection","features": [`,
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[2,1]},"properties":{"name":"a.jpg"}}`,
		`,{"type":"Feature","geometry":{"type":"Point","coordinates":[4,3]},"properties":{"name":"b.jpg","timestamp":"2025:03:06 05:41:42"}}`,
		`]}`,
	}

	if len(lines) != len(expected) {
		t.Fatalf("Expected %v lines but got %v instead:\n%v", len(expected), len(lines), buf.String())
	}
	for i := range lines {
		if lines[i] != expected[i] {
			t.Errorf("line %v\n\tExpected %v but got %v instead", i, expected[i], lines[i])
		}
	}

	if !gjson.Valid(buf.String()) {
		t.Errorf("Expected valid JSON")
	}
}

func TestRenderEmptyGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(nil, 1).Render(&buf, ""); err != nil {
		t.Fatal(err)
	}

	if got := gjson.Get(buf.String(), "features.#").Int(); got != 0 || !gjson.Valid(buf.String()) {
		t.Errorf("Expected an empty collection but got %v", buf.String())
	}
}

func TestRenderKML(t *testing.T) {
	var buf bytes.Buffer
	if err := sample().Render(&buf, "KML"); err != nil {
		t.Fatal(err)
	}

	expected := `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
<Placemark><name>a.jpg</name><Point><coordinates>2,1,0</coordinates></Point></Placemark>
<Placemark><name>b.jpg</name><Point><coordinates>4,3,0</coordinates></Point><TimeStamp><when>2025:03:06T05:41:42</when></TimeStamp></Placemark>
</Document>
</kml>
`
	if buf.String() != expected {
		t.Errorf("Expected %v but got %v instead", expected, buf.String())
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := sample().Render(&buf, "yaml")

	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat but got %v instead", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output but got %v instead", buf.String())
	}
}
