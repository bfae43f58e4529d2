package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fedragon/go-imgcoords/internal/location"
)

func TestLoad(t *testing.T) {
	cases := []struct {
		name     string
		data     string
		expected []string
	}{
		{
			name:     "empty feature collection is a success",
			data:     `{"type":"FeatureCollection","features":[]}`,
			expected: []string{},
		},
		{
			name: "feature collection keeps document order and skips unusable features",
			data: `{"type":"FeatureCollection","features":[
				{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"z.jpg"}},
				{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"bad.jpg","altitude":"x"}},
				{"type":"Feature","geometry":{"type":"Point","coordinates":[3,4]},"properties":{"name":"a.jpg"}}
			]}`,
			expected: []string{"z.jpg", "a.jpg"},
		},
		{
			name: "kml document",
			data: `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
<Placemark><name>b.jpg</name><Point><coordinates>1,2,3</coordinates></Point></Placemark>
<Placemark><name>line</name><LineString><coordinates>1,2 3,4</coordinates></LineString></Placemark>
<Folder><Placemark><name>c.jpg</name><Point><coordinates>5,6</coordinates></Point></Placemark></Folder>
</Document>
</kml>`,
			expected: []string{"b.jpg", "c.jpg"},
		},
	}

	for _, c := range cases {
		s := New(nil, 1)
		if err := s.Load([]byte(c.data)); err != nil {
			t.Errorf("%v\n\tunexpected error: %v", c.name, err)
			continue
		}

		got := files(s)
		if len(got) != len(c.expected) {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.name, c.expected, got)
			continue
		}
		for i := range got {
			if got[i] != c.expected[i] {
				t.Errorf("%v\n\tExpected %v but got %v instead", c.name, c.expected, got)
				break
			}
		}
	}
}

func TestLoadFailures(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{
			name: "kml without matching placemarks",
			data: `<kml><Document><Placemark><name>x</name><Polygon/></Placemark></Document></kml>`,
		},
		{
			name: "empty kml document",
			data: `<kml><Document></Document></kml>`,
		},
		{
			name: "json without features",
			data: `{"type":"Feature"}`,
		},
		{
			name: "plain text",
			data: `hello world`,
		},
		{
			name: "truncated json",
			data: `{"type":"FeatureCollection","features":[`,
		},
	}

	for _, c := range cases {
		s := New(nil, 1)
		err := s.Load([]byte(c.data))
		if !errors.Is(err, ErrUnrecognizedFormat) {
			t.Errorf("%v\n\tExpected ErrUnrecognizedFormat but got %v instead", c.name, err)
		}
	}
}

func TestLoadKMLWithoutResults(t *testing.T) {
	_, err := loadKML([]byte(`<kml><Document></Document></kml>`), New(nil, 1).logger)
	if !errors.Is(err, ErrNoKMLResults) {
		t.Errorf("Expected ErrNoKMLResults but got %v instead", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	s := New(nil, 1)
	if err := s.LoadFile(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}

func TestRenderThenLoad(t *testing.T) {
	altitude := 46.79

	for _, format := range []string{FormatGeoJSON, FormatKML} {
		s := New(nil, 1)
		s.locations = []*location.Location{
			{File: "/photos/a & b.jpg", Latitude: 45.5, Longitude: 12.25, Altitude: &altitude, Timestamp: stringPtr("2025:03:06 05:41:42")},
			{File: "/photos/c.jpg", Latitude: -1, Longitude: -2, Thumbnail: stringPtr("dGh1bWI")},
		}

		var buf bytes.Buffer
		if err := s.Render(&buf, format); err != nil {
			t.Fatal(err)
		}

		path := filepath.Join(t.TempDir(), "prior."+format)
		if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
			t.Fatal(err)
		}

		loaded := New(nil, 2)
		if err := loaded.LoadFile(path); err != nil {
			t.Fatalf("%v: %v", format, err)
		}

		got := loaded.Locations()
		if len(got) != 2 || got[0].File != "/photos/a & b.jpg" || got[1].File != "/photos/c.jpg" {
			t.Errorf("%v\n\tExpected both records back in order but got %v instead", format, files(loaded))
			continue
		}
		if got[0].Altitude == nil || *got[0].Altitude != altitude {
			t.Errorf("%v\n\tExpected altitude %v but got %v instead", format, altitude, got[0].Altitude)
		}

		// prior records are never extracted again
		rec := &recorder{}
		loaded.extract = rec.extract
		loaded.AddFiles(context.Background(), feed("/photos/a & b.jpg", "/photos/c.jpg"))
		if calls := rec.extracted(); len(calls) != 0 {
			t.Errorf("%v\n\tExpected no extraction but got %v instead", format, calls)
		}
	}
}
