package dataset

import (
	"errors"
	"fmt"
	"os"

	"github.com/fedragon/go-imgcoords/internal/location"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var (
	ErrNoKMLResults       = errors.New("no results from KML")
	ErrUnrecognizedFormat = errors.New("could not find valid format")
)

type loader struct {
	name string
	load func(data []byte, logger *zap.Logger) ([]*location.Location, error)
}

// loaders are tried in order; the first success wins. An empty GeoJSON
// FeatureCollection is a success while a KML document without any usable
// Placemark is not.
var loaders = []loader{
	{name: "geojson", load: loadGeoJSON},
	{name: "kml", load: loadKML},
}

// LoadFile replaces the records of the set with those stored in the GeoJSON or
// KML document at path.
func (s *Set) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %v: %w", path, err)
	}

	if err := s.Load(data); err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}

	return nil
}

func (s *Set) Load(data []byte) error {
	for _, l := range loaders {
		locations, err := l.load(data, s.logger)
		if err != nil {
			s.logger.Debug("Not loadable", zap.String("format", l.name), zap.Error(err))
			continue
		}

		s.locations = locations
		s.logger.Debug("Loaded prior dataset", zap.String("format", l.name), zap.Int("count", len(locations)))
		return nil
	}

	return ErrUnrecognizedFormat
}

func loadGeoJSON(data []byte, logger *zap.Logger) ([]*location.Location, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	features := gjson.GetBytes(data, "features")
	if !features.IsArray() {
		return nil, errors.New("not a feature collection")
	}

	locations := make([]*location.Location, 0)
	features.ForEach(func(_, feature gjson.Result) bool {
		loc, err := location.FromGeoJSONFeature(feature)
		if err != nil {
			logger.Debug("Skipping feature", zap.Error(err))
			return true
		}

		locations = append(locations, loc)
		return true
	})

	return locations, nil
}

func loadKML(data []byte, logger *zap.Logger) ([]*location.Location, error) {
	placemarks, err := location.ParseKMLPlacemarks(data)
	if err != nil {
		return nil, err
	}

	locations := make([]*location.Location, 0, len(placemarks))
	for _, pm := range placemarks {
		loc, err := location.FromKMLPlacemark(pm)
		if err != nil {
			logger.Debug("Skipping placemark", zap.Error(err))
			continue
		}

		locations = append(locations, loc)
	}

	if len(locations) == 0 {
		return nil, ErrNoKMLResults
	}

	return locations, nil
}
