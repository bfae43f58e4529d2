package location

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/fedragon/go-imgcoords/internal/coords"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// FromFile opens path and extracts a Location from its embedded EXIF
// metadata. Any missing or malformed GPS coordinate field yields ErrNoRecord.
func FromFile(path string) (*Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRecord, err)
	}
	defer f.Close()

	return FromReader(path, f)
}

// FromReader is FromFile for an already opened image, recorded under path.
func FromReader(path string, r io.Reader) (*Location, error) {
	x, err := exif.Decode(r)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return nil, fmt.Errorf("%w: cannot decode exif: %v", ErrNoRecord, err)
	}

	return FromExif(path, x)
}

// FromExif builds a Location from decoded EXIF metadata.
func FromExif(path string, x *exif.Exif) (*Location, error) {
	lat, err := coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude: %v", ErrNoRecord, err)
	}

	lon, err := coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude: %v", ErrNoRecord, err)
	}

	return &Location{
		File:      path,
		Latitude:  lat,
		Longitude: lon,
		Altitude:  rational(x, exif.GPSAltitude),
		Direction: rational(x, exif.GPSImgDirection),
		Timestamp: ascii(x, exif.DateTimeOriginal),
	}, nil
}

func coordinate(x *exif.Exif, value exif.FieldName, ref exif.FieldName) (float64, error) {
	refTag, err := x.Get(ref)
	if err != nil {
		return 0, err
	}

	letter, err := refTag.StringVal()
	if err != nil || letter == "" {
		return 0, coords.ErrUnavailable
	}

	tag, err := x.Get(value)
	if err != nil {
		return 0, err
	}

	if tag.Format() != tiff.RatVal {
		return 0, coords.ErrUnavailable
	}

	dms := make([]*big.Rat, 0, 3)
	for i := 0; i < int(tag.Count) && i < 3; i++ {
		r, err := rat(tag, i)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", coords.ErrUnavailable, err)
		}
		dms = append(dms, r)
	}

	return coords.Decimal(dms, letter[0])
}

func rational(x *exif.Exif, name exif.FieldName) *float64 {
	tag, err := x.Get(name)
	if err != nil || tag.Format() != tiff.RatVal || tag.Count < 1 {
		return nil
	}

	r, err := rat(tag, 0)
	if err != nil {
		return nil
	}

	v, _ := r.Float64()
	return &v
}

func rat(tag *tiff.Tag, i int) (*big.Rat, error) {
	num, den, err := tag.Rat2(i)
	if err != nil {
		return nil, err
	}

	if den == 0 {
		return nil, errors.New("zero denominator")
	}

	return big.NewRat(num, den), nil
}

func ascii(x *exif.Exif, name exif.FieldName) *string {
	tag, err := x.Get(name)
	if err != nil {
		return nil
	}

	s, err := tag.StringVal()
	if err != nil {
		return nil
	}

	return &s
}
