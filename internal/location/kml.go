package location

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// AsKML renders l as a single-line KML Placemark. Altitude defaults to zero.
// The timestamp is emitted with its space replaced by "T" and nothing else
// changed, so the date keeps its colons.
func (l *Location) AsKML() string {
	altitude := 0.0
	if l.Altitude != nil {
		altitude = *l.Altitude
	}

	var other string
	if l.Timestamp != nil {
		other = "<TimeStamp><when>" + strings.Replace(*l.Timestamp, " ", "T", -1) + "</when></TimeStamp>"
	}

	return fmt.Sprintf("<Placemark><name>%s</name><Point><coordinates>%s,%s,%s</coordinates></Point>%s</Placemark>",
		l.nameXMLEscaped(),
		formatFloat(l.Longitude),
		formatFloat(l.Latitude),
		formatFloat(altitude),
		other,
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Placemark is the subset of a KML Placemark element this package reads.
type Placemark struct {
	Name  *string `xml:"name"`
	Point *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
}

// FromKMLPlacemark reads a Location from a Placemark with a Point geometry.
// KML carries neither direction nor timestamp, so both stay absent.
func FromKMLPlacemark(pm *Placemark) (*Location, error) {
	if pm.Name == nil {
		return nil, fmt.Errorf("%w: placemark without name", ErrNoRecord)
	}

	if pm.Point == nil {
		return nil, fmt.Errorf("%w: placemark %q has no Point geometry", ErrNoRecord, *pm.Name)
	}

	tuple := strings.Fields(pm.Point.Coordinates)
	if len(tuple) == 0 {
		return nil, fmt.Errorf("%w: placemark %q has no coordinates", ErrNoRecord, *pm.Name)
	}

	parts := strings.Split(tuple[0], ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: placemark %q has malformed coordinates", ErrNoRecord, *pm.Name)
	}

	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: placemark %q: %v", ErrNoRecord, *pm.Name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: placemark %q has non-finite coordinates", ErrNoRecord, *pm.Name)
		}
		values[i] = v
	}

	loc := &Location{
		File:      strings.TrimSpace(*pm.Name),
		Longitude: values[0],
		Latitude:  values[1],
	}
	if len(values) == 3 {
		loc.Altitude = float64Ptr(values[2])
	}

	return loc, nil
}

// ParseKMLPlacemarks decodes every Placemark found at any depth of a KML
// document. It fails only when the document is not well-formed XML.
func ParseKMLPlacemarks(data []byte) ([]*Placemark, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = true

	placemarks := make([]*Placemark, 0)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Placemark" {
			continue
		}

		var pm Placemark
		if err := d.DecodeElement(&pm, &start); err != nil {
			return nil, err
		}
		placemarks = append(placemarks, &pm)
	}

	return placemarks, nil
}
