// Package exiftest synthesises small JPEG files carrying EXIF GPS metadata
// for tests.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// Rational is a numerator/denominator pair as stored in a TIFF RATIONAL.
type Rational [2]uint32

// Tags selects which GPS and Exif fields are written. Empty values are omitted.
type Tags struct {
	LatitudeRef      string
	Latitude         []Rational
	LongitudeRef     string
	Longitude        []Rational
	Altitude         []Rational
	Direction        []Rational
	DateTimeOriginal string
}

// Sunrise is a fully populated set of tags.
func Sunrise() Tags {
	return Tags{
		LatitudeRef:      "N",
		Latitude:         []Rational{{45, 1}, {30, 1}, {204, 10}},
		LongitudeRef:     "E",
		Longitude:        []Rational{{12, 1}, {20, 1}, {2818, 100}},
		Altitude:         []Rational{{4679, 100}},
		Direction:        []Rational{{11, 1}},
		DateTimeOriginal: "2025:03:06 05:41:42",
	}
}

const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) entry {
	data := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data}
}

func rationalEntry(tag uint16, rs []Rational) entry {
	data := make([]byte, 0, 8*len(rs))
	for _, r := range rs {
		data = binary.LittleEndian.AppendUint32(data, r[0])
		data = binary.LittleEndian.AppendUint32(data, r[1])
	}
	return entry{tag: tag, typ: typeRational, count: uint32(len(rs)), data: data}
}

func longEntry(tag uint16, v uint32) entry {
	return entry{tag: tag, typ: typeLong, count: 1, data: binary.LittleEndian.AppendUint32(nil, v)}
}

// ifd lays out entries starting at offset start, followed by their out of
// line values.
func ifd(entries []entry, start uint32) []byte {
	dataStart := start + 2 + 12*uint32(len(entries)) + 4

	var dir, data []byte
	dir = binary.LittleEndian.AppendUint16(dir, uint16(len(entries)))

	for _, e := range entries {
		dir = binary.LittleEndian.AppendUint16(dir, e.tag)
		dir = binary.LittleEndian.AppendUint16(dir, e.typ)
		dir = binary.LittleEndian.AppendUint32(dir, e.count)

		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			dir = append(dir, inline...)
			continue
		}

		dir = binary.LittleEndian.AppendUint32(dir, dataStart+uint32(len(data)))
		data = append(data, e.data...)
		if len(data)%2 == 1 {
			data = append(data, 0)
		}
	}

	dir = binary.LittleEndian.AppendUint32(dir, 0)
	return append(dir, data...)
}

// TIFF encodes tags as a little-endian TIFF structure with an Exif and a GPS
// sub-directory.
func TIFF(tags Tags) []byte {
	var exifEntries []entry
	if tags.DateTimeOriginal != "" {
		exifEntries = append(exifEntries, asciiEntry(0x9003, tags.DateTimeOriginal))
	}

	var gpsEntries []entry
	if tags.LatitudeRef != "" {
		gpsEntries = append(gpsEntries, asciiEntry(0x0001, tags.LatitudeRef))
	}
	if tags.Latitude != nil {
		gpsEntries = append(gpsEntries, rationalEntry(0x0002, tags.Latitude))
	}
	if tags.LongitudeRef != "" {
		gpsEntries = append(gpsEntries, asciiEntry(0x0003, tags.LongitudeRef))
	}
	if tags.Longitude != nil {
		gpsEntries = append(gpsEntries, rationalEntry(0x0004, tags.Longitude))
	}
	if tags.Altitude != nil {
		gpsEntries = append(gpsEntries, rationalEntry(0x0006, tags.Altitude))
	}
	if tags.Direction != nil {
		gpsEntries = append(gpsEntries, rationalEntry(0x0011, tags.Direction))
	}

	const ifd0Start = 8
	const ifd0Len = 2 + 2*12 + 4

	exifStart := uint32(ifd0Start + ifd0Len)
	exifDir := ifd(exifEntries, exifStart)
	gpsStart := exifStart + uint32(len(exifDir))
	gpsDir := ifd(gpsEntries, gpsStart)

	ifd0 := ifd([]entry{
		longEntry(0x8769, exifStart),
		longEntry(0x8825, gpsStart),
	}, ifd0Start)

	out := []byte{'I', 'I', 42, 0}
	out = binary.LittleEndian.AppendUint32(out, ifd0Start)
	out = append(out, ifd0...)
	out = append(out, exifDir...)
	return append(out, gpsDir...)
}

// JPEG returns a small JPEG image whose APP1 segment carries tags.
func JPEG(tags Tags) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 128, A: 255})
		}
	}

	var enc bytes.Buffer
	if err := jpeg.Encode(&enc, img, nil); err != nil {
		return nil, err
	}
	raw := enc.Bytes()

	payload := append([]byte("Exif\x00\x00"), TIFF(tags)...)

	out := make([]byte, 0, len(raw)+len(payload)+4)
	out = append(out, raw[:2]...)
	out = append(out, 0xFF, 0xE1)
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	return append(out, raw[2:]...), nil
}

// WriteJPEG writes a JPEG carrying tags to dir/name and returns its path.
func WriteJPEG(tb testing.TB, dir string, name string, tags Tags) string {
	tb.Helper()

	data, err := JPEG(tags)
	if err != nil {
		tb.Fatal(err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		tb.Fatal(err)
	}

	return path
}
