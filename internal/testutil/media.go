// Package testutil builds small media fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// minimalJPEG is a 1x1 baseline JPEG without any APP1/EXIF segment.
var minimalJPEG = []byte{
	0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x43, 0x00, 0x08, 0x06, 0x06, 0x07, 0x06, 0x05, 0x08, 0x07, 0x07,
	0x07, 0x09, 0x09, 0x08, 0x0A, 0x0C, 0x14, 0x0D, 0x0C, 0x0B, 0x0B, 0x0C, 0x19, 0x12, 0x13, 0x0F,
	0x14, 0x1D, 0x1A, 0x1F, 0x1E, 0x1D, 0x1A, 0x1C, 0x1C, 0x20, 0x24, 0x2E, 0x27, 0x20, 0x22, 0x2C,
	0x23, 0x1C, 0x1C, 0x28, 0x37, 0x29, 0x2C, 0x30, 0x31, 0x34, 0x34, 0x34, 0x1F, 0x27, 0x39, 0x3D,
	0x38, 0x32, 0x3C, 0x2E, 0x33, 0x34, 0x32, 0xFF, 0xC0, 0x00, 0x0B, 0x08, 0x00, 0x01, 0x00, 0x01,
	0x01, 0x01, 0x11, 0x00, 0xFF, 0xC4, 0x00, 0x14, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x09, 0xFF, 0xC4, 0x00, 0x14, 0x10, 0x01,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3F, 0x00, 0x2A, 0x9F, 0xFF, 0xD9,
}

// EXIF tag IDs used by JPEGWithEXIF.
const (
	TagDateTime          uint16 = 0x0132 // IFD0
	TagDateTimeOriginal  uint16 = 0x9003 // Exif IFD
	TagDateTimeDigitized uint16 = 0x9004 // Exif IFD
)

const (
	tagOrientation    uint16 = 0x0112
	tagExifIFDPointer uint16 = 0x8769

	typeShort uint16 = 3
	typeASCII uint16 = 2
	typeLong  uint16 = 4
)

// MinimalJPEG returns a 1x1 JPEG with no APP1/EXIF segment.
func MinimalJPEG() []byte {
	return append([]byte(nil), minimalJPEG...)
}

// JPEGWithEXIF returns MinimalJPEG with an APP1 EXIF block holding the given
// date tags (values in "YYYY:MM:DD HH:MM:SS" form). IFD0 always carries an
// Orientation tag, so an empty map yields EXIF without any date.
func JPEGWithEXIF(dates map[uint16]string) []byte {
	tiff := buildTIFF(dates)

	var app1 bytes.Buffer
	app1.Write([]byte{0xFF, 0xE1})
	binary.Write(&app1, binary.BigEndian, uint16(2+6+len(tiff)))
	app1.WriteString("Exif\x00\x00")
	app1.Write(tiff)

	out := make([]byte, 0, len(minimalJPEG)+app1.Len())
	out = append(out, minimalJPEG[:2]...)
	out = append(out, app1.Bytes()...)
	out = append(out, minimalJPEG[2:]...)
	return out
}

// MinimalPNG returns a 1x1 PNG without an eXIf chunk.
func MinimalPNG() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNGWithEXIF returns MinimalPNG with an eXIf chunk after IHDR holding the
// given date tags, laid out as in JPEGWithEXIF.
func PNGWithEXIF(dates map[uint16]string) []byte {
	base := MinimalPNG()
	// 8-byte signature, then IHDR: length(4) type(4) data(13) crc(4).
	const ihdrEnd = 8 + 4 + 4 + 13 + 4

	out := append([]byte(nil), base[:ihdrEnd]...)
	out = append(out, pngChunk("eXIf", buildTIFF(dates))...)
	return append(out, base[ihdrEnd:]...)
}

func pngChunk(typ string, data []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(typ)
	buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

// WebPWithEXIF returns an extended-format RIFF/WEBP container (VP8X + EXIF
// chunks) holding the given date tags. It carries no image bitstream.
func WebPWithEXIF(dates map[uint16]string) []byte {
	var body bytes.Buffer
	body.WriteString("WEBP")

	vp8x := make([]byte, 10)
	vp8x[0] = 0x08 // EXIF flag
	body.Write(riffChunk("VP8X", vp8x))
	body.Write(riffChunk("EXIF", buildTIFF(dates)))

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(body.Len()))
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func riffChunk(typ string, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(typ)
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value uint32 // inline value or data offset
	data  []byte // out-of-line payload, nil when inline
}

func buildTIFF(dates map[uint16]string) []byte {
	ifd0 := []ifdEntry{{tag: tagOrientation, typ: typeShort, count: 1, value: 1}}
	var exifIFD []ifdEntry

	for tag, value := range dates {
		payload := append([]byte(value), 0)
		entry := ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(payload)), data: payload}
		if tag == TagDateTime {
			ifd0 = append(ifd0, entry)
		} else {
			exifIFD = append(exifIFD, entry)
		}
	}
	if len(exifIFD) > 0 {
		ifd0 = append(ifd0, ifdEntry{tag: tagExifIFDPointer, typ: typeLong, count: 1})
	}
	sortEntries(ifd0)
	sortEntries(exifIFD)

	const headerSize = 8
	ifd0Size := 2 + 12*len(ifd0) + 4
	exifOffset := headerSize + ifd0Size
	exifSize := 0
	if len(exifIFD) > 0 {
		exifSize = 2 + 12*len(exifIFD) + 4
	}
	dataOffset := uint32(exifOffset + exifSize)

	var data bytes.Buffer
	place := func(entries []ifdEntry) {
		for i := range entries {
			switch {
			case entries[i].tag == tagExifIFDPointer:
				entries[i].value = uint32(exifOffset)
			case entries[i].data != nil:
				entries[i].value = dataOffset + uint32(data.Len())
				data.Write(entries[i].data)
			}
		}
	}
	place(ifd0)
	place(exifIFD)

	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("II")
	binary.Write(&buf, le, uint16(42))
	binary.Write(&buf, le, uint32(headerSize))
	writeIFD(&buf, ifd0)
	if len(exifIFD) > 0 {
		writeIFD(&buf, exifIFD)
	}
	buf.Write(data.Bytes())
	return buf.Bytes()
}

func sortEntries(entries []ifdEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })
}

func writeIFD(buf *bytes.Buffer, entries []ifdEntry) {
	le := binary.LittleEndian
	binary.Write(buf, le, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(buf, le, e.tag)
		binary.Write(buf, le, e.typ)
		binary.Write(buf, le, e.count)
		if e.typ == typeShort && e.data == nil {
			binary.Write(buf, le, uint16(e.value))
			binary.Write(buf, le, uint16(0))
			continue
		}
		binary.Write(buf, le, e.value)
	}
	binary.Write(buf, le, uint32(0))
}

// MP4 returns an ISO-BMFF file (ftyp + moov/mvhd) whose movie header carries
// creationTime, in seconds since 1904-01-01 UTC. Zero means "unset".
func MP4(creationTime uint32) []byte {
	var buf bytes.Buffer
	be := binary.BigEndian

	// ftyp
	binary.Write(&buf, be, uint32(20))
	buf.WriteString("ftyp")
	buf.WriteString("isom")
	binary.Write(&buf, be, uint32(0x200))
	buf.WriteString("isom")

	// moov
	const mvhdSize = 108
	binary.Write(&buf, be, uint32(8+mvhdSize))
	buf.WriteString("moov")

	// mvhd, version 0
	binary.Write(&buf, be, uint32(mvhdSize))
	buf.WriteString("mvhd")
	binary.Write(&buf, be, uint32(0))          // version + flags
	binary.Write(&buf, be, creationTime)       // creation_time
	binary.Write(&buf, be, creationTime)       // modification_time
	binary.Write(&buf, be, uint32(1000))       // timescale
	binary.Write(&buf, be, uint32(0))          // duration
	binary.Write(&buf, be, uint32(0x00010000)) // rate 1.0
	binary.Write(&buf, be, uint16(0x0100))     // volume 1.0
	buf.Write(make([]byte, 2+8))               // reserved
	matrix := []uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000}
	for _, v := range matrix {
		binary.Write(&buf, be, v)
	}
	buf.Write(make([]byte, 24))       // pre_defined
	binary.Write(&buf, be, uint32(2)) // next_track_ID

	return buf.Bytes()
}

// WriteFile writes data to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
