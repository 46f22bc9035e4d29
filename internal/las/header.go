package las

import (
	"encoding/binary"
	"fmt"
	"math"
)

// LAS public header layout constants. All multi-byte fields are little-endian;
// scale, offset and bounds are IEEE-754 doubles. Offsets are fixed by the
// ASPRS specification and are not tunable.
const (
	FileSignature = "LASF"

	offSignature    = 0   // 4 bytes, ASCII "LASF"
	offVersionMajor = 24  // 1 byte
	offVersionMinor = 25  // 1 byte
	offDataOffset   = 96  // uint32, start of the point record array
	offRecordFormat = 104 // 1 byte, point data record format code
	offRecordLength = 105 // uint16, bytes per point record
	offPointCount   = 107 // uint32, legacy point count
	offScaleX       = 131 // float64 × 3
	offScaleY       = 139
	offScaleZ       = 147
	offOffsetX      = 155 // float64 × 3
	offOffsetY      = 163
	offOffsetZ      = 171
	offMaxX         = 179 // bounds interleaved max/min per axis
	offMinX         = 187
	offMaxY         = 195
	offMinY         = 203
	offMaxZ         = 211
	offMinZ         = 219

	// LAS 1.4 stores the 64-bit point count past the legacy header region.
	// It is read as two 32-bit halves so the combine rule stays explicit.
	offExtendedCountLow  = 247
	offExtendedCountHigh = 251

	// headerCoreSize covers every field up to and including MinZ.
	headerCoreSize = offMinZ + 8 // 227
	// headerExtendedSize additionally covers the 1.4 extended count.
	headerExtendedSize = offExtendedCountHigh + 4 // 255
)

// Bounds is the axis-aligned extent declared by the file header.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// FileHeader holds the subset of the LAS public header the viewer needs.
// It is produced once per load and never mutated afterwards.
type FileHeader struct {
	VersionMajor uint8
	VersionMinor uint8

	RecordFormat uint8  // point data record format code (0-10)
	RecordLength uint16 // bytes per point record
	DataOffset   uint32 // byte offset of the first point record

	PointCountHeader   uint32 // legacy 32-bit count as stored
	PointCountExtended uint64 // 1.4 extended count; 0 means "not set"

	Scale  [3]float64 // per-axis: real = raw*scale + offset
	Offset [3]float64
	Bounds Bounds
}

// EffectivePointCount returns the count downstream sizing must use: the
// extended 64-bit count when the version carries one and it is nonzero,
// otherwise the legacy 32-bit count.
func (h *FileHeader) EffectivePointCount() uint64 {
	if h.VersionMinor >= 4 && h.PointCountExtended > 0 {
		return h.PointCountExtended
	}
	return uint64(h.PointCountHeader)
}

// headerSize returns the number of header bytes the parser reads for the
// given minor version.
func headerSize(versionMinor uint8) int {
	if versionMinor >= 4 {
		return headerExtendedSize
	}
	return headerCoreSize
}

// ParseHeader reads the LAS public header from the start of buf. It is a
// pure read: buf is not retained and not modified.
func ParseHeader(buf []byte) (*FileHeader, error) {
	if len(buf) < offVersionMinor+1 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBufferTooShort, len(buf))
	}
	if string(buf[offSignature:offSignature+4]) != FileSignature {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidSignature, buf[offSignature:offSignature+4])
	}

	major := buf[offVersionMajor]
	minor := buf[offVersionMinor]
	if major != 1 || minor > 4 {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, major, minor)
	}
	if len(buf) < headerSize(minor) {
		return nil, fmt.Errorf("%w: need %d bytes for version 1.%d header, have %d",
			ErrBufferTooShort, headerSize(minor), minor, len(buf))
	}

	h := &FileHeader{
		VersionMajor:     major,
		VersionMinor:     minor,
		RecordFormat:     buf[offRecordFormat],
		RecordLength:     binary.LittleEndian.Uint16(buf[offRecordLength:]),
		DataOffset:       binary.LittleEndian.Uint32(buf[offDataOffset:]),
		PointCountHeader: binary.LittleEndian.Uint32(buf[offPointCount:]),
		Scale: [3]float64{
			readFloat64(buf, offScaleX),
			readFloat64(buf, offScaleY),
			readFloat64(buf, offScaleZ),
		},
		Offset: [3]float64{
			readFloat64(buf, offOffsetX),
			readFloat64(buf, offOffsetY),
			readFloat64(buf, offOffsetZ),
		},
		Bounds: Bounds{
			MaxX: readFloat64(buf, offMaxX),
			MinX: readFloat64(buf, offMinX),
			MaxY: readFloat64(buf, offMaxY),
			MinY: readFloat64(buf, offMinY),
			MaxZ: readFloat64(buf, offMaxZ),
			MinZ: readFloat64(buf, offMinZ),
		},
	}

	if minor >= 4 {
		low := binary.LittleEndian.Uint32(buf[offExtendedCountLow:])
		high := binary.LittleEndian.Uint32(buf[offExtendedCountHigh:])
		h.PointCountExtended = uint64(low) + uint64(high)<<32
	}

	return h, nil
}

// EncodeHeader writes h back into a fresh header-sized buffer at the same
// offsets ParseHeader reads from. Bytes the parser does not interpret are
// left zero. Used by tests to prove the field round-trip and by tools that
// synthesise fixture files.
func EncodeHeader(h *FileHeader) []byte {
	buf := make([]byte, headerSize(h.VersionMinor))
	copy(buf[offSignature:], FileSignature)
	buf[offVersionMajor] = h.VersionMajor
	buf[offVersionMinor] = h.VersionMinor
	binary.LittleEndian.PutUint32(buf[offDataOffset:], h.DataOffset)
	buf[offRecordFormat] = h.RecordFormat
	binary.LittleEndian.PutUint16(buf[offRecordLength:], h.RecordLength)
	binary.LittleEndian.PutUint32(buf[offPointCount:], h.PointCountHeader)
	writeFloat64(buf, offScaleX, h.Scale[0])
	writeFloat64(buf, offScaleY, h.Scale[1])
	writeFloat64(buf, offScaleZ, h.Scale[2])
	writeFloat64(buf, offOffsetX, h.Offset[0])
	writeFloat64(buf, offOffsetY, h.Offset[1])
	writeFloat64(buf, offOffsetZ, h.Offset[2])
	writeFloat64(buf, offMaxX, h.Bounds.MaxX)
	writeFloat64(buf, offMinX, h.Bounds.MinX)
	writeFloat64(buf, offMaxY, h.Bounds.MaxY)
	writeFloat64(buf, offMinY, h.Bounds.MinY)
	writeFloat64(buf, offMaxZ, h.Bounds.MaxZ)
	writeFloat64(buf, offMinZ, h.Bounds.MinZ)
	if h.VersionMinor >= 4 {
		binary.LittleEndian.PutUint32(buf[offExtendedCountLow:], uint32(h.PointCountExtended))
		binary.LittleEndian.PutUint32(buf[offExtendedCountHigh:], uint32(h.PointCountExtended>>32))
	}
	return buf
}

func readFloat64(buf []byte, off int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
}

func writeFloat64(buf []byte, off int, v float64) {
	binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
}
