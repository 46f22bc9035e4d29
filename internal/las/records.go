package las

import (
	"encoding/binary"
	"fmt"

	"github.com/banshee-data/lasview/internal/monitoring"
)

// PointSet holds the decoded buffers: parallel position and colour triples.
// Positions are real-world coordinates (raw*scale+offset) and colours are
// normalised to [0,1]. Both slices always have the same length.
type PointSet struct {
	Positions []float32 // x,y,z per point
	Colors    []float32 // r,g,b per point, each in [0,1]

	// Stride is the record skip interval the decode pass used. 1 means
	// every record was visited.
	Stride int
}

// Count returns the number of decoded points.
func (ps *PointSet) Count() int { return len(ps.Positions) / 3 }

// DecodeStride returns the record stride that keeps the decoded set within
// maxPoints while still spanning the whole file: ceil(total/maxPoints).
// maxPoints <= 0 means no ceiling.
func DecodeStride(total uint64, maxPoints int) int {
	if maxPoints <= 0 || total <= uint64(maxPoints) {
		return 1
	}
	return int((total + uint64(maxPoints) - 1) / uint64(maxPoints))
}

// DecodeRecords decodes the point record array described by hdr from buf.
//
// maxPoints bounds the decode pass independently of the file's point count:
// rather than decoding only the first maxPoints records, the pass visits
// every stride-th record across the full extent of the file so the result is
// a spatially representative subsample.
//
// A record whose coordinate bytes would run past the end of buf stops the
// loop; whatever was decoded so far is returned. Files with trailing
// padding or truncation therefore degrade to partial results rather than
// failing the load. Only a completely empty result is an error.
func DecodeRecords(buf []byte, hdr *FileHeader, maxPoints int) (*PointSet, error) {
	total := hdr.EffectivePointCount()
	if total == 0 || hdr.RecordLength == 0 {
		return nil, fmt.Errorf("%w: header declares %d points, record length %d",
			ErrNoPointsDecoded, total, hdr.RecordLength)
	}

	recLen := uint64(hdr.RecordLength)
	dataOffset := uint64(hdr.DataOffset)

	stride := DecodeStride(total, maxPoints)
	expected := int(total / uint64(stride))
	if expected == 0 {
		expected = 1
	}
	// A header may declare far more records than the buffer holds; size
	// the allocation from the buffer, not the header.
	if dataOffset >= uint64(len(buf)) {
		expected = 0
	} else if present := (uint64(len(buf)) - dataOffset) / recLen; present < uint64(expected) {
		expected = int(present)
	}

	colorOffset, hasColor := ColorOffset(hdr.RecordFormat)
	// The colour sub-field must fit inside the record itself; otherwise
	// the format/length combination is inconsistent and colour is ignored
	// for the whole file.
	if hasColor && colorOffset+colorChannelBytes > int(recLen) {
		monitoring.Logf("las: record format %d declares colour at offset %d but record length is only %d; using height gradient",
			hdr.RecordFormat, colorOffset, hdr.RecordLength)
		hasColor = false
	}

	ps := &PointSet{
		Positions: make([]float32, 0, expected*3),
		Colors:    make([]float32, 0, expected*3),
		Stride:    stride,
	}

	bufLen := uint64(len(buf))
	for i := uint64(0); i < total; i += uint64(stride) {
		rec := dataOffset + i*recLen
		// Raw coordinates are three int32 at the start of every format.
		if rec+12 > bufLen {
			break
		}

		rawX := int32(binary.LittleEndian.Uint32(buf[rec:]))
		rawY := int32(binary.LittleEndian.Uint32(buf[rec+4:]))
		rawZ := int32(binary.LittleEndian.Uint32(buf[rec+8:]))

		x := float64(rawX)*hdr.Scale[0] + hdr.Offset[0]
		y := float64(rawY)*hdr.Scale[1] + hdr.Offset[1]
		z := float64(rawZ)*hdr.Scale[2] + hdr.Offset[2]
		ps.Positions = append(ps.Positions, float32(x), float32(y), float32(z))

		var r, g, b float32
		if co := rec + uint64(colorOffset); hasColor && co+colorChannelBytes <= bufLen {
			r = normColor(binary.LittleEndian.Uint16(buf[co:]))
			g = normColor(binary.LittleEndian.Uint16(buf[co+2:]))
			b = normColor(binary.LittleEndian.Uint16(buf[co+4:]))
		} else {
			r, g, b = heightColor(z, hdr.Bounds.MinZ, hdr.Bounds.MaxZ)
		}
		ps.Colors = append(ps.Colors, r, g, b)
	}

	if ps.Count() == 0 {
		return nil, fmt.Errorf("%w: data offset %d past buffer of %d bytes",
			ErrNoPointsDecoded, hdr.DataOffset, len(buf))
	}
	if ps.Count() < expected {
		monitoring.Logf("las: records truncated: decoded %d of %d expected points", ps.Count(), expected)
	}

	return ps, nil
}

// normColor converts a 16-bit colour channel to [0,1].
func normColor(v uint16) float32 {
	return float32(v) / 65535.0
}

// heightColor derives a colour from normalised height when a record has no
// usable RGB: t=(z-minZ)/(maxZ-minZ), colour (t, 1-t, 0.5). The same ramp is
// used for every colourless point so files without colour render
// consistently.
func heightColor(z, minZ, maxZ float64) (r, g, b float32) {
	t := 0.5
	if maxZ > minZ {
		t = (z - minZ) / (maxZ - minZ)
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	return float32(t), float32(1 - t), 0.5
}
