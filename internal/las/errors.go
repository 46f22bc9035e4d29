package las

import "errors"

// Header-level errors abort a load. Record-level truncation is not an error:
// DecodeRecords returns whatever was decoded before the buffer ran out, and
// only reports ErrNoPointsDecoded when nothing at all could be read.
var (
	// ErrInvalidSignature means the first four bytes are not "LASF".
	ErrInvalidSignature = errors.New("las: invalid file signature")

	// ErrUnsupportedVersion means the header version is outside 1.0-1.4.
	ErrUnsupportedVersion = errors.New("las: unsupported version")

	// ErrBufferTooShort means the buffer ends inside the header region.
	ErrBufferTooShort = errors.New("las: buffer too short for header")

	// ErrNoPointsDecoded means the record loop produced zero points.
	ErrNoPointsDecoded = errors.New("las: no points decoded")
)
