package las

// colorChannelBytes is the size of one RGB sub-field: three uint16 channels.
const colorChannelBytes = 6

// ColorOffset returns the byte offset of the RGB sub-field within a point
// record of the given format code, and whether the format carries colour at
// all. This table is the single source of truth for colour placement; every
// call site that touches record colour goes through it.
//
// Offsets follow the published ASPRS point data record layouts:
//
//	format 2:  core 0-19, RGB at 20
//	format 3:  core 0-19, GPS time 20-27, RGB at 28
//	format 5:  as format 3, wave packets follow the RGB block
//	format 6:  30-byte core with no RGB; listed here because the extended
//	           formats 7/8/10 share its core, so a mislabelled format-6
//	           record with a long enough length still reads sensibly
//	format 7:  extended core 0-29, RGB at 30
//	format 8:  as format 7, NIR follows the RGB block
//	format 10: as format 7, wave packets follow
//
// The record decoder additionally checks the offset against the record
// length and the buffer, so a format-6 record at its canonical 30-byte
// length falls through to the height-gradient colour.
func ColorOffset(format uint8) (int, bool) {
	switch format {
	case 2:
		return 20, true
	case 3, 5:
		return 28, true
	case 6, 7, 8, 10:
		return 30, true
	default:
		return 0, false
	}
}
