package jfr

const chunkMagic = "FLR\x00"

// ChunkHeader is the fixed 68-byte chunk header (spec.md §4.6). Every
// field here is read raw big-endian regardless of the chunk's
// compressed-integer feature flag; only the body that follows is subject
// to that mode.
type ChunkHeader struct {
	VersionMajor int16
	VersionMinor int16
	Size         int64
	ConstantPoolOffset int64
	MetadataOffset     int64
	StartTimeNanos     int64
	DurationNanos      int64
	StartTicks         int64
	TicksPerSecond     int64
	Features           int32
}

// Compressed reports whether the chunk's body uses the compressed
// variable-length integer encoding (spec.md §4.1/§4.6, feature bit 0).
func (h ChunkHeader) Compressed() bool { return h.Features&0x1 != 0 }

// decodeChunkHeader reads and validates the fixed header at the current
// cursor position. Only version (1,0) and (2,0) are recognized
// (spec.md §4.6); anything else fails with UnsupportedVersionError.
func decodeChunkHeader(r *byteReader) (ChunkHeader, error) {
	magic, err := r.ReadExact(4)
	if err != nil {
		return ChunkHeader{}, err
	}
	if string(magic) != chunkMagic {
		return ChunkHeader{}, newInvalidFormat("bad chunk magic: %x", magic)
	}

	major, err := r.ReadRawI16()
	if err != nil {
		return ChunkHeader{}, err
	}
	minor, err := r.ReadRawI16()
	if err != nil {
		return ChunkHeader{}, err
	}
	if !(major == 1 && minor == 0) && !(major == 2 && minor == 0) {
		return ChunkHeader{}, &UnsupportedVersionError{Major: major, Minor: minor}
	}

	size, err := r.ReadRawI64()
	if err != nil {
		return ChunkHeader{}, err
	}
	cpOffset, err := r.ReadRawI64()
	if err != nil {
		return ChunkHeader{}, err
	}
	metaOffset, err := r.ReadRawI64()
	if err != nil {
		return ChunkHeader{}, err
	}
	startTime, err := r.ReadRawI64()
	if err != nil {
		return ChunkHeader{}, err
	}
	duration, err := r.ReadRawI64()
	if err != nil {
		return ChunkHeader{}, err
	}
	startTicks, err := r.ReadRawI64()
	if err != nil {
		return ChunkHeader{}, err
	}
	ticksPerSecond, err := r.ReadRawI64()
	if err != nil {
		return ChunkHeader{}, err
	}
	features, err := r.ReadRawI32()
	if err != nil {
		return ChunkHeader{}, err
	}

	return ChunkHeader{
		VersionMajor:       major,
		VersionMinor:       minor,
		Size:               size,
		ConstantPoolOffset: cpOffset,
		MetadataOffset:     metaOffset,
		StartTimeNanos:     startTime,
		DurationNanos:      duration,
		StartTicks:         startTicks,
		TicksPerSecond:     ticksPerSecond,
		Features:           features,
	}, nil
}
