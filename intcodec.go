package jfr

import (
	"io"
	"math"
)

// encoding selects how the byteReader decodes i16/i32/i64 values. Chunk
// sizes, offsets and the header itself are always raw big-endian
// regardless of this mode (spec.md §6).
type encoding int

const (
	encodingRaw encoding = iota
	encodingCompressed
)

// byteReader is a cursor over a ByteSource with a per-chunk integer
// encoding mode, generalizing the teacher's BinaryReader
// (internal/heap/parser/reader.go) with random-access seek: JFR constant
// pool events are chained backward by offset, so the reader must be able
// to jump rather than only advance.
type byteReader struct {
	src  ByteSource
	pos  int64
	mode encoding
}

func newByteReader(src ByteSource) *byteReader {
	return &byteReader{src: src, mode: encodingRaw}
}

func (r *byteReader) setMode(m encoding) { r.mode = m }

func (r *byteReader) Pos() int64 { return r.pos }

// Seek repositions the cursor to an absolute offset.
func (r *byteReader) Seek(pos int64) error {
	if pos < 0 || pos > r.src.Size() {
		return newIoError(io.ErrUnexpectedEOF)
	}
	r.pos = pos
	return nil
}

func (r *byteReader) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := r.src.ReadAt(buf, r.pos)
	if read == n {
		// ReadAt may legally return (n, io.EOF) when the read lands
		// exactly at the end of the source; that's not a failure here.
		r.pos += int64(n)
		return buf, nil
	}
	if err != nil {
		return nil, newIoError(err)
	}
	return nil, newIoError(io.ErrUnexpectedEOF)
}

// ReadExact reads exactly n raw bytes regardless of encoding mode.
func (r *byteReader) ReadExact(n int) ([]byte, error) {
	return r.readExact(n)
}

func (r *byteReader) ReadU8() (uint8, error) {
	b, err := r.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) ReadI8() (int8, error) {
	b, err := r.readExact(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

func (r *byteReader) ReadRawU16() (uint16, error) {
	b, err := r.readExact(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (r *byteReader) ReadRawU32() (uint32, error) {
	b, err := r.readExact(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (r *byteReader) ReadRawU64() (uint64, error) {
	b, err := r.readExact(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// ReadRawI16/I32/I64 always read big-endian fixed-width, used for header
// fields which are never subject to the compressed-integer mode.
func (r *byteReader) ReadRawI16() (int16, error) {
	v, err := r.ReadRawU16()
	return int16(v), err
}

func (r *byteReader) ReadRawI32() (int32, error) {
	v, err := r.ReadRawU32()
	return int32(v), err
}

func (r *byteReader) ReadRawI64() (int64, error) {
	v, err := r.ReadRawU64()
	return int64(v), err
}

func (r *byteReader) ReadF32() (float32, error) {
	v, err := r.ReadRawU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *byteReader) ReadF64() (float64, error) {
	v, err := r.ReadRawU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// readCompressedU64 decodes the variable-length integer scheme from
// spec.md §4.1: up to 8 bytes carry 7 data bits each (bit 7 = continuation).
// If all 8 continuation bits are set, a 9th byte contributes a full 8 bits
// at position <<56. Accumulation is additive; reading bytes as unsigned
// (rather than signed, as the Rust original does) means no extra masking
// quirk is needed beyond the per-byte &0x7f.
func (r *byteReader) readCompressedU64() (uint64, error) {
	var result uint64
	for i := 0; i < 8; i++ {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		result += uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			return result, nil
		}
	}
	// 8 continuation bits were all set; the 9th byte is a full 8 bits.
	b, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	result += uint64(b) << 56
	return result, nil
}

// ReadI64 decodes a signed 64-bit value: raw big-endian in Raw mode,
// compressed in Compressed mode. There is no zig-zag step; the
// accumulated bit pattern is simply reinterpreted as signed.
func (r *byteReader) ReadI64() (int64, error) {
	if r.mode == encodingRaw {
		return r.ReadRawI64()
	}
	v, err := r.readCompressedU64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ReadI32 is the low 32 bits of a decoded i64 in Compressed mode (a
// narrowing cast with no overflow check, matching the format), or raw
// big-endian in Raw mode.
func (r *byteReader) ReadI32() (int32, error) {
	if r.mode == encodingRaw {
		return r.ReadRawI32()
	}
	v, err := r.ReadI64()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ReadI16 is the low 16 bits of a decoded i64 in Compressed mode, or raw
// big-endian in Raw mode.
func (r *byteReader) ReadI16() (int16, error) {
	if r.mode == encodingRaw {
		return r.ReadRawI16()
	}
	v, err := r.ReadI64()
	if err != nil {
		return 0, err
	}
	return int16(v), nil
}
