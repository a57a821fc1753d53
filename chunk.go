package jfr

import "io"

const chunkHeaderSize = 68

// ReaderOptions configures a JfrReader (SPEC_FULL.md §12).
type ReaderOptions struct {
	// MetadataOnly skips constant-pool construction for every chunk,
	// leaving Chunk.ConstantPool empty. Useful for callers that want a
	// chunk's schema without paying to decode every pooled value
	// (spec.md §4.6).
	MetadataOnly bool
}

// Chunk owns one decoded JFR chunk: its header, type pool, string table,
// constant pool and in-memory body. All values, accessors and
// deserialization results produced from a Chunk are valid only while the
// Chunk itself is referenced (spec.md §3's lifetime rule).
type Chunk struct {
	Header       ChunkHeader
	Types        *TypePool
	Strings      *StringTable
	ConstantPool *ConstantPool

	body      []byte
	bodyStart int64 // absolute offset of this chunk's magic in the source
}

// bodyReader returns a byteReader over this chunk's in-memory body, with
// the integer mode the header declares, positioned at the given
// chunk-relative offset.
func (c *Chunk) bodyReader(offset int64) *byteReader {
	r := newByteReader(NewMemoryByteSource(c.body))
	if c.Header.Compressed() {
		r.setMode(encodingCompressed)
	}
	r.pos = offset
	return r
}

// Events returns a lazy iterator over this chunk's event region
// (spec.md §4.7), starting just past the fixed header.
func (c *Chunk) Events() *EventIterator {
	return newEventIterator(c)
}

// JfrReader iterates the chunks of a JFR recording (spec.md §4.6).
type JfrReader struct {
	src  ByteSource
	opts ReaderOptions
	pos  int64
}

// Open creates a JfrReader over src, starting at the beginning of the
// stream.
func Open(src ByteSource, opts ReaderOptions) *JfrReader {
	return &JfrReader{src: src, opts: opts}
}

// Next decodes and returns the next chunk, or (nil, nil) at normal
// end-of-stream (spec.md §4.6 step 1: EOF exactly at a chunk boundary is
// not an error).
func (jr *JfrReader) Next() (*Chunk, error) {
	chunkStart := jr.pos
	if chunkStart >= jr.src.Size() {
		return nil, nil
	}

	header := newByteReader(jr.src)
	header.pos = chunkStart

	hdr, err := decodeChunkHeader(header)
	if err != nil {
		if isCleanEOF(err) {
			return nil, newInvalidFormat("truncated chunk header at offset %d", chunkStart)
		}
		return nil, err
	}
	if hdr.Size <= 0 {
		return nil, newInvalidFormat("non-positive chunk size: %d", hdr.Size)
	}

	body := make([]byte, hdr.Size)
	if _, err := io.ReadFull(io.NewSectionReader(readerAtAdapter{jr.src}, chunkStart, hdr.Size), body); err != nil {
		return nil, newIoError(err)
	}

	bodyR := newByteReader(NewMemoryByteSource(body))
	if hdr.Compressed() {
		bodyR.setMode(encodingCompressed)
	}

	bodyR.pos = hdr.MetadataOffset
	types, strtab, err := decodeMetadata(bodyR)
	if err != nil {
		return nil, err
	}

	cp := newConstantPool()
	if !jr.opts.MetadataOnly {
		offset := hdr.ConstantPoolOffset
		for {
			cpR := newByteReader(NewMemoryByteSource(body))
			if hdr.Compressed() {
				cpR.setMode(encodingCompressed)
			}
			cpR.pos = offset
			delta, err := decodeConstantPoolEvent(cpR, types, cp)
			if err != nil {
				return nil, err
			}
			if delta == 0 {
				break
			}
			offset += delta
		}
	}

	jr.pos = chunkStart + hdr.Size

	return &Chunk{
		Header:       hdr,
		Types:        types,
		Strings:      strtab,
		ConstantPool: cp,
		body:         body,
		bodyStart:    chunkStart,
	}, nil
}

// isCleanEOF reports whether err is an IoError wrapping io.EOF or
// io.ErrUnexpectedEOF, i.e. the source ran out of bytes before the read
// completed.
func isCleanEOF(err error) bool {
	var ioErr *IoError
	if e, ok := err.(*IoError); ok {
		ioErr = e
	}
	if ioErr == nil {
		return false
	}
	return ioErr.Err == io.EOF || ioErr.Err == io.ErrUnexpectedEOF
}

// readerAtAdapter lets an io.SectionReader front a ByteSource.
type readerAtAdapter struct{ src ByteSource }

func (a readerAtAdapter) ReadAt(p []byte, off int64) (int, error) {
	return a.src.ReadAt(p, off)
}
