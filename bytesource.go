package jfr

import (
	"fmt"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// ByteSource is the abstract seekable byte stream the chunk decoder reads
// from. The core never assumes anything about how bytes get delivered; it
// only needs random access within the file, since constant-pool events are
// chained by intra-chunk offset rather than appearing in read order.
//
// Implementations do not need to be safe for concurrent use; the decoder
// never calls a ByteSource from more than one goroutine at a time.
type ByteSource interface {
	io.ReaderAt

	// Size returns the total number of bytes available.
	Size() int64
}

// memoryByteSource is the simplest ByteSource: an in-memory buffer. Used by
// tests and by the chunk assembler itself once a chunk body has been copied
// into memory (spec.md §4.6 step 4).
type memoryByteSource struct {
	data []byte
}

// NewMemoryByteSource wraps a byte slice as a ByteSource. The slice is not
// copied; callers must not mutate it while a reader is in use.
func NewMemoryByteSource(data []byte) ByteSource {
	return &memoryByteSource{data: data}
}

func (m *memoryByteSource) Size() int64 { return int64(len(m.data)) }

func (m *memoryByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("jfr: negative offset %d", off)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// FileByteSource memory-maps a file read-only and exposes it as a
// ByteSource, avoiding a read syscall per access. Grounded on
// saferwall-pe's file.go, which maps the whole PE image the same way
// before parsing it.
type FileByteSource struct {
	f    *os.File
	data mmap.MMap
}

// OpenFile memory-maps filename read-only for use as a chunk-decoder
// ByteSource. The caller must call Close when done.
func OpenFile(filename string) (*FileByteSource, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, newIoError(fmt.Errorf("open %s: %w", filename, err))
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, newIoError(fmt.Errorf("mmap %s: %w", filename, err))
	}

	return &FileByteSource{f: f, data: data}, nil
}

func (s *FileByteSource) Size() int64 { return int64(len(s.data)) }

func (s *FileByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(s.data)) {
		return 0, fmt.Errorf("jfr: offset %d out of range (size %d)", off, len(s.data))
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file and closes the underlying descriptor.
func (s *FileByteSource) Close() error {
	var err error
	if s.data != nil {
		err = s.data.Unmap()
	}
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}
