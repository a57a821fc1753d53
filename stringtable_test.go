package jfr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeStringEntryNull(t *testing.T) {
	r := newByteReader(NewMemoryByteSource([]byte{0x00}))
	entry, err := decodeStringEntry(r, false)
	require.NoError(t, err)
	require.Equal(t, stringEntryNull, entry.kind)
}

func TestDecodeStringEntryEmpty(t *testing.T) {
	r := newByteReader(NewMemoryByteSource([]byte{0x01}))
	entry, err := decodeStringEntry(r, false)
	require.NoError(t, err)
	require.Equal(t, stringEntryText, entry.kind)
	require.Equal(t, "", entry.text)
}

func TestDecodeStringEntryConstantPoolRejectedInMetadata(t *testing.T) {
	buf := append([]byte{0x02}, encodeCompressedForFuzz(55301)...)
	r := newByteReader(NewMemoryByteSource(buf))
	r.setMode(encodingCompressed)
	_, err := decodeStringEntry(r, false)
	require.Error(t, err)
	var fmtErr *InvalidFormatError
	require.ErrorAs(t, err, &fmtErr)
}

func TestDecodeStringEntryConstantPoolAllowedInValues(t *testing.T) {
	buf := append([]byte{0x02}, encodeCompressedForFuzz(55301)...)
	r := newByteReader(NewMemoryByteSource(buf))
	r.setMode(encodingCompressed)
	entry, err := decodeStringEntry(r, true)
	require.NoError(t, err)
	require.Equal(t, stringEntryPoolRef, entry.kind)
	require.Equal(t, int64(55301), entry.poolIndex)
}

func TestDecodeStringEntryUTF8(t *testing.T) {
	text := "hello,world"
	buf := append([]byte{0x03}, encodeCompressedForFuzz(int64(len(text)))...)
	buf = append(buf, []byte(text)...)
	r := newByteReader(NewMemoryByteSource(buf))
	r.setMode(encodingCompressed)
	entry, err := decodeStringEntry(r, false)
	require.NoError(t, err)
	require.Equal(t, stringEntryText, entry.kind)
	require.Equal(t, text, entry.text)
}

func TestDecodeStringEntryUTF8Invalid(t *testing.T) {
	buf := append([]byte{0x03}, encodeCompressedForFuzz(1)...)
	buf = append(buf, 0xFF)
	r := newByteReader(NewMemoryByteSource(buf))
	r.setMode(encodingCompressed)
	_, err := decodeStringEntry(r, false)
	require.Error(t, err)
	var strErr *InvalidStringError
	require.ErrorAs(t, err, &strErr)
}

func TestDecodeStringEntryCharArray(t *testing.T) {
	units := []uint16{'h', 'i'}
	buf := append([]byte{0x04}, encodeCompressedForFuzz(int64(len(units)))...)
	for _, u := range units {
		buf = append(buf, byte(u>>8), byte(u))
	}
	r := newByteReader(NewMemoryByteSource(buf))
	r.setMode(encodingCompressed)
	entry, err := decodeStringEntry(r, false)
	require.NoError(t, err)
	require.Equal(t, "hi", entry.text)
}

func TestDecodeStringEntryLatin1RoundTrip(t *testing.T) {
	// "café" in Latin-1: c, a, f, 0xE9 (é)
	raw := []byte{'c', 'a', 'f', 0xE9}
	buf := append([]byte{0x05}, encodeCompressedForFuzz(int64(len(raw)))...)
	buf = append(buf, raw...)
	r := newByteReader(NewMemoryByteSource(buf))
	r.setMode(encodingCompressed)
	entry, err := decodeStringEntry(r, false)
	require.NoError(t, err)
	require.Equal(t, "café", entry.text)
}

func TestDecodeStringEntryUnknownTag(t *testing.T) {
	r := newByteReader(NewMemoryByteSource([]byte{0x09}))
	_, err := decodeStringEntry(r, false)
	require.Error(t, err)
}

func TestStringTableGetOutOfRangeAndNull(t *testing.T) {
	buf := append([]byte{}, encodeCompressedForFuzz(2)...) // count = 2
	buf = append(buf, 0x00)                                // entry 0: null
	buf = append(buf, 0x01)                                // entry 1: empty

	r := newByteReader(NewMemoryByteSource(buf))
	r.setMode(encodingCompressed)
	table, err := decodeStringTable(r)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	_, err = table.Get(0)
	require.Error(t, err)
	var idxErr *InvalidStringIndexError
	require.ErrorAs(t, err, &idxErr)

	s, err := table.Get(1)
	require.NoError(t, err)
	require.Equal(t, "", s)

	_, err = table.Get(2)
	require.Error(t, err)

	_, err = table.Get(-1)
	require.Error(t, err)
}

func FuzzStringEntryUTF8RoundTrip(f *testing.F) {
	f.Add("hello,world")
	f.Add("")
	f.Add("café")

	f.Fuzz(func(t *testing.T, text string) {
		buf := append([]byte{0x03}, encodeCompressedForFuzz(int64(len(text)))...)
		buf = append(buf, []byte(text)...)
		r := newByteReader(NewMemoryByteSource(buf))
		r.setMode(encodingCompressed)
		entry, err := decodeStringEntry(r, false)
		if err != nil {
			return // fuzz may generate invalid UTF-8 byte lengths for multi-byte runes; not a bug
		}
		if entry.text != text {
			t.Fatalf("round-trip mismatch: %q != %q", entry.text, text)
		}
	})
}
