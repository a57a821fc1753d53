package jfr

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// stringTag is the leading byte of a string-table entry (spec.md §4.2).
type stringTag byte

const (
	stringTagNull         stringTag = 0
	stringTagEmpty        stringTag = 1
	stringTagConstantPool stringTag = 2
	stringTagUTF8         stringTag = 3
	stringTagCharArray    stringTag = 4
	stringTagLatin1       stringTag = 5
)

// stringEntryKind distinguishes the three shapes a decoded string entry
// can take: absent, a resolved value, or (value-decoding context only) an
// unresolved constant-pool reference.
type stringEntryKind int

const (
	stringEntryNull stringEntryKind = iota
	stringEntryText
	stringEntryPoolRef
)

type decodedStringEntry struct {
	kind      stringEntryKind
	text      string
	poolIndex int64
}

var latin1Decoder = charmap.ISO8859_1.NewDecoder()
var utf16BEDecoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// decodeStringEntry reads one tagged string entry. allowPoolRef controls
// whether tag 2 (constant-pool reference) is legal here: spec.md §4.2
// rejects it inside metadata string tables and allows it only while value
// decoding a java.lang.String field.
func decodeStringEntry(r *byteReader, allowPoolRef bool) (decodedStringEntry, error) {
	tagByte, err := r.ReadU8()
	if err != nil {
		return decodedStringEntry{}, err
	}

	switch stringTag(tagByte) {
	case stringTagNull:
		return decodedStringEntry{kind: stringEntryNull}, nil

	case stringTagEmpty:
		return decodedStringEntry{kind: stringEntryText, text: ""}, nil

	case stringTagConstantPool:
		if !allowPoolRef {
			return decodedStringEntry{}, newInvalidFormat("constant-pool string reference not allowed in metadata string table")
		}
		idx, err := r.ReadI64()
		if err != nil {
			return decodedStringEntry{}, err
		}
		return decodedStringEntry{kind: stringEntryPoolRef, poolIndex: idx}, nil

	case stringTagUTF8:
		n, err := r.ReadI32()
		if err != nil {
			return decodedStringEntry{}, err
		}
		raw, err := r.ReadExact(int(n))
		if err != nil {
			return decodedStringEntry{}, err
		}
		if !isValidUTF8(raw) {
			return decodedStringEntry{}, newInvalidString("invalid UTF-8 byte array")
		}
		return decodedStringEntry{kind: stringEntryText, text: string(raw)}, nil

	case stringTagCharArray:
		n, err := r.ReadI32()
		if err != nil {
			return decodedStringEntry{}, err
		}
		units := make([]uint16, n)
		for i := range units {
			u, err := r.ReadRawU16()
			if err != nil {
				return decodedStringEntry{}, err
			}
			units[i] = u
		}
		text, err := decodeUTF16Units(units)
		if err != nil {
			return decodedStringEntry{}, err
		}
		return decodedStringEntry{kind: stringEntryText, text: text}, nil

	case stringTagLatin1:
		n, err := r.ReadI32()
		if err != nil {
			return decodedStringEntry{}, err
		}
		raw, err := r.ReadExact(int(n))
		if err != nil {
			return decodedStringEntry{}, err
		}
		text, err := latin1Decoder.String(string(raw))
		if err != nil {
			return decodedStringEntry{}, newInvalidString("invalid Latin-1 byte array: %v", err)
		}
		return decodedStringEntry{kind: stringEntryText, text: text}, nil

	default:
		return decodedStringEntry{}, newInvalidFormat("unknown string tag: %d", tagByte)
	}
}

// decodeUTF16Units decodes a big-endian UTF-16 code-unit sequence (the JFR
// "char array" encoding) to a Go string; the x/text UTF-16 decoder rejects
// lone/invalid surrogate pairs.
func decodeUTF16Units(units []uint16) (string, error) {
	raw := make([]byte, 0, len(units)*2)
	for _, u := range units {
		raw = append(raw, byte(u>>8), byte(u))
	}
	text, err := utf16BEDecoder.NewDecoder().String(string(raw))
	if err != nil {
		return "", newInvalidString("invalid UTF-16 char array: %v", err)
	}
	return text, nil
}

func isValidUTF8(b []byte) bool {
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c < 0x80:
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return false
			}
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return false
			}
			i += 3
		case c&0xF8 == 0xF0:
			if i+3 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 || b[i+3]&0xC0 != 0x80 {
				return false
			}
			i += 4
		default:
			return false
		}
	}
	return true
}

// StringTable is the ordered sequence of optional interned strings
// decoded from a metadata event (spec.md §4.2/§3).
type StringTable struct {
	entries []stringTableEntry
}

type stringTableEntry struct {
	isNull bool
	text   string
}

// decodeStringTable reads a compressed i32 count followed by that many
// tagged string entries (tag 2 - constant-pool reference - is rejected
// here; it only appears during value decoding of java.lang.String).
func decodeStringTable(r *byteReader) (*StringTable, error) {
	count, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, newInvalidFormat("negative string table count: %d", count)
	}

	table := &StringTable{entries: make([]stringTableEntry, count)}
	for i := range table.entries {
		entry, err := decodeStringEntry(r, false)
		if err != nil {
			return nil, err
		}
		if entry.kind == stringEntryNull {
			table.entries[i] = stringTableEntry{isNull: true}
		} else {
			table.entries[i] = stringTableEntry{text: internString(entry.text)}
		}
	}
	return table, nil
}

// Get resolves a string table index. Out-of-range or null indices fail
// with InvalidStringIndexError.
func (t *StringTable) Get(index int32) (string, error) {
	if index < 0 || int(index) >= len(t.entries) {
		return "", &InvalidStringIndexError{Index: index}
	}
	entry := t.entries[index]
	if entry.isNull {
		return "", &InvalidStringIndexError{Index: index}
	}
	return entry.text, nil
}

// Len returns the number of entries in the table, including null ones.
func (t *StringTable) Len() int { return len(t.entries) }
