package jfr

import "fmt"

// InvalidStringIndexError is returned when a string-table lookup is out of
// range or lands on a null entry.
type InvalidStringIndexError struct {
	Index int32
}

func (e *InvalidStringIndexError) Error() string {
	return fmt.Sprintf("invalid string index: %d", e.Index)
}

// InvalidCharError is returned when a decoded char primitive lies outside
// the 16-bit code unit range. (An invalid char-array string yields
// InvalidStringError.)
type InvalidCharError struct {
	Detail string
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("invalid char: %s", e.Detail)
}

// UnsupportedVersionError is returned when a chunk's version isn't (1,0) or (2,0).
type UnsupportedVersionError struct {
	Major, Minor int16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported chunk version: %d.%d", e.Major, e.Minor)
}

// ClassNotFoundError is returned when a class id has no TypeDescriptor in
// the chunk's type pool.
type ClassNotFoundError struct {
	ClassID int64
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class not found: %d", e.ClassID)
}

// DeserializeError carries context about a schema/record mismatch found
// while materializing a user record type from a value tree.
type DeserializeError struct {
	Message string
}

func (e *DeserializeError) Error() string {
	return "deserialize: " + e.Message
}

func newDeserializeError(format string, args ...any) *DeserializeError {
	return &DeserializeError{Message: fmt.Sprintf(format, args...)}
}

// InvalidFormatError wraps a structural wire-format violation (bad magic,
// unexpected event type, malformed element tree, ...).
type InvalidFormatError struct {
	Message string
}

func (e *InvalidFormatError) Error() string {
	return "invalid format: " + e.Message
}

func newInvalidFormat(format string, args ...any) *InvalidFormatError {
	return &InvalidFormatError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStringError is returned when string bytes fail to decode under
// their declared encoding (bad UTF-8, bad Latin-1/UTF-16 transcode).
type InvalidStringError struct {
	Message string
}

func (e *InvalidStringError) Error() string {
	return "invalid string: " + e.Message
}

func newInvalidString(format string, args ...any) *InvalidStringError {
	return &InvalidStringError{Message: fmt.Sprintf(format, args...)}
}

// IoError wraps an underlying I/O failure from the byte source.
type IoError struct {
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error: %v", e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

func newIoError(err error) *IoError {
	if err == nil {
		return nil
	}
	return &IoError{Err: err}
}
