package jfr

import "fmt"

// valueKind distinguishes the shapes a decoded field value can take
// (spec.md §4.4): a primitive scalar, a nested object (composite type
// instance), an array of either, an unresolved constant-pool
// reference left for the caller to dereference, or null (a null
// java.lang.String).
type valueKind int

const (
	valueKindPrimitive valueKind = iota
	valueKindObject
	valueKindArray
	valueKindConstantPoolRef
	valueKindNull
)

// primitiveKind tags which of the nine built-in primitive variants a
// ValueDescriptor carries.
type primitiveKind int

const (
	primitiveInt primitiveKind = iota
	primitiveLong
	primitiveFloat
	primitiveDouble
	primitiveChar
	primitiveBoolean
	primitiveShort
	primitiveByte
	primitiveString
)

// ValueDescriptor is the tagged union produced by decoding one field
// against its declared TypeDescriptor (spec.md §4.4).
type ValueDescriptor struct {
	kind valueKind

	primKind primitiveKind
	i        int64
	f32      float32
	f64      float64
	b        bool
	s        string

	objClassID int64
	fields     []ValueDescriptor

	elems []ValueDescriptor

	poolClassID int64
	poolIndex   int64
}

func (v ValueDescriptor) IsNull() bool { return v.kind == valueKindNull }

func (v ValueDescriptor) IsPrimitive() bool { return v.kind == valueKindPrimitive }

func (v ValueDescriptor) IsObject() bool { return v.kind == valueKindObject }

func (v ValueDescriptor) IsArray() bool { return v.kind == valueKindArray }

func (v ValueDescriptor) IsConstantPoolRef() bool { return v.kind == valueKindConstantPoolRef }

// ConstantPoolRef returns the (class id, constant index) pair an
// unresolved reference points at. Callers resolve it against the
// chunk's ConstantPool.
func (v ValueDescriptor) ConstantPoolRef() (classID, index int64, ok bool) {
	if v.kind != valueKindConstantPoolRef {
		return 0, 0, false
	}
	return v.poolClassID, v.poolIndex, true
}

// ObjectClassID returns the class id an object value was decoded against.
func (v ValueDescriptor) ObjectClassID() (int64, bool) {
	if v.kind != valueKindObject {
		return 0, false
	}
	return v.objClassID, true
}

// FieldAt returns the i'th field of an object value, in schema
// declaration order (spec.md §3: "fields.len() == type.fields.len();
// order preserved").
func (v ValueDescriptor) FieldAt(i int) (ValueDescriptor, bool) {
	if v.kind != valueKindObject || i < 0 || i >= len(v.fields) {
		return ValueDescriptor{}, false
	}
	return v.fields[i], true
}

// Field returns the value of a named field of an object value, looking
// up the field's position via the chunk's TypePool.
func (v ValueDescriptor) Field(name string, pool *TypePool) (ValueDescriptor, bool) {
	if v.kind != valueKindObject {
		return ValueDescriptor{}, false
	}
	td, ok := pool.Get(v.objClassID)
	if !ok {
		return ValueDescriptor{}, false
	}
	idx := td.FieldIndex(name)
	if idx < 0 {
		return ValueDescriptor{}, false
	}
	return v.FieldAt(idx)
}

// Elems returns the elements of an array value.
func (v ValueDescriptor) Elems() []ValueDescriptor {
	if v.kind != valueKindArray {
		return nil
	}
	return v.elems
}

// Int, Long, Float, Double, Char, Bool, Short, Byte, Str return the
// primitive payload and whether the value actually holds that kind.
func (v ValueDescriptor) Int() (int32, bool) {
	if v.kind != valueKindPrimitive || v.primKind != primitiveInt {
		return 0, false
	}
	return int32(v.i), true
}

func (v ValueDescriptor) Long() (int64, bool) {
	if v.kind != valueKindPrimitive || v.primKind != primitiveLong {
		return 0, false
	}
	return v.i, true
}

func (v ValueDescriptor) Float() (float32, bool) {
	if v.kind != valueKindPrimitive || v.primKind != primitiveFloat {
		return 0, false
	}
	return v.f32, true
}

func (v ValueDescriptor) Double() (float64, bool) {
	if v.kind != valueKindPrimitive || v.primKind != primitiveDouble {
		return 0, false
	}
	return v.f64, true
}

func (v ValueDescriptor) Char() (rune, bool) {
	if v.kind != valueKindPrimitive || v.primKind != primitiveChar {
		return 0, false
	}
	return rune(v.i), true
}

func (v ValueDescriptor) Bool() (bool, bool) {
	if v.kind != valueKindPrimitive || v.primKind != primitiveBoolean {
		return false, false
	}
	return v.b, true
}

func (v ValueDescriptor) Short() (int16, bool) {
	if v.kind != valueKindPrimitive || v.primKind != primitiveShort {
		return 0, false
	}
	return int16(v.i), true
}

func (v ValueDescriptor) Byte() (int8, bool) {
	if v.kind != valueKindPrimitive || v.primKind != primitiveByte {
		return 0, false
	}
	return int8(v.i), true
}

func (v ValueDescriptor) Str() (string, bool) {
	if v.kind != valueKindPrimitive || v.primKind != primitiveString {
		return "", false
	}
	return v.s, true
}

// decodeValue decodes one field value against its declared class id, per
// the recursive schema in spec.md §4.4: a scalar primitive, a
// java.lang.String (six-way encoding, including constant-pool backed
// strings), a constant-pool-flagged reference (i64 index), an array
// (i32 length prefix then that many elements), or a nested composite
// object (its fields decoded in declaration order).
func decodeValue(r *byteReader, fd FieldDescriptor, pool *TypePool) (ValueDescriptor, error) {
	if fd.ArrayType {
		return decodeArrayValue(r, fd, pool)
	}
	return decodeScalarValue(r, fd, pool)
}

func decodeArrayValue(r *byteReader, fd FieldDescriptor, pool *TypePool) (ValueDescriptor, error) {
	n, err := r.ReadI32()
	if err != nil {
		return ValueDescriptor{}, err
	}
	if n < 0 {
		return ValueDescriptor{}, newInvalidFormat("negative array length: %d", n)
	}

	elemFd := fd
	elemFd.ArrayType = false

	elems := make([]ValueDescriptor, n)
	for i := range elems {
		ev, err := decodeScalarValue(r, elemFd, pool)
		if err != nil {
			return ValueDescriptor{}, err
		}
		elems[i] = ev
	}
	return ValueDescriptor{kind: valueKindArray, elems: elems}, nil
}

func decodeScalarValue(r *byteReader, fd FieldDescriptor, pool *TypePool) (ValueDescriptor, error) {
	if fd.ConstantPool {
		idx, err := r.ReadI64()
		if err != nil {
			return ValueDescriptor{}, err
		}
		return ValueDescriptor{kind: valueKindConstantPoolRef, poolClassID: fd.ClassID, poolIndex: idx}, nil
	}

	td, ok := pool.Get(fd.ClassID)
	if !ok {
		return ValueDescriptor{}, &ClassNotFoundError{ClassID: fd.ClassID}
	}

	if td.IsPrimitive() {
		return decodePrimitive(r, td.Name, pool)
	}
	return decodeObject(r, td, pool)
}

func decodePrimitive(r *byteReader, typeName string, pool *TypePool) (ValueDescriptor, error) {
	switch typeName {
	case primInt:
		v, err := r.ReadI32()
		if err != nil {
			return ValueDescriptor{}, err
		}
		return ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveInt, i: int64(v)}, nil

	case primLong:
		v, err := r.ReadI64()
		if err != nil {
			return ValueDescriptor{}, err
		}
		return ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveLong, i: v}, nil

	case primFloat:
		v, err := r.ReadF32()
		if err != nil {
			return ValueDescriptor{}, err
		}
		return ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveFloat, f32: v}, nil

	case primDouble:
		v, err := r.ReadF64()
		if err != nil {
			return ValueDescriptor{}, err
		}
		return ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveDouble, f64: v}, nil

	case primChar:
		// A char is always a 16-bit code unit on the wire, decoded through
		// the same integer path as short/int, never the float path.
		v, err := r.ReadI32()
		if err != nil {
			return ValueDescriptor{}, err
		}
		if v < 0 || v > 0xFFFF {
			return ValueDescriptor{}, &InvalidCharError{Detail: fmt.Sprintf("code unit %d out of 16-bit range", v)}
		}
		return ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveChar, i: int64(v)}, nil

	case primBoolean:
		v, err := r.ReadU8()
		if err != nil {
			return ValueDescriptor{}, err
		}
		return ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveBoolean, b: v != 0}, nil

	case primShort:
		v, err := r.ReadI32()
		if err != nil {
			return ValueDescriptor{}, err
		}
		return ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveShort, i: int64(v)}, nil

	case primByte:
		v, err := r.ReadI8()
		if err != nil {
			return ValueDescriptor{}, err
		}
		return ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveByte, i: int64(v)}, nil

	case primString:
		return decodeStringValue(r, pool)

	default:
		return ValueDescriptor{}, newInvalidFormat("unrecognized primitive type: %q", typeName)
	}
}

// decodeStringValue decodes a java.lang.String field, which may be any of
// the six string-table tags including a constant-pool reference
// (spec.md §4.2/§4.4) - unlike metadata string tables, tag 2 is legal
// here. A pool-ref tag carries only an index, not a class id, so the
// java.lang.String type's own class id (looked up by name) is what the
// resulting reference is keyed on.
func decodeStringValue(r *byteReader, pool *TypePool) (ValueDescriptor, error) {
	entry, err := decodeStringEntry(r, true)
	if err != nil {
		return ValueDescriptor{}, err
	}
	switch entry.kind {
	case stringEntryNull:
		return ValueDescriptor{kind: valueKindNull}, nil
	case stringEntryPoolRef:
		strTd, ok := pool.Lookup(primString)
		if !ok {
			return ValueDescriptor{}, newInvalidFormat("constant-pool string reference with no %s type declared", primString)
		}
		return ValueDescriptor{kind: valueKindConstantPoolRef, poolClassID: strTd.ClassID, poolIndex: entry.poolIndex}, nil
	default:
		return ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveString, s: internString(entry.text)}, nil
	}
}

func decodeObject(r *byteReader, td *TypeDescriptor, pool *TypePool) (ValueDescriptor, error) {
	fields := make([]ValueDescriptor, len(td.Fields))
	for i, fd := range td.Fields {
		fv, err := decodeValue(r, fd, pool)
		if err != nil {
			return ValueDescriptor{}, err
		}
		fields[i] = fv
	}
	return ValueDescriptor{kind: valueKindObject, objClassID: td.ClassID, fields: fields}, nil
}
