package jfr

import (
	"reflect"
	"strings"
)

// Deserialize walks value as a self-describing object graph and
// materializes a new T, matching struct fields by name (or a `jfr:"..."`
// tag override) against the value tree's declared fields (spec.md §4.8).
//
// T must be a struct type (or a pointer to one). Missing value-tree
// fields are tolerated only when the corresponding Go field is a pointer,
// slice, map or interface (nil result); extra value-tree fields are
// ignored.
// ConstantPoolRef fields resolve transparently, bounded against
// revisiting the same (class id, index) pair so cyclic constant-pool
// graphs (ThreadGroup.parent, Class.classLoader, ...) terminate rather
// than recursing forever (spec.md §9).
func Deserialize[T any](chunk *Chunk, value ValueDescriptor) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	d := &deserializer{chunk: chunk, visiting: make(map[constantPoolKey]bool)}
	if err := d.decodeInto(rv, value); err != nil {
		return out, err
	}
	return out, nil
}

type deserializer struct {
	chunk    *Chunk
	visiting map[constantPoolKey]bool
}

// decodeInto fills the addressable reflect.Value dst from value,
// resolving constant-pool references first.
func (d *deserializer) decodeInto(dst reflect.Value, value ValueDescriptor) error {
	if classID, index, ok := value.ConstantPoolRef(); ok {
		key := constantPoolKey{classID: classID, index: index}
		if d.visiting[key] {
			return newDeserializeError("cyclic constant-pool reference at class %d index %d", classID, index)
		}
		resolved, ok := d.chunk.ConstantPool.Get(classID, index)
		if !ok {
			if isOptional(dst) {
				dst.Set(reflect.Zero(dst.Type()))
				return nil
			}
			return newDeserializeError("unresolved constant-pool reference: class %d index %d", classID, index)
		}
		d.visiting[key] = true
		defer delete(d.visiting, key)
		value = resolved
	}

	// Unwrap a pointer destination: allocate, then decode into the
	// pointee, unless the value is explicitly absent.
	if dst.Kind() == reflect.Ptr {
		if value.IsNull() {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return d.decodeInto(dst.Elem(), value)
	}

	switch {
	case value.IsNull():
		return newDeserializeError("null string value for non-optional field of kind %s", dst.Kind())

	case value.IsPrimitive():
		return d.decodePrimitiveInto(dst, value)

	case value.IsObject():
		return d.decodeObjectInto(dst, value)

	case value.IsArray():
		return d.decodeArrayInto(dst, value)

	default:
		return newDeserializeError("unresolvable constant-pool reference encountered during decode")
	}
}

func isOptional(dst reflect.Value) bool {
	switch dst.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	default:
		return false
	}
}

func (d *deserializer) decodePrimitiveInto(dst reflect.Value, value ValueDescriptor) error {
	switch dst.Kind() {
	case reflect.String:
		s, ok := value.Str()
		if !ok {
			return newDeserializeError("expected string value for %s field", dst.Kind())
		}
		dst.SetString(s)
		return nil

	case reflect.Bool:
		b, ok := value.Bool()
		if !ok {
			return newDeserializeError("expected boolean value for %s field", dst.Kind())
		}
		dst.SetBool(b)
		return nil

	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		if i, ok := value.Byte(); ok {
			dst.SetInt(int64(i))
			return nil
		}
		if i, ok := value.Short(); ok {
			dst.SetInt(int64(i))
			return nil
		}
		if i, ok := value.Int(); ok {
			dst.SetInt(int64(i))
			return nil
		}
		if i, ok := value.Long(); ok {
			dst.SetInt(i)
			return nil
		}
		if c, ok := value.Char(); ok {
			dst.SetInt(int64(c))
			return nil
		}
		return newDeserializeError("expected integer value for %s field", dst.Kind())

	case reflect.Float32, reflect.Float64:
		if f, ok := value.Float(); ok {
			dst.SetFloat(float64(f))
			return nil
		}
		if f, ok := value.Double(); ok {
			dst.SetFloat(f)
			return nil
		}
		return newDeserializeError("expected floating-point value for %s field", dst.Kind())

	default:
		return newDeserializeError("unsupported destination kind for primitive value: %s", dst.Kind())
	}
}

func (d *deserializer) decodeObjectInto(dst reflect.Value, value ValueDescriptor) error {
	if dst.Kind() != reflect.Struct {
		return newDeserializeError("cannot decode object value into %s field", dst.Kind())
	}
	classID, ok := value.ObjectClassID()
	if !ok {
		return newDeserializeError("object value missing class id")
	}
	td, ok := d.chunk.Types.Get(classID)
	if !ok {
		return &ClassNotFoundError{ClassID: classID}
	}

	byJfrName := structFieldsByName(dst.Type())
	visited := make(map[string]bool, len(byJfrName))

	for i, fd := range td.Fields {
		sf, ok := byJfrName[fd.Name]
		if !ok {
			continue // extra value-tree field with no matching struct field: ignored
		}
		visited[fd.Name] = true
		fv, ok := value.FieldAt(i)
		if !ok {
			continue
		}
		field := dst.FieldByIndex(sf.Index)
		if err := d.decodeInto(field, fv); err != nil {
			return newDeserializeError("field %q: %v", fd.Name, err)
		}
	}

	// Every struct field must have been matched by a schema field unless
	// it's optional: a required field left untouched would silently stay
	// zero-valued instead of surfacing the schema mismatch.
	for name, sf := range byJfrName {
		if visited[name] {
			continue
		}
		if isOptional(dst.FieldByIndex(sf.Index)) {
			continue
		}
		return newDeserializeError("struct field %q has no matching schema field", name)
	}
	return nil
}

func (d *deserializer) decodeArrayInto(dst reflect.Value, value ValueDescriptor) error {
	if dst.Kind() != reflect.Slice {
		return newDeserializeError("cannot decode array value into %s field", dst.Kind())
	}
	elems := value.Elems()
	out := reflect.MakeSlice(dst.Type(), len(elems), len(elems))
	for i, e := range elems {
		if err := d.decodeInto(out.Index(i), e); err != nil {
			return newDeserializeError("element %d: %v", i, err)
		}
	}
	dst.Set(out)
	return nil
}

// structFieldsByName maps each JFR field name a struct type declares
// (via a `jfr:"name"` tag, else its Go field name) to that reflect
// field.
func structFieldsByName(t reflect.Type) map[string]reflect.StructField {
	out := make(map[string]reflect.StructField, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("jfr"); ok {
			tag = strings.TrimSuffix(tag, ",omitempty")
			if tag != "" && tag != "-" {
				name = tag
			}
		}
		out[name] = sf
	}
	return out
}
