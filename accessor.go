package jfr

// Accessor is a navigation handle over a value tree, transparently
// resolving constant-pool references on demand (spec.md §4.7/§9's
// pool-resolution policy: one dereference per navigation step, never
// recursive, so cyclic constant-pool graphs cannot cause unbounded
// recursion).
type Accessor struct {
	chunk *Chunk
	value ValueDescriptor
}

// NewAccessor wraps a decoded value for navigation within chunk.
func NewAccessor(chunk *Chunk, value ValueDescriptor) Accessor {
	return Accessor{chunk: chunk, value: value}
}

// Value returns the accessor's current, possibly-unresolved value.
func (a Accessor) Value() ValueDescriptor { return a.value }

// resolveOnce dereferences a, a single constant-pool hop, if it wraps a
// reference; otherwise it is returned unchanged.
func (a Accessor) resolveOnce() (Accessor, bool) {
	if !a.value.IsConstantPoolRef() {
		return a, true
	}
	resolved, err := a.chunk.ConstantPool.Resolve(a.value)
	if err != nil {
		return Accessor{}, false
	}
	return Accessor{chunk: a.chunk, value: resolved}, true
}

// GetField looks up a named field: if the (possibly pool-resolved) value
// is an Object, the field is found by name in its TypeDescriptor; if it
// is a ConstantPoolRef, one resolution is attempted before the lookup.
// Any other shape, or an unresolvable reference, yields (_, false).
func (a Accessor) GetField(name string) (Accessor, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return Accessor{}, false
	}
	if !cur.value.IsObject() {
		return Accessor{}, false
	}
	fv, ok := cur.value.Field(name, a.chunk.Types)
	if !ok {
		return Accessor{}, false
	}
	return Accessor{chunk: a.chunk, value: fv}, true
}

// Elems returns accessors over each element of an array value, left
// unresolved so the caller decides when to dereference constant-pool
// references (spec.md §4.7).
func (a Accessor) Elems() []Accessor {
	cur, ok := a.resolveOnce()
	if !ok || !cur.value.IsArray() {
		return nil
	}
	elems := cur.value.Elems()
	out := make([]Accessor, len(elems))
	for i, e := range elems {
		out[i] = Accessor{chunk: a.chunk, value: e}
	}
	return out
}

// Resolve dereferences a constant-pool reference one level, returning
// the same accessor unchanged for any other value shape.
func (a Accessor) Resolve() (Accessor, bool) {
	return a.resolveOnce()
}

// Primitive typed views: each returns the primitive payload after one
// level of constant-pool resolution, iff the resolved value's kind
// matches (spec.md §4.7).
func (a Accessor) Int() (int32, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return 0, false
	}
	return cur.value.Int()
}

func (a Accessor) Long() (int64, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return 0, false
	}
	return cur.value.Long()
}

func (a Accessor) Float() (float32, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return 0, false
	}
	return cur.value.Float()
}

func (a Accessor) Double() (float64, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return 0, false
	}
	return cur.value.Double()
}

func (a Accessor) Char() (rune, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return 0, false
	}
	return cur.value.Char()
}

func (a Accessor) Bool() (bool, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return false, false
	}
	return cur.value.Bool()
}

func (a Accessor) Short() (int16, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return 0, false
	}
	return cur.value.Short()
}

func (a Accessor) Byte() (int8, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return 0, false
	}
	return cur.value.Byte()
}

func (a Accessor) Str() (string, bool) {
	cur, ok := a.resolveOnce()
	if !ok {
		return "", false
	}
	return cur.value.Str()
}
