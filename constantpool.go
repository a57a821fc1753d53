package jfr

// ConstantPool holds every constant-pool value decoded in a chunk, keyed
// by (class id, constant index) (spec.md §4.5/§3).
type ConstantPool struct {
	values map[constantPoolKey]ValueDescriptor
}

type constantPoolKey struct {
	classID int64
	index   int64
}

func newConstantPool() *ConstantPool {
	return &ConstantPool{values: make(map[constantPoolKey]ValueDescriptor)}
}

// Get resolves one constant-pool entry.
func (cp *ConstantPool) Get(classID, index int64) (ValueDescriptor, bool) {
	v, ok := cp.values[constantPoolKey{classID, index}]
	return v, ok
}

// Len returns the number of entries decoded into this constant pool.
func (cp *ConstantPool) Len() int { return len(cp.values) }

// Resolve dereferences a ValueDescriptor one level: if v is a
// constant-pool reference, its target is looked up and returned; any
// other value is returned unchanged. Callers walking an object graph use
// this after every Field()/Elems() access since either can yield a
// reference (spec.md §4.4's "one-level" dereference rule - if the stored
// target is itself a reference, it is returned as is, not followed).
func (cp *ConstantPool) Resolve(v ValueDescriptor) (ValueDescriptor, error) {
	classID, index, ok := v.ConstantPoolRef()
	if !ok {
		return v, nil
	}
	target, ok := cp.Get(classID, index)
	if !ok {
		return ValueDescriptor{}, newInvalidFormat("unresolved constant-pool reference: class %d index %d", classID, index)
	}
	return target, nil
}

// decodeConstantPoolEvent reads one constant-pool event: i32 size, i64
// event type (must be 1), i64 start, i64 duration, i64 delta to the
// previous constant-pool event's offset (0 if this is the first), i8
// flush flag (ignored: both chunk-final and mid-chunk pools are merged
// the same way), i32 pool count, then that many (class id, constant
// count, (index, value) pairs) groups (spec.md §4.5).
//
// Within one chunk, constant-pool events form a singly linked list
// threaded backward by byte offset; chunk.go walks that chain from the
// last event to the first (newest to oldest) and calls this once per
// node. A key already populated by a newer event is left untouched here
// so that, across the whole walk, the newest write for any key wins
// (spec.md §9's resolved Open Question).
func decodeConstantPoolEvent(r *byteReader, pool *TypePool, cp *ConstantPool) (delta int64, err error) {
	if _, err := r.ReadI32(); err != nil { // event size
		return 0, err
	}
	eventType, err := r.ReadI64()
	if err != nil {
		return 0, err
	}
	if eventType != 1 {
		return 0, newInvalidFormat("expected constant pool event type 1, got %d", eventType)
	}
	if _, err := r.ReadI64(); err != nil { // start
		return 0, err
	}
	if _, err := r.ReadI64(); err != nil { // duration
		return 0, err
	}
	delta, err = r.ReadI64()
	if err != nil {
		return 0, err
	}
	if _, err := r.ReadI8(); err != nil { // flush flag
		return 0, err
	}

	poolCount, err := r.ReadI32()
	if err != nil {
		return 0, err
	}
	if poolCount < 0 {
		return 0, newInvalidFormat("negative constant pool count: %d", poolCount)
	}

	for i := int32(0); i < poolCount; i++ {
		classID, err := r.ReadI64()
		if err != nil {
			return 0, err
		}
		td, ok := pool.Get(classID)
		if !ok {
			return 0, &ClassNotFoundError{ClassID: classID}
		}

		count, err := r.ReadI32()
		if err != nil {
			return 0, err
		}
		if count < 0 {
			return 0, newInvalidFormat("negative constant pool entry count: %d", count)
		}

		for j := int32(0); j < count; j++ {
			index, err := r.ReadI64()
			if err != nil {
				return 0, err
			}
			var value ValueDescriptor
			if td.IsPrimitive() {
				value, err = decodePrimitive(r, td.Name, pool)
			} else {
				value, err = decodeObject(r, td, pool)
			}
			if err != nil {
				return 0, err
			}
			key := constantPoolKey{classID: classID, index: index}
			if _, exists := cp.values[key]; !exists {
				cp.values[key] = value
			}
		}
	}

	return delta, nil
}
