package jfr

// Unit is the closed set of physical units a field or type can carry via
// its annotations (spec.md §3).
type Unit int

const (
	UnitNone Unit = iota
	UnitByte
	UnitPercentUnity
	UnitAddressUnity
	UnitHz
	UnitNanosecond
	UnitMillisecond
	UnitSecond
	UnitEpochNano
	UnitEpochMilli
	UnitEpochSecond
)

func (u Unit) String() string {
	switch u {
	case UnitByte:
		return "Byte"
	case UnitPercentUnity:
		return "PercentUnity"
	case UnitAddressUnity:
		return "AddressUnity"
	case UnitHz:
		return "Hz"
	case UnitNanosecond:
		return "Nanosecond"
	case UnitMillisecond:
		return "Millisecond"
	case UnitSecond:
		return "Second"
	case UnitEpochNano:
		return "EpochNano"
	case UnitEpochMilli:
		return "EpochMilli"
	case UnitEpochSecond:
		return "EpochSecond"
	default:
		return "None"
	}
}

// TickUnit distinguishes a tick-based duration from a tick-based instant.
type TickUnit int

const (
	TickUnitNone TickUnit = iota
	TickUnitTimespan
	TickUnitTimestamp
)

func (t TickUnit) String() string {
	switch t {
	case TickUnitTimespan:
		return "Timespan"
	case TickUnitTimestamp:
		return "Timestamp"
	default:
		return "None"
	}
}

// Built-in primitive type names (spec.md §3, closed set). Any other name
// denotes a composite type backed by a TypeDescriptor with fields.
const (
	primInt     = "int"
	primLong    = "long"
	primFloat   = "float"
	primDouble  = "double"
	primChar    = "char"
	primBoolean = "boolean"
	primShort   = "short"
	primByte    = "byte"
	primString  = "java.lang.String"
)

func isBuiltinPrimitive(name string) bool {
	switch name {
	case primInt, primLong, primFloat, primDouble, primChar, primBoolean, primShort, primByte, primString:
		return true
	default:
		return false
	}
}

// FieldDescriptor describes one declared field of a TypeDescriptor.
type FieldDescriptor struct {
	ClassID      int64
	Name         string
	ConstantPool bool
	ArrayType    bool

	Label         string
	Description   string
	Unit          Unit
	TickUnit      TickUnit
	Unsigned      bool
	Experimental  bool
	Category      []string
}

// TypeDescriptor describes one class (schema) known within a chunk.
type TypeDescriptor struct {
	ClassID    int64
	Name       string
	SuperType  string
	HasSuper   bool
	SimpleType bool
	Fields     []FieldDescriptor

	Label        string
	Description  string
	Category     []string
	Experimental bool
}

// IsPrimitive reports whether this type is one of the nine built-in
// primitive types rather than a composite (object) type.
func (t *TypeDescriptor) IsPrimitive() bool {
	return isBuiltinPrimitive(t.Name)
}

// FieldIndex returns the index of the named field, or -1 if no such field
// is declared.
func (t *TypeDescriptor) FieldIndex(name string) int {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// TypePool is the set of TypeDescriptor known within one chunk, keyed by
// class id. Schemas are never shared across chunks (spec.md §9).
type TypePool struct {
	byID   map[int64]*TypeDescriptor
	byName map[string]*TypeDescriptor
}

func newTypePool() *TypePool {
	return &TypePool{
		byID:   make(map[int64]*TypeDescriptor),
		byName: make(map[string]*TypeDescriptor),
	}
}

func (p *TypePool) add(t *TypeDescriptor) {
	p.byID[t.ClassID] = t
	// First declaration of a name wins; JFR metadata does not redeclare
	// the same class name with a different id within one chunk.
	if _, exists := p.byName[t.Name]; !exists {
		p.byName[t.Name] = t
	}
}

// Get looks up a TypeDescriptor by class id.
func (p *TypePool) Get(classID int64) (*TypeDescriptor, bool) {
	t, ok := p.byID[classID]
	return t, ok
}

// Lookup looks up a TypeDescriptor by fully-qualified type name
// (SPEC_FULL.md §12, a by-name companion to the by-id lookup callers
// filtering events by class name need).
func (p *TypePool) Lookup(name string) (*TypeDescriptor, bool) {
	t, ok := p.byName[name]
	return t, ok
}

// Len returns the number of classes known in this pool.
func (p *TypePool) Len() int { return len(p.byID) }
