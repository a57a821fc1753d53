package jfr

import "strconv"

// rawElement is one node of the metadata element tree (spec.md §4.3),
// prior to interpretation into TypeDescriptor/FieldDescriptor records.
// An element never carries its own name; the name is supplied by the
// parent alongside each child, mirroring the wire grammar exactly:
// "i32 child count, child count x (i32 name-string-index, element)".
type rawElement struct {
	attrs    map[string]string
	children []namedChild
}

type namedChild struct {
	name string
	elem rawElement
}

// recognizedElementNames is the closed set of element names the format
// defines. Any other name is a format violation (spec.md §4.3), wherever
// in the tree it appears.
var recognizedElementNames = map[string]bool{
	"metadata":   true,
	"region":     true,
	"class":      true,
	"field":      true,
	"annotation": true,
	"setting":    true,
}

// acceptedChildren maps a parent element name to the set of child names
// it keeps; anything else is silently dropped (spec.md §4.3's
// parent->child acceptance table). "Metadata version (2,0) introduces
// elements or attributes beyond those listed" (spec.md §9) is handled by
// this same drop rule: unknown *children* of an accepted parent are
// ignored, only unknown *names* anywhere reject outright.
var acceptedChildren = map[string]map[string]bool{
	"root":       {"metadata": true, "region": true},
	"metadata":   {"class": true},
	"class":      {"field": true, "annotation": true, "setting": true},
	"field":      {"annotation": true},
	"setting":    {"annotation": true},
	"annotation": {},
	"region":     {},
}

// parseElement decodes one element body: attribute count, attributes,
// child count, and (name, element) pairs for each child.
func parseElement(r *byteReader, strtab *StringTable) (rawElement, error) {
	attrCount, err := r.ReadI32()
	if err != nil {
		return rawElement{}, err
	}
	if attrCount < 0 {
		return rawElement{}, newInvalidFormat("negative attribute count: %d", attrCount)
	}

	attrs := make(map[string]string, attrCount)
	for i := int32(0); i < attrCount; i++ {
		keyIdx, err := r.ReadI32()
		if err != nil {
			return rawElement{}, err
		}
		valIdx, err := r.ReadI32()
		if err != nil {
			return rawElement{}, err
		}
		key, err := strtab.Get(keyIdx)
		if err != nil {
			return rawElement{}, err
		}
		val, err := strtab.Get(valIdx)
		if err != nil {
			return rawElement{}, err
		}
		attrs[key] = val
	}

	childCount, err := r.ReadI32()
	if err != nil {
		return rawElement{}, err
	}
	if childCount < 0 {
		return rawElement{}, newInvalidFormat("negative child count: %d", childCount)
	}

	children := make([]namedChild, childCount)
	for i := int32(0); i < childCount; i++ {
		nameIdx, err := r.ReadI32()
		if err != nil {
			return rawElement{}, err
		}
		name, err := strtab.Get(nameIdx)
		if err != nil {
			return rawElement{}, err
		}
		if !recognizedElementNames[name] {
			return rawElement{}, newInvalidFormat("unknown metadata element name: %q", name)
		}
		childElem, err := parseElement(r, strtab)
		if err != nil {
			return rawElement{}, err
		}
		children[i] = namedChild{name: name, elem: childElem}
	}

	return rawElement{attrs: attrs, children: children}, nil
}

// parseMetadataRoot reads the synthetic root wrapper: a name index (read
// off the wire, then discarded per spec.md §4.3's "root element's name is
// consumed and ignored") followed by the root element body.
func parseMetadataRoot(r *byteReader, strtab *StringTable) (rawElement, error) {
	if _, err := r.ReadI32(); err != nil {
		return rawElement{}, err
	}
	return parseElement(r, strtab)
}

func acceptsChild(parent, child string) bool {
	set, ok := acceptedChildren[parent]
	return ok && set[child]
}

// buildTypePool walks the parsed root element and declares a
// TypeDescriptor per "class" element, in two passes: the first resolves
// every declared class id to its name (classes reference each other, and
// annotation classes like jdk.jfr.Label are themselves declared classes),
// the second builds full descriptors using that id->name map to interpret
// annotations (spec.md §4.3).
func buildTypePool(root rawElement) (*TypePool, error) {
	var classElems []rawElement
	for _, top := range root.children {
		if !acceptsChild("root", top.name) || top.name != "metadata" {
			continue
		}
		for _, c := range top.elem.children {
			if !acceptsChild("metadata", c.name) {
				continue
			}
			classElems = append(classElems, c.elem)
		}
	}

	idToName := make(map[int64]string, len(classElems))
	for _, ce := range classElems {
		id, name, err := classIdentity(ce)
		if err != nil {
			return nil, err
		}
		idToName[id] = name
	}

	pool := newTypePool()
	for _, ce := range classElems {
		td, err := buildTypeDescriptor(ce, idToName)
		if err != nil {
			return nil, err
		}
		pool.add(td)
	}
	return pool, nil
}

func classIdentity(ce rawElement) (int64, string, error) {
	idStr, ok := ce.attrs["id"]
	if !ok {
		return 0, "", newInvalidFormat("class element missing required attribute %q", "id")
	}
	id, err := parseAttrInt(idStr)
	if err != nil {
		return 0, "", err
	}
	name, ok := ce.attrs["name"]
	if !ok {
		return 0, "", newInvalidFormat("class element missing required attribute %q", "name")
	}
	return id, name, nil
}

func buildTypeDescriptor(ce rawElement, idToName map[int64]string) (*TypeDescriptor, error) {
	id, name, err := classIdentity(ce)
	if err != nil {
		return nil, err
	}

	td := &TypeDescriptor{ClassID: id, Name: internString(name)}

	if st, ok := ce.attrs["superType"]; ok {
		td.SuperType = internString(st)
		td.HasSuper = true
	}
	if simpleStr, ok := ce.attrs["simpleType"]; ok {
		b, err := parseAttrBool(simpleStr)
		if err != nil {
			return nil, err
		}
		td.SimpleType = b
	}

	for _, child := range ce.children {
		switch child.name {
		case "field":
			fd, err := buildFieldDescriptor(child.elem, idToName)
			if err != nil {
				return nil, err
			}
			td.Fields = append(td.Fields, fd)
		case "annotation":
			if err := applyClassAnnotation(td, child.elem, idToName); err != nil {
				return nil, err
			}
		case "setting":
			// settings carry JFR control-panel configuration, not schema
			// shape; only their acceptance (not their content) matters here.
		}
	}

	return td, nil
}

func buildFieldDescriptor(fe rawElement, idToName map[int64]string) (FieldDescriptor, error) {
	name, ok := fe.attrs["name"]
	if !ok {
		return FieldDescriptor{}, newInvalidFormat("field element missing required attribute %q", "name")
	}
	classIDStr, ok := fe.attrs["class"]
	if !ok {
		return FieldDescriptor{}, newInvalidFormat("field element missing required attribute %q", "class")
	}
	classID, err := parseAttrInt(classIDStr)
	if err != nil {
		return FieldDescriptor{}, err
	}

	fd := FieldDescriptor{Name: internString(name), ClassID: classID}

	if cpStr, ok := fe.attrs["constantPool"]; ok {
		b, err := parseAttrBool(cpStr)
		if err != nil {
			return FieldDescriptor{}, err
		}
		fd.ConstantPool = b
	}
	if dimStr, ok := fe.attrs["dimension"]; ok {
		dim, err := parseAttrInt(dimStr)
		if err != nil {
			return FieldDescriptor{}, err
		}
		fd.ArrayType = dim > 0
	}

	for _, child := range fe.children {
		if child.name != "annotation" {
			continue
		}
		if err := applyFieldAnnotation(&fd, child.elem, idToName); err != nil {
			return FieldDescriptor{}, err
		}
	}

	return fd, nil
}

// annotationClassName resolves an annotation element's "class" attribute
// (a class id) to the declared type name, via the id->name map built from
// every class declared in this chunk's metadata.
func annotationClassName(ann rawElement, idToName map[int64]string) (string, bool, error) {
	idStr, ok := ann.attrs["class"]
	if !ok {
		return "", false, newInvalidFormat("annotation element missing required attribute %q", "class")
	}
	id, err := parseAttrInt(idStr)
	if err != nil {
		return "", false, err
	}
	name, ok := idToName[id]
	return name, ok, nil
}

func applyClassAnnotation(td *TypeDescriptor, ann rawElement, idToName map[int64]string) error {
	name, known, err := annotationClassName(ann, idToName)
	if err != nil {
		return err
	}
	if !known {
		return nil // annotation type not declared in this chunk; ignore
	}

	switch name {
	case "jdk.jfr.Label":
		td.Label = ann.attrs["value"]
	case "jdk.jfr.Description":
		td.Description = ann.attrs["value"]
	case "jdk.jfr.Experimental":
		td.Experimental = true
	case "jdk.jfr.Category":
		td.Category = collectCategory(ann.attrs)
	}
	return nil
}

func applyFieldAnnotation(fd *FieldDescriptor, ann rawElement, idToName map[int64]string) error {
	name, known, err := annotationClassName(ann, idToName)
	if err != nil {
		return err
	}
	if !known {
		return nil
	}

	switch name {
	case "jdk.jfr.Label":
		fd.Label = ann.attrs["value"]
	case "jdk.jfr.Description":
		fd.Description = ann.attrs["value"]
	case "jdk.jfr.Experimental":
		fd.Experimental = true
	case "jdk.jfr.Category":
		fd.Category = collectCategory(ann.attrs)
	case "jdk.jfr.Unsigned":
		fd.Unsigned = true
	case "jdk.jfr.MemoryAmount", "jdk.jfr.DataAmount":
		fd.Unit = UnitByte
	case "jdk.jfr.Percentage":
		fd.Unit = UnitPercentUnity
	case "jdk.jfr.MemoryAddress":
		fd.Unit = UnitAddressUnity
	case "jdk.jfr.Frequency":
		fd.Unit = UnitHz
	case "jdk.jfr.Timespan":
		return applyTimeAnnotation(fd, ann.attrs["value"], true)
	case "jdk.jfr.Timestamp":
		return applyTimeAnnotation(fd, ann.attrs["value"], false)
	}
	return nil
}

// applyTimeAnnotation implements the closed TICKS/NANOSECONDS/MILLISECONDS/
// SECONDS switch from spec.md §4.3: TICKS always maps to a TickUnit
// (Timespan or Timestamp, whichever annotation this was); every other
// value maps to the corresponding Unit.
func applyTimeAnnotation(fd *FieldDescriptor, value string, isTimespan bool) error {
	if value == "TICKS" {
		if isTimespan {
			fd.TickUnit = TickUnitTimespan
		} else {
			fd.TickUnit = TickUnitTimestamp
		}
		return nil
	}
	switch value {
	case "NANOSECONDS":
		fd.Unit = UnitNanosecond
	case "MILLISECONDS":
		fd.Unit = UnitMillisecond
	case "SECONDS":
		fd.Unit = UnitSecond
	case "NANOSECONDS_SINCE_EPOCH":
		fd.Unit = UnitEpochNano
	case "MILLISECONDS_SINCE_EPOCH":
		fd.Unit = UnitEpochMilli
	case "SECONDS_SINCE_EPOCH":
		fd.Unit = UnitEpochSecond
	default:
		return newInvalidFormat("unrecognized time annotation value: %q", value)
	}
	return nil
}

func collectCategory(attrs map[string]string) []string {
	var cats []string
	for i := 0; ; i++ {
		key := "value-" + strconv.Itoa(i)
		v, ok := attrs[key]
		if !ok {
			break
		}
		cats = append(cats, v)
	}
	return cats
}

func parseAttrInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, newInvalidFormat("expected integer attribute, got %q: %v", s, err)
	}
	return v, nil
}

func parseAttrBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, newInvalidFormat("expected boolean attribute, got %q", s)
	}
}

// decodeMetadata parses the metadata event: i32 size, i64 event type
// (must be 0), i64 start, i64 duration, i64 metadata id, a string table,
// then the recursive element tree, producing the chunk's TypePool and
// the raw StringTable it was decoded against.
func decodeMetadata(r *byteReader) (*TypePool, *StringTable, error) {
	if _, err := r.ReadI32(); err != nil { // event size, unused: we trust offsets
		return nil, nil, err
	}
	eventType, err := r.ReadI64()
	if err != nil {
		return nil, nil, err
	}
	if eventType != 0 {
		return nil, nil, newInvalidFormat("expected metadata event type 0, got %d", eventType)
	}
	if _, err := r.ReadI64(); err != nil { // start
		return nil, nil, err
	}
	if _, err := r.ReadI64(); err != nil { // duration
		return nil, nil, err
	}
	if _, err := r.ReadI64(); err != nil { // metadata id
		return nil, nil, err
	}

	strtab, err := decodeStringTable(r)
	if err != nil {
		return nil, nil, err
	}

	root, err := parseMetadataRoot(r, strtab)
	if err != nil {
		return nil, nil, err
	}

	pool, err := buildTypePool(root)
	if err != nil {
		return nil, nil, err
	}
	return pool, strtab, nil
}
