package jfr

import "unique"

// internString deduplicates string content so that two TypeDescriptor or
// FieldDescriptor records naming the same identifier (e.g. two classes
// both having a field called "name") share one underlying string instead
// of each holding their own copy. spec.md §4.3 calls this out as a
// cardinality/memory invariant: a chunk can have thousands of field
// descriptors with repeated identifiers.
//
// unique.Handle is the standard library's content-addressed interning
// primitive (go1.23+); no pack example or ecosystem library does
// content-based string interning better than the tool built for exactly
// this, so this one case stays on the standard library (see DESIGN.md).
func internString(s string) string {
	return unique.Make(s).Value()
}
