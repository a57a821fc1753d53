// Package jfr decodes Java Flight Recorder chunks: per-chunk type
// metadata, an interned constant pool, and a lazily iterated event
// stream navigable through an accessor API or a reflection-based
// deserializer into user record types.
package jfr
