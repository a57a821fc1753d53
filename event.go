package jfr

// Event pairs a decoded value with the schema it was decoded against
// (spec.md §4.7).
type Event struct {
	Class *TypeDescriptor
	Value ValueDescriptor
}

// EventIterator lazily walks a chunk's event region in on-disk order,
// skipping metadata (type 0) and constant-pool (type 1) events, which
// never appear in the user-visible stream (spec.md §4.7/§8 property 9).
type EventIterator struct {
	chunk  *Chunk
	offset int64
	err    error
	done   bool
}

func newEventIterator(c *Chunk) *EventIterator {
	return &EventIterator{chunk: c, offset: chunkHeaderSize}
}

// Next decodes the next user-visible event, or reports (false) when the
// event region is exhausted or a decode error has occurred. Call Err
// after Next returns false to distinguish the two.
func (it *EventIterator) Next() (Event, bool) {
	for {
		if it.done || it.err != nil {
			return Event{}, false
		}
		if it.offset >= int64(len(it.chunk.body)) {
			it.done = true
			return Event{}, false
		}

		r := it.chunk.bodyReader(it.offset)
		start := it.offset

		size, err := r.ReadI32()
		if err != nil {
			it.err = err
			return Event{}, false
		}
		if size <= 0 {
			it.err = newInvalidFormat("non-positive event size %d at offset %d", size, start)
			return Event{}, false
		}
		eventType, err := r.ReadI64()
		if err != nil {
			it.err = err
			return Event{}, false
		}

		it.offset = start + int64(size)

		if eventType == 0 || eventType == 1 {
			continue
		}

		td, ok := it.chunk.Types.Get(eventType)
		if !ok {
			it.err = &ClassNotFoundError{ClassID: eventType}
			return Event{}, false
		}

		value, err := decodeObject(r, td, it.chunk.Types)
		if err != nil {
			it.err = err
			return Event{}, false
		}

		return Event{Class: td, Value: value}, true
	}
}

// Err returns the error that stopped iteration, if any.
func (it *EventIterator) Err() error { return it.err }
