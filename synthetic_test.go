package jfr

import "testing"

// syntheticChunk fixture ids, mirroring the roles spec.md §8's seed
// scenarios assign to them (a G1-named thread behind a constant-pool
// reference, a compiler-related symbol, and an execution-sample event).
const (
	scIDInt             = 1
	scIDString          = 2
	scIDSymbol          = 3
	scIDThread          = 4
	scIDExecutionSample = 5
	scIDClass           = 20

	scThreadPoolIndex = 7
	scSymbolPoolIndex = 203

	scThreadOSName  = "G1 Main Marker"
	scThreadID      = 42
	scSymbolText    = "CompileBroker::compiler_thread_loop"
	scExecutionCount = 3
)

func syntheticMetadataTree() testElem {
	return testElem{
		children: []testNamedChild{
			{name: "metadata", elem: testElem{children: []testNamedChild{
				{name: "class", elem: classElem(scIDInt, primInt, nil, nil)},
				{name: "class", elem: classElem(scIDString, primString, nil, nil)},
				{name: "class", elem: classElem(scIDClass, "java.lang.Class", nil, nil)},
				{
					name: "class",
					elem: classElem(scIDSymbol, "jdk.types.Symbol", []testNamedChild{
						fieldChild("string", scIDString, nil),
					}, nil),
				},
				{
					name: "class",
					elem: classElem(scIDThread, "example.Thread", []testNamedChild{
						fieldChild("osName", scIDString, nil),
						fieldChild("id", scIDInt, nil),
					}, nil),
				},
				{
					name: "class",
					elem: classElem(scIDExecutionSample, "jdk.ExecutionSample", []testNamedChild{
						{
							name: "field",
							elem: testElem{attrs: map[string]string{
								"name": "sampledThread", "class": itoa(scIDThread), "constantPool": "true",
							}},
						},
					}, nil),
				},
			}}},
		},
	}
}

func encodeUTF8Value(s string) []byte {
	out := []byte{0x03}
	out = append(out, encodeCompressedForFuzz(int64(len(s)))...)
	out = append(out, []byte(s)...)
	return out
}

// buildConstantPoolEvent serializes one constant-pool event with the two
// pool groups the synthetic fixture needs: a Thread entry and a Symbol
// entry (spec.md §4.5).
func buildConstantPoolEvent() []byte {
	threadValue := append(encodeUTF8Value(scThreadOSName), encodeCompressedForFuzz(scThreadID)...)
	symbolValue := encodeUTF8Value(scSymbolText)

	var body []byte
	body = append(body, encodeCompressedForFuzz(0)...) // start
	body = append(body, encodeCompressedForFuzz(0)...) // duration
	body = append(body, encodeCompressedForFuzz(0)...) // delta to previous: 0, this is the only/last entry
	body = append(body, 0x00)                          // flush flag, discarded
	body = append(body, encodeCompressedForFuzz(2)...) // pool count: Thread, Symbol

	// Thread pool group
	body = append(body, encodeCompressedForFuzz(scIDThread)...)
	body = append(body, encodeCompressedForFuzz(1)...) // entry count
	body = append(body, encodeCompressedForFuzz(scThreadPoolIndex)...)
	body = append(body, threadValue...)

	// Symbol pool group
	body = append(body, encodeCompressedForFuzz(scIDSymbol)...)
	body = append(body, encodeCompressedForFuzz(1)...)
	body = append(body, encodeCompressedForFuzz(scSymbolPoolIndex)...)
	body = append(body, symbolValue...)

	rest := append(encodeCompressedForFuzz(1), body...) // event type 1, then body
	return prependEventSize(rest)
}

// prependEventSize prefixes an event's type and payload with its
// compressed, self-inclusive i32 size. EventIterator steps over every
// event, metadata and constant-pool events included, by that size.
func prependEventSize(rest []byte) []byte {
	for sizeLen := 1; ; sizeLen++ {
		sizeBytes := encodeCompressedForFuzz(int64(len(rest) + sizeLen))
		if len(sizeBytes) == sizeLen {
			return append(sizeBytes, rest...)
		}
	}
}

// buildExecutionSampleEvent serializes one jdk.ExecutionSample event
// record with an accurate, self-inclusive i32 size, which EventIterator
// uses to advance the cursor.
func buildExecutionSampleEvent(t *testing.T) []byte {
	t.Helper()
	payload := encodeCompressedForFuzz(scThreadPoolIndex)
	typeBytes := encodeCompressedForFuzz(scIDExecutionSample)

	total := 1 + len(typeBytes) + len(payload)
	sizeBytes := encodeCompressedForFuzz(int64(total))
	if len(sizeBytes) != 1 {
		t.Fatalf("synthetic event fixture grew past the 1-byte compressed size assumption: %d", total)
	}

	out := append([]byte{}, sizeBytes...)
	out = append(out, typeBytes...)
	out = append(out, payload...)
	return out
}

type syntheticChunkOptions struct {
	compressed   bool
	metadataOnly bool
	numEvents    int
}

// buildSyntheticChunk assembles one complete, well-formed chunk: a 68-byte
// header, a metadata event, a constant-pool event, and numEvents
// jdk.ExecutionSample event records, entirely in memory.
func buildSyntheticChunk(t *testing.T, opts syntheticChunkOptions) []byte {
	t.Helper()

	metadataEvent := buildMetadataEvent(t, "root", syntheticMetadataTree())
	cpEvent := buildConstantPoolEvent()

	metadataOffset := int64(chunkHeaderSize)
	cpOffset := metadataOffset + int64(len(metadataEvent))
	eventsStart := cpOffset + int64(len(cpEvent))

	var events []byte
	for i := 0; i < opts.numEvents; i++ {
		events = append(events, buildExecutionSampleEvent(t)...)
	}

	totalSize := eventsStart + int64(len(events))

	var features int32
	if opts.compressed {
		features = 0x1
	}

	var out []byte
	out = append(out, []byte(chunkMagic)...)
	out = appendRawI16(out, 2)
	out = appendRawI16(out, 0)
	out = appendRawI64(out, totalSize)
	out = appendRawI64(out, cpOffset)
	out = appendRawI64(out, metadataOffset)
	out = appendRawI64(out, 0) // start time ns
	out = appendRawI64(out, 0) // duration ns
	out = appendRawI64(out, 0) // start ticks
	out = appendRawI64(out, 1_000_000_000) // ticks per second
	out = appendRawI32(out, features)

	if int64(len(out)) != chunkHeaderSize {
		t.Fatalf("header builder produced %d bytes, want %d", len(out), chunkHeaderSize)
	}

	out = append(out, metadataEvent...)
	out = append(out, cpEvent...)
	out = append(out, events...)

	return out
}

func appendRawI16(b []byte, v int16) []byte {
	return append(b, byte(uint16(v)>>8), byte(uint16(v)))
}

func appendRawI32(b []byte, v int32) []byte {
	u := uint32(v)
	return append(b, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

func appendRawI64(b []byte, v int64) []byte {
	u := uint64(v)
	for i := 7; i >= 0; i-- {
		b = append(b, byte(u>>(8*uint(i))))
	}
	return b
}
