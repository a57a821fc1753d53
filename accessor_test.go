package jfr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccessorNavigatesThroughConstantPoolReference(t *testing.T) {
	data := buildSyntheticChunk(t, syntheticChunkOptions{compressed: true, numEvents: 1})
	jr := Open(NewMemoryByteSource(data), ReaderOptions{})
	chunk, err := jr.Next()
	require.NoError(t, err)

	it := chunk.Events()
	ev, ok := it.Next()
	require.True(t, ok)

	acc := NewAccessor(chunk, ev.Value)
	threadRef, ok := acc.GetField("sampledThread")
	require.True(t, ok)
	require.True(t, threadRef.Value().IsConstantPoolRef(), "GetField does not resolve its own result")

	osName, ok := threadRef.GetField("osName")
	require.True(t, ok, "GetField must resolve one constant-pool hop before the field lookup")
	s, ok := osName.Str()
	require.True(t, ok)
	require.Equal(t, scThreadOSName, s)
}

func TestAccessorGetFieldOnNonObjectFails(t *testing.T) {
	data := buildSyntheticChunk(t, syntheticChunkOptions{compressed: true, numEvents: 1})
	jr := Open(NewMemoryByteSource(data), ReaderOptions{})
	chunk, err := jr.Next()
	require.NoError(t, err)

	it := chunk.Events()
	ev, _ := it.Next()
	acc := NewAccessor(chunk, ev.Value)
	threadRef, ok := acc.GetField("sampledThread")
	require.True(t, ok)
	osName, ok := threadRef.GetField("osName")
	require.True(t, ok)

	_, ok = osName.GetField("anything")
	require.False(t, ok, "a string value has no fields")
}

func TestAccessorElemsLeavesReferencesUnresolved(t *testing.T) {
	pool := primitiveTypePool(t)
	arrTd := &TypeDescriptor{ClassID: 60, Name: "example.ThreadArray", Fields: nil}
	pool.add(arrTd)

	arr := ValueDescriptor{kind: valueKindArray, elems: []ValueDescriptor{
		{kind: valueKindConstantPoolRef, poolClassID: vtIDThread, poolIndex: 1},
		{kind: valueKindConstantPoolRef, poolClassID: vtIDThread, poolIndex: 2},
	}}

	cp := newConstantPool()
	chunk := &Chunk{Types: pool, ConstantPool: cp}
	acc := NewAccessor(chunk, arr)
	elems := acc.Elems()
	require.Len(t, elems, 2)
	require.True(t, elems[0].Value().IsConstantPoolRef())
	require.True(t, elems[1].Value().IsConstantPoolRef())
}

func TestAccessorTypedPrimitiveExtraction(t *testing.T) {
	v := ValueDescriptor{kind: valueKindPrimitive, primKind: primitiveInt, i: 42}
	chunk := &Chunk{Types: newTypePool(), ConstantPool: newConstantPool()}
	acc := NewAccessor(chunk, v)

	got, ok := acc.Int()
	require.True(t, ok)
	require.Equal(t, int32(42), got)

	_, ok = acc.Str()
	require.False(t, ok)
}

func TestAccessorResolvePublicWrapper(t *testing.T) {
	pool := cpTestTypePool()
	cp := newConstantPool()
	buf := buildCPEvent(0, vtIDThread, 5, encodeUTF8Value("worker-1"))
	r := newByteReader(NewMemoryByteSource(buf))
	r.setMode(encodingCompressed)
	_, err := decodeConstantPoolEvent(r, pool, cp)
	require.NoError(t, err)

	chunk := &Chunk{Types: pool, ConstantPool: cp}
	ref := ValueDescriptor{kind: valueKindConstantPoolRef, poolClassID: vtIDThread, poolIndex: 5}
	acc := NewAccessor(chunk, ref)

	resolved, ok := acc.Resolve()
	require.True(t, ok)
	require.True(t, resolved.Value().IsObject())
}
