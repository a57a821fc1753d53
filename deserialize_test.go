package jfr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type threadRecord struct {
	OSName string `jfr:"osName"`
	ID     int32  `jfr:"id"`
}

type executionSampleRecord struct {
	SampledThread threadRecord `jfr:"sampledThread"`
}

func TestDeserializeResolvesConstantPoolFieldTransparently(t *testing.T) {
	data := buildSyntheticChunk(t, syntheticChunkOptions{compressed: true, numEvents: 1})
	jr := Open(NewMemoryByteSource(data), ReaderOptions{})
	chunk, err := jr.Next()
	require.NoError(t, err)

	it := chunk.Events()
	ev, ok := it.Next()
	require.True(t, ok)

	rec, err := Deserialize[executionSampleRecord](chunk, ev.Value)
	require.NoError(t, err)
	require.Equal(t, scThreadOSName, rec.SampledThread.OSName)
	require.Equal(t, int32(scThreadID), rec.SampledThread.ID)
}

func TestDeserializeIgnoresSchemaFieldWithNoMatchingStructField(t *testing.T) {
	type nameOnly struct {
		OSName string `jfr:"osName"`
	}
	data := buildSyntheticChunk(t, syntheticChunkOptions{compressed: true, numEvents: 1})
	jr := Open(NewMemoryByteSource(data), ReaderOptions{})
	chunk, err := jr.Next()
	require.NoError(t, err)
	threadVal, ok := chunk.ConstantPool.Get(scIDThread, scThreadPoolIndex)
	require.True(t, ok)

	rec, err := Deserialize[nameOnly](chunk, threadVal)
	require.NoError(t, err)
	require.Equal(t, scThreadOSName, rec.OSName)
}

func TestDeserializeRequiredStructFieldWithNoMatchingSchemaFieldErrors(t *testing.T) {
	type extraRequiredField struct {
		OSName string `jfr:"osName"`
		Extra  string `jfr:"extra"`
	}
	data := buildSyntheticChunk(t, syntheticChunkOptions{compressed: true, numEvents: 1})
	jr := Open(NewMemoryByteSource(data), ReaderOptions{})
	chunk, err := jr.Next()
	require.NoError(t, err)
	threadVal, ok := chunk.ConstantPool.Get(scIDThread, scThreadPoolIndex)
	require.True(t, ok)

	_, err = Deserialize[extraRequiredField](chunk, threadVal)
	require.Error(t, err, "a required struct field with no matching schema field must not stay silently zero-valued")
	var desErr *DeserializeError
	require.ErrorAs(t, err, &desErr)
}

func TestDeserializeOptionalPointerFieldHandlesNull(t *testing.T) {
	pool := newTypePool()
	pool.add(&TypeDescriptor{ClassID: vtIDString, Name: primString, SimpleType: true})
	td := &TypeDescriptor{
		ClassID: 70,
		Name:    "example.Optional",
		Fields:  []FieldDescriptor{{ClassID: vtIDString, Name: "name"}},
	}
	pool.add(td)

	value := ValueDescriptor{kind: valueKindObject, objClassID: td.ClassID, fields: []ValueDescriptor{
		{kind: valueKindNull},
	}}
	chunk := &Chunk{Types: pool, ConstantPool: newConstantPool()}

	type withPointer struct {
		Name *string `jfr:"name"`
	}
	rec, err := Deserialize[withPointer](chunk, value)
	require.NoError(t, err)
	require.Nil(t, rec.Name)

	type withoutPointer struct {
		Name string `jfr:"name"`
	}
	_, err = Deserialize[withoutPointer](chunk, value)
	require.Error(t, err, "a non-optional field cannot absorb a null string value")
}

type linkedRecord struct {
	Next *linkedRecord `jfr:"next"`
}

func TestDeserializeCyclicConstantPoolReferenceErrors(t *testing.T) {
	const idLinked = 80
	pool := newTypePool()
	td := &TypeDescriptor{
		ClassID: idLinked,
		Name:    "example.Linked",
		Fields:  []FieldDescriptor{{ClassID: idLinked, Name: "next", ConstantPool: true}},
	}
	pool.add(td)

	cp := newConstantPool()
	selfRef := ValueDescriptor{kind: valueKindConstantPoolRef, poolClassID: idLinked, poolIndex: 1}
	cp.values[constantPoolKey{classID: idLinked, index: 1}] = ValueDescriptor{
		kind: valueKindObject, objClassID: idLinked, fields: []ValueDescriptor{selfRef},
	}

	chunk := &Chunk{Types: pool, ConstantPool: cp}
	_, err := Deserialize[linkedRecord](chunk, selfRef)
	require.Error(t, err)
	var desErr *DeserializeError
	require.ErrorAs(t, err, &desErr)
}

func TestDeserializeArrayField(t *testing.T) {
	pool := primitiveTypePool(t)
	td := &TypeDescriptor{
		ClassID: 90,
		Name:    "example.Counters",
		Fields:  []FieldDescriptor{{ClassID: vtIDInt, Name: "values", ArrayType: true}},
	}
	pool.add(td)

	value := ValueDescriptor{kind: valueKindObject, objClassID: td.ClassID, fields: []ValueDescriptor{
		{kind: valueKindArray, elems: []ValueDescriptor{
			{kind: valueKindPrimitive, primKind: primitiveInt, i: 1},
			{kind: valueKindPrimitive, primKind: primitiveInt, i: 2},
			{kind: valueKindPrimitive, primKind: primitiveInt, i: 3},
		}},
	}}
	chunk := &Chunk{Types: pool, ConstantPool: newConstantPool()}

	type counters struct {
		Values []int32 `jfr:"values"`
	}
	rec, err := Deserialize[counters](chunk, value)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3}, rec.Values)
}
