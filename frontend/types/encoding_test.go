package types

import (
	"bytes"
	"testing"

	"github.com/cottand/typealg/frontend/ilerr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		name     string
		input    Type
		expected []byte
	}{
		{"leaf", Int, []byte{TagInt}},
		{"array", NewArray(String), []byte{TagArray, TagString}},
		{"mapping", NewMapping(String, Int), []byte{TagMapping, TagString, TagInt}},
		{"function", NewFunction([]Type{Int}, nil, nil), []byte{TagFunction, TagInt, TagMany, TagVoid, TagVoid}},
		{"variadic function", NewFunction([]Type{Int}, String, Void), []byte{TagFunction, TagInt, TagMany, TagString, TagVoid}},
		{"object", NewObject(Is, 5), []byte{TagObject, byte(Is), 0, 0, 0, 5}},
		{"large program id", NewObject(Implements, 0x01020304), []byte{TagObject, byte(Implements), 1, 2, 3, 4}},
		{"assign", NewAssign(1, Int), []byte{TagAssign, '1', TagInt}},
		{"marker", NewMarker(9), []byte{'9'}},
		{"union", NewOr(NewOr(Int, String), Float), []byte{TagOr, TagOr, TagInt, TagString, TagFloat}},
		{"negation", NewNot(NewAnd(Int, Mixed)), []byte{TagNot, TagAnd, TagInt, TagMixed}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := Encode(tc.input)
			assert.Equal(t, tc.expected, encoded)

			length, err := Length(encoded, 0)
			require.NoError(t, err)
			assert.Equal(t, len(encoded), length)

			decoded, err := Decode(encoded)
			require.NoError(t, err)
			assert.True(t, Equal(tc.input, decoded), "expected %v, got %v", tc.input, decoded)
			assert.Equal(t, encoded, Encode(decoded))
		})
	}
}

func TestLengthOfChildren(t *testing.T) {
	encoded := Encode(MustParse("function(array(int), mapping(string:1=int) ...:object(is 7))"))

	// skip the function tag to land on its first argument
	length, err := Length(encoded, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, length)

	// the tail follows the first argument and the sentinel
	length, err = Length(encoded, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, length)

	length, err = Length(encoded, 9)
	require.NoError(t, err)
	assert.Equal(t, 1+objectPayload, length)
	assert.Equal(t, len(encoded), 9+length)
}

func TestMalformedEncoding(t *testing.T) {
	testCases := []struct {
		name  string
		input []byte
	}{
		{"empty", []byte{}},
		{"unknown tag", []byte{99}},
		{"missing child", []byte{TagArray}},
		{"missing second child", []byte{TagMapping, TagInt}},
		{"truncated object", []byte{TagObject, 1, 0, 0}},
		{"unknown variance", []byte{TagObject, 7, 0, 0, 0, 1}},
		{"assign without marker", []byte{TagAssign, TagInt, TagInt}},
		{"function without sentinel", []byte{TagFunction, TagInt, TagInt}},
		{"function without return", []byte{TagFunction, TagMany, TagVoid}},
		{"trailing bytes", []byte{TagInt, TagInt}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.input)
			assert.True(t, errors.Is(err, ErrMalformed), "expected ErrMalformed, got %v", err)
		})
	}

	t.Run("length of unknown variance", func(t *testing.T) {
		_, err := Length([]byte{TagObject, 2, 0, 0, 0, 0}, 0)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("length of unknown tag", func(t *testing.T) {
		_, err := Length([]byte{TagArray, 99}, 0)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Panics(t, func() { MustLength([]byte{TagArray, 99}, 0) })
	})
}

func TestDecodeNesting(t *testing.T) {
	negations := func(n int) []byte {
		return append(bytes.Repeat([]byte{TagNot}, n), TagInt)
	}

	decoded, err := Decode(negations(maxNesting))
	require.NoError(t, err)
	assert.Equal(t, KindNot, decoded.Kind())

	var ileErr ilerr.IleError
	_, err = Decode(negations(maxNesting + 1))
	require.ErrorAs(t, err, &ileErr)
	assert.Equal(t, ilerr.TypeTooComplex, ileErr.Code())

	_, err = Length(negations(maxNesting+1), 0)
	require.ErrorAs(t, err, &ileErr)
	assert.Equal(t, ilerr.TypeTooComplex, ileErr.Code())
}

func TestDecodeHex(t *testing.T) {
	decoded, err := DecodeHex("00010617")
	require.NoError(t, err)
	assert.Equal(t, "array(mapping(string:mixed))", Describe(decoded))

	_, err = DecodeHex("zz")
	assert.ErrorIs(t, err, ErrMalformed)
}
