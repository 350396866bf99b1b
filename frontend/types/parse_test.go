package types

import (
	"go/token"
	"strings"
	"testing"

	"github.com/cottand/typealg/frontend/ilerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		input    string
		expected Type
	}{
		{"int", Int},
		{" unknown ", Unknown},
		{"array", AnyArray},
		{"array(string)", NewArray(String)},
		{"string*", NewArray(String)},
		{"int**", NewArray(NewArray(Int))},
		{"multiset(float)", NewMultiset(Float)},
		{"mapping", AnyMapping},
		{"mapping(string:int)", NewMapping(String, Int)},
		{"function", AnyFunction},
		{"function(:void)", NewFunction(nil, nil, nil)},
		{"function(int, string:void)", NewFunction([]Type{Int, String}, nil, nil)},
		{"function(int,string...:void)", NewFunction([]Type{Int}, String, Void)},
		{"function(mixed ... : mixed)", AnyFunction},
		{"object", AnyObject},
		{"object(is 12)", NewObject(Is, 12)},
		{"object( implements 3 )", NewObject(Implements, 3)},
		{"program", Program},
		{"int|string|float", NewOr(NewOr(Int, String), Float)},
		{"int&string&float", NewAnd(Int, NewAnd(String, Float))},
		{"int|string&float", NewOr(Int, NewAnd(String, Float))},
		{"!int*", NewNot(NewArray(Int))},
		{"(!int)*", NewArray(NewNot(Int))},
		{"!!int", NewNot(NewNot(Int))},
		{"(int|string)*", NewArray(NewOr(Int, String))},
		{"void|mixed", Any},
		{"1", NewMarker(1)},
		{"1=int|string", NewAssign(1, NewOr(Int, String))},
		{"function(1=int:1)", NewFunction([]Type{NewAssign(1, Int)}, nil, NewMarker(1))},
		{"mapping(0=mixed:array(0))", NewMapping(NewAssign(0, Mixed), NewArray(NewMarker(0)))},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseType(tc.input)
			require.NoError(t, err)
			assert.True(t, Equal(tc.expected, got), "expected %v, got %v", tc.expected, got)
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	testCases := []struct {
		input    string
		offset   int
		expected string
	}{
		{"", 0, "type expected at offset 0, near end of input"},
		{"foo", 0, "unknown type name 'foo' at offset 0, near 'foo'"},
		{"int string", 4, "unexpected trailing input at offset 4, near 'string'"},
		{"array(int", 9, "expected ')' at offset 9, near end of input"},
		{"mapping(int)", 11, "expected ':' at offset 11, near ')'"},
		{"function(int)", 12, "expected ':' at offset 12, near ')'"},
		{"function(int,:void)", 13, "argument type expected at offset 13, near ':void)'"},
		{"function(int...)", 15, "expected ':' at offset 15, near ')'"},
		{"12", 0, "marker must be a single digit at offset 0, near '12'"},
		{"object(was 1)", 7, "expected 'is' or 'implements' but found 'was' at offset 7, near 'was 1)'"},
		{"object(is x)", 10, "program id expected at offset 10, near 'x)'"},
		{"int|", 4, "type expected at offset 4, near end of input"},
		{"array(int | strnig)", 12, "unknown type name 'strnig' at offset 12, near 'strnig)'"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseType(tc.input)
			require.Error(t, err)
			syntax, ok := err.(ilerr.NewSyntax)
			require.True(t, ok, "expected a syntax error, got %T", err)
			assert.Equal(t, tc.offset, syntax.Offset)
			assert.Equal(t, tc.expected, syntax.Error())
			assert.Equal(t, ilerr.Syntax, syntax.Code())
		})
	}
}

func TestParseTypeAtReportsSourcePosition(t *testing.T) {
	_, err := NewBuilder(DefaultConfig()).ParseTypeAt("array(bogus)", token.Pos(100))
	require.Error(t, err)
	syntax := err.(ilerr.NewSyntax)
	assert.Equal(t, token.Pos(106), syntax.Pos())
	assert.Equal(t, token.Pos(112), syntax.End())
}

func TestParseTypeRestoresBuilder(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	require.NoError(t, b.Mark())
	require.NoError(t, b.Push(TagInt))

	_, err := b.ParseType("function(int, string, bogus:void)")
	require.Error(t, err)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 1, b.Depth())

	got, err := b.ParseType("string")
	require.NoError(t, err)
	assert.Equal(t, String, got)

	// the construction in progress is untouched
	outer, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, Int, outer)
}

func TestParseTypeTooComplex(t *testing.T) {
	b := NewBuilder(Config{MaxUnits: 8})
	_, err := b.ParseType("function(int, int, int, int, int:void)")
	require.Error(t, err)
	var ileErr ilerr.IleError
	require.ErrorAs(t, err, &ileErr)
	assert.Equal(t, ilerr.TypeTooComplex, ileErr.Code())

	_, err = b.ParseType("function(int:void)")
	assert.NoError(t, err)
}

func TestParseDeepNegation(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	_, err := b.ParseType(strings.Repeat("!", 1_000_000) + "int")
	var ileErr ilerr.IleError
	require.ErrorAs(t, err, &ileErr)
	assert.Equal(t, ilerr.TypeTooComplex, ileErr.Code())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Depth())

	parsed, err := b.ParseType(strings.Repeat("!", 1000) + "int")
	require.NoError(t, err)
	assert.Equal(t, KindNot, parsed.Kind())
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, Int, MustParse("int"))
	assert.Panics(t, func() { MustParse("int|") })
}
