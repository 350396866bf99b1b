package types

import (
	"testing"

	"github.com/cottand/typealg/frontend/ast"
	"github.com/cottand/typealg/frontend/ilerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexType(t *testing.T) {
	testCases := []struct {
		container string
		index     string
		expected  string
	}{
		{"mapping(string:int)", "string", "int"},
		{"mapping", "int", "mixed"},
		{"array(int)", "int", "int"},
		{"array(mapping(string:float))", "string", "array(float)"},
		{"array(mapping(string:float))", "mixed", "array(float) | mapping(string:float)"},
		{"array(array(int))", "string", "array(array)"},
		{"string", "int", "int"},
		{"multiset(string)", "string", "int"},
		{"mapping(string:int) | array(float)", "int", "int | float"},
		{"mapping(string:int) & mapping(string:float)", "string", "float"},
		{"int", "int", "mixed"},
		{"mixed", "string", "mixed"},
		{"object(is 77)", "string", "mixed"},
	}

	c := NewChecker(nil)
	for _, tc := range testCases {
		t.Run(tc.container+"["+tc.index+"]", func(t *testing.T) {
			got := c.IndexType(MustParse(tc.container), MustParse(tc.index), ast.Bracket(nil))
			assert.Equal(t, tc.expected, Describe(got))
		})
	}
}

func TestIndexObject(t *testing.T) {
	testCases := []struct {
		name      string
		container string
		site      ast.IndexSite
		expected  string
	}{
		{"prototyped member", "object(implements 1)", ast.Arrow(nil, "x"), "int"},
		{"untyped member of a possible subclass", "object(implements 1)", ast.Arrow(nil, "y"), "mixed"},
		{"member of an exact program", "object(is 1)", ast.Arrow(nil, "y"), "float"},
		{"final member", "object(implements 2)", ast.Bracket(nil).WithLiteral("z"), "float"},
		{"missing member", "object(is 1)", ast.Arrow(nil, "w"), "int"},
		{"index without a literal", "object(is 1)", ast.Bracket(nil), "mixed"},
		{"overloaded index", "object(is 3)", ast.Bracket(nil).WithLiteral("x"), "mixed"},
		{"arrow is not overloaded by index", "object(is 3)", ast.Arrow(nil, "x"), "int"},
		{"unknown program", "object(is 77)", ast.Arrow(nil, "x"), "mixed"},
	}

	c := NewChecker(newFakeRegistry(testPrograms))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.IndexType(MustParse(tc.container), String, tc.site)
			assert.Equal(t, tc.expected, Describe(got))
		})
	}
}

func TestIsIndexingLegal(t *testing.T) {
	testCases := []struct {
		container string
		index     string
		site      ast.IndexSite
		expected  bool
	}{
		{"string", "int", ast.Bracket(nil), true},
		{"string", "string", ast.Bracket(nil), false},
		{"array(int)", "int", ast.Bracket(nil), true},
		{"array(int)", "string", ast.Bracket(nil), false},
		{"array(mapping(string:int))", "string", ast.Bracket(nil), true},
		{"mapping(string:int)", "int", ast.Bracket(nil), false},
		{"mapping(string:int)", "string", ast.Bracket(nil), true},
		{"mapping", "int", ast.Bracket(nil), true},
		{"multiset(int)", "int", ast.Bracket(nil), true},
		{"multiset(int)", "float", ast.Bracket(nil), false},
		{"int", "int", ast.Bracket(nil), false},
		{"float", "int", ast.Bracket(nil), false},
		{"mixed", "float", ast.Bracket(nil), true},
		{"!int", "int", ast.Bracket(nil), true},
		{"int | string", "int", ast.Bracket(nil), true},
		{"int & string", "int", ast.Bracket(nil), false},
		{"object(is 1)", "string", ast.Arrow(nil, "x"), true},
		{"object(is 1)", "int", ast.Bracket(nil), false},
		{"object(is 3)", "int", ast.Bracket(nil), true},
		{"object(is 3)", "int", ast.Arrow(nil, "x"), false},
		{"object(is 77)", "int", ast.Bracket(nil), true},
	}

	c := NewChecker(newFakeRegistry(testPrograms))
	for _, tc := range testCases {
		t.Run(tc.container+tc.site.Op.String()+tc.index, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.IsIndexingLegal(MustParse(tc.container), MustParse(tc.index), tc.site))
		})
	}
}

func TestCheckIndex(t *testing.T) {
	c := NewChecker(nil)
	at := ast.Range{PosStart: 3, PosEnd: 9}

	ret, err := c.CheckIndex(Int, Int, ast.Bracket(at))
	require.Error(t, err)
	assert.Equal(t, Mixed, ret)
	var illegal ilerr.NewIllegalIndex
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, "cannot index a value of type 'int' with 'int'", illegal.Error())
	assert.Equal(t, at, ast.RangeOf(illegal))

	_, err = c.CheckIndex(Float, String, ast.Arrow(at, "x"))
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, "cannot use '->' on a value of type 'float'", illegal.Error())

	ret, err = c.CheckIndex(MustParse("array(string)"), Int, ast.Bracket(at))
	require.NoError(t, err)
	assert.Equal(t, String, ret)
}
