package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnion(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     Type
		expected string
	}{
		{"both absent", nil, nil, "void"},
		{"lhs absent", nil, Int, "int"},
		{"rhs absent", String, nil, "string"},
		{"mixed absorbs", Int, Mixed, "mixed"},
		{"disjoint", Int, String, "int | string"},
		{"same", Int, Int, "int"},
		{"equal but distinct", NewArray(Int), NewArray(Int), "array(int)"},
		{"overlapping unions", MustParse("int|string"), MustParse("string|float"), "int | string | float"},
		{"contained union", MustParse("int|string|float"), MustParse("float|int"), "int | string | float"},
		{"intersections are not flattened", MustParse("int&string"), MustParse("int"), "int & string | int"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Describe(Union(tc.a, tc.b)))
		})
	}
}

func TestUnionAdmitsBothOperands(t *testing.T) {
	c := NewChecker(nil)
	samples := []Type{Int, String, MustParse("array(int)"), MustParse("mapping(string:float|int)"), MustParse("function(int:void)")}

	for _, a := range samples {
		for _, b := range samples {
			ab, ba := Union(a, b), Union(b, a)
			for _, probe := range samples {
				assert.Equal(t, c.Match(ab, probe), c.Match(ba, probe), "%v and %v against %v", ab, ba, probe)
			}
			assert.True(t, c.Match(ab, a))
			assert.True(t, c.Match(ab, b))
		}
	}
}
