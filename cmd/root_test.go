package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cottand/typealg/frontend/ilerr"
	"github.com/cottand/typealg/frontend/typestore"
	"github.com/cottand/typealg/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		expected string
	}{
		{"describe", []string{"describe", "int|string*", "mapping( string : mixed )"}, "int | array(string)\nmapping(string:mixed)\n"},
		{"encode", []string{"encode", "array(int)"}, "0008 (2 units)\n"},
		{"decode", []string{"encode", "-d", "00010617"}, "array(mapping(string:mixed))\n"},
		{"arity", []string{"arity", "function(int, string ...:void)"}, "at least 1\n"},
		{"arity of a non-function", []string{"arity", "int"}, "unlimited\n"},
		{"match", []string{"match", "function(1=int:1)", "function(int:mixed)"}, "match\n  a.1 = int\n"},
		{"call", []string{"call", "function(int, string ...:void)", "int", "string", "string"}, "void\n"},
		{"call with markers", []string{"call", "function(1=mixed:array(1))", "float"}, "array(float)\n"},
		{"index", []string{"index", "mapping(string:int)", "string"}, "int\n"},
		{"index an array with a string", []string{"index", "array(mapping(string:float))", "--literal", "x"}, "array(float)\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestCommandsReject(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		expected string
	}{
		{"no match", []string{"match", "int", "string"}, "no match\n"},
		{"bad argument", []string{"call", "function(int, string ...:void)", "int", "int", "int"}, "(E003) bad argument 2 to 'function(int, string ...:void)': got 'int'\n"},
		{"too few", []string{"call", "function(int:void)"}, "(E003) too few arguments to 'function(int:void)': got 0\n"},
		{"illegal index", []string{"index", "int", "int"}, "(E004) cannot index a value of type 'int' with 'int'\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, tc.args...)
			assert.ErrorIs(t, err, errRejected)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestCommandErrors(t *testing.T) {
	out, err := run(t, "describe", "int", "strnig", "array(")
	assert.EqualError(t, err, "2 of 3 types could not be parsed")
	assert.Equal(t, "int\n"+
		"(E001) unknown type name 'strnig' at offset 0, near 'strnig'\n"+
		"(E001) type expected at offset 6, near end of input\n", out)

	out, err = run(t, "--max-units", "2", "describe", "array(array(int))")
	assert.Error(t, err)
	assert.Equal(t, "(E002) type too complex: type stack exceeded its limit of 2\n", out)

	_, err = run(t, "call", "strnig")
	assert.ErrorContains(t, err, `could not parse "strnig": unknown type name 'strnig'`)
	assert.Equal(t, "(E001) unknown type name 'strnig' at offset 0, near 'strnig'", diagnostic(err))

	_, err = run(t, "index", "array(int)")
	assert.ErrorContains(t, err, "an index type, --arrow or --literal is required")

	_, err = run(t, "encode", "-d", "99")
	assert.ErrorIs(t, err, types.ErrMalformed)

	_, err = run(t, "--registry", filepath.Join(t.TempDir(), "missing.yaml"), "describe", "int")
	assert.ErrorContains(t, err, "could not load registry")
}

func TestAsIleError(t *testing.T) {
	classified := asIleError(fmt.Errorf("wrapped: %w", errors.New("disk on fire")))
	assert.Equal(t, ilerr.None, classified.Code())
	assert.Equal(t, "(E000) unclassified error: wrapped: disk on fire", ilerr.FormatWithCode(classified))
	assert.Equal(t, "wrapped: disk on fire", diagnostic(fmt.Errorf("wrapped: %w", errors.New("disk on fire"))))
}

func TestRegistryFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
programs:
  - id: 1
    name: Point
    members:
      - name: x
        type: int
        prototyped: true
    operators:
      call: function(string:float)
`), 0o600))

	out, err := run(t, "-r", path, "index", "object(implements 1)", "--arrow", "x")
	require.NoError(t, err)
	assert.Equal(t, "int\n", out)

	out, err = run(t, "-r", path, "call", "object(is 1)", "string")
	require.NoError(t, err)
	assert.Equal(t, "float\n", out)
}

func TestEnvInternsTypes(t *testing.T) {
	flags := &globalFlags{logLevel: 8, maxUnits: types.DefaultConfig().MaxUnits}
	e, err := flags.env()
	require.NoError(t, err)

	parsed, err := e.parse("array(int|string)", "array(int|string)")
	require.NoError(t, err)
	assert.Same(t, parsed[0], parsed[1])

	ret, err := e.checker.CheckCall(types.MustParse("function(mixed:array(int|string))"), []types.Type{types.Int}, nil)
	require.NoError(t, err)
	assert.Same(t, parsed[0], ret)
}

func TestStoreCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "types.db")
	key := typestore.Key(types.MustParse("function(int:string)"))

	out, err := run(t, "store", "--db", db, "put", "function(int:string)", "int")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("%s\tfunction(int:string)\n", key))

	out, err = run(t, "store", "--db", db, "get", key)
	require.NoError(t, err)
	assert.Equal(t, "function(int:string)\n", out)

	out, err = run(t, "store", "--db", db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, key+"\tfunction(int:string)\n")
	assert.Contains(t, out, typestore.Key(types.Int)+"\tint\n")

	_, err = run(t, "store", "--db", db, "get", "0000000000000000")
	assert.ErrorIs(t, err, typestore.ErrNotFound)
}
