package types

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"iter"
	"slices"

	"github.com/cottand/typealg/util"
)

// Kind identifies the variant of a Type
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindProgram
	KindVoid
	KindMixed
	KindUnknown
	KindArray
	KindMultiset
	KindMapping
	KindFunction
	KindObject
	KindOr
	KindAnd
	KindNot
	KindAssign
	KindMarker
)

var kindNames = [...]string{
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindProgram:  "program",
	KindVoid:     "void",
	KindMixed:    "mixed",
	KindUnknown:  "unknown",
	KindArray:    "array",
	KindMultiset: "multiset",
	KindMapping:  "mapping",
	KindFunction: "function",
	KindObject:   "object",
	KindOr:       "or",
	KindAnd:      "and",
	KindNot:      "not",
	KindAssign:   "assign",
	KindMarker:   "marker",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ProgramID identifies a compiled program. 0 stands for any program.
type ProgramID uint32

// Variance qualifies how an ObjectType relates to its program
type Variance uint8

const (
	// Implements accepts any object whose program structurally implements the program
	Implements Variance = iota
	// Is accepts only objects of exactly the program
	Is
)

func (v Variance) String() string {
	if v == Is {
		return "is"
	}
	return "implements"
}

// Marker identifies a polymorphic placeholder within a type
type Marker uint8

// MaxMarkers is the number of distinct markers, which are numbered from 0
const MaxMarkers = 10

// Type is a structural description of the values a position may hold.
//
// Types are immutable once built and may be shared freely, including across goroutines.
// Use Equal to compare them.
type Type interface {
	fmt.Stringer
	Kind() Kind
	// Hash depends on the structure of the type only, so structurally equal types share it
	Hash() uint64
	children() iter.Seq[Type]
	// doMap returns a copy of the type where every child c is replaced by f(c)
	doMap(f func(Type) Type) Type
}

var (
	_ Type = basicType{}
	_ Type = (*ArrayType)(nil)
	_ Type = (*MultisetType)(nil)
	_ Type = (*MappingType)(nil)
	_ Type = (*FunctionType)(nil)
	_ Type = (*ObjectType)(nil)
	_ Type = (*OrType)(nil)
	_ Type = (*AndType)(nil)
	_ Type = (*NotType)(nil)
	_ Type = (*AssignType)(nil)
	_ Type = MarkerRef{}
)

var emptySeqType iter.Seq[Type] = func(func(Type) bool) {}

func hashNode(kind Kind, payload uint64, children ...Type) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 9+8*len(children))
	buf = append(buf, byte(kind))
	buf = binary.LittleEndian.AppendUint64(buf, payload)
	for _, child := range children {
		buf = binary.LittleEndian.AppendUint64(buf, child.Hash())
	}
	_, _ = h.Write(buf)
	return h.Sum64()
}

// basicType is a type without children
type basicType struct {
	kind Kind
}

var (
	Int     Type = basicType{KindInt}
	Float   Type = basicType{KindFloat}
	String  Type = basicType{KindString}
	Program Type = basicType{KindProgram}
	Void    Type = basicType{KindVoid}
	Mixed   Type = basicType{KindMixed}
	Unknown Type = basicType{KindUnknown}
)

var (
	AnyArray    = NewArray(Mixed)
	AnyMultiset = NewMultiset(Mixed)
	AnyMapping  = NewMapping(Mixed, Mixed)
	AnyFunction = NewFunction(nil, Mixed, Mixed)
	AnyObject   = NewObject(Implements, 0)
	// Any also admits the absence of a value
	Any = NewOr(Void, Mixed)
)

func (t basicType) Kind() Kind                 { return t.kind }
func (t basicType) Hash() uint64               { return hashNode(t.kind, 0) }
func (t basicType) String() string             { return Describe(t) }
func (t basicType) children() iter.Seq[Type]   { return emptySeqType }
func (t basicType) doMap(func(Type) Type) Type { return t }

type ArrayType struct {
	elem Type
	hash uint64
}

func NewArray(elem Type) *ArrayType {
	return &ArrayType{elem: elem, hash: hashNode(KindArray, 0, elem)}
}

func (t *ArrayType) Elem() Type                   { return t.elem }
func (t *ArrayType) Kind() Kind                   { return KindArray }
func (t *ArrayType) Hash() uint64                 { return t.hash }
func (t *ArrayType) String() string               { return Describe(t) }
func (t *ArrayType) children() iter.Seq[Type]     { return slices.Values([]Type{t.elem}) }
func (t *ArrayType) doMap(f func(Type) Type) Type { return NewArray(f(t.elem)) }

type MultisetType struct {
	elem Type
	hash uint64
}

func NewMultiset(elem Type) *MultisetType {
	return &MultisetType{elem: elem, hash: hashNode(KindMultiset, 0, elem)}
}

func (t *MultisetType) Elem() Type                   { return t.elem }
func (t *MultisetType) Kind() Kind                   { return KindMultiset }
func (t *MultisetType) Hash() uint64                 { return t.hash }
func (t *MultisetType) String() string               { return Describe(t) }
func (t *MultisetType) children() iter.Seq[Type]     { return slices.Values([]Type{t.elem}) }
func (t *MultisetType) doMap(f func(Type) Type) Type { return NewMultiset(f(t.elem)) }

type MappingType struct {
	key, value Type
	hash       uint64
}

func NewMapping(key, value Type) *MappingType {
	return &MappingType{key: key, value: value, hash: hashNode(KindMapping, 0, key, value)}
}

func (t *MappingType) Key() Type                    { return t.key }
func (t *MappingType) Value() Type                  { return t.value }
func (t *MappingType) Kind() Kind                   { return KindMapping }
func (t *MappingType) Hash() uint64                 { return t.hash }
func (t *MappingType) String() string               { return Describe(t) }
func (t *MappingType) children() iter.Seq[Type]     { return slices.Values([]Type{t.key, t.value}) }
func (t *MappingType) doMap(f func(Type) Type) Type { return NewMapping(f(t.key), f(t.value)) }

// FunctionType accepts its fixed args positionally, followed by any number of
// arguments of its tail type. A Void tail accepts no further arguments.
type FunctionType struct {
	args      []Type
	tail, ret Type
	hash      uint64
}

// NewFunction copies args. A nil tail or ret stands for Void.
func NewFunction(args []Type, tail, ret Type) *FunctionType {
	if tail == nil {
		tail = Void
	}
	if ret == nil {
		ret = Void
	}
	t := &FunctionType{args: slices.Clone(args), tail: tail, ret: ret}
	t.hash = hashNode(KindFunction, uint64(len(args)), slices.Collect(t.children())...)
	return t
}

// Args returns a copy of the fixed arguments
func (t *FunctionType) Args() []Type { return slices.Clone(t.args) }

// NumArgs is the number of fixed arguments
func (t *FunctionType) NumArgs() int { return len(t.args) }

// Arg returns the type accepted at the 0-based argument position i
func (t *FunctionType) Arg(i int) Type {
	if i < len(t.args) {
		return t.args[i]
	}
	return t.tail
}

func (t *FunctionType) Tail() Type       { return t.tail }
func (t *FunctionType) Return() Type     { return t.ret }
func (t *FunctionType) IsVariadic() bool { return t.tail.Kind() != KindVoid }
func (t *FunctionType) Kind() Kind       { return KindFunction }
func (t *FunctionType) Hash() uint64     { return t.hash }
func (t *FunctionType) String() string   { return Describe(t) }
func (t *FunctionType) children() iter.Seq[Type] {
	return util.ConcatIter(slices.Values(t.args), util.SingleIter(t.tail), util.SingleIter(t.ret))
}
func (t *FunctionType) doMap(f func(Type) Type) Type {
	args := make([]Type, len(t.args))
	for i, arg := range t.args {
		args[i] = f(arg)
	}
	return NewFunction(args, f(t.tail), f(t.ret))
}

type ObjectType struct {
	variance Variance
	program  ProgramID
	hash     uint64
}

func NewObject(variance Variance, program ProgramID) *ObjectType {
	return &ObjectType{
		variance: variance,
		program:  program,
		hash:     hashNode(KindObject, uint64(variance)<<32|uint64(program)),
	}
}

func (t *ObjectType) Variance() Variance         { return t.variance }
func (t *ObjectType) Program() ProgramID         { return t.program }
func (t *ObjectType) Kind() Kind                 { return KindObject }
func (t *ObjectType) Hash() uint64               { return t.hash }
func (t *ObjectType) String() string             { return Describe(t) }
func (t *ObjectType) children() iter.Seq[Type]   { return emptySeqType }
func (t *ObjectType) doMap(func(Type) Type) Type { return t }

type OrType struct {
	lhs, rhs Type
	hash     uint64
}

// NewOr builds the union of lhs and rhs as given. See Union for the simplifying version.
func NewOr(lhs, rhs Type) *OrType {
	return &OrType{lhs: lhs, rhs: rhs, hash: hashNode(KindOr, 0, lhs, rhs)}
}

func (t *OrType) Lhs() Type                    { return t.lhs }
func (t *OrType) Rhs() Type                    { return t.rhs }
func (t *OrType) Kind() Kind                   { return KindOr }
func (t *OrType) Hash() uint64                 { return t.hash }
func (t *OrType) String() string               { return Describe(t) }
func (t *OrType) children() iter.Seq[Type]     { return slices.Values([]Type{t.lhs, t.rhs}) }
func (t *OrType) doMap(f func(Type) Type) Type { return NewOr(f(t.lhs), f(t.rhs)) }

type AndType struct {
	lhs, rhs Type
	hash     uint64
}

func NewAnd(lhs, rhs Type) *AndType {
	return &AndType{lhs: lhs, rhs: rhs, hash: hashNode(KindAnd, 0, lhs, rhs)}
}

func (t *AndType) Lhs() Type                    { return t.lhs }
func (t *AndType) Rhs() Type                    { return t.rhs }
func (t *AndType) Kind() Kind                   { return KindAnd }
func (t *AndType) Hash() uint64                 { return t.hash }
func (t *AndType) String() string               { return Describe(t) }
func (t *AndType) children() iter.Seq[Type]     { return slices.Values([]Type{t.lhs, t.rhs}) }
func (t *AndType) doMap(f func(Type) Type) Type { return NewAnd(f(t.lhs), f(t.rhs)) }

type NotType struct {
	negated Type
	hash    uint64
}

func NewNot(negated Type) *NotType {
	return &NotType{negated: negated, hash: hashNode(KindNot, 0, negated)}
}

func (t *NotType) Negated() Type                { return t.negated }
func (t *NotType) Kind() Kind                   { return KindNot }
func (t *NotType) Hash() uint64                 { return t.hash }
func (t *NotType) String() string               { return Describe(t) }
func (t *NotType) children() iter.Seq[Type]     { return slices.Values([]Type{t.negated}) }
func (t *NotType) doMap(f func(Type) Type) Type { return NewNot(f(t.negated)) }

// AssignType matches like its inner type and, when matching succeeds,
// records what it was matched against under its marker
type AssignType struct {
	marker Marker
	inner  Type
	hash   uint64
}

func NewAssign(marker Marker, inner Type) *AssignType {
	mustBeMarker(marker)
	return &AssignType{marker: marker, inner: inner, hash: hashNode(KindAssign, uint64(marker), inner)}
}

func (t *AssignType) Marker() Marker               { return t.marker }
func (t *AssignType) Inner() Type                  { return t.inner }
func (t *AssignType) Kind() Kind                   { return KindAssign }
func (t *AssignType) Hash() uint64                 { return t.hash }
func (t *AssignType) String() string               { return Describe(t) }
func (t *AssignType) children() iter.Seq[Type]     { return slices.Values([]Type{t.inner}) }
func (t *AssignType) doMap(f func(Type) Type) Type { return NewAssign(t.marker, f(t.inner)) }

// MarkerRef stands for whatever its marker is currently bound to, or Mixed
type MarkerRef struct {
	marker Marker
}

func NewMarker(marker Marker) MarkerRef {
	mustBeMarker(marker)
	return MarkerRef{marker: marker}
}

func (t MarkerRef) Marker() Marker             { return t.marker }
func (t MarkerRef) Kind() Kind                 { return KindMarker }
func (t MarkerRef) Hash() uint64               { return hashNode(KindMarker, uint64(t.marker)) }
func (t MarkerRef) String() string             { return Describe(t) }
func (t MarkerRef) children() iter.Seq[Type]   { return emptySeqType }
func (t MarkerRef) doMap(func(Type) Type) Type { return t }

func mustBeMarker(marker Marker) {
	if marker >= MaxMarkers {
		panic(fmt.Sprintf("marker %d out of range", marker))
	}
}

// Equal reports whether a and b are structurally identical
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() || a.Hash() != b.Hash() {
		return false
	}
	switch a := a.(type) {
	case *ObjectType:
		other := b.(*ObjectType)
		return a.variance == other.variance && a.program == other.program
	case *AssignType:
		other := b.(*AssignType)
		return a.marker == other.marker && Equal(a.inner, other.inner)
	case *FunctionType:
		if len(a.args) != len(b.(*FunctionType).args) {
			return false
		}
	}
	return slices.EqualFunc(slices.Collect(a.children()), slices.Collect(b.children()), Equal)
}

// Walk yields t and all of its descendants in prefix order
func Walk(t Type) iter.Seq[Type] {
	return func(yield func(Type) bool) {
		walk(t, yield)
	}
}

func walk(t Type, yield func(Type) bool) bool {
	if !yield(t) {
		return false
	}
	for child := range t.children() {
		if !walk(child, yield) {
			return false
		}
	}
	return true
}

// HasMarkers reports whether t mentions any marker
func HasMarkers(t Type) bool {
	for node := range Walk(t) {
		if kind := node.Kind(); kind == KindMarker || kind == KindAssign {
			return true
		}
	}
	return false
}

// branches yields the alternatives of t, flattening nested unions left to right
func branches(t Type) iter.Seq[Type] {
	return func(yield func(Type) bool) {
		yieldBranches(t, yield)
	}
}

func yieldBranches(t Type, yield func(Type) bool) bool {
	or, ok := t.(*OrType)
	if !ok {
		return yield(t)
	}
	return yieldBranches(or.lhs, yield) && yieldBranches(or.rhs, yield)
}
