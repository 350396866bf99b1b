package types

import (
	"log/slog"
	"math"
	"slices"

	"github.com/cottand/typealg/internal/log"
	"github.com/google/uuid"
)

var matchLogger = log.DefaultLogger.With("section", "types.match")

// UnlimitedArgs is the argument count reported once a variadic tail took part in a match
const UnlimitedArgs = math.MaxInt32

// Side selects one of the two operands of a comparison
type Side uint8

const (
	SideA Side = iota
	SideB
)

func (s Side) other() Side { return 1 - s }

type matchFlags uint8

const (
	// exactA stops Mixed on side a from matching anything
	exactA matchFlags = 1 << iota
	// exactB stops Mixed on side b from matching anything
	exactB
	// noMaxArgs stops function comparisons from recording MaxCorrectArgs
	noMaxArgs
)

type operatorKey struct {
	program ProgramID
	kind    OperatorKind
}

type operatorEntry struct {
	t     Type
	found bool
}

// Checker compares types and derives new ones from the comparisons.
//
// Every top-level operation (Match, CheckCall, IndexType, ...) starts by clearing the
// marker tables, so the bindings read through Markers only describe the last operation.
// A Checker is not safe for concurrent use: give every goroutine its own.
type Checker struct {
	registry Registry
	logger   *slog.Logger
	interner *Interner

	markers        [2][MaxMarkers]Type
	maxCorrectArgs int

	// operators caches Registry.FindOperator for the lifetime of the Checker
	operators map[operatorKey]operatorEntry
}

type Option func(*Checker)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithInterner makes types derived by the Checker canonical instances of in
func WithInterner(in *Interner) Option {
	return func(c *Checker) {
		c.interner = in
	}
}

func NewChecker(registry Registry, opts ...Option) *Checker {
	if registry == nil {
		registry = NoPrograms
	}
	c := &Checker{
		registry:  registry,
		operators: make(map[operatorKey]operatorEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = matchLogger.With("checker", uuid.NewString())
	}
	return c
}

func (c *Checker) reset() {
	c.markers = [2][MaxMarkers]Type{}
	c.maxCorrectArgs = 0
}

// Match reports whether a value of type b may be used where a is expected and vice versa.
// Markers bound while matching can be read with Markers afterwards.
func (c *Checker) Match(a, b Type) bool {
	c.reset()
	ok := c.match(a, b, 0) != nil
	c.logger.Debug("match", "a", logType(a), "b", logType(b), "ok", ok)
	return ok
}

// Markers returns the bindings of every marker of side after the last operation.
// Unbound markers are nil.
func (c *Checker) Markers(side Side) []Type {
	return slices.Clone(c.markers[side][:])
}

// Binding returns what marker m of side was bound to by the last operation
func (c *Checker) Binding(side Side, m Marker) (Type, bool) {
	mustBeMarker(m)
	t := c.markers[side][m]
	return t, t != nil
}

// MaxCorrectArgs is how many leading arguments were accepted by the last operation
// before a function comparison failed, or UnlimitedArgs if a variadic tail was reached
func (c *Checker) MaxCorrectArgs() int {
	return c.maxCorrectArgs
}

// match returns the part of a that matched b, or nil if they do not match
func (c *Checker) match(a, b Type, flags matchFlags) Type {
	// identical types match without binding markers
	if Equal(a, b) {
		if a.Kind() == KindFunction && flags&noMaxArgs == 0 {
			c.maxCorrectArgs = UnlimitedArgs
		}
		return a
	}

	switch a := a.(type) {
	case *AndType:
		if c.match(a.lhs, b, flags) == nil {
			return nil
		}
		return c.match(a.rhs, b, flags)
	case *OrType:
		if ret := c.match(a.lhs, b, flags); ret != nil {
			return ret
		}
		return c.match(a.rhs, b, flags)
	case *NotType:
		if c.match(a.negated, b, (flags^exactB)|noMaxArgs) != nil {
			return nil
		}
		return a
	case *AssignType:
		ret := c.match(a.inner, b, flags)
		if ret != nil && b.Kind() != KindVoid {
			c.bind(SideA, a.marker, b)
		}
		return ret
	case MarkerRef:
		return c.match(c.resolve(SideA, a.marker), b, flags)
	}

	switch bt := b.(type) {
	case *AndType:
		if c.match(a, bt.lhs, flags) == nil {
			return nil
		}
		return c.match(a, bt.rhs, flags)
	case *OrType:
		if ret := c.match(a, bt.lhs, flags); ret != nil {
			return ret
		}
		return c.match(a, bt.rhs, flags)
	case *NotType:
		if c.match(a, bt.negated, (flags^exactA)|noMaxArgs) != nil {
			return nil
		}
		return a
	case *AssignType:
		ret := c.match(a, bt.inner, flags)
		if ret != nil && a.Kind() != KindVoid {
			c.bind(SideB, bt.marker, a)
		}
		return ret
	case MarkerRef:
		return c.match(a, c.resolve(SideB, bt.marker), flags)
	}

	if a.Kind() == KindMixed && flags&exactA == 0 {
		return a
	}
	if b.Kind() == KindMixed && flags&exactB == 0 {
		return a
	}

	switch ka, kb := a.Kind(), b.Kind(); {
	case ka == KindProgram && kb == KindFunction, ka == KindFunction && kb == KindProgram:
		return a
	case ka == KindObject && kb == KindFunction:
		if call, ok := c.operator(a.(*ObjectType).program, OpCall); ok {
			return c.match(call, b, flags)
		}
		return a
	case ka == KindFunction && kb == KindObject:
		if call, ok := c.operator(b.(*ObjectType).program, OpCall); ok {
			return c.match(a, call, flags)
		}
		return a
	case ka != kb:
		return nil
	}

	switch a := a.(type) {
	case *FunctionType:
		if !c.matchFunctions(a, b.(*FunctionType), flags) {
			return nil
		}
	case *MappingType:
		bm := b.(*MappingType)
		if c.match(a.key, bm.key, flags) == nil || c.match(a.value, bm.value, flags) == nil {
			return nil
		}
	case *ObjectType:
		if !c.matchObjects(a, b.(*ObjectType)) {
			return nil
		}
	case *ArrayType:
		if c.match(a.elem, b.(*ArrayType).elem, flags) == nil {
			return nil
		}
	case *MultisetType:
		if c.match(a.elem, b.(*MultisetType).elem, flags) == nil {
			return nil
		}
	case basicType:
	default:
		panic("cannot match type of kind " + a.Kind().String())
	}
	return a
}

// matchFunctions compares arguments positionally, falling back to the variadic tail of
// whichever side ran out of fixed arguments first
func (c *Checker) matchFunctions(a, b *FunctionType, flags matchFlags) bool {
	positions := max(len(a.args), len(b.args))
	for i := range positions {
		if c.match(a.Arg(i), b.Arg(i), flags|noMaxArgs) == nil {
			return false
		}
		if correct := i + 1; correct > c.maxCorrectArgs && flags&noMaxArgs == 0 {
			c.maxCorrectArgs = correct
		}
	}
	if a.tail.Kind() != KindVoid && b.tail.Kind() != KindVoid {
		if c.match(a.tail, b.tail, flags|noMaxArgs) == nil {
			return false
		}
	}
	if flags&noMaxArgs == 0 {
		c.maxCorrectArgs = UnlimitedArgs
	}
	return c.match(a.ret, b.ret, flags) != nil
}

func (c *Checker) matchObjects(a, b *ObjectType) bool {
	if a.program == 0 || b.program == 0 {
		return true
	}
	if a.variance == Is && b.variance == Is {
		return a.program == b.program
	}
	_, foundA := c.registry.ResolveProgram(a.program)
	_, foundB := c.registry.ResolveProgram(b.program)
	if !foundA || !foundB {
		return true
	}
	switch {
	case a.variance == Is:
		return c.registry.Implements(a.program, b.program)
	case b.variance == Is:
		return c.registry.Implements(b.program, a.program)
	}
	return a.program == b.program ||
		c.registry.Implements(a.program, b.program) ||
		c.registry.Implements(b.program, a.program)
}

// operator looks up an overloaded operator of program id through the Registry
func (c *Checker) operator(id ProgramID, kind OperatorKind) (Type, bool) {
	if id == 0 {
		return nil, false
	}
	key := operatorKey{program: id, kind: kind}
	entry, cached := c.operators[key]
	if !cached {
		entry.t, entry.found = c.registry.FindOperator(id, kind)
		c.operators[key] = entry
	}
	return entry.t, entry.found
}

// resolve returns what a MarkerRef of side stands for
func (c *Checker) resolve(side Side, m Marker) Type {
	if bound := c.markers[side][m]; bound != nil {
		return bound
	}
	return Mixed
}

// bind widens marker m of side with t.
// The markers t mentions belong to the other side, so they are substituted first,
// which keeps bindings free of markers.
func (c *Checker) bind(side Side, m Marker, t Type) {
	t = c.substitute(side.other(), t)
	c.markers[side][m] = Union(c.markers[side][m], t)
}

// substitute replaces the markers of t by their binding in side, or Mixed when unbound.
// Assignments are replaced by their inner type.
func (c *Checker) substitute(side Side, t Type) Type {
	if !HasMarkers(t) {
		return t
	}
	switch t := t.(type) {
	case MarkerRef:
		return c.resolve(side, t.marker)
	case *AssignType:
		return c.substitute(side, t.inner)
	}
	return t.doMap(func(child Type) Type {
		return c.substitute(side, child)
	})
}

// finish makes t canonical when the Checker has an Interner
func (c *Checker) finish(t Type) Type {
	if c.interner == nil || t == nil {
		return t
	}
	return c.interner.Intern(t)
}
