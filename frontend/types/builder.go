package types

import (
	"encoding/binary"
	"slices"

	"github.com/cottand/typealg/frontend/ast"
	"github.com/cottand/typealg/frontend/ilerr"
	"github.com/cottand/typealg/util"
)

// Config bounds the scratch structures used while building types
type Config struct {
	// MaxUnits is the largest number of encoding units a Builder holds at once
	MaxUnits int
	// MaxMarks is the deepest a Builder's mark stack may grow
	MaxMarks int
}

func DefaultConfig() Config {
	return Config{
		MaxUnits: 100_000,
		MaxMarks: 25_000,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.MaxUnits <= 0 {
		c.MaxUnits = defaults.MaxUnits
	}
	if c.MaxMarks <= 0 {
		c.MaxMarks = defaults.MaxMarks
	}
	return c
}

// Builder constructs types bottom-up one encoding unit at a time.
//
// Units are held in reverse prefix order: a node's tag is pushed after its children,
// and Finish flips the span back into prefix order. Spans of several children are
// flipped into place with ReverseSinceMark before their parent's tag is pushed.
//
// A Builder is not safe for concurrent use, and one construction must be finished
// before the next one begins.
type Builder struct {
	cfg      Config
	units    []byte
	marks    util.Stack[int]
	interner *Interner
}

func NewBuilder(cfg Config) *Builder {
	cfg = cfg.withDefaults()
	return &Builder{
		cfg:   cfg,
		units: make([]byte, 0, 64),
	}
}

// WithInterner makes Finish return canonical instances from in
func (b *Builder) WithInterner(in *Interner) *Builder {
	b.interner = in
	return b
}

// Len is the number of units currently held
func (b *Builder) Len() int { return len(b.units) }

// Depth is the number of pending marks
func (b *Builder) Depth() int { return b.marks.Len() }

// Push appends one encoding unit
func (b *Builder) Push(unit byte) error {
	if len(b.units) >= b.cfg.MaxUnits {
		return ilerr.New(ilerr.NewTypeTooComplex{Positioner: ast.Range{}, Limit: b.cfg.MaxUnits, What: "type stack"})
	}
	b.units = append(b.units, unit)
	return nil
}

// PushProgramID appends the 4 units of an object's program id
func (b *Builder) PushProgramID(id ProgramID) error {
	var encoded [4]byte
	binary.BigEndian.PutUint32(encoded[:], uint32(id))
	for _, unit := range slices.Backward(encoded[:]) {
		if err := b.Push(unit); err != nil {
			return err
		}
	}
	return nil
}

// PushFinished appends an already built type as a single node
func (b *Builder) PushFinished(t Type) error {
	for _, unit := range slices.Backward(Encode(t)) {
		if err := b.Push(unit); err != nil {
			return err
		}
	}
	return nil
}

// Mark records the current length as a savepoint
func (b *Builder) Mark() error {
	if b.marks.Len() >= b.cfg.MaxMarks {
		return ilerr.New(ilerr.NewTypeTooComplex{Positioner: ast.Range{}, Limit: b.cfg.MaxMarks, What: "type mark stack"})
	}
	b.marks.Push(len(b.units))
	return nil
}

// PopMarkDelta pops the last savepoint and returns how many units were pushed since.
// It panics when there is no savepoint.
func (b *Builder) PopMarkDelta() int {
	mark, ok := b.marks.Pop()
	if !ok {
		panic("type mark stack underflow")
	}
	if mark > len(b.units) {
		panic("type stack underflow")
	}
	return len(b.units) - mark
}

// PopToMark discards everything pushed since the last savepoint
func (b *Builder) PopToMark() {
	b.units = b.units[:len(b.units)-b.PopMarkDelta()]
}

// ReverseSinceMark pops the last savepoint and reverses the units pushed since
func (b *Builder) ReverseSinceMark() {
	delta := b.PopMarkDelta()
	slices.Reverse(b.units[len(b.units)-delta:])
}

// Finish pops the last savepoint and turns the units pushed since into a Type
func (b *Builder) Finish() (Type, error) {
	delta := b.PopMarkDelta()
	start := len(b.units) - delta
	encoded := slices.Collect(util.Reverse(b.units[start:]))
	b.units = b.units[:start]

	t, err := Decode(encoded)
	if err != nil {
		return nil, err
	}
	if b.interner != nil {
		t = b.interner.Intern(t)
	}
	return t, nil
}

// Reset discards all units and savepoints
func (b *Builder) Reset() {
	b.units = b.units[:0]
	b.marks.PopAll()
}

// restore truncates the builder back to a previously observed length and depth
func (b *Builder) restore(units, depth int) {
	if units < len(b.units) {
		b.units = b.units[:units]
	}
	b.marks.Truncate(depth)
}
