package ast

// IndexOp distinguishes `x[i]` from `x->i`
type IndexOp uint8

const (
	IndexBracket IndexOp = iota
	IndexArrow
)

func (op IndexOp) String() string {
	if op == IndexArrow {
		return "->"
	}
	return "[]"
}

// IndexSite describes the indexing expression whose legality and result type
// is being computed.
type IndexSite struct {
	Range
	Op IndexOp
	// Literal holds the index when it is a compile-time string constant
	// and HasLiteral is set
	Literal    string
	HasLiteral bool
}

// Bracket returns an IndexSite for `x[i]` where i is not a constant
func Bracket(at Positioner) IndexSite {
	return IndexSite{Range: RangeOf(at), Op: IndexBracket}
}

// Arrow returns an IndexSite for `x->name`
func Arrow(at Positioner, name string) IndexSite {
	return IndexSite{Range: RangeOf(at), Op: IndexArrow, Literal: name, HasLiteral: true}
}

// WithLiteral returns a copy of s where the index is the constant string lit
func (s IndexSite) WithLiteral(lit string) IndexSite {
	s.Literal = lit
	s.HasLiteral = true
	return s
}
