package types

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// binding strength of a position, loosest first
const (
	precUnion = iota
	precIntersection
	precUnary
)

// Describe renders t in the textual syntax accepted by ParseType.
// Parentheses are only inserted where precedence requires them.
func Describe(t Type) string {
	sb := &strings.Builder{}
	describe(sb, t, precUnion)
	return sb.String()
}

func describe(sb *strings.Builder, t Type, prec int) {
	switch t := t.(type) {
	case nil:
		sb.WriteString("<nil>")
	case basicType:
		sb.WriteString(t.kind.String())
	case MarkerRef:
		sb.WriteByte('0' + byte(t.marker))
	case *AssignType:
		parenthesised(sb, prec > precUnion, func() {
			sb.WriteByte('0' + byte(t.marker))
			sb.WriteByte('=')
			describe(sb, t.inner, precUnion)
		})
	case *OrType:
		// an unparenthesised assignment would take the whole union
		lhsPrec := precUnion
		if t.lhs.Kind() == KindAssign {
			lhsPrec = precIntersection
		}
		parenthesised(sb, prec > precUnion, func() {
			describe(sb, t.lhs, lhsPrec)
			sb.WriteString(" | ")
			describe(sb, t.rhs, precIntersection)
		})
	case *AndType:
		parenthesised(sb, prec > precIntersection, func() {
			describe(sb, t.lhs, precUnary)
			sb.WriteString(" & ")
			describe(sb, t.rhs, precIntersection)
		})
	case *NotType:
		sb.WriteByte('!')
		describe(sb, t.negated, precUnary)
	case *ArrayType:
		sb.WriteString("array")
		if t.elem.Kind() != KindMixed {
			parenthesised(sb, true, func() { describe(sb, t.elem, precUnion) })
		}
	case *MultisetType:
		sb.WriteString("multiset")
		if t.elem.Kind() != KindMixed {
			parenthesised(sb, true, func() { describe(sb, t.elem, precUnion) })
		}
	case *MappingType:
		sb.WriteString("mapping")
		if t.key.Kind() != KindMixed || t.value.Kind() != KindMixed {
			parenthesised(sb, true, func() {
				describe(sb, t.key, precUnion)
				sb.WriteByte(':')
				describe(sb, t.value, precUnion)
			})
		}
	case *ObjectType:
		sb.WriteString("object")
		if t.program != 0 || t.variance != Implements {
			sb.WriteByte('(')
			sb.WriteString(t.variance.String())
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatUint(uint64(t.program), 10))
			sb.WriteByte(')')
		}
	case *FunctionType:
		describeFunction(sb, t)
	default:
		panic("cannot describe type " + t.Kind().String())
	}
}

func describeFunction(sb *strings.Builder, t *FunctionType) {
	sb.WriteString("function")
	if len(t.args) == 0 && t.tail.Kind() == KindMixed && t.ret.Kind() == KindMixed {
		return
	}
	sb.WriteByte('(')
	for i, arg := range t.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		describe(sb, arg, precUnion)
	}
	if t.IsVariadic() {
		if len(t.args) > 0 {
			sb.WriteString(", ")
		}
		describe(sb, t.tail, precUnion)
		sb.WriteString(" ...")
	}
	sb.WriteByte(':')
	describe(sb, t.ret, precUnion)
	sb.WriteByte(')')
}

func parenthesised(sb *strings.Builder, needed bool, inner func()) {
	if needed {
		sb.WriteByte('(')
	}
	inner()
	if needed {
		sb.WriteByte(')')
	}
}

// Dump renders the node structure of t for debugging
func Dump(t Type) string {
	return spew.Sdump(t)
}

// lazyType defers describing a type until a log record is actually emitted
type lazyType struct {
	t Type
}

func (l lazyType) LogValue() slog.Value {
	if l.t == nil {
		return slog.StringValue("<nil>")
	}
	return slog.StringValue(Describe(l.t))
}

func logType(t Type) slog.LogValuer {
	return lazyType{t}
}
