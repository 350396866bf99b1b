package types

import "strconv"

// Arity is the number of arguments a function type accepts
type Arity struct {
	N int
	// AtLeast is set when any number of arguments from N on is accepted
	AtLeast bool
}

// Unlimited is the Arity of types that are not functions
var Unlimited = Arity{N: UnlimitedArgs}

// IsFunction reports whether the Arity was derived from a function signature
func (a Arity) IsFunction() bool {
	return a != Unlimited
}

func (a Arity) String() string {
	switch {
	case !a.IsFunction():
		return "unlimited"
	case a.AtLeast:
		return "at least " + strconv.Itoa(a.N)
	}
	return strconv.Itoa(a.N)
}

// CountArguments returns how many arguments t accepts when called.
// Across a union the more permissive bound wins; across an intersection the stricter one.
func CountArguments(t Type) Arity {
	switch t := t.(type) {
	case *FunctionType:
		return Arity{N: len(t.args), AtLeast: t.IsVariadic()}
	case *OrType:
		lhs, rhs := CountArguments(t.lhs), CountArguments(t.rhs)
		switch {
		case lhs.AtLeast && rhs.AtLeast:
			return Arity{N: max(lhs.N, rhs.N), AtLeast: true}
		case lhs.AtLeast:
			return lhs
		case rhs.AtLeast:
			return rhs
		}
		return Arity{N: max(lhs.N, rhs.N)}
	case *AndType:
		lhs, rhs := CountArguments(t.lhs), CountArguments(t.rhs)
		switch {
		case lhs.AtLeast && rhs.AtLeast:
			return Arity{N: min(lhs.N, rhs.N), AtLeast: true}
		case lhs.AtLeast:
			return rhs
		case rhs.AtLeast:
			return lhs
		}
		return Arity{N: min(lhs.N, rhs.N)}
	}
	return Unlimited
}
