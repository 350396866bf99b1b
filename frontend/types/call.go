package types

import (
	"slices"

	"github.com/cottand/typealg/frontend/ast"
	"github.com/cottand/typealg/frontend/ilerr"
	"github.com/cottand/typealg/util"
)

// CallReturnType returns the type of calling a value of type callee with arguments
// described by args, which is a function type whose fixed arguments are the
// argument types. It returns false if no branch of callee accepts the arguments.
func (c *Checker) CallReturnType(callee Type, args *FunctionType) (Type, bool) {
	c.reset()
	ret, ok := c.returnType(callee, args)
	c.logger.Debug("call", "callee", logType(callee), "args", logType(args), "ok", ok, "returns", logType(ret))
	return c.finish(ret), ok
}

// CheckCall computes the type of calling callee with arguments of the given types.
// If the call is illegal, the returned error is an ilerr.NewIllegalCall describing
// which argument was rejected, and the type is Mixed so that checking can go on.
func (c *Checker) CheckCall(callee Type, args []Type, at ast.Positioner) (Type, error) {
	ret, ok := c.CallReturnType(callee, NewFunction(args, Void, Mixed))
	if ok {
		return ret, nil
	}
	return Mixed, ilerr.New(c.illegalCall(callee, args, at))
}

func (c *Checker) illegalCall(callee Type, args []Type, at ast.Positioner) ilerr.NewIllegalCall {
	err := ilerr.NewIllegalCall{
		Positioner: ast.RangeOf(at),
		Callee:     Describe(callee),
		Args:       slices.Collect(util.MapIter(slices.Values(args), Describe)),
		Problem:    ilerr.BadArgument,
	}
	if c.maxCorrectArgs == UnlimitedArgs {
		return err
	}
	err.Arg = c.maxCorrectArgs + 1
	arity := CountArguments(callee)
	switch {
	case !arity.IsFunction():
	case err.Arg > len(args):
		err.Problem = ilerr.TooFewArguments
	case !arity.AtLeast && err.Arg > arity.N:
		err.Problem = ilerr.TooManyArguments
	}
	return err
}

func (c *Checker) returnType(callee Type, args *FunctionType) (Type, bool) {
	switch callee := callee.(type) {
	case *OrType:
		lhs, okLhs := c.returnType(callee.lhs, args)
		rhs, okRhs := c.returnType(callee.rhs, args)
		switch {
		case okLhs && okRhs:
			return Union(lhs, rhs), true
		case okLhs:
			return lhs, true
		case okRhs:
			return rhs, true
		}
		return nil, false
	case *AndType:
		if _, ok := c.returnType(callee.lhs, args); !ok {
			return nil, false
		}
		return c.returnType(callee.rhs, args)
	case *ArrayType:
		ret, ok := c.returnType(callee.elem, args)
		if !ok {
			return nil, false
		}
		return NewArray(ret), true
	}

	switch matched := c.match(callee, args, 0).(type) {
	case nil:
		return nil, false
	case *FunctionType:
		return c.substitute(SideA, matched.ret), true
	default:
		if matched.Kind() == KindProgram {
			return AnyObject, true
		}
		return Mixed, true
	}
}
