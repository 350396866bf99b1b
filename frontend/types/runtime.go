package types

// RuntimeKind returns the one kind every value of type t has at runtime,
// or KindMixed if values of t may be of different kinds
func RuntimeKind(t Type) Kind {
	switch kind := t.Kind(); kind {
	case KindOr:
		or := t.(*OrType)
		if lhs := RuntimeKind(or.lhs); lhs == RuntimeKind(or.rhs) {
			return lhs
		}
	case KindArray, KindMapping, KindMultiset, KindObject, KindProgram, KindFunction, KindString, KindInt, KindFloat:
		return kind
	}
	return KindMixed
}

// ConstructorType returns the type of calling program prog as a function:
// the arguments of its create method, returning an object of exactly prog
func (c *Checker) ConstructorType(prog ProgramID) Type {
	instance := NewObject(Is, prog)
	create, ok := c.registry.LookupMember(prog, "create")
	if !ok {
		return c.finish(NewFunction(nil, Mixed, instance))
	}
	fn, ok := create.Type.(*FunctionType)
	if !ok {
		return Program
	}
	return c.finish(NewFunction(fn.args, fn.tail, instance))
}
