package types

import "fmt"

// ProgramDescriptor is what the Registry knows about a compiled program
type ProgramDescriptor struct {
	ID   ProgramID
	Name string
}

// Member is a named identifier of a program
type Member struct {
	Name string
	Type Type
	// Final members cannot be overridden, so their declared type is exact
	Final bool
	// Prototyped members have a fully declared type
	Prototyped bool
}

// OperatorKind names the overloadable operators that affect typing
type OperatorKind uint8

const (
	OpCall OperatorKind = iota
	OpIndex
	OpAssignIndex
	OpArrow
	OpAssignArrow
)

var operatorNames = [...]string{
	OpCall:        "call",
	OpIndex:       "index",
	OpAssignIndex: "assign_index",
	OpArrow:       "arrow",
	OpAssignArrow: "assign_arrow",
}

func (k OperatorKind) String() string {
	if int(k) < len(operatorNames) {
		return operatorNames[k]
	}
	return fmt.Sprintf("operator(%d)", uint8(k))
}

// ParseOperatorKind is the inverse of OperatorKind.String
func ParseOperatorKind(name string) (OperatorKind, bool) {
	for kind, known := range operatorNames {
		if known == name {
			return OperatorKind(kind), true
		}
	}
	return 0, false
}

// Registry answers questions about programs, which are defined outside of the type algebra.
// Implementations must be safe to call from several Checkers concurrently.
type Registry interface {
	ResolveProgram(id ProgramID) (ProgramDescriptor, bool)
	// Implements reports whether program a structurally implements program b
	Implements(a, b ProgramID) bool
	LookupMember(id ProgramID, name string) (Member, bool)
	// FindOperator returns the type of the operator kind as overloaded by the program
	FindOperator(id ProgramID, kind OperatorKind) (Type, bool)
}

type noPrograms struct{}

// NoPrograms is the Registry that knows no programs
var NoPrograms Registry = noPrograms{}

func (noPrograms) ResolveProgram(ProgramID) (ProgramDescriptor, bool) { return ProgramDescriptor{}, false }
func (noPrograms) Implements(a, b ProgramID) bool                     { return a == b }
func (noPrograms) LookupMember(ProgramID, string) (Member, bool)      { return Member{}, false }
func (noPrograms) FindOperator(ProgramID, OperatorKind) (Type, bool)  { return nil, false }
