// Package registry provides a types.Registry made of program definitions, such as
// the ones found in a registry YAML file.
package registry

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/typealg/frontend/types"
	"github.com/cottand/typealg/internal/log"
	"github.com/xtgo/set"
)

var logger = log.DefaultLogger.With("section", "registry")

// MemberDef declares a named identifier of a program
type MemberDef struct {
	Name       string
	Type       types.Type
	Final      bool
	Prototyped bool
}

// Definition declares a program
type Definition struct {
	ID       types.ProgramID
	Name     string
	Inherits []types.ProgramID
	Members  []MemberDef
	// Operators maps overloaded operators to their function types
	Operators map[types.OperatorKind]types.Type
}

type program struct {
	desc types.ProgramDescriptor
	// ancestors is sorted and contains the program itself
	ancestors []types.ProgramID
	members   *immutable.Map[string, types.Member]
	operators *immutable.Map[types.OperatorKind, types.Type]
}

// Registry is an immutable table of programs.
// Adding a program with With returns a new Registry and leaves the receiver untouched,
// so a Registry may be shared between goroutines.
type Registry struct {
	programs *immutable.Map[types.ProgramID, *program]
	byName   *immutable.Map[string, types.ProgramID]
}

var _ types.Registry = (*Registry)(nil)

func New() *Registry {
	return &Registry{
		programs: immutable.NewMap[types.ProgramID, *program](immutable.NewHasher(types.ProgramID(0))),
		byName:   immutable.NewMap[string, types.ProgramID](immutable.NewHasher("")),
	}
}

// Len is the number of programs in r
func (r *Registry) Len() int { return r.programs.Len() }

// With returns a Registry that also knows def.
// Programs def inherits from must already be known, and members and operators
// are inherited unless def overrides them.
func (r *Registry) With(def Definition) (*Registry, error) {
	if def.ID == 0 {
		return nil, fmt.Errorf("program %q: id 0 is reserved for any program", def.Name)
	}
	if _, exists := r.programs.Get(def.ID); exists {
		return nil, fmt.Errorf("program %q: id %d is already defined", def.Name, def.ID)
	}

	ancestors := idSlice{def.ID}
	members := immutable.NewMapBuilder[string, types.Member](immutable.NewHasher(""))
	operators := immutable.NewMapBuilder[types.OperatorKind, types.Type](immutable.NewHasher(types.OpCall))
	for _, parentID := range def.Inherits {
		parent, ok := r.programs.Get(parentID)
		if !ok {
			return nil, fmt.Errorf("program %q: inherits from unknown program %d", def.Name, parentID)
		}
		ancestors = append(ancestors, parent.ancestors...)
		copyInto(members, parent.members.Iterator())
		copyInto(operators, parent.operators.Iterator())
	}
	sort.Sort(ancestors)
	ancestors = ancestors[:set.Uniq(ancestors)]

	for _, member := range def.Members {
		members.Set(member.Name, types.Member{
			Name:       member.Name,
			Type:       member.Type,
			Final:      member.Final,
			Prototyped: member.Prototyped,
		})
	}
	for kind, t := range def.Operators {
		operators.Set(kind, t)
	}

	p := &program{
		desc:      types.ProgramDescriptor{ID: def.ID, Name: def.Name},
		ancestors: ancestors,
		members:   members.Map(),
		operators: operators.Map(),
	}
	logger.Debug("defined program", "id", def.ID, "name", def.Name, "ancestors", []types.ProgramID(ancestors))
	next := &Registry{
		programs: r.programs.Set(def.ID, p),
		byName:   r.byName,
	}
	if def.Name != "" {
		next.byName = r.byName.Set(def.Name, def.ID)
	}
	return next, nil
}

func copyInto[K, V any](dst *immutable.MapBuilder[K, V], it *immutable.MapIterator[K, V]) {
	for !it.Done() {
		k, v, _ := it.Next()
		dst.Set(k, v)
	}
}

func (r *Registry) ResolveProgram(id types.ProgramID) (types.ProgramDescriptor, bool) {
	p, ok := r.programs.Get(id)
	if !ok {
		return types.ProgramDescriptor{}, false
	}
	return p.desc, true
}

// Lookup finds a program by name
func (r *Registry) Lookup(name string) (types.ProgramDescriptor, bool) {
	id, ok := r.byName.Get(name)
	if !ok {
		return types.ProgramDescriptor{}, false
	}
	return r.ResolveProgram(id)
}

// Implements reports whether a inherits from b, or declares every member b declares
func (r *Registry) Implements(a, b types.ProgramID) bool {
	if a == b {
		return true
	}
	pa, okA := r.programs.Get(a)
	pb, okB := r.programs.Get(b)
	if !okA || !okB {
		return false
	}
	if _, found := slices.BinarySearch(pa.ancestors, b); found {
		return true
	}
	it := pb.members.Iterator()
	for !it.Done() {
		name, _, _ := it.Next()
		if _, ok := pa.members.Get(name); !ok {
			return false
		}
	}
	return true
}

func (r *Registry) LookupMember(id types.ProgramID, name string) (types.Member, bool) {
	p, ok := r.programs.Get(id)
	if !ok {
		return types.Member{}, false
	}
	return p.members.Get(name)
}

func (r *Registry) FindOperator(id types.ProgramID, kind types.OperatorKind) (types.Type, bool) {
	p, ok := r.programs.Get(id)
	if !ok {
		return nil, false
	}
	return p.operators.Get(kind)
}

// Programs returns the descriptors of every program, ordered by id
func (r *Registry) Programs() []types.ProgramDescriptor {
	descs := make([]types.ProgramDescriptor, 0, r.programs.Len())
	it := r.programs.Iterator()
	for !it.Done() {
		_, p, _ := it.Next()
		descs = append(descs, p.desc)
	}
	slices.SortFunc(descs, func(a, b types.ProgramDescriptor) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return descs
}

// idSlice is a set of program ids for xtgo/set
type idSlice []types.ProgramID

var _ sort.Interface = idSlice(nil)

func (s idSlice) Len() int           { return len(s) }
func (s idSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s idSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
