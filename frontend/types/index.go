package types

import (
	"github.com/cottand/typealg/frontend/ast"
	"github.com/cottand/typealg/frontend/ilerr"
)

// IndexType returns the type of indexing a value of type container with a value of
// type index at site. Whatever cannot be narrowed down is Mixed.
func (c *Checker) IndexType(container, index Type, site ast.IndexSite) Type {
	c.reset()
	ret := c.indexType(container, index, site)
	c.logger.Debug("index", "container", logType(container), "index", logType(index), "op", site.Op, "returns", logType(ret))
	return c.finish(ret)
}

func (c *Checker) indexType(container, index Type, site ast.IndexSite) Type {
	switch container := container.(type) {
	case *OrType:
		return Union(c.indexType(container.lhs, index, site), c.indexType(container.rhs, index, site))
	case *AndType:
		return c.indexType(container.rhs, index, site)
	case *MappingType:
		return container.value
	case *ArrayType:
		if c.match(String, index, 0) == nil {
			return container.elem
		}
		// indexing an array with a string indexes every element
		ret := Type(NewArray(c.indexType(container.elem, index, site)))
		if c.match(Int, index, 0) != nil {
			ret = NewOr(ret, container.elem)
		}
		return ret
	case *ObjectType:
		return c.indexObject(container, site)
	}
	switch container.Kind() {
	case KindString, KindMultiset:
		return Int
	}
	return Mixed
}

func (c *Checker) indexObject(container *ObjectType, site ast.IndexSite) Type {
	if _, ok := c.registry.ResolveProgram(container.program); !ok {
		return Mixed
	}
	if c.overloadsIndexing(container.program, site.Op) {
		return Mixed
	}
	if !site.HasLiteral {
		return Mixed
	}
	member, ok := c.registry.LookupMember(container.program, site.Literal)
	if !ok {
		return Int
	}
	if container.variance == Is || member.Final || member.Prototyped {
		return member.Type
	}
	return Mixed
}

func (c *Checker) overloadsIndexing(id ProgramID, op ast.IndexOp) bool {
	get, set := OpIndex, OpAssignIndex
	if op == ast.IndexArrow {
		get, set = OpArrow, OpAssignArrow
	}
	_, hasGet := c.operator(id, get)
	_, hasSet := c.operator(id, set)
	return hasGet || hasSet
}

// IsIndexingLegal reports whether a value of type container may be indexed with a
// value of type index at site
func (c *Checker) IsIndexingLegal(container, index Type, site ast.IndexSite) bool {
	c.reset()
	return c.isIndexingLegal(container, index, site)
}

func (c *Checker) isIndexingLegal(container, index Type, site ast.IndexSite) bool {
	switch container := container.(type) {
	case *OrType:
		return c.isIndexingLegal(container.lhs, index, site) || c.isIndexingLegal(container.rhs, index, site)
	case *AndType:
		return c.isIndexingLegal(container.lhs, index, site) && c.isIndexingLegal(container.rhs, index, site)
	case *NotType:
		return !c.isIndexingLegal(container.negated, index, site)
	case *ArrayType:
		if c.match(String, index, 0) != nil && c.isIndexingLegal(container.elem, index, site) {
			return true
		}
		return c.match(Int, index, 0) != nil
	case *ObjectType:
		if _, ok := c.registry.ResolveProgram(container.program); !ok {
			return true
		}
		return c.overloadsIndexing(container.program, site.Op) || c.match(String, index, 0) != nil
	case *MappingType:
		return c.match(container.key, index, 0) != nil
	case *MultisetType:
		return c.match(container.elem, index, 0) != nil
	}
	switch container.Kind() {
	case KindString:
		return c.match(Int, index, 0) != nil
	case KindMixed:
		return true
	}
	return false
}

// CheckIndex is IndexType for legal indexing. Illegal indexing yields an
// ilerr.NewIllegalIndex, and Mixed so that checking can go on.
func (c *Checker) CheckIndex(container, index Type, site ast.IndexSite) (Type, error) {
	if !c.IsIndexingLegal(container, index, site) {
		return Mixed, ilerr.New(ilerr.NewIllegalIndex{
			Positioner: site.Range,
			Container:  Describe(container),
			Index:      Describe(index),
			Op:         site.Op,
		})
	}
	return c.IndexType(container, index, site), nil
}
