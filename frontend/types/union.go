package types

import (
	"slices"

	"github.com/hashicorp/go-set/v3"
)

// Union returns a type admitting the values of both a and b.
// A nil operand stands for an absent type, and the union of two absent types is Void.
// Branches of b that are already branches of a are left out.
func Union(a, b Type) Type {
	switch {
	case a == nil && b == nil:
		return Void
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Kind() == KindMixed || b.Kind() == KindMixed:
		return Mixed
	}

	present := slices.Collect(branches(a))
	hashes := set.HashSetFrom[Type, uint64](present)
	result := a
	for branch := range branches(b) {
		if hashes.Contains(branch) && slices.ContainsFunc(present, func(t Type) bool { return Equal(t, branch) }) {
			continue
		}
		result = NewOr(result, branch)
	}
	return result
}
