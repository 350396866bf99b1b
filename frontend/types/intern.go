package types

import "sync"

// Interner maps structurally equal types to one shared instance.
// It is safe for concurrent use.
type Interner struct {
	mu    sync.RWMutex
	types map[uint64][]Type
	size  int
}

func NewInterner() *Interner {
	return &Interner{types: make(map[uint64][]Type)}
}

// Intern returns the canonical instance of t, registering t if there is none yet
func (in *Interner) Intern(t Type) Type {
	hash := t.Hash()
	in.mu.RLock()
	canonical, ok := in.lookup(hash, t)
	in.mu.RUnlock()
	if ok {
		return canonical
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if canonical, ok := in.lookup(hash, t); ok {
		return canonical
	}
	in.types[hash] = append(in.types[hash], t)
	in.size++
	return t
}

func (in *Interner) lookup(hash uint64, t Type) (Type, bool) {
	for _, candidate := range in.types[hash] {
		if Equal(candidate, t) {
			return candidate, true
		}
	}
	return nil, false
}

// Len is the number of distinct types interned so far
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.size
}
