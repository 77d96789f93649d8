// Package arena provides the bump allocator backing the AST. One arena
// lifetime equals one compile: nodes are never freed individually, the
// whole arena is dropped together when compilation ends.
package arena

import (
	"fmt"
	"unsafe"
)

// DefaultSize is the byte budget of a freshly created arena.
const DefaultSize = 4 * 1024 * 1024 // 4 MiB

// Arena is a bump allocator over a fixed byte budget. Records are
// accounted against the budget at their natural size.
type Arena struct {
	size int
	used int
}

// ErrExhausted reports that an allocation would exceed the arena's budget.
// Exhaustion is a fatal compile error: Alloc panics with this value and the
// parser converts it into its fallible result.
type ErrExhausted struct {
	Size int
}

func (e ErrExhausted) Error() string {
	return fmt.Sprintf("arena exhausted: %d byte budget spent", e.Size)
}

// New creates an arena with the given byte budget. A non-positive size
// falls back to DefaultSize.
func New(size int) *Arena {
	if size <= 0 {
		size = DefaultSize
	}
	return &Arena{size: size}
}

// Used reports the bytes allocated so far.
func (a *Arena) Used() int {
	return a.used
}

// Size reports the arena's byte budget.
func (a *Arena) Size() int {
	return a.size
}

// Alloc copies v into a new record and returns a pointer to it, charging
// the record's size against the arena's budget. The record is an
// ordinary Go allocation: the arena keeps a byte count, not a contiguous
// buffer holding the records. Exhaustion panics with ErrExhausted;
// callers owning a pipeline boundary recover it.
func Alloc[T any](a *Arena, v T) *T {
	n := int(unsafe.Sizeof(v))
	if a.used+n > a.size {
		panic(ErrExhausted{Size: a.size})
	}
	a.used += n
	node := new(T)
	*node = v
	return node
}
