package feature

import (
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// Bundle holds the solids one face contributes to the tower. The zero value
// is the empty bundle.
type Bundle struct {
	Add      []kernel.Solid
	Subtract []kernel.Solid
}

// Empty reports whether the bundle contributes nothing.
func (b Bundle) Empty() bool { return len(b.Add) == 0 && len(b.Subtract) == 0 }

// Len returns the number of solids in the bundle.
func (b Bundle) Len() int { return len(b.Add) + len(b.Subtract) }

// Put appends s to the list for role.
func (b *Bundle) Put(role Role, s ...kernel.Solid) {
	if role == Subtract {
		b.Subtract = append(b.Subtract, s...)
		return
	}
	b.Add = append(b.Add, s...)
}

// Merge appends the solids of o.
func (b *Bundle) Merge(o Bundle) {
	b.Add = append(b.Add, o.Add...)
	b.Subtract = append(b.Subtract, o.Subtract...)
}

// Solids returns the list for role.
func (b Bundle) Solids(role Role) []kernel.Solid {
	if role == Subtract {
		return b.Subtract
	}
	return b.Add
}
