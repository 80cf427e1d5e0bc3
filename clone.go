package chainz

import (
	clone "github.com/huandu/go-clone"
)

// Cloner is implemented by records that know how to deep copy themselves.
// Snapshot prefers it over the generic reflection-based copy.
type Cloner interface {
	Clone() Record
}

// Snapshot returns a deep copy of r. Mutating the snapshot never affects r
// and mutating r never affects the snapshot.
func Snapshot(r Record) Record {
	if r == nil {
		return nil
	}
	if c, ok := r.(Cloner); ok {
		return c.Clone()
	}
	return clone.Clone(r)
}
