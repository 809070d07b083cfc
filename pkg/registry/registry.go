// Package registry holds the active model artifact of a serving process.
package registry

import (
	"sync/atomic"

	"modelserve/pkg/artifact"
)

// Registry is a single atomic slot. Readers see either no model or one complete
// artifact; superseded artifacts are reclaimed once no caller holds them.
type Registry struct {
	active atomic.Pointer[artifact.Artifact]
}

func New() *Registry {
	return &Registry{}
}

// Active returns the current artifact or nil. Never blocks.
func (r *Registry) Active() *artifact.Artifact {
	return r.active.Load()
}

// Swap unconditionally installs a and returns the artifact it replaced
func (r *Registry) Swap(a *artifact.Artifact) *artifact.Artifact {
	return r.active.Swap(a)
}

// SwapIfNewer installs a only if it was trained strictly after the active artifact,
// or the slot is empty. Safe with concurrent writers.
func (r *Registry) SwapIfNewer(a *artifact.Artifact) (previous *artifact.Artifact, swapped bool) {
	if a == nil {
		return r.active.Load(), false
	}
	for {
		cur := r.active.Load()
		if !a.NewerThan(cur) {
			return cur, false
		}
		if r.active.CompareAndSwap(cur, a) {
			return cur, true
		}
	}
}
