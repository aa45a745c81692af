package model

import "sync"

var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the process-wide registry, building the default one on
// first use. Components resolve capabilities through it.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewDefaultRegistry()
	})
	return globalRegistry
}

// InitGlobal installs r as the process-wide registry. Only the first
// call before Global() takes effect; later calls are no-ops.
func InitGlobal(r *Registry) {
	globalOnce.Do(func() {
		globalRegistry = r
	})
}

// ResetGlobal clears the registry. Not thread-safe; tests only.
func ResetGlobal() {
	globalOnce = sync.Once{}
	globalRegistry = nil
}
