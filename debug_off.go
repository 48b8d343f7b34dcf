//go:build !collam_debug

package collam

const debugEnabled = false

// DebugBuild reports whether this binary was compiled with the
// collam_debug tag. Always false here; see debug.go.
func DebugBuild() bool { return debugEnabled }

// debugWalk is a no-op in release builds; see debug.go for the
// collam_debug-tagged implementation.
func (l *FreeList) debugWalk() {}
