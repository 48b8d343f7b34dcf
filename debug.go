//go:build collam_debug

package collam

import "github.com/gcarq/collam/internal/abihook"

const debugEnabled = true

// DebugBuild reports whether this binary was compiled with the
// collam_debug tag, which makes every free-list insert pay for a full
// consistency walk.
func DebugBuild() bool { return debugEnabled }

// debugWalk asserts the free list's invariants: strictly ascending
// addresses and reciprocal prev/next links. Calls abihook.Fatal on
// violation — an invariant break here means the heap itself is
// corrupted, which this package cannot recover from. Only compiled into
// builds tagged collam_debug; see debug_off.go for the release no-op.
func (l *FreeList) debugWalk() {
	var prevAddr uintptr
	var last Block
	for cur := l.head; !cur.isNil(); cur = cur.next() {
		addr := uintptr(cur.addr())
		if prevAddr != 0 && addr <= prevAddr {
			abihook.Fatal("free list address ordering violated at %p", cur.addr())
		}
		if p := cur.prev(); !p.isNil() && p.next().addr() != cur.addr() {
			abihook.Fatal("free list prev/next mismatch at %p", cur.addr())
		}
		prevAddr = addr
		last = cur
	}
	if last.isNil() != l.tail.isNil() {
		abihook.Fatal("free list tail pointer inconsistent (nil mismatch)")
	}
	if !last.isNil() && last.addr() != l.tail.addr() {
		abihook.Fatal("free list tail pointer inconsistent")
	}
}
