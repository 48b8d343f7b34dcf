package collam

import (
	"fmt"
	"os"
)

// trace gates the allocator's stderr diagnostic lines. Flip to true when
// chasing a heap corruption by hand; left off in all committed builds
// since every call site on this path must stay alloc-free (see
// abihook.Fatal).
const trace = false

// diagf writes a single diagnostic line to stderr. It performs no
// buffering and holds no logger object, so it cannot itself allocate
// through this package's own Allocator — every call site gates on trace
// first.
func diagf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "collam: "+format+"\n", args...)
}
