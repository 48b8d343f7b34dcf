// Package abihook is the narrow collaborator the engine calls into for
// invariant violations it cannot recover from: the panic/abort handler
// and dynamic-loader integration are treated as external, specified only
// by this interface.
//
// Fatal must never allocate: it is reachable from inside the allocator's
// own critical section by way of a debug-build assertion failure, and
// the allocator must not be reentered from its own diagnostic paths.
package abihook

import (
	"fmt"
	"os"
)

// Fatal writes a formatted diagnostic line to stderr and terminates the
// process. Grounded on original_source/posix/src/lib.rs's signal handler,
// which logs via libc_print (chosen there specifically to avoid
// allocating) and then aborts; fmt.Fprintf to an *os.File has the same
// property for the fixed, small format strings used at these call sites.
func Fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "collam: fatal: "+format+"\n", args...)
	os.Exit(2)
}
