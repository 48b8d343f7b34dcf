// Command libcollam builds the C ABI surface collam is interposed
// through: malloc, calloc, realloc, free, malloc_usable_size and
// mallopt. Build with `go build -buildmode=c-shared` to produce the
// shared library a dynamic loader interposes ahead of libc's allocator.
//
// This file is deliberately thin: every exported function here does
// nothing but convert a C-shaped argument, delegate to collam.Default,
// and convert the result back.
package main

/*
#include <stddef.h>
*/
import "C"

import (
	"math"
	"unsafe"

	"github.com/gcarq/collam"
)

// sizeToInt converts a C size_t argument to a Go int, rejecting values
// that would not fit (a 32-bit build handed a size_t near its 64-bit
// max, for instance). This is the ABI layer's responsibility; the engine
// itself only ever sees validated, in-range ints.
func sizeToInt(sz C.size_t) (int, bool) {
	if uint64(sz) > uint64(math.MaxInt) {
		return 0, false
	}
	return int(sz), true
}

//export malloc
func malloc(size C.size_t) unsafe.Pointer {
	n, ok := sizeToInt(size)
	if !ok {
		return nil
	}

	ptr, err := collam.Default.Alloc(n)
	if err != nil {
		return nil
	}
	return ptr
}

//export calloc
func calloc(count, size C.size_t) unsafe.Pointer {
	n, ok := sizeToInt(count)
	if !ok {
		return nil
	}
	sz, ok := sizeToInt(size)
	if !ok {
		return nil
	}

	ptr, err := collam.Default.Calloc(n, sz)
	if err != nil {
		return nil
	}
	return ptr
}

//export realloc
func realloc(ptr unsafe.Pointer, newSize C.size_t) unsafe.Pointer {
	n, ok := sizeToInt(newSize)
	if !ok {
		return nil
	}

	newPtr, err := collam.Default.Realloc(ptr, n)
	if err != nil {
		return nil
	}
	return newPtr
}

//export free
func free(ptr unsafe.Pointer) {
	if err := collam.Default.Dealloc(ptr); err != nil {
		// A no-op is preferred to a crash for a corrupted or
		// already-freed pointer; a genuinely unrecoverable state would
		// already have called abihook.Fatal from inside the engine.
		return
	}
}

//export malloc_usable_size
func malloc_usable_size(ptr unsafe.Pointer) C.size_t {
	return C.size_t(collam.Default.UsableSize(ptr))
}

//export mallopt
func mallopt(param C.int, value C.int) C.int {
	// Stub: collam has no runtime tunables. Always reports success
	// without acting on the parameters, matching glibc's documented
	// behavior for options it does not recognize.
	return C.int(1)
}

func main() {
	// Required by `go build -buildmode=c-shared` but never runs: the
	// dynamic loader only ever calls the exported C functions above.
	// collam.Default is constructed by collam's own package init, which
	// Go guarantees runs before this binary's init/main.
}
