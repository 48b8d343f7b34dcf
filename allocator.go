package collam

import (
	"sync"
	"unsafe"

	"github.com/gcarq/collam/internal/abihook"
)

// Allocator is the process-wide facade mediating between ABI entry
// points and the engine. Its zero value is not ready for use — construct
// one with NewAllocator, which wires in the platform memory source. The
// engine never destroys an Allocator; its lifetime is the process
// lifetime.
type Allocator struct {
	mu     sync.Mutex
	list   FreeList
	source memorySource
	counters
}

// Default is the single Allocator instance the cgo ABI surface
// (cmd/libcollam) delegates every malloc/calloc/realloc/free call to.
// Constructed at package init, before any ABI entry point can run.
var Default = NewAllocator()

// NewAllocator constructs a ready-to-use Allocator backed by the
// platform memory source.
func NewAllocator() *Allocator {
	return &Allocator{source: newSource()}
}

// Alloc implements malloc. Returns (nil, nil) for a zero-size request —
// not an error, a defined case.
func (a *Allocator) Alloc(size int) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}

	lay, err := newLayout(size)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocLocked(lay.size)
}

// allocLocked implements the body of Alloc assuming a.mu is already
// held. Never call this, or any other *Locked method, from outside a
// method that has just acquired a.mu — the mutex is not reentrant.
func (a *Allocator) allocLocked(aligned int) (unsafe.Pointer, error) {
	block, ok := a.list.pop(aligned)
	if !ok {
		fresh, err := a.source.request(aligned)
		if err != nil {
			return nil, err
		}
		a.counters.onSourceGrowth(fresh.totalSize())
		block = fresh
	}

	if tail, ok := block.shrink(aligned); ok {
		if _, err := a.list.insert(tail); err != nil {
			// A block freshly carved by shrink can never already be
			// resident in the list; this would mean the heap itself is
			// corrupted beyond what a no-op recovery can paper over.
			abihook.Fatal("impossible double free of freshly split tail")
		}
	}

	a.counters.onAlloc(block.totalSize())
	return block.userRegion(), nil
}

// Calloc implements calloc: count*size is computed with an overflow
// check, the region is allocated and then zero-written before return.
func (a *Allocator) Calloc(count, size int) (unsafe.Pointer, error) {
	if count == 0 || size == 0 {
		return nil, nil
	}

	total, err := safeMul(count, size)
	if err != nil {
		return nil, err
	}

	ptr, err := a.Alloc(total)
	if err != nil || ptr == nil {
		return ptr, err
	}

	zeroRegion(ptr, total)
	return ptr, nil
}

// Dealloc implements free. A nil ptr is a no-op. A ptr that does not
// recover a block with a valid magic is reported as ErrCorrupted but
// otherwise also a no-op — a silent skip is preferred to a crash.
func (a *Allocator) Dealloc(ptr unsafe.Pointer) error {
	if ptr == nil {
		return nil
	}

	block := blockFromUserPtr(ptr)
	if !block.verify() {
		if trace {
			diagf("dealloc: corrupted or foreign pointer %p", ptr)
		}
		return ErrCorrupted
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deallocLocked(block)
}

func (a *Allocator) deallocLocked(block Block) error {
	freedSize := block.totalSize()
	survivor, err := a.list.insert(block)
	if err != nil {
		if trace {
			diagf("dealloc: %v", err)
		}
		return err
	}

	a.counters.onFree(freedSize)

	// Unlink survivor from the list before the break moves: once release
	// shrinks the break, survivor's memory is unmapped, and reading or
	// writing its prev/next links (which live in that same memory) would
	// be a use-after-return.
	a.source.release(survivor, func() { a.list.remove(survivor) })
	a.list.debugWalk()

	return nil
}

// Realloc implements realloc, including its null/zero-size boundary
// cases.
func (a *Allocator) Realloc(ptr unsafe.Pointer, newSize int) (unsafe.Pointer, error) {
	if ptr == nil {
		return a.Alloc(newSize)
	}
	if newSize == 0 {
		return nil, a.Dealloc(ptr)
	}

	block := blockFromUserPtr(ptr)
	if !block.verify() {
		if trace {
			diagf("realloc: corrupted or foreign pointer %p", ptr)
		}
		return nil, ErrCorrupted
	}

	lay, err := newLayout(newSize)
	if err != nil {
		return nil, err
	}
	aligned := lay.size

	a.mu.Lock()
	defer a.mu.Unlock()

	current := block.size()
	switch {
	case aligned == current:
		return ptr, nil
	case aligned < current:
		if tail, ok := block.shrink(aligned); ok {
			if _, err := a.list.insert(tail); err != nil {
				abihook.Fatal("impossible double free of freshly split tail")
			}
		}
		return ptr, nil
	default:
		newPtr, err := a.allocLocked(aligned)
		if err != nil {
			return nil, err
		}
		copyRegion(newPtr, block.userRegion(), current)
		if err := a.deallocLocked(block); err != nil && trace {
			diagf("realloc: failed to release old block: %v", err)
		}
		return newPtr, nil
	}
}

// UsableSize implements malloc_usable_size. Returns 0 for a nil or
// unverifiable pointer rather than erroring — there is no error channel
// across that ABI symbol.
func (a *Allocator) UsableSize(ptr unsafe.Pointer) int {
	if ptr == nil {
		return 0
	}

	block := blockFromUserPtr(ptr)
	if !block.verify() {
		return 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return block.size()
}

// Stats returns a point-in-time copy of the allocator's telemetry. Only
// meaningful when built with the collam_stats tag; otherwise always the
// zero Snapshot.
func (a *Allocator) Stats() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters.snapshot()
}
