package collam

import "os"

// pageSize is read once at package init via the standard library (the
// teacher's memory.go does the same for its mmap page rounding); there is
// no third-party benefit to reaching past a single cached syscall result
// for this.
var pageSize = os.Getpagesize()

// memorySource grows and shrinks the backing region the engine carves
// blocks from. The only implementation shipped is program-break-based
// (source_unix.go); source_unsupported.go stands in on platforms where
// that design does not apply.
type memorySource interface {
	// request extends the backing region by at least headerSize+minBytes,
	// page-rounded, and returns a freshly constructed free Block spanning
	// the new region. Returns ErrOutOfMemory if the kernel refuses.
	request(minBytes int) (Block, error)

	// release shrinks the backing region by block's full footprint if and
	// only if block is topmost (its end coincides with the current break).
	// block's memory is unmapped the instant the shrink succeeds, so
	// release calls onUnlink just before that point, giving the caller a
	// chance to remove block from any structure that would otherwise read
	// or write its now-unmapped memory. onUnlink is not called at all if
	// block turns out not to be topmost. Returns true exactly when the
	// shrink happened; a false return is not an error, it is the natural
	// consequence of the block not being topmost, or of the shrink syscall
	// itself failing (printed via diagf only when trace is on, never
	// escalated).
	release(block Block, onUnlink func()) bool
}
