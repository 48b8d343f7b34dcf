package collam

import "unsafe"

// blockMagicFree is the sentinel written into every free block's header.
// Its presence is the allocator's minimum trust check on any caller-
// supplied pointer.
const blockMagicFree uint16 = 0xDEAD

// blockHeader is the fixed metadata prefix of every block: its payload
// size and the free-sentinel magic. It does NOT include the free-list
// links — those overlap the first words of the payload and are only
// meaningful while the block is resident in the free list.
type blockHeader struct {
	size  int
	magic uint16
}

// freeLinks overlays the first bytes of a free block's payload. Reading
// or writing it while the block is handed out to a caller is undefined;
// the allocator never does so.
type freeLinks struct {
	prev Block
	next Block
}

// headerSize and linksSize are computed once at init from the actual
// compiled struct layouts rather than hardcoded per architecture;
// headerSize is rounded up to minAlign, linksSize is the raw size.
var (
	headerSize = alignUpPow2(int(unsafe.Sizeof(blockHeader{})), minAlign)
	linksSize  = int(unsafe.Sizeof(freeLinks{}))
)

// Block is a handle to a block header somewhere in the heap. Its zero
// value represents the absence of a block, never a block at address zero.
type Block struct {
	hdr *blockHeader
}

// newBlock places a free-block header at ptr for the given payload size
// and returns a handle to it. size must already satisfy the minAlign
// contract; callers are expected to have rounded it via alignUp.
func newBlock(ptr unsafe.Pointer, size int) Block {
	b := Block{hdr: (*blockHeader)(ptr)}
	b.hdr.size = size
	b.hdr.magic = blockMagicFree
	b.clearLinks()
	return b
}

// blockFromUserPtr recovers the block handle that precedes the user
// pointer p by exactly headerSize bytes. Returns the zero Block if p is
// nil. The caller must call verify before trusting the result: a foreign
// or corrupted pointer recovers a Block whose header bytes are garbage.
func blockFromUserPtr(p unsafe.Pointer) Block {
	if p == nil {
		return Block{}
	}
	return Block{hdr: (*blockHeader)(unsafe.Pointer(uintptr(p) - uintptr(headerSize)))}
}

// isNil reports whether b represents the absence of a block.
func (b Block) isNil() bool { return b.hdr == nil }

// addr returns the address of the block's header.
func (b Block) addr() unsafe.Pointer { return unsafe.Pointer(b.hdr) }

// userRegion returns the pointer handed to callers: the first byte past
// the header.
func (b Block) userRegion() unsafe.Pointer {
	return unsafe.Pointer(uintptr(b.addr()) + uintptr(headerSize))
}

// end returns the address immediately past the block's footprint. On a
// well-formed heap this is where the next block, if any, begins.
func (b Block) end() unsafe.Pointer {
	return unsafe.Pointer(uintptr(b.addr()) + uintptr(headerSize+b.hdr.size))
}

// size returns the payload size in bytes.
func (b Block) size() int { return b.hdr.size }

// totalSize returns the full footprint: header plus payload.
func (b Block) totalSize() int { return headerSize + b.hdr.size }

// verify checks the free-sentinel magic. This is the allocator's primary
// line of defense against foreign or corrupted pointers reaching dealloc
// or realloc.
func (b Block) verify() bool {
	return !b.isNil() && b.hdr.magic == blockMagicFree
}

func (b Block) links() *freeLinks {
	return (*freeLinks)(b.userRegion())
}

func (b Block) prev() Block { return b.links().prev }
func (b Block) next() Block { return b.links().next }

func (b Block) setPrev(p Block) { b.links().prev = p }
func (b Block) setNext(n Block) { b.links().next = n }

// clearLinks resets both link fields. Done whenever a block transitions
// from handed-out (or freshly carved) to "about to be inserted", so that
// stale payload bytes from the caller cannot be mistaken for list links,
// and so that a double-insert of an already-resident block is detectable
// from a known state.
func (b Block) clearLinks() {
	b.setPrev(Block{})
	b.setNext(Block{})
}

// shrink splits the block so that the head retains exactly n bytes of
// payload, returning the tail as a freshly constructed free Block if and
// only if there is enough remaining payload to form a viable free block
// (minSplitPayload). Otherwise it returns the zero Block and leaves the
// receiver unchanged.
func (b Block) shrink(n int) (Block, bool) {
	remaining := b.hdr.size - n - headerSize
	if remaining < minSplitPayload {
		return Block{}, false
	}

	b.hdr.size = n
	tailPtr := unsafe.Pointer(uintptr(b.userRegion()) + uintptr(n))
	return newBlock(tailPtr, remaining), true
}

// maybeMergeNext absorbs the successor into the receiver if and only if
// the two are address-adjacent (b.end() == b.next().addr()). On success
// the successor's header bytes are zeroed so a stale magic cannot later
// deceive a user-pointer probe, and the receiver is returned as the
// coalesced survivor. Otherwise returns the zero Block and makes no
// change.
func (b Block) maybeMergeNext() (Block, bool) {
	nxt := b.next()
	if nxt.isNil() || b.end() != nxt.addr() {
		return Block{}, false
	}

	b.hdr.size += headerSize + nxt.hdr.size
	newNext := nxt.next()
	b.setNext(newNext)
	if !newNext.isNil() {
		newNext.setPrev(b)
	}

	zeroHeader(nxt)
	return b, true
}

// zeroHeader overwrites a block's header bytes, poisoning its magic so
// the memory can never again be mistaken for a live free block.
func zeroHeader(b Block) {
	dst := unsafe.Slice((*byte)(b.addr()), headerSize)
	for i := range dst {
		dst[i] = 0
	}
}
