//go:build linux

package collam

import (
	"math"
	"testing"
	"unsafe"

	"github.com/cznic/mathutil"
)

func TestAllocZeroReturnsNil(t *testing.T) {
	a := NewAllocator()
	ptr, err := a.Alloc(0)
	if err != nil {
		t.Fatal(err)
	}
	if ptr != nil {
		t.Fatal("Alloc(0) should return nil")
	}
}

func TestDeallocNilIsNoop(t *testing.T) {
	a := NewAllocator()
	if err := a.Dealloc(nil); err != nil {
		t.Fatal(err)
	}
}

func TestReallocNullIsAlloc(t *testing.T) {
	a := NewAllocator()
	p1, err := a.Realloc(nil, 32)
	if err != nil {
		t.Fatal(err)
	}
	if p1 == nil {
		t.Fatal("Realloc(nil, 32) should behave like Alloc(32)")
	}
	if a.UsableSize(p1) < 32 {
		t.Fatal("usable size should cover the requested 32 bytes")
	}
}

func TestReallocZeroSizeFreesAndReturnsNil(t *testing.T) {
	a := NewAllocator()
	p, err := a.Alloc(32)
	if err != nil {
		t.Fatal(err)
	}

	out, err := a.Realloc(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Fatal("Realloc(p, 0) should return nil")
	}
	if a.UsableSize(p) != 0 {
		t.Fatal("the freed pointer should no longer verify")
	}
}

func TestReallocNullZeroIsNil(t *testing.T) {
	a := NewAllocator()
	p, err := a.Realloc(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatal("Realloc(nil, 0) should return nil")
	}
}

// TestSequentialAllocFreeRealloc exercises malloc(100), usable_size
// rounding up to 112, realloc(p, 50) never moving p, then free(p).
func TestSequentialAllocFreeRealloc(t *testing.T) {
	a := NewAllocator()

	p1, err := a.Alloc(100)
	if err != nil || p1 == nil {
		t.Fatalf("Alloc(100) = %p, %v", p1, err)
	}
	if got := a.UsableSize(p1); got != 112 {
		t.Fatalf("UsableSize(p1) = %d, want 112", got)
	}

	p2, err := a.Realloc(p1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if p2 != p1 {
		t.Fatal("shrinking realloc must never move the pointer")
	}

	if err := a.Dealloc(p2); err != nil {
		t.Fatal(err)
	}
}

// TestSplitOnAllocation verifies a fresh request from the source is
// split, and the tail ends up as the list's sole member.
func TestSplitOnAllocation(t *testing.T) {
	a := NewAllocator()

	p, err := a.Alloc(32)
	if err != nil || p == nil {
		t.Fatalf("Alloc(32) = %p, %v", p, err)
	}
	if a.UsableSize(p) != 32 {
		t.Fatalf("UsableSize(p) = %d, want 32", a.UsableSize(p))
	}

	count := 0
	a.list.forEach(func(Block) { count++ })
	if count != 1 {
		t.Fatalf("free list has %d blocks, want exactly 1", count)
	}
}

// TestCoalesceOnFree verifies two adjacent allocations, freed in order,
// coalesce into one block of combined footprint. A third allocation stays
// live after them so the coalesced block is not also merged with the
// page's free tail and released as topmost.
func TestCoalesceOnFree(t *testing.T) {
	a := NewAllocator()

	p1, err := a.Alloc(64)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := a.Alloc(64)
	if err != nil {
		t.Fatal(err)
	}
	if guard, err := a.Alloc(64); err != nil || guard == nil {
		t.Fatalf("Alloc(64) = %p, %v", guard, err)
	}

	if err := a.Dealloc(p1); err != nil {
		t.Fatal(err)
	}
	if err := a.Dealloc(p2); err != nil {
		t.Fatal(err)
	}

	var found *Block
	a.list.forEach(func(b Block) {
		if b.size() == 64+headerSize+64 {
			cp := b
			found = &cp
		}
	})
	if found == nil {
		t.Fatal("expected a coalesced block of payload 144")
	}
}

// TestTopRelease verifies freeing a topmost block returns the break to
// its pre-malloc value.
func TestTopRelease(t *testing.T) {
	a := NewAllocator()

	before, err := sbrk(0)
	if err != nil {
		t.Fatal(err)
	}

	p, err := a.Alloc(pageSize) // force a fresh source.request
	if err != nil || p == nil {
		t.Fatalf("Alloc(pageSize) = %p, %v", p, err)
	}

	if err := a.Dealloc(p); err != nil {
		t.Fatal(err)
	}

	after, err := sbrk(0)
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Fatalf("break after release = %#x, want %#x", after, before)
	}
}

// TestDoubleFree verifies a second free of the same pointer is reported
// as corruption rather than silently accepted.
func TestDoubleFree(t *testing.T) {
	a := NewAllocator()

	p, err := a.Alloc(16)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Dealloc(p); err != nil {
		t.Fatal(err)
	}

	if err := a.Dealloc(p); err != ErrCorrupted {
		t.Fatalf("second free = %v, want ErrCorrupted (block was zeroed by coalesce or release)", err)
	}
}

// TestCorruptedMagicOnFree verifies a block whose header has been
// stomped on is rejected by Dealloc rather than freed.
func TestCorruptedMagicOnFree(t *testing.T) {
	a := NewAllocator()

	p, err := a.Alloc(16)
	if err != nil {
		t.Fatal(err)
	}

	header := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(p)-uintptr(headerSize))), headerSize)
	for i := range header {
		header[i] = 0
	}

	if err := a.Dealloc(p); err != ErrCorrupted {
		t.Fatalf("Dealloc of a corrupted header = %v, want ErrCorrupted", err)
	}
}

func TestCallocZeroesMemory(t *testing.T) {
	a := NewAllocator()
	p, err := a.Calloc(8, 16)
	if err != nil || p == nil {
		t.Fatalf("Calloc(8, 16) = %p, %v", p, err)
	}

	region := unsafe.Slice((*byte)(p), 128)
	for i, b := range region {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
}

func TestCallocOverflowReturnsError(t *testing.T) {
	a := NewAllocator()
	if _, err := a.Calloc(math.MaxInt, 2); err != ErrOverflow {
		t.Fatalf("Calloc overflow = %v, want ErrOverflow", err)
	}
}

// TestAllocatorRandomizedRoundTrip runs a deterministic pseudo-random
// sequence of allocations, fills each with known content, verifies it
// back, then frees everything and checks the free list settles down to
// at most one coalesced block.
func TestAllocatorRandomizedRoundTrip(t *testing.T) {
	a := NewAllocator()
	rng, err := mathutil.NewFC32(1, 4096, true)
	if err != nil {
		t.Fatal(err)
	}
	rng.Seed(42)

	var ptrs []unsafe.Pointer
	var sizes []int
	for i := 0; i < 500; i++ {
		size := rng.Next()
		p, err := a.Alloc(size)
		if err != nil {
			t.Fatal(err)
		}
		region := unsafe.Slice((*byte)(p), size)
		for j := range region {
			region[j] = byte(i)
		}
		ptrs = append(ptrs, p)
		sizes = append(sizes, size)
	}

	for i, p := range ptrs {
		region := unsafe.Slice((*byte)(p), sizes[i])
		for j, b := range region {
			if b != byte(i) {
				t.Fatalf("corruption at alloc %d byte %d: got %#x", i, j, b)
			}
		}
	}

	for _, p := range ptrs {
		if err := a.Dealloc(p); err != nil {
			t.Fatal(err)
		}
	}

	if !a.list.empty() {
		var leftover []int
		a.list.forEach(func(b Block) { leftover = append(leftover, b.size()) })
		if len(leftover) != 1 {
			t.Fatalf("expected the freed blocks to coalesce into at most one block, got %v", leftover)
		}
	}
}

func benchmarkAllocFree(b *testing.B, size int) {
	a := NewAllocator()
	ptrs := make([]unsafe.Pointer, b.N)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, err := a.Alloc(size)
		if err != nil {
			b.Fatal(err)
		}
		ptrs[i] = p
	}
	for _, p := range ptrs {
		if err := a.Dealloc(p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAllocFree16(b *testing.B) { benchmarkAllocFree(b, 1<<4) }
func BenchmarkAllocFree32(b *testing.B) { benchmarkAllocFree(b, 1<<5) }
func BenchmarkAllocFree64(b *testing.B) { benchmarkAllocFree(b, 1<<6) }
