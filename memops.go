package collam

import "unsafe"

// copyRegion copies n bytes from src to dst. The two regions never
// overlap under this allocator's invariants (dst is always either a
// just-grown fresh block or an address-distinct existing one), so a
// forward byte copy is sufficient — no memmove-style overlap handling is
// needed for the grow path of realloc.
func copyRegion(dst, src unsafe.Pointer, n int) {
	if n == 0 {
		return
	}
	d := unsafe.Slice((*byte)(dst), n)
	s := unsafe.Slice((*byte)(src), n)
	copy(d, s)
}

// zeroRegion writes n zero bytes starting at ptr.
func zeroRegion(ptr unsafe.Pointer, n int) {
	if n == 0 {
		return
	}
	b := unsafe.Slice((*byte)(ptr), n)
	for i := range b {
		b[i] = 0
	}
}

// safeMul returns a*b, or ErrOverflow if the product overflows int. Used
// by calloc to reject a count*size overflow before it can wrap silently.
func safeMul(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/a != b {
		return 0, ErrOverflow
	}
	return p, nil
}
