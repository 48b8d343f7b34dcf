//go:build linux

package collam

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// brkSource is the sole supported memory source: the process data
// segment, manipulated by the classic sbrk(2) system-call pair built atop
// the raw brk(2) syscall. Grounded on original_source/src/heap/mod.rs's
// request_block (there via libc::sbrk) and, for the raw-syscall style
// itself, on SeleniaProject-Orizon's use of golang.org/x/sys/unix for
// POSIX syscalls the standard library doesn't wrap.
//
// The standard library intentionally exposes no brk wrapper — the Go
// runtime manages its own heap via mmap — so reaching the raw syscall
// without cgo requires golang.org/x/sys/unix.
type brkSource struct{}

func newSource() memorySource { return brkSource{} }

// sbrk mirrors the classic libc sbrk: it moves the program break by delta
// bytes and returns the break that existed before the call. Linux's
// brk(2) never reports failure via errno on the adjustment call itself —
// it always returns the break that resulted — so failure to grow is
// detected by comparing the returned break against the one requested,
// exactly as glibc's sbrk does internally.
func sbrk(delta int) (uintptr, error) {
	cur, _, errno := unix.RawSyscall(unix.SYS_BRK, 0, 0, 0)
	if errno != 0 {
		return 0, errno
	}
	if delta == 0 {
		return cur, nil
	}

	var want uintptr
	if delta > 0 {
		want = cur + uintptr(delta)
	} else {
		want = cur - uintptr(-delta)
	}

	got, _, errno := unix.RawSyscall(unix.SYS_BRK, want, 0, 0)
	if errno != 0 {
		return 0, errno
	}
	if delta > 0 && got < want {
		return 0, ErrOutOfMemory
	}

	return cur, nil
}

func (brkSource) request(minBytes int) (Block, error) {
	size := alignUpPow2(headerSize+minBytes, pageSize)
	oldBrk, err := sbrk(size)
	if err != nil {
		if trace {
			diagf("source: request(%d) failed: %v", minBytes, err)
		}
		return Block{}, ErrOutOfMemory
	}

	return newBlock(unsafe.Pointer(oldBrk), size-headerSize), nil
}

func (brkSource) release(block Block, onUnlink func()) bool {
	cur, err := sbrk(0)
	if err != nil {
		return false
	}
	if uintptr(block.end()) != cur {
		return false
	}

	// block is topmost: it is about to be unmapped. Let the caller drop
	// every reference to it before the break moves out from under it.
	onUnlink()

	if _, err := sbrk(-block.totalSize()); err != nil {
		if trace {
			diagf("source: release shrink failed: %v", err)
		}
		return false
	}

	return true
}
