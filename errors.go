package collam

import "errors"

// Sentinel errors surfaced by the engine's Go-facing API.
// ErrOverflow is defined in align.go, next to the arithmetic it guards.
var (
	// ErrOutOfMemory is returned when the memory source could not extend
	// the backing region far enough to satisfy a request.
	ErrOutOfMemory = errors.New("collam: out of memory")

	// ErrCorrupted is returned when a user-supplied pointer does not
	// recover a block with a valid free-sentinel magic.
	ErrCorrupted = errors.New("collam: corrupted or foreign pointer")

	// ErrDoubleFree is returned by the free list when an already-resident
	// block is inserted again.
	ErrDoubleFree = errors.New("collam: double free detected")

	// ErrUnsupported is returned by the memory source on platforms this
	// engine's break-based design does not support.
	ErrUnsupported = errors.New("collam: unsupported platform")
)
