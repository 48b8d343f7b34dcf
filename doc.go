// Copyright 2026 The collam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package collam implements a drop-in replacement for the C dynamic memory
// allocator: malloc, calloc, realloc, free and malloc_usable_size.
//
// It is meant to be interposed ahead of the system libc allocator via the
// dynamic linker (see cmd/libcollam for the cgo-exported C ABI). This
// package is the heap engine: an address-ordered, intrusive, doubly-linked
// free list of self-describing Blocks, backed by program-break growth and
// shrinkage, mediated by a single process-wide Allocator under one mutex.
//
// The design favors simplicity over asymptotic complexity. Free-list
// operations are O(n) in the number of free blocks; this is a deliberate
// trade against the bookkeeping overhead size classes or red-black trees
// would add for a heap that, in the allocator's intended use, rarely holds
// more than a few hundred free blocks at once.
//
// collam does not implement per-thread arenas, size-class segregation, or
// alignment beyond the platform minimum. See SPEC_FULL.md for the full
// rationale.
package collam
