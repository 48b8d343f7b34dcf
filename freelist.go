package collam

// FreeList is an address-ordered doubly-linked intrusive list of free
// Blocks. It owns no storage of its own; every link lives inside the
// blocks it tracks. Its zero value is an empty list, ready for use.
type FreeList struct {
	head Block
	tail Block
}

// empty reports whether the list holds no blocks.
func (l *FreeList) empty() bool { return l.head.isNil() }

// insert places block into the list in address order and attempts to
// coalesce it with its address-adjacent neighbors, returning the
// coalesced survivor. Returns the zero Block and ErrDoubleFree, leaving
// the list unmutated, if block is already resident — detected by a linear
// scan for pointer identity before any link is touched.
func (l *FreeList) insert(block Block) (Block, error) {
	for cur := l.head; !cur.isNil(); cur = cur.next() {
		if cur.addr() == block.addr() {
			return Block{}, ErrDoubleFree
		}
	}

	// block was handed out a moment ago; its link fields may hold
	// whatever garbage the caller left behind.
	block.clearLinks()

	var prev Block
	cur := l.head
	for !cur.isNil() && uintptr(cur.addr()) < uintptr(block.addr()) {
		prev = cur
		cur = cur.next()
	}

	block.setPrev(prev)
	block.setNext(cur)
	if prev.isNil() {
		l.head = block
	} else {
		prev.setNext(block)
	}
	if cur.isNil() {
		l.tail = block
	} else {
		cur.setPrev(block)
	}

	survivor := block
	if p := survivor.prev(); !p.isNil() {
		if merged, ok := p.maybeMergeNext(); ok {
			survivor = merged
		}
	}
	if merged, ok := survivor.maybeMergeNext(); ok {
		survivor = merged
	}
	if survivor.prev().isNil() {
		l.head = survivor
	}
	if survivor.next().isNil() {
		l.tail = survivor
	}

	l.debugWalk()
	return survivor, nil
}

// pop removes and returns the first free block that either matches need
// exactly or is large enough to split cleanly afterward, scanning in
// ascending address order (first-fit with split). Returns
// the zero Block and false if no block satisfies either condition.
func (l *FreeList) pop(need int) (Block, bool) {
	splitThreshold := need + headerSize + minSplitPayload
	for cur := l.head; !cur.isNil(); cur = cur.next() {
		if cur.size() == need || cur.size() >= splitThreshold {
			l.unlink(cur)
			return cur, true
		}
	}
	return Block{}, false
}

// remove unlinks block from the list, patching neighbors and head/tail,
// and returns it (now orphaned, typically about to be handed out).
func (l *FreeList) remove(block Block) Block {
	l.unlink(block)
	return block
}

func (l *FreeList) unlink(block Block) {
	p := block.prev()
	n := block.next()
	if p.isNil() {
		l.head = n
	} else {
		p.setNext(n)
	}
	if n.isNil() {
		l.tail = p
	} else {
		n.setPrev(p)
	}
	block.clearLinks()
}

// forEach walks the list forward from head, the only iteration order the
// list supports. Never exposed across the ABI boundary; insert, pop and
// the debug walker follow the same next links directly.
func (l *FreeList) forEach(fn func(Block)) {
	for cur := l.head; !cur.isNil(); cur = cur.next() {
		fn(cur)
	}
}
