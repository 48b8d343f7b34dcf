//go:build collam_stats

package collam

// counters holds the allocator's optional telemetry. All fields are only
// ever touched while the Allocator's mutex is already held, so no atomics
// are needed, matching the plain a.allocs/a.bytes/a.mmaps int fields of
// earlier Go allocators in the same style.
type counters struct {
	allocs          int64
	frees           int64
	bytesFromSource int64
	liveBytes       int64
}

func (c *counters) onAlloc(n int) {
	c.allocs++
	c.liveBytes += int64(n)
}

func (c *counters) onFree(n int) {
	c.frees++
	c.liveBytes -= int64(n)
}

func (c *counters) onSourceGrowth(n int) {
	c.bytesFromSource += int64(n)
}

// Snapshot is a point-in-time copy of the allocator's telemetry.
type Snapshot struct {
	Allocs          int64
	Frees           int64
	BytesFromSource int64
	LiveBytes       int64
}

func (c *counters) snapshot() Snapshot {
	return Snapshot{
		Allocs:          c.allocs,
		Frees:           c.frees,
		BytesFromSource: c.bytesFromSource,
		LiveBytes:       c.liveBytes,
	}
}
