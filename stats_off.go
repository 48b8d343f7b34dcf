//go:build !collam_stats

package collam

// counters is the empty, zero-size implementation used when the
// collam_stats build tag is absent; see stats_on.go for the tagged-in
// telemetry.
type counters struct{}

func (c *counters) onAlloc(int)         {}
func (c *counters) onFree(int)          {}
func (c *counters) onSourceGrowth(int)  {}

// Snapshot is always the zero value when collam_stats is not compiled in.
type Snapshot struct{}

func (c *counters) snapshot() Snapshot { return Snapshot{} }
