package device

import "sync/atomic"

// Stats holds cumulative operational counters for a Device. All fields
// are updated with atomic operations and safe to read concurrently from
// another goroutine (such as a metrics scrape) while the Device itself
// is driven by its single owner.
type Stats struct {
	Reads      atomic.Int64
	Writes     atomic.Int64
	Errors     atomic.Int64
	BytesRead  atomic.Int64
	BytesWrite atomic.Int64
	Evictions  atomic.Int64
	Flushes    atomic.Int64
}

// Snapshot is a point-in-time copy of Stats suitable for exposing
// through a metrics endpoint. Loads is sourced separately from the
// Cache, which is the layer that actually knows about backend fetches.
type Snapshot struct {
	Reads      int64
	Writes     int64
	Errors     int64
	BytesRead  int64
	BytesWrite int64
	Evictions  int64
	Loads      int64
	Flushes    int64
}

// Snapshot reads all Device-level counters into a plain struct. Loads
// is left zero; callers that want it should fill it in from
// Device.LoadCount.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Reads:      s.Reads.Load(),
		Writes:     s.Writes.Load(),
		Errors:     s.Errors.Load(),
		BytesRead:  s.BytesRead.Load(),
		BytesWrite: s.BytesWrite.Load(),
		Evictions:  s.Evictions.Load(),
		Flushes:    s.Flushes.Load(),
	}
}
