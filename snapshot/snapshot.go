// Package snapshot implements the server's lock-free snapshot/swap
// machine: an immutable view of both lanes' loaded state, published
// atomically so readers never observe a torn mix of pre- and post-reload
// data. Grounded on the original implementation's
// inspire-server/src/snapshot.rs (append-and-swap cell, never
// read-modify-write, restored via original_source for the per-lane
// partial-failure semantics spec.md §4.F only summarizes) and on the
// teacher's convention of plain structs over a framework.
package snapshot

import (
	"sync/atomic"

	"github.com/statepir/inspire/laneconfig"
	"github.com/statepir/inspire/pirdb"
	"github.com/statepir/inspire/pir"
)

// LaneData is everything one lane needs to answer queries: its PIR setup
// bundle, its encoded database, and the shard layout the two agree on. A
// lane that failed to load is represented as a nil *LaneData; queries
// against it fail with an apperr.KindLaneNotLoaded error.
type LaneData struct {
	Bundle   *pir.Bundle
	Database pirdb.Database
	Config   pirdb.ShardConfig
}

// Snapshot is the immutable, atomically-swappable server state: both
// lanes' data, the address router, the current block number and parameter
// version. Once constructed a Snapshot is never mutated; a reload builds a
// new one and swaps it in.
type Snapshot struct {
	Hot           *LaneData
	Cold          *LaneData
	Router        *laneconfig.LaneRouter
	BlockNumber   uint64
	ParamsVersion uint16
}

// Lane returns the LaneData for the given lane, or nil if that lane failed
// to load.
func (s *Snapshot) Lane(lane laneconfig.Lane) *LaneData {
	if lane == laneconfig.Hot {
		return s.Hot
	}
	return s.Cold
}

// Cell is the single globally-visible mutable value in the server: an
// atomic pointer to the current Snapshot. Readers load the pointer once per
// query (an O(1) atomic read, not a shared-counter clone: Go's garbage
// collector keeps the old *Snapshot alive for as long as any in-flight
// query still holds a reference to it, which is the Go-idiomatic
// equivalent of the original's Arc<Snapshot> clone-on-read). Writers build
// a full replacement off to the side and publish it with one atomic store;
// in-flight reads against the previous Snapshot are unaffected since they
// already hold their own pointer.
type Cell struct {
	ptr atomic.Pointer[Snapshot]
}

// NewCell constructs a Cell, optionally pre-loaded with an initial
// snapshot (nil is valid: every query fails with a LaneNotLoaded error until
// the first successful Store).
func NewCell(initial *Snapshot) *Cell {
	c := &Cell{}
	if initial != nil {
		c.ptr.Store(initial)
	}
	return c
}

// Load returns the current snapshot (nil if none has ever been published).
func (c *Cell) Load() *Snapshot {
	return c.ptr.Load()
}

// Store publishes a new snapshot atomically. The previous snapshot, if any,
// is not explicitly freed: it is reclaimed by the garbage collector once
// every reader holding it finishes.
func (c *Cell) Store(s *Snapshot) {
	c.ptr.Store(s)
}
