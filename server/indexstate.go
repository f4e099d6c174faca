package server

import (
	"sync/atomic"

	"github.com/statepir/inspire/index"
)

// IndexState holds the bucket index, stem index, and range-delta file path
// the /index/* routes serve, published the same way Snapshot is: build a
// new one off to the side, then atomically swap it in. It is separate from
// snapshot.Snapshot because the index refreshes on its own cadence (every
// new block) while the PIR lanes only reload when their encoded database
// changes.
type IndexState struct {
	Bucket          *index.BucketIndex
	Stem            *index.StemIndex
	RangeDeltaPath  string
	RangeDirectory  []index.RangeDirectoryEntry
}

// IndexCell is an atomic-pointer publish/load cell for *IndexState,
// mirroring snapshot.Cell.
type IndexCell struct {
	ptr atomic.Pointer[IndexState]
}

// NewIndexCell constructs an IndexCell, optionally pre-loaded.
func NewIndexCell(initial *IndexState) *IndexCell {
	c := &IndexCell{}
	if initial != nil {
		c.ptr.Store(initial)
	}
	return c
}

// Load returns the current IndexState, or nil if none has been published.
func (c *IndexCell) Load() *IndexState {
	return c.ptr.Load()
}

// Store publishes a new IndexState.
func (c *IndexCell) Store(s *IndexState) {
	c.ptr.Store(s)
}
