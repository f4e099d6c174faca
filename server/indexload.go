package server

import (
	"fmt"
	"os"

	"github.com/statepir/inspire/index"
)

// IndexLayout names where a deployment's bucket index, stem index, and
// range-delta file live on disk.
type IndexLayout struct {
	BucketPath     string
	StemPath       string
	RangeDeltaPath string
	BlockNumber    uint64
}

// LoadIndexState reads all three index files and builds an IndexState. Any
// one of BucketPath/StemPath/RangeDeltaPath may be empty, in which case
// that component is left nil/empty in the result (handlers report
// LaneNotLoaded for the missing piece, not a hard failure, since the
// bucket index, stem index, and range-delta sync are independently
// useful).
func LoadIndexState(layout IndexLayout) (*IndexState, error) {
	st := &IndexState{}

	if layout.BucketPath != "" {
		raw, err := os.ReadFile(layout.BucketPath)
		if err != nil {
			return nil, fmt.Errorf("server: reading bucket index: %w", err)
		}
		bi, err := index.BucketIndexFromBytes(raw, layout.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("server: parsing bucket index: %w", err)
		}
		st.Bucket = bi
	}

	if layout.StemPath != "" {
		raw, err := os.ReadFile(layout.StemPath)
		if err != nil {
			return nil, fmt.Errorf("server: reading stem index: %w", err)
		}
		si, err := index.StemIndexFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("server: parsing stem index: %w", err)
		}
		st.Stem = si
	}

	if layout.RangeDeltaPath != "" {
		f, err := index.ReadRangeDeltaFile(layout.RangeDeltaPath)
		if err != nil {
			return nil, fmt.Errorf("server: reading range-delta file: %w", err)
		}
		st.RangeDeltaPath = layout.RangeDeltaPath
		st.RangeDirectory = f.Directory
	}

	return st, nil
}

// BroadcastDelta publishes a new IndexState with delta applied to a copy
// of the current bucket index, then fans the delta out to every
// /index/subscribe websocket client. A copy-then-swap, not an in-place
// mutation, so a concurrent GET /index never observes a half-applied
// delta (the same atomic-publish discipline snapshot.Cell uses for the
// PIR lanes).
func (a *App) BroadcastDelta(delta index.BucketDelta) {
	cur := a.IndexCell.Load()
	if cur == nil || cur.Bucket == nil {
		return
	}

	counts := append([]uint16(nil), cur.Bucket.Counts...)
	next, err := index.NewBucketIndex(counts, delta.BlockNumber)
	if err != nil {
		a.Logger.Errorw("rebuilding bucket index for delta", "error", err)
		return
	}
	next.ApplyDelta(delta)

	a.IndexCell.Store(&IndexState{
		Bucket:         next,
		Stem:           cur.Stem,
		RangeDeltaPath: cur.RangeDeltaPath,
		RangeDirectory: cur.RangeDirectory,
	})
	a.Hub.Broadcast(delta.ToBytes(), delta.BlockNumber)
}
