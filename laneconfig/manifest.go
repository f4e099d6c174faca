package laneconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

// HotContract is one entry of the hot-lane manifest: an address the lane
// builder decided belongs in the small, frequently-queried lane, carrying a
// human-readable name and category alongside the slot count the routing
// logic needs (restored from the original implementation's manifest.rs;
// the distilled spec's Bucket/manifest description only requires address
// and slot count, but routing.rs already needs the full manifest struct and
// the extra fields cost nothing to carry through).
type HotContract struct {
	Address   [20]byte `json:"address"`
	Name      string   `json:"name"`
	Category  string   `json:"category"` // e.g. "token", "defi", "nft"
	SlotCount int      `json:"slot_count"`
}

// HotLaneManifest lists every contract the lane builder placed in the hot
// lane.
type HotLaneManifest struct {
	Version   int           `json:"version"`
	Contracts []HotContract `json:"contracts"`
}

// LoadHotLaneManifest reads a manifest JSON file.
func LoadHotLaneManifest(path string) (*HotLaneManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m HotLaneManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("laneconfig: parsing manifest: %w", err)
	}
	return &m, nil
}

// AddressSet returns the set of hot-lane addresses, used by LaneRouter.
func (m *HotLaneManifest) AddressSet() map[[20]byte]struct{} {
	set := make(map[[20]byte]struct{}, len(m.Contracts))
	for _, c := range m.Contracts {
		set[c.Address] = struct{}{}
	}
	return set
}
