package laneconfig

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/zeebo/blake3"
)

// LaneEntryConfig is one lane's shape, as recorded in deployment
// configuration: how many entries it holds and the fixed entry size those
// entries were encoded with.
type LaneEntryConfig struct {
	EntryCount int `json:"entry_count"`
	EntrySize  int `json:"entry_size"`
}

// TwoLaneConfig is the JSON deployment descriptor the lane builder writes
// and the server loads, grounded on inspire-core/src/config.rs.
type TwoLaneConfig struct {
	ParamsVersion uint16          `json:"params_version"`
	Hot           LaneEntryConfig `json:"hot"`
	Cold          LaneEntryConfig `json:"cold"`
}

// LoadTwoLaneConfig reads a TwoLaneConfig JSON file.
func LoadTwoLaneConfig(path string) (*TwoLaneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c TwoLaneConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("laneconfig: parsing config: %w", err)
	}
	return &c, nil
}

// ComputeHash hashes the shape-relevant fields of the config (entry counts,
// entry size, parameter version) so a client can detect a shape change via
// GET /info before issuing a query, per the original implementation's
// config-hash/version-negotiation mechanism (restored via original_source;
// spec.md's Data Model only says version mismatches must be rejected, not
// how a client cheaply detects one without fetching the whole CRS).
func (c TwoLaneConfig) ComputeHash() string {
	h := blake3.New()
	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], c.ParamsVersion)
	h.Write(buf[:2])
	binary.LittleEndian.PutUint64(buf[:], uint64(c.Hot.EntryCount))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(c.Hot.EntrySize))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(c.Cold.EntryCount))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(c.Cold.EntrySize))
	h.Write(buf[:])
	sum := h.Sum(nil)
	return fmt.Sprintf("%x", sum[:16])
}

// For returns the LaneEntryConfig for the named lane.
func (c TwoLaneConfig) For(lane Lane) LaneEntryConfig {
	if lane == Hot {
		return c.Hot
	}
	return c.Cold
}
