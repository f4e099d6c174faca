// Package laneconfig implements the two-lane partitioning scheme: lane
// naming and aliasing, the hot-lane manifest, the address-set router, and
// the JSON deployment configuration the lane builder and server share. It
// is grounded on the original implementation's inspire-core/src/config.rs
// and inspire-server/src/routing.rs (restored via original_source for the
// manifest category fields and the case-insensitive alias table spec.md §6
// only describes in prose).
package laneconfig

import (
	"fmt"
	"strings"
)

// Lane names one of the two partitions a deployment serves.
type Lane int

const (
	Hot Lane = iota
	Cold
)

// String renders the canonical lane name.
func (l Lane) String() string {
	switch l {
	case Hot:
		return "hot"
	case Cold:
		return "cold"
	default:
		return "unknown"
	}
}

// ParseLane resolves a lane name case-insensitively, accepting "hot" and
// its alias "balances", or "cold" and its alias "storage", per spec.md §6.
func ParseLane(name string) (Lane, error) {
	switch strings.ToLower(name) {
	case "hot", "balances":
		return Hot, nil
	case "cold", "storage":
		return Cold, nil
	default:
		return 0, fmt.Errorf("laneconfig: unknown lane %q", name)
	}
}
