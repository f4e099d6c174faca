package laneconfig

// LaneRouter decides which lane an address's queries should go through:
// addresses in the hot-lane manifest route to Hot, everything else to
// Cold. Routing is by address-set membership only, independent of how many
// lanes exist (spec.md §9's open question about generalizing to N lanes
// notes this property; this implementation keeps exactly two lanes since
// that's what the rest of the system — Snapshot, TwoLaneConfig — assumes).
type LaneRouter struct {
	hotAddresses map[[20]byte]struct{}
}

// NewLaneRouter builds a router from a hot-lane manifest.
func NewLaneRouter(manifest *HotLaneManifest) *LaneRouter {
	return &LaneRouter{hotAddresses: manifest.AddressSet()}
}

// Route returns the lane an address's queries belong to.
func (r *LaneRouter) Route(address [20]byte) Lane {
	if _, ok := r.hotAddresses[address]; ok {
		return Hot
	}
	return Cold
}

// IsHot reports whether address is in the hot lane.
func (r *LaneRouter) IsHot(address [20]byte) bool {
	_, ok := r.hotAddresses[address]
	return ok
}
