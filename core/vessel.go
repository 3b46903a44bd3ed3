package core

// CyclePhases is the four-phase vessel turnaround: move out to the yard,
// load the blocks, move back in, unload. Cycle length gates cooldown
// between a vessel's consecutive voyages.
type CyclePhases struct {
	MoveOut, Load, MoveIn, Unload int
}

func (p CyclePhases) Sum() int { return p.MoveOut + p.Load + p.MoveIn + p.Unload }

// VesselSpec describes one transport vessel's deck and turnaround economics.
type VesselSpec struct {
	ID               int
	Name             string
	WidthM           float64
	HeightM          float64
	VoyageCost       float64
	Phases           CyclePhases
	CompatibleBlocks map[string]struct{} // populated by the loader from block compatibility sets
}

// CycleLen is the minimum number of days that must elapse between this
// vessel's consecutive voyage end and the next voyage's start.
func (v *VesselSpec) CycleLen() int { return v.Phases.Sum() }

// IsVIPOnly reports whether a block's compatible-vessel set is exactly {1},
// the spec's vip_blocks classification.
func IsVIPOnly(compatibleVesselIDs map[int]struct{}) bool {
	if len(compatibleVesselIDs) != 1 {
		return false
	}
	_, ok := compatibleVesselIDs[1]
	return ok
}
