// Package loader implements the voyage loader (L2 / C7): turning a
// candidate voyage and two block pools into committed assignments by
// running the placement engine against an area-bounded, eligibility-
// filtered candidate set.
package loader

import (
	"context"
	"sort"
	"time"

	"github.com/oceanfreight/blockvoyage/cmn"
	"github.com/oceanfreight/blockvoyage/cmn/cos"
	"github.com/oceanfreight/blockvoyage/cmn/nlog"
	"github.com/oceanfreight/blockvoyage/core"
	"github.com/oceanfreight/blockvoyage/idgen"
	"github.com/oceanfreight/blockvoyage/placer"
)

// BuildEligibility snapshots the shared block pools into a fresh per-vessel
// eligibility set: every pool block with a recorded deadline, filtered by
// compatibility and VIP-vessel restriction, the same rules eligible()
// applies per end-day below. A block with no recorded deadline never falls
// inside any voyage window, so it's left out rather than treated as
// always-eligible.
func BuildEligibility(pools *Pools, vessels []*core.VesselSpec) map[string][]*EligibleBlock {
	all := make([]*Block, 0, len(pools.VIP)+len(pools.Normal))
	for _, b := range pools.VIP {
		all = append(all, b)
	}
	for _, b := range pools.Normal {
		all = append(all, b)
	}

	out := make(map[string][]*EligibleBlock, len(vessels))
	for _, vessel := range vessels {
		var list []*EligibleBlock
		for _, b := range all {
			if b.Deadline.IsZero() {
				continue
			}
			if len(b.Compatible) > 0 {
				if _, ok := b.Compatible[vessel.ID]; !ok {
					continue
				}
			}
			if b.VIP && vessel.ID != 1 {
				continue
			}
			list = append(list, &EligibleBlock{Block: b, DeadlineDay: cos.EpochDay(b.Deadline)})
		}
		out[vessel.Name] = list
	}
	return out
}

// Block is one fabricated assembly plus the scheduling-relevant metadata L2
// needs: deadline, compatibility, VIP status, and the voxel geometry L1
// consumes.
type Block struct {
	ID         string
	Deadline   time.Time
	Voxel      *core.VoxelBlock
	AreaKnown  bool
	Area       float64
	Compatible map[int]struct{} // nil/empty means "any"
	VIP        bool
}

// Pools holds the two mutable block pools L2 draws from and commits into.
// VIPFilter is an optional cheap pre-filter: when set, Commit consults it
// (and removes committed VIP ids from it) ahead of the exact VIP pool-map
// delete.
type Pools struct {
	VIP    map[string]*Block
	Normal map[string]*Block

	VIPFilter *idgen.MembershipFilter
}

// CommitPath records which branch of plan synthesis produced a commit, for
// logging and for the caller's metrics.
type CommitPath string

const (
	PathCombinedOK     CommitPath = "COMBINED_OK"
	PathFallbackVIP    CommitPath = "FALLBACK_VIP_ONLY"
	PathNone           CommitPath = "NONE"
)

// PlanResult is the outcome of one run_for_voyage call.
type PlanResult struct {
	Path      CommitPath
	Committed []string
}

// Loader runs L2 against a vessel spec and a scheduling state.
type Loader struct {
	Vessel *core.VesselSpec
	Pools  *Pools

	BlockAssignments map[string]string   // block_id -> voyage_id
	VoyageBlocks     map[string][]string // voyage_id -> ordered block_id
	LastEnd          map[string]int64    // vessel_name -> unix day of last unload, -1 if none
	UsedEndDates     map[string][]int64  // vessel_name -> every committed voyage's end day, for the cooldown audit
}

// eligible reports whether block b may ride voyage v per spec rule (a)-(c).
// endDay/deadlineDay are both expressed as integer day offsets (epoch days)
// so callers own date parsing.
func eligible(deadlineDay, endDay int, vessel *core.VesselSpec, compatible map[int]struct{}, vip bool) bool {
	if endDay < deadlineDay-14 || endDay > deadlineDay-1 {
		return false
	}
	if len(compatible) > 0 {
		if _, ok := compatible[vessel.ID]; !ok {
			return false
		}
	}
	if vip && vessel.ID != 1 {
		return false
	}
	return true
}

// EligibleBlock pairs a Block with the day-integer fields the eligibility
// and ordering rules need, decoupling loader.go from any specific date type.
type EligibleBlock struct {
	*Block
	DeadlineDay int
}

// Eligible filters and sorts candidate blocks: (deadline asc, area desc,
// block_id asc).
func Eligible(blocks map[string]*EligibleBlock, vessel *core.VesselSpec, endDay int) []*EligibleBlock {
	var out []*EligibleBlock
	for _, b := range blocks {
		if eligible(b.DeadlineDay, endDay, vessel, b.Compatible, b.VIP) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeadlineDay != out[j].DeadlineDay {
			return out[i].DeadlineDay < out[j].DeadlineDay
		}
		ai, aj := out[i].Area, out[j].Area
		if !out[i].AreaKnown {
			ai = 0
		}
		if !out[j].AreaKnown {
			aj = 0
		}
		if ai != aj {
			return ai > aj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// capResult is the greedy area-and-count-bounded prefix of a sorted list.
type capResult struct {
	blocks    []*EligibleBlock
	totalArea float64
}

// capPrefix greedily prefixes blocks under both an area budget and a count
// limit. When any block in the candidate set lacks a known area, the area
// budget is ignored and only the count limit applies (spec's metadata-gap
// fallback).
func capPrefix(sorted []*EligibleBlock, areaBudget float64, countLimit int) capResult {
	anyUnknown := false
	for _, b := range sorted {
		if !b.AreaKnown {
			anyUnknown = true
			break
		}
	}
	res := capResult{}
	for _, b := range sorted {
		if len(res.blocks) >= countLimit {
			break
		}
		if !anyUnknown {
			next := res.totalArea + b.Area
			if next > areaBudget && len(res.blocks) > 0 {
				break
			}
			res.totalArea = cos.Round6(next)
		}
		res.blocks = append(res.blocks, b)
	}
	return res
}

// VesselArea is the vessel deck's raw area in grid cells, used for
// target_area = vessel_area * capacity_ratio.
func VesselArea(vessel *core.VesselSpec, widthGrids, heightGrids int) float64 {
	return float64(widthGrids * heightGrids)
}

// PlanSynthesis runs plan synthesis steps 1-4: seed VIP (vessel 1 only),
// take normal blocks under the remaining area budget, run L1 combined, and
// fall back to VIP-only on partial combined failure.
func PlanSynthesis(ctx context.Context, area *core.PlacementArea, vessel *core.VesselSpec, vipSortedIn, normalSorted []*EligibleBlock) *PlanResult {
	cfg := cmn.GCO.Get()
	targetArea := cos.Round6(float64(area.Width*area.Height) * cfg.Loader.CapacityRatio)
	pageLimit := cfg.Loader.PageLimit(vessel.ID)

	var vipSeed capResult
	if vessel.ID == 1 {
		vipSeed = capPrefix(vipSortedIn, targetArea, pageLimit)
	}

	remArea := targetArea - vipSeed.totalArea
	normalTake := capPrefix(normalSorted, remArea, pageLimit)

	union := unionBlocks(vipSeed.blocks, normalTake.blocks)
	if len(union) == 0 {
		return &PlanResult{Path: PathNone}
	}

	blocks := make([]*core.VoxelBlock, 0, len(union))
	for _, b := range union {
		blocks = append(blocks, b.Voxel)
	}

	budget := cfg.Loader.StandardTimeout
	if len(vipSeed.blocks) > 0 {
		budget = cfg.Loader.SingleWindowTimeout
	}

	p := placer.New(placer.KindGreedyCompact)
	res := p.Place(ctx, area, blocks, budget)

	if placedAll(res.Placed, vipSeed.blocks) {
		nlog.Infof("loader: vessel=%s combined plan ok placed=%d", vessel.Name, len(res.Placed))
		return &PlanResult{Path: PathCombinedOK, Committed: res.Placed}
	}

	if len(vipSeed.blocks) > 0 {
		for _, id := range res.Placed {
			area.RemoveBlock(id)
		}
		vipBlocks := make([]*core.VoxelBlock, 0, len(vipSeed.blocks))
		for _, b := range vipSeed.blocks {
			vipBlocks = append(vipBlocks, b.Voxel)
		}
		vipRes := p.Place(ctx, area, vipBlocks, cfg.Loader.SingleWindowTimeout)
		nlog.Infof("loader: vessel=%s combined failed, vip-only fallback placed=%d", vessel.Name, len(vipRes.Placed))
		return &PlanResult{Path: PathFallbackVIP, Committed: vipRes.Placed}
	}

	for _, id := range res.Placed {
		area.RemoveBlock(id)
	}
	return &PlanResult{Path: PathNone}
}

func unionBlocks(sets ...[]*EligibleBlock) []*EligibleBlock {
	seen := cos.NewStringSet()
	var out []*EligibleBlock
	for _, set := range sets {
		for _, b := range set {
			if seen.Contains(b.ID) {
				continue
			}
			seen.Add(b.ID)
			out = append(out, b)
		}
	}
	return out
}

func placedAll(placed []string, required []*EligibleBlock) bool {
	if len(required) == 0 {
		return true
	}
	placedSet := cos.NewStringSet(placed...)
	for _, b := range required {
		if !placedSet.Contains(b.ID) {
			return false
		}
	}
	return true
}

// RunForVoyage is the single-voyage driver: it applies the per-vessel
// cooldown guard, runs plan synthesis on the caller-supplied area, and
// commits. Voyage registration is left to the caller (L3 passes the area
// and voyageID in), so a voyage that places nothing leaves no record here:
// no assignment, no voyage_blocks entry, and no last_end update.
//
// endDay/startDay are epoch-day integers; isNewVoyage only marks the
// zero-placement case as a rollback in the log.
func (l *Loader) RunForVoyage(ctx context.Context, area *core.PlacementArea, voyageID string, startDay, endDay int, isNewVoyage bool, vipEligible, normalEligible []*EligibleBlock) (placed int, path CommitPath) {
	if last, ok := l.LastEnd[l.Vessel.Name]; ok {
		if int64(endDay)-last < int64(l.Vessel.CycleLen()) {
			return 0, PathNone
		}
	}

	byID := make(map[string]*EligibleBlock, len(vipEligible)+len(normalEligible))
	for _, b := range vipEligible {
		byID[b.ID] = b
	}
	for _, b := range normalEligible {
		byID[b.ID] = b
	}

	res := PlanSynthesis(ctx, area, l.Vessel, vipEligible, normalEligible)
	if len(res.Committed) == 0 {
		if isNewVoyage {
			nlog.Infof("loader: voyage %s rolled back, zero placements", voyageID)
		}
		return 0, PathNone
	}

	l.Commit(voyageID, res.Committed, byID)
	l.LastEnd[l.Vessel.Name] = int64(endDay)
	if l.UsedEndDates != nil {
		l.UsedEndDates[l.Vessel.Name] = append(l.UsedEndDates[l.Vessel.Name], int64(endDay))
	}
	return len(res.Committed), res.Path
}

// Commit records each committed block's assignment, appends to the
// voyage's block list, and removes it from its originating pool. When the
// pools carry a VIP membership pre-filter, it's consulted (and kept in
// sync) ahead of the exact map deletes below.
func (l *Loader) Commit(voyageID string, committed []string, byID map[string]*EligibleBlock) {
	for _, id := range committed {
		l.BlockAssignments[id] = voyageID
		l.VoyageBlocks[voyageID] = append(l.VoyageBlocks[voyageID], id)
		if b, ok := byID[id]; ok {
			if b.VIP {
				if l.Pools.VIPFilter != nil && l.Pools.VIPFilter.MaybeContains(id) {
					l.Pools.VIPFilter.Remove(id)
				}
				delete(l.Pools.VIP, id)
			} else {
				delete(l.Pools.Normal, id)
			}
		}
	}
}
