// Package scheduler implements the fleet scheduler (L3 / C8): per-round
// candidate-date synthesis, weighted independent-set date selection with a
// per-vessel cooldown gap, voyage execution, a rescue pass for leftover
// blocks, and a post-hoc cooldown audit.
package scheduler

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/oceanfreight/blockvoyage/cmn"
	"github.com/oceanfreight/blockvoyage/cmn/cos"
	"github.com/oceanfreight/blockvoyage/cmn/nlog"
	"github.com/oceanfreight/blockvoyage/core"
	"github.com/oceanfreight/blockvoyage/loader"
)

// vesselPlan is the prepared, vessel-independent output of candidate-date
// synthesis and scoring: safe to compute concurrently across vessels since
// it touches no shared pool or last_end state, only reads.
type vesselPlan struct {
	vessel   *core.VesselSpec
	selected []int
}

// preparePlans computes candidate dates, scores, and the DP-selected date
// set for every vessel concurrently via errgroup, since this phase only
// reads the eligibility snapshot. Execution against shared pools stays
// sequential per vessel in Round.
func (s *Scheduler) preparePlans(ctx context.Context, elig map[string][]*loader.EligibleBlock) ([]*vesselPlan, error) {
	cfg := cmn.GCO.Get()
	plans := make([]*vesselPlan, len(s.Vessels))

	g, _ := errgroup.WithContext(ctx)
	for i, vessel := range s.Vessels {
		i, vessel := i, vessel
		g.Go(func() error {
			windows := windowsForVessel(elig, vessel)
			if len(windows) == 0 {
				plans[i] = &vesselPlan{vessel: vessel}
				return nil
			}
			dates := candidateDates(windows, cfg.Scheduler.TopKPeaks, cfg.Scheduler.GridStepDays)
			scores := make([]float64, len(dates))
			for j, d := range dates {
				scores[j] = scoreDate(elig, vessel, d, cfg.Loader.CapacityRatio)
			}
			selected := selectDateSet(dates, scores, vessel.CycleLen())
			plans[i] = &vesselPlan{vessel: vessel, selected: selected}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

// UnassignedReason tags a leftover block with why it never got scheduled.
type UnassignedReason string

const (
	ReasonNoDeadline              UnassignedReason = "no_deadline"
	ReasonWindowBlockedByCooldown UnassignedReason = "window_blocked_by_cooldown"
	ReasonVIPOnlyWaitingShip1     UnassignedReason = "vip_only_waiting_ship1"
	ReasonEligibleButUnscheduled  UnassignedReason = "eligible_but_unscheduled"
)

// AreaFactory builds a fresh PlacementArea for a vessel, left to the caller
// since deck dimensions come from vessel width/height plus clearance config
// that only the caller (wiring code) knows how to resolve per vessel.
type AreaFactory func(vessel *core.VesselSpec) *core.PlacementArea

// Scheduler runs L3 rounds against a fleet of vessels.
type Scheduler struct {
	Vessels []*core.VesselSpec
	NewArea AreaFactory

	Loaders map[string]*loader.Loader // by vessel name, pre-wired with shared pools/state
	Pools   *loader.Pools             // shared VIP/normal pools backing every Loader above

	CooldownViolations []string
}

// BuildEligibility snapshots Pools into a fresh per-vessel eligibility set,
// the wiring point a caller (the HTTP plan endpoint, a batch driver) uses to
// actually drive a Run instead of handing it an empty map.
func (s *Scheduler) BuildEligibility() map[string][]*loader.EligibleBlock {
	return loader.BuildEligibility(s.Pools, s.Vessels)
}

// Round executes one scheduling round across all vessels: per-vessel
// candidate-date synthesis, DP-based date-set selection, and sequential
// execution within each vessel (vessels are independent of each other but
// dates within one vessel are strictly sequential per spec §5).
func (s *Scheduler) Round(ctx context.Context, elig map[string][]*loader.EligibleBlock) int {
	totalPlaced := 0

	plans, err := s.preparePlans(ctx, elig)
	if err != nil {
		nlog.Errorf("scheduler: round preparation failed: %v", err)
		return 0
	}

	for _, plan := range plans {
		vessel := plan.vessel
		l := s.Loaders[vessel.Name]
		if l == nil || len(plan.selected) == 0 {
			continue
		}
		cycleLen := vessel.CycleLen()

		for _, endDay := range plan.selected {
			startDay := endDay - (cycleLen - 1)
			voyageID := vesselVoyageID(vessel.Name, startDay, endDay)

			available := filterAssigned(elig[vessel.Name], assignedBlockIDs(s.Loaders))
			vipElig := splitVIP(available, endDay, true)
			normElig := splitVIP(available, endDay, false)

			area := s.NewArea(vessel)
			placed, _ := l.RunForVoyage(ctx, area, voyageID, startDay, endDay, true, vipElig, normElig)
			if placed > 0 {
				totalPlaced += placed
				l.LastEnd[vessel.Name] = int64(endDay)
				nlog.Infof("scheduler: vessel=%s end_day=%d placed=%d", vessel.Name, endDay, placed)
			}
		}
	}
	return totalPlaced
}

// RunResult is the outcome of a full scheduling run: rounds until
// exhaustion or MAX_ROUNDS, a rescue pass, and the cooldown audit.
type RunResult struct {
	Rounds             int
	TotalPlaced        int
	CooldownViolations []string
	Unassigned         map[string]UnassignedReason
}

// Run drives the full L3 loop: up to MAX_ROUNDS rounds (stopping early once
// a round places nothing), a rescue pass over whatever remains, and a
// cooldown audit. elig is keyed by vessel name and is not modified; blocks
// already committed under any loader are filtered out of it before each
// voyage attempt.
func (s *Scheduler) Run(ctx context.Context, elig map[string][]*loader.EligibleBlock, classify func() map[string]UnassignedReason) *RunResult {
	cfg := cmn.GCO.Get()
	res := &RunResult{Unassigned: map[string]UnassignedReason{}}

	for round := 0; round < cfg.Scheduler.MaxRounds; round++ {
		placed := s.Round(ctx, elig)
		res.Rounds++
		res.TotalPlaced += placed
		if placed == 0 {
			break
		}
	}

	var remaining []*loader.EligibleBlock
	assigned := assignedBlockIDs(s.Loaders)
	for _, blocks := range elig {
		remaining = append(remaining, filterAssigned(blocks, assigned)...)
	}
	if len(remaining) > 0 {
		s.RunRescue(ctx, remaining, elig)
	}

	usedEndDates := make(map[string][]int)
	for name, l := range s.Loaders {
		for _, d := range l.UsedEndDates[name] {
			usedEndDates[name] = append(usedEndDates[name], int(d))
		}
	}
	res.CooldownViolations = CooldownAudit(s.Vessels, usedEndDates)

	if classify != nil {
		res.Unassigned = classify()
	}
	return res
}

// RunRescue implements the rescue pass: hardest-first ordering, per-block
// per-vessel date probing at fixed offsets, first success wins.
func (s *Scheduler) RunRescue(ctx context.Context, remaining []*loader.EligibleBlock, elig map[string][]*loader.EligibleBlock) {
	cfg := cmn.GCO.Get()
	sort.Slice(remaining, func(i, j int) bool {
		return feasibilityScore(remaining[i]) < feasibilityScore(remaining[j])
	})

	for _, b := range remaining {
		if isAssigned(s.Loaders, b.ID) {
			continue
		}
		for _, vessel := range vesselOrder(s.Vessels, b.VIP) {
			if !compatible(b, vessel) {
				continue
			}
			l := s.Loaders[vessel.Name]
			if l == nil {
				continue
			}
			cycleLen := vessel.CycleLen()
			lastEnd, hasLast := l.LastEnd[vessel.Name]
			base := b.DeadlineDay - 14
			if hasLast {
				minAllowed := int(lastEnd) + cycleLen
				if minAllowed > base {
					base = minAllowed
				}
			}

			progressed := false
			for _, off := range rescueOffsets(cycleLen, cfg.Scheduler.RescueOffsets, cfg.Scheduler.RescueK) {
				endDay := base + off
				if endDay > b.DeadlineDay-1 {
					continue
				}
				startDay := endDay - (cycleLen - 1)
				voyageID := vesselVoyageID(vessel.Name, startDay, endDay)
				available := filterAssigned(elig[vessel.Name], assignedBlockIDs(s.Loaders))
				vipElig := splitVIP(available, endDay, true)
				normElig := splitVIP(available, endDay, false)
				area := s.NewArea(vessel)
				placed, _ := l.RunForVoyage(ctx, area, voyageID, startDay, endDay, true, vipElig, normElig)
				if placed > 0 {
					progressed = true
					break
				}
			}
			if progressed {
				break
			}
		}
	}
}

// assignedBlockIDs unions every loader's committed block_ids: Pools is
// shared fleet-wide, so a block committed under one vessel's loader must
// not be re-offered to another vessel's eligibility set.
func assignedBlockIDs(loaders map[string]*loader.Loader) map[string]struct{} {
	out := make(map[string]struct{})
	for _, l := range loaders {
		for id := range l.BlockAssignments {
			out[id] = struct{}{}
		}
	}
	return out
}

func isAssigned(loaders map[string]*loader.Loader, blockID string) bool {
	for _, l := range loaders {
		if _, ok := l.BlockAssignments[blockID]; ok {
			return true
		}
	}
	return false
}

// filterAssigned drops any block already committed under some vessel's
// loader from a candidate slice, keeping assignments disjoint across
// consecutive end-dates for one vessel and across compatible vessels.
func filterAssigned(blocks []*loader.EligibleBlock, assigned map[string]struct{}) []*loader.EligibleBlock {
	if len(assigned) == 0 {
		return blocks
	}
	out := make([]*loader.EligibleBlock, 0, len(blocks))
	for _, b := range blocks {
		if _, ok := assigned[b.ID]; ok {
			continue
		}
		out = append(out, b)
	}
	return out
}

// rescueOffsets appends cycle_len and cycle_len+3 to the configured offsets
// and returns the first k of the combined list.
func rescueOffsets(cycleLen int, configured []int, k int) []int {
	out := make([]int, 0, len(configured))
	for _, off := range configured {
		out = append(out, off)
	}
	out = append(out, cycleLen, cycleLen+3)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func feasibilityScore(b *loader.EligibleBlock) int {
	compatCount := len(b.Compatible)
	if compatCount == 0 {
		compatCount = 5
	}
	window := 14
	return compatCount * window
}

func vesselOrder(vessels []*core.VesselSpec, vip bool) []*core.VesselSpec {
	if !vip {
		return vessels
	}
	var out []*core.VesselSpec
	for _, v := range vessels {
		if v.ID == 1 {
			out = append([]*core.VesselSpec{v}, out...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

func compatible(b *loader.EligibleBlock, vessel *core.VesselSpec) bool {
	if b.VIP && vessel.ID != 1 {
		return false
	}
	if len(b.Compatible) == 0 {
		return true
	}
	_, ok := b.Compatible[vessel.ID]
	return ok
}

func splitVIP(blocks []*loader.EligibleBlock, endDay int, wantVIP bool) []*loader.EligibleBlock {
	var out []*loader.EligibleBlock
	for _, b := range blocks {
		if b.VIP != wantVIP {
			continue
		}
		if endDay < b.DeadlineDay-14 || endDay > b.DeadlineDay-1 {
			continue
		}
		out = append(out, b)
	}
	return out
}

// vesselVoyageID renders {vessel_name}_{start_date_iso}_{end_date_iso},
// the grammar external callers (the HTTP surface, the durable store) key
// assignments and voyage blocks on.
func vesselVoyageID(vesselName string, startDay, endDay int) string {
	return vesselName + "_" + isoDate(startDay) + "_" + isoDate(endDay)
}

func isoDate(day int) string {
	return cos.DateFromEpochDay(day).Format("2006-01-02")
}

// RepairVoyageID re-derives a voyage_id after its start/end day shifted
// (a rescue offset landing on a different end_day than the one a voyage
// was first committed under) and moves every record keyed by oldVoyageID
// onto the new one. This is an explicit, caller-invoked operation, never
// an automatic background rewrite: callers log the before/after pair for
// audit, matching the original system's own after-the-fact repair script
// rather than silently mutating state mid-run.
func RepairVoyageID(l *loader.Loader, vesselName, oldVoyageID string, newStartDay, newEndDay int) (newID string, repaired bool) {
	newID = vesselVoyageID(vesselName, newStartDay, newEndDay)
	if oldVoyageID == newID {
		return newID, false
	}
	blocks, ok := l.VoyageBlocks[oldVoyageID]
	if !ok {
		return newID, false
	}

	l.VoyageBlocks[newID] = blocks
	delete(l.VoyageBlocks, oldVoyageID)
	for blockID, voyageID := range l.BlockAssignments {
		if voyageID == oldVoyageID {
			l.BlockAssignments[blockID] = newID
		}
	}
	return newID, true
}
