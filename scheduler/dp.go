package scheduler

import (
	"sort"

	"github.com/oceanfreight/blockvoyage/core"
	"github.com/oceanfreight/blockvoyage/loader"
)

// window is a block's feasibility window in epoch-day integers.
type window struct {
	start, end int
}

// windowsForVessel collects the feasibility window of every block eligible
// for this vessel, as judged by compatible() (which also keeps VIP blocks
// off vessels other than vessel 1).
func windowsForVessel(elig map[string][]*loader.EligibleBlock, vessel *core.VesselSpec) []window {
	var out []window
	for _, b := range elig[vessel.Name] {
		if !compatible(b, vessel) {
			continue
		}
		out = append(out, window{start: b.DeadlineDay - 14, end: b.DeadlineDay - 1})
	}
	return out
}

// candidateDates unions window endpoints, the top-K histogram peaks, and a
// uniform grid with the given step, sorted ascending and deduplicated.
func candidateDates(windows []window, topK, gridStep int) []int {
	set := make(map[int]struct{})
	minEdge, maxEdge := windows[0].start, windows[0].end
	hist := make(map[int]int)

	for _, w := range windows {
		set[w.start] = struct{}{}
		set[w.end] = struct{}{}
		if w.start < minEdge {
			minEdge = w.start
		}
		if w.end > maxEdge {
			maxEdge = w.end
		}
		for d := w.start; d <= w.end; d++ {
			hist[d]++
		}
	}

	type peak struct {
		day   int
		count int
	}
	peaks := make([]peak, 0, len(hist))
	for d, c := range hist {
		peaks = append(peaks, peak{day: d, count: c})
	}
	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].count != peaks[j].count {
			return peaks[i].count > peaks[j].count
		}
		return peaks[i].day < peaks[j].day
	})
	if len(peaks) > topK {
		peaks = peaks[:topK]
	}
	for _, p := range peaks {
		set[p.day] = struct{}{}
	}

	for d := minEdge; d <= maxEdge; d += gridStep {
		set[d] = struct{}{}
	}

	out := make([]int, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// scoreDate sums weight = area * scarcity * vip_bonus over eligible blocks
// whose window contains d, prefix-selected by weight/area descending under
// the target area budget.
func scoreDate(elig map[string][]*loader.EligibleBlock, vessel *core.VesselSpec, d int, capacityRatio float64) float64 {
	type weighted struct {
		area, weight float64
	}
	var candidates []weighted
	for _, b := range elig[vessel.Name] {
		if !compatible(b, vessel) {
			continue
		}
		if d < b.DeadlineDay-14 || d > b.DeadlineDay-1 {
			continue
		}
		compatCount := len(b.Compatible)
		if compatCount == 0 {
			compatCount = 5
		}
		scarcity := 1.0 / float64(compatCount)
		vipBonus := 1.0
		if vessel.ID == 1 && b.VIP {
			vipBonus = 1.6
		}
		area := b.Area
		if !b.AreaKnown {
			area = 1
		}
		candidates = append(candidates, weighted{area: area, weight: area * scarcity * vipBonus})
	}
	if len(candidates) == 0 {
		return 0
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri := candidates[i].weight / candidates[i].area
		rj := candidates[j].weight / candidates[j].area
		return ri > rj
	})

	// target_area = vessel_area * capacity_ratio, the same budget
	// PlanSynthesis caps commit area against, so date scoring and plan
	// synthesis agree on how much deck a date can actually hold.
	targetArea := vessel.WidthM * vessel.HeightM * capacityRatio

	sum, total := 0.0, 0.0
	for _, c := range candidates {
		if total+c.area > targetArea && total > 0 {
			break
		}
		total += c.area
		sum += c.weight
	}
	return sum
}

// selectDateSet solves the weighted independent set with minimum gap via
// the DP recurrence in spec.md §4.8: p[i] is the largest j<i with
// date[i]-date[j] >= gap; dp[i] = max(dp[i-1], score[i-1]+dp[p[i-1]+1]).
func selectDateSet(dates []int, scores []float64, gap int) []int {
	n := len(dates)
	if n == 0 {
		return nil
	}
	p := make([]int, n)
	for i := 0; i < n; i++ {
		p[i] = -1
		for j := i - 1; j >= 0; j-- {
			if dates[i]-dates[j] >= gap {
				p[i] = j
				break
			}
		}
	}

	dp := make([]float64, n+1)
	dp[0] = 0
	for i := 1; i <= n; i++ {
		excl := dp[i-1]
		incl := scores[i-1]
		if p[i-1] >= 0 {
			incl += dp[p[i-1]+1]
		}
		if incl > excl {
			dp[i] = incl
		} else {
			dp[i] = excl
		}
	}

	var selected []int
	i := n
	for i > 0 {
		excl := dp[i-1]
		incl := scores[i-1]
		if p[i-1] >= 0 {
			incl += dp[p[i-1]+1]
		}
		if incl > excl {
			selected = append([]int{dates[i-1]}, selected...)
			if p[i-1] >= 0 {
				i = p[i-1] + 1
			} else {
				i = 0
			}
		} else {
			i--
		}
	}
	return selected
}

// CooldownAudit verifies that, for each vessel, the sorted list of used
// end-dates has consecutive gaps >= cycle_len. Violations are returned, not
// repaired.
func CooldownAudit(vessels []*core.VesselSpec, usedEndDates map[string][]int) []string {
	var violations []string
	for _, v := range vessels {
		dates := append([]int(nil), usedEndDates[v.Name]...)
		sort.Ints(dates)
		cycleLen := v.CycleLen()
		for i := 1; i < len(dates); i++ {
			if dates[i]-dates[i-1] < cycleLen {
				violations = append(violations, v.Name)
				break
			}
		}
	}
	return violations
}
