package scheduler

import (
	"testing"

	"github.com/oceanfreight/blockvoyage/core"
	"github.com/oceanfreight/blockvoyage/loader"
)

func TestScoreDateCapsByVesselDeckArea(t *testing.T) {
	vessel := &core.VesselSpec{ID: 1, Name: "V1", WidthM: 2, HeightM: 1}
	big := func(id string, area float64) *loader.EligibleBlock {
		return &loader.EligibleBlock{Block: &loader.Block{ID: id, AreaKnown: true, Area: area}, DeadlineDay: 10}
	}
	elig := map[string][]*loader.EligibleBlock{
		"V1": {big("A", 1), big("B", 1), big("C", 1)},
	}
	// target_area = 2*1*1.05 = 2.1, so only the first two unit-area blocks
	// fit the budget; the third must be cut from the prefix sum. Each block
	// weighs area(1) * scarcity(1/5, no compat set) = 0.2, so the full
	// three-block sum would be 0.6.
	score := scoreDate(elig, vessel, 5, 1.05)
	const full = 0.6
	if score >= full {
		t.Fatalf("scoreDate() = %v, want less than full weight %v once capped by deck area", score, full)
	}
}

// S5: cycle_len=12, dates with gaps (7,6) and scores (10,5,10) selects
// {d1,d3} (gap 13>=12) with total 20, not {d2} alone.
func TestSelectDateSetCooldownDP(t *testing.T) {
	d1, d2, d3 := 0, 7, 13
	dates := []int{d1, d2, d3}
	scores := []float64{10, 5, 10}
	selected := selectDateSet(dates, scores, 12)
	if len(selected) != 2 || selected[0] != d1 || selected[1] != d3 {
		t.Fatalf("selected = %v, want [%d %d]", selected, d1, d3)
	}
}

func TestSelectDateSetSingleDate(t *testing.T) {
	selected := selectDateSet([]int{5}, []float64{3}, 10)
	if len(selected) != 1 || selected[0] != 5 {
		t.Fatalf("selected = %v, want [5]", selected)
	}
}

func TestSelectDateSetEmpty(t *testing.T) {
	if got := selectDateSet(nil, nil, 10); got != nil {
		t.Fatalf("selected = %v, want nil", got)
	}
}

func TestCandidateDatesIncludesWindowEndpointsAndGrid(t *testing.T) {
	windows := []window{{start: 0, end: 13}}
	dates := candidateDates(windows, 30, 3)
	has := func(d int) bool {
		for _, x := range dates {
			if x == d {
				return true
			}
		}
		return false
	}
	if !has(0) || !has(13) {
		t.Fatalf("expected window endpoints 0 and 13 present, got %v", dates)
	}
	if !has(3) || !has(6) || !has(9) || !has(12) {
		t.Fatalf("expected grid step-3 days present, got %v", dates)
	}
}
