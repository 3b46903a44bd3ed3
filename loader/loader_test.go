package loader

import (
	"context"
	"testing"

	"github.com/oceanfreight/blockvoyage/core"
)

func makeBlock(id string, deadlineDay int, vip bool, area float64) *EligibleBlock {
	vox := core.NewVoxelBlock(id, []core.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, 0, 0, core.BlockTypeUnknown)
	return &EligibleBlock{
		Block: &Block{
			ID:        id,
			Voxel:     vox,
			AreaKnown: true,
			Area:      area,
			VIP:       vip,
		},
		DeadlineDay: deadlineDay,
	}
}

func vessel1() *core.VesselSpec {
	return &core.VesselSpec{ID: 1, Name: "V1", Phases: core.CyclePhases{MoveOut: 1, Load: 1, MoveIn: 1, Unload: 1}}
}

func TestEligibleFiltersByWindow(t *testing.T) {
	blocks := map[string]*EligibleBlock{
		"in":  makeBlock("in", 20, false, 4),
		"out": makeBlock("out", 5, false, 4),
	}
	out := Eligible(blocks, vessel1(), 10)
	if len(out) != 1 || out[0].ID != "in" {
		t.Fatalf("expected only 'in' eligible at endDay=10, got %+v", out)
	}
}

func TestEligibleVIPRequiresVessel1(t *testing.T) {
	blocks := map[string]*EligibleBlock{
		"vip": makeBlock("vip", 20, true, 4),
	}
	v2 := &core.VesselSpec{ID: 2, Name: "V2", Phases: core.CyclePhases{MoveOut: 1, Load: 1, MoveIn: 1, Unload: 1}}
	out := Eligible(blocks, v2, 10)
	if len(out) != 0 {
		t.Fatalf("expected VIP block ineligible for non-vessel-1, got %+v", out)
	}
}

func TestSortOrderDeadlineAreaID(t *testing.T) {
	blocks := map[string]*EligibleBlock{
		"b": makeBlock("b", 15, false, 10),
		"a": makeBlock("a", 15, false, 10),
		"early": makeBlock("early", 10, false, 1),
	}
	out := Eligible(blocks, vessel1(), 9)
	if len(out) != 3 {
		t.Fatalf("expected all 3 eligible, got %d", len(out))
	}
	if out[0].ID != "early" {
		t.Fatalf("expected earliest deadline first, got %s", out[0].ID)
	}
	if out[1].ID != "a" || out[2].ID != "b" {
		t.Fatalf("expected id tiebreak a before b, got %s, %s", out[1].ID, out[2].ID)
	}
}

func TestRunForVoyageRollsBackOnZeroPlacements(t *testing.T) {
	l := &Loader{
		Vessel:           vessel1(),
		Pools:            &Pools{VIP: map[string]*Block{}, Normal: map[string]*Block{}},
		BlockAssignments: map[string]string{},
		VoyageBlocks:     map[string][]string{},
		LastEnd:          map[string]int64{},
	}
	area := core.NewPlacementArea(0, 0, 0, 0, 0, 0) // zero-size deck: nothing can ever be placed
	placed, path := l.RunForVoyage(context.Background(), area, "V1_x_y", 0, 10, true, nil, nil)
	if placed != 0 || path != PathNone {
		t.Fatalf("expected zero placements on empty deck, got placed=%d path=%s", placed, path)
	}
	if len(l.LastEnd) != 0 {
		t.Fatalf("expected last_end unchanged on rollback, got %+v", l.LastEnd)
	}
}

func TestRunForVoyageCooldownGuard(t *testing.T) {
	l := &Loader{
		Vessel:           vessel1(),
		Pools:            &Pools{VIP: map[string]*Block{}, Normal: map[string]*Block{}},
		BlockAssignments: map[string]string{},
		VoyageBlocks:     map[string][]string{},
		LastEnd:          map[string]int64{"V1": 100},
	}
	area := core.NewPlacementArea(20, 20, 0, 0, 0, 0)
	placed, _ := l.RunForVoyage(context.Background(), area, "V1_x_y", 95, 102, true, nil, nil)
	if placed != 0 {
		t.Fatalf("expected cooldown guard to block voyage within cycle_len of last_end, got placed=%d", placed)
	}
}

func TestCapPrefixFallsBackToCountOnUnknownArea(t *testing.T) {
	sorted := []*EligibleBlock{
		{Block: &Block{ID: "a", AreaKnown: false}, DeadlineDay: 1},
		{Block: &Block{ID: "b", AreaKnown: true, Area: 1000}, DeadlineDay: 1},
	}
	res := capPrefix(sorted, 1.0, 5)
	if len(res.blocks) != 2 {
		t.Fatalf("expected count-limit-only fallback to keep both blocks, got %d", len(res.blocks))
	}
}
