package scheduler

import (
	"context"
	"testing"

	"github.com/oceanfreight/blockvoyage/cmn/cos"
	"github.com/oceanfreight/blockvoyage/core"
	"github.com/oceanfreight/blockvoyage/loader"
)

func testVessel(id int, name string) *core.VesselSpec {
	return &core.VesselSpec{ID: id, Name: name, Phases: core.CyclePhases{MoveOut: 1, Load: 1, MoveIn: 1, Unload: 1}}
}

func testBlock(id string, deadlineDay int) *loader.EligibleBlock {
	vox := core.NewVoxelBlock(id, []core.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, 0, 0, core.BlockTypeUnknown)
	return &loader.EligibleBlock{
		Block: &loader.Block{ID: id, Voxel: vox, AreaKnown: true, Area: 4},
		DeadlineDay: deadlineDay,
	}
}

func TestRoundPlacesEligibleBlocks(t *testing.T) {
	v1 := testVessel(1, "V1")
	l1 := &loader.Loader{
		Vessel:           v1,
		Pools:            &loader.Pools{VIP: map[string]*loader.Block{}, Normal: map[string]*loader.Block{}},
		BlockAssignments: map[string]string{},
		VoyageBlocks:     map[string][]string{},
		LastEnd:          map[string]int64{},
		UsedEndDates:     map[string][]int64{},
	}
	s := &Scheduler{
		Vessels: []*core.VesselSpec{v1},
		NewArea: func(v *core.VesselSpec) *core.PlacementArea { return core.NewPlacementArea(20, 20, 0, 0, 0, 0) },
		Loaders: map[string]*loader.Loader{"V1": l1},
	}
	elig := map[string][]*loader.EligibleBlock{
		"V1": {testBlock("A", 20)},
	}
	placed := s.Round(context.Background(), elig)
	if placed == 0 {
		t.Fatalf("expected at least one block placed in round, got 0")
	}
}

func TestCooldownAuditDetectsViolation(t *testing.T) {
	v1 := testVessel(1, "V1")
	violations := CooldownAudit([]*core.VesselSpec{v1}, map[string][]int{"V1": {0, 1}})
	if len(violations) != 1 {
		t.Fatalf("expected cooldown violation for gap=1 < cycle_len=4, got %v", violations)
	}
}

func TestCooldownAuditNoViolation(t *testing.T) {
	v1 := testVessel(1, "V1")
	violations := CooldownAudit([]*core.VesselSpec{v1}, map[string][]int{"V1": {0, 4, 8}})
	if len(violations) != 0 {
		t.Fatalf("expected no violations with gap=4 == cycle_len, got %v", violations)
	}
}

func TestRepairVoyageIDMovesRecords(t *testing.T) {
	oldID := vesselVoyageID("V1", 100, 103)
	l := &loader.Loader{
		VoyageBlocks:     map[string][]string{oldID: {"A", "B"}},
		BlockAssignments: map[string]string{"A": oldID, "B": oldID},
	}

	newID, repaired := RepairVoyageID(l, "V1", oldID, 102, 105)
	if !repaired {
		t.Fatalf("expected repair to apply")
	}
	wantID := vesselVoyageID("V1", 102, 105)
	if newID != wantID {
		t.Fatalf("newID = %q, want %q", newID, wantID)
	}
	if got := l.VoyageBlocks[newID]; len(got) != 2 {
		t.Fatalf("VoyageBlocks[newID] = %v, want 2 entries", got)
	}
	if _, stillThere := l.VoyageBlocks[oldID]; stillThere {
		t.Fatalf("expected old voyage id removed from VoyageBlocks")
	}
	for _, v := range l.BlockAssignments {
		if v != newID {
			t.Fatalf("BlockAssignments not repointed to newID, got %v", l.BlockAssignments)
		}
	}
}

func TestRepairVoyageIDNoOpWhenIDUnchanged(t *testing.T) {
	oldID := vesselVoyageID("V1", 100, 103)
	l := &loader.Loader{
		VoyageBlocks:     map[string][]string{oldID: {"A"}},
		BlockAssignments: map[string]string{"A": oldID},
	}
	_, repaired := RepairVoyageID(l, "V1", oldID, 100, 103)
	if repaired {
		t.Fatalf("expected no-op when the derived ID already matches")
	}
}

func TestVesselVoyageIDRendersISODates(t *testing.T) {
	id := vesselVoyageID("V1", 100, 103)
	if id != "V1_1970-04-11_1970-04-14" {
		t.Fatalf("vesselVoyageID() = %q, want V1_1970-04-11_1970-04-14", id)
	}
}

func TestBuildEligibilityAndRunPlacesAcrossVessels(t *testing.T) {
	deadline := cos.DateFromEpochDay(1200)
	block := func(id string) *loader.Block {
		vox := core.NewVoxelBlock(id, []core.Cell{{X: 0, Y: 0}}, 0, 0, core.BlockTypeUnknown)
		return &loader.Block{ID: id, Voxel: vox, AreaKnown: true, Area: 1, Deadline: deadline}
	}
	pools := &loader.Pools{
		VIP:    map[string]*loader.Block{},
		Normal: map[string]*loader.Block{"A": block("A")},
	}
	v1 := testVessel(1, "V1")
	l1 := &loader.Loader{
		Vessel: v1, Pools: pools,
		BlockAssignments: map[string]string{}, VoyageBlocks: map[string][]string{},
		LastEnd: map[string]int64{}, UsedEndDates: map[string][]int64{},
	}
	s := &Scheduler{
		Vessels: []*core.VesselSpec{v1},
		NewArea: func(v *core.VesselSpec) *core.PlacementArea { return core.NewPlacementArea(20, 20, 0, 0, 0, 0) },
		Loaders: map[string]*loader.Loader{"V1": l1},
		Pools:   pools,
	}

	elig := s.BuildEligibility()
	if len(elig["V1"]) != 1 {
		t.Fatalf("BuildEligibility()[V1] = %v, want 1 eligible block", elig["V1"])
	}

	res := s.Run(context.Background(), elig, nil)
	if res.TotalPlaced == 0 {
		t.Fatalf("expected Run to place the eligible block, got TotalPlaced=0")
	}
	if voyageID, ok := l1.BlockAssignments["A"]; !ok || voyageID == "" {
		t.Fatalf("expected block A to be committed to a voyage, got %v", l1.BlockAssignments)
	}
}

func TestFilterAssignedRemovesCommittedBlocks(t *testing.T) {
	blocks := []*loader.EligibleBlock{
		{Block: &loader.Block{ID: "A"}},
		{Block: &loader.Block{ID: "B"}},
	}
	assigned := map[string]struct{}{"A": {}}
	out := filterAssigned(blocks, assigned)
	if len(out) != 1 || out[0].ID != "B" {
		t.Fatalf("filterAssigned() = %v, want only B", out)
	}
}
