package core

import "testing"

// S1. Single block on an empty 10x10 deck with zero clearances places at
// the rightmost-bottom corner.
func TestCanPlaceEmptyDeck(t *testing.T) {
	area := NewPlacementArea(10, 10, 0, 0, 0, 0)
	b := square2x2("A", BlockTypeUnknown)
	if !area.CanPlace(b, 8, 0) {
		t.Fatalf("expected (8,0) to be placeable on empty 10x10 deck")
	}
	if !area.PlaceBlock(b, 8, 0) {
		t.Fatalf("PlaceBlock failed at (8,0)")
	}
	if b.Position == nil || b.Position.X != 8 || b.Position.Y != 0 {
		t.Fatalf("block position = %v, want (8,0)", b.Position)
	}
}

// S2. Spacing enforcement: block_spacing=2 between two 2x2 blocks.
func TestSpacingEnforcement(t *testing.T) {
	area := NewPlacementArea(10, 10, 0, 0, 2, 0)
	a := square2x2("A", BlockTypeUnknown)
	if !area.PlaceBlock(a, 8, 0) {
		t.Fatalf("PlaceBlock A failed")
	}
	b := square2x2("B", BlockTypeUnknown)
	if !area.CanPlace(b, 5, 0) {
		t.Fatalf("expected (5,0) to satisfy spacing=2 (gap from boundary of A at x=8)")
	}
	c := square2x2("C", BlockTypeUnknown)
	if area.CanPlace(c, 6, 0) {
		t.Fatalf("expected (6,0) to violate spacing=2")
	}
}

// S3. Crane ring-bow clearance: effective width 10 after bow_clearance=4,
// ring_bow_clearance=6. A width-3 crane block's right edge must be <= 7.
func TestCraneRingBowClearance(t *testing.T) {
	area := NewPlacementArea(14, 10, 4, 0, 0, 6)
	if area.Width != 10 {
		t.Fatalf("effective width = %d, want 10", area.Width)
	}
	crane := NewVoxelBlock("K", []Cell{{0, 0}, {1, 0}, {2, 0}}, 0, 0, BlockTypeCrane)
	// right edge at x=7 -> cells 5,6,7: rightmost = 7, satisfies <= 7.
	if !area.CanPlace(crane, 5, 0) {
		t.Fatalf("expected crane at x=5 (right edge 7) to be placeable")
	}
	// flush right against full bow envelope (effective_width+bow_clearance-1 = 13)
	// would put right edge at 13, violating ring-bow bound of 7.
	if area.CanPlace(crane, 11, 0) {
		t.Fatalf("expected crane at x=11 (right edge 13) to violate ring-bow clearance")
	}
}

func TestRemoveBlockIdempotentAndRestores(t *testing.T) {
	area := NewPlacementArea(10, 10, 0, 0, 0, 0)
	b := square2x2("A", BlockTypeUnknown)
	area.PlaceBlock(b, 8, 0)
	if !area.RemoveBlock("A") {
		t.Fatalf("RemoveBlock should succeed for placed block")
	}
	if area.RemoveBlock("A") {
		t.Fatalf("RemoveBlock should be idempotent (return false) for absent id")
	}
	if b.Position != nil {
		t.Fatalf("expected position cleared after remove")
	}
	// cell must be free again
	if !area.CanPlace(b, 8, 0) {
		t.Fatalf("expected cell free after remove")
	}
}

func TestTransporterAccessBlockedForNonCrane(t *testing.T) {
	area := NewPlacementArea(10, 10, 0, 0, 0, 0)
	blocker := square2x2("X", BlockTypeUnknown)
	area.PlaceBlock(blocker, 0, 0)
	target := square2x2("T", BlockTypeUnknown)
	if area.CanPlace(target, 4, 0) {
		t.Fatalf("expected corridor blocked by X at origin to fail non-crane placement at (4,0)")
	}
}

func TestPlacementOrderPreservedAfterRemove(t *testing.T) {
	area := NewPlacementArea(20, 10, 0, 0, 0, 0)
	a := square2x2("A", BlockTypeUnknown)
	b := square2x2("B", BlockTypeUnknown)
	area.PlaceBlock(a, 0, 0)
	area.PlaceBlock(b, 0, 2) // stacked on A: B's leftmost column is x=0, so no corridor is needed
	area.RemoveBlock("A")
	order := area.PlacementOrder()
	if len(order) != 2 || order[0] != "A" || order[1] != "B" {
		t.Fatalf("placement_order = %v, want [A B] intact after remove", order)
	}
}
