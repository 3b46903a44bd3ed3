package core

import "testing"

func square2x2(id string, typ BlockType) *VoxelBlock {
	return NewVoxelBlock(id, []Cell{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, 0, 0, typ)
}

func TestFootprintAt(t *testing.T) {
	b := square2x2("A", BlockTypeUnknown)
	world := b.FootprintAt(8, 0)
	want := map[Cell]bool{{8, 0}: true, {9, 0}: true, {8, 1}: true, {9, 1}: true}
	if len(world) != len(want) {
		t.Fatalf("got %d cells, want %d", len(world), len(want))
	}
	for _, c := range world {
		if !want[c] {
			t.Errorf("unexpected world cell %v", c)
		}
	}
}

func TestRotate90SwapsDimensions(t *testing.T) {
	b := NewVoxelBlock("A", []Cell{{0, 0}, {1, 0}, {2, 0}}, 0, 0, BlockTypeTrestle)
	if b.Width() != 3 || b.Height() != 1 {
		t.Fatalf("pre-rotate dims = %dx%d", b.Width(), b.Height())
	}
	b.Rotate(90)
	if b.Width() != 1 || b.Height() != 3 {
		t.Fatalf("post-rotate dims = %dx%d, want 1x3", b.Width(), b.Height())
	}
	if b.Rotation() != 90 {
		t.Fatalf("rotation = %d, want 90", b.Rotation())
	}
}

func TestRotateKeepsReferenceAttached(t *testing.T) {
	b := NewVoxelBlock("A", []Cell{{0, 0}, {1, 0}, {2, 0}}, 1, 0, BlockTypeTrestle)
	b.Rotate(180)
	rx, ry := b.Reference()
	if !b.containsRef(rx, ry) {
		t.Fatalf("reference (%d,%d) not in rotated footprint", rx, ry)
	}
}

func TestCloneResetsPosition(t *testing.T) {
	b := square2x2("A", BlockTypeUnknown)
	b.Position = &Point{X: 1, Y: 2}
	c := b.Clone()
	if c.Position != nil {
		t.Fatalf("clone.Position = %v, want nil", c.Position)
	}
	if c.ID != b.ID {
		t.Fatalf("clone.ID = %s, want %s", c.ID, b.ID)
	}
}

func TestArea(t *testing.T) {
	b := square2x2("A", BlockTypeUnknown)
	if b.Area() != 4 {
		t.Fatalf("Area() = %d, want 4", b.Area())
	}
}
