// Package core implements the grid & block model (C1) and the placement
// area (C2): voxel footprints, rotation, reference points, and the single
// owner of occupancy-grid mutation.
/*
 * Copyright (c) 2024-2026
 */
package core

import "sort"

// BlockType mirrors the spec's block_type enum. Crane blocks get a stricter
// bow clearance; trestle blocks are eligible for the rotation optimizer;
// height_aware is carried through for callers that care about 3D clearance
// but is not otherwise distinguished at the 2D placement layer.
type BlockType int

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeCrane
	BlockTypeTrestle
	BlockTypeHeightAware
)

func (t BlockType) String() string {
	switch t {
	case BlockTypeCrane:
		return "crane"
	case BlockTypeTrestle:
		return "trestle"
	case BlockTypeHeightAware:
		return "height_aware"
	default:
		return "unknown"
	}
}

// Cell is a local, block-relative voxel-projection coordinate.
type Cell struct{ X, Y int }

// VoxelBlock is a fabricated assembly carried as a single unit on a voyage.
// Identity is block_id; footprint is the 2D projection of its voxel column.
type VoxelBlock struct {
	ID        string
	footprint []Cell
	refX      int
	refY      int
	rotation  int // one of 0, 90, 180, 270
	Type      BlockType

	// Position is the world anchor while placed; nil when unplaced.
	Position *Point

	width, height int
}

type Point struct{ X, Y int }

// NewVoxelBlock builds a block from a footprint and a chosen reference cell.
// The reference must be one of the footprint cells, and the footprint must
// be non-empty — both spec invariants are asserted here rather than left to
// callers to remember.
func NewVoxelBlock(id string, footprint []Cell, refX, refY int, typ BlockType) *VoxelBlock {
	if len(footprint) == 0 {
		panic("core: NewVoxelBlock requires a non-empty footprint")
	}
	cp := make([]Cell, len(footprint))
	copy(cp, footprint)
	b := &VoxelBlock{
		ID:        id,
		footprint: cp,
		refX:      refX,
		refY:      refY,
		rotation:  0,
		Type:      typ,
	}
	if !b.containsRef(refX, refY) {
		panic("core: reference point must be a footprint cell")
	}
	b.recomputeBounds()
	return b
}

func (b *VoxelBlock) containsRef(x, y int) bool {
	for _, c := range b.footprint {
		if c.X == x && c.Y == y {
			return true
		}
	}
	return false
}

func (b *VoxelBlock) recomputeBounds() {
	minX, maxX := b.footprint[0].X, b.footprint[0].X
	minY, maxY := b.footprint[0].Y, b.footprint[0].Y
	for _, c := range b.footprint[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	b.width = maxX - minX + 1
	b.height = maxY - minY + 1
}

// Footprint returns the block-local cells (read-only view; callers must not
// mutate the returned slice's contents' meaning — copy if you need to edit).
func (b *VoxelBlock) Footprint() []Cell {
	out := make([]Cell, len(b.footprint))
	copy(out, b.footprint)
	return out
}

// FootprintAt returns the world cells this block would occupy anchored at
// (posX, posY): world = (pos - ref + local).
func (b *VoxelBlock) FootprintAt(posX, posY int) []Cell {
	out := make([]Cell, len(b.footprint))
	for i, c := range b.footprint {
		out[i] = Cell{X: posX - b.refX + c.X, Y: posY - b.refY + c.Y}
	}
	return out
}

func (b *VoxelBlock) Reference() (int, int) { return b.refX, b.refY }
func (b *VoxelBlock) Rotation() int         { return b.rotation }
func (b *VoxelBlock) Width() int            { return b.width }
func (b *VoxelBlock) Height() int           { return b.height }
func (b *VoxelBlock) Area() int             { return len(b.footprint) }

// Rotate rotates the block in place by angle degrees (one of 90/180/270),
// permuting the footprint about the local origin, then translating the
// result into the non-negative quadrant, and carrying the reference voxel
// through the identical transform so it stays attached to the same
// conceptual anchor cell. Rotation is exact on integer coordinates.
func (b *VoxelBlock) Rotate(angle int) {
	switch angle {
	case 90, 180, 270:
	default:
		panic("core: Rotate requires angle in {90,180,270}")
	}
	steps := angle / 90
	rx, ry := b.refX, b.refY
	rotated := make([]Cell, len(b.footprint))
	for i, c := range b.footprint {
		x, y := c.X, c.Y
		for s := 0; s < steps; s++ {
			x, y = -y, x // 90° CCW about local origin
		}
		rotated[i] = Cell{X: x, Y: y}
	}
	for s := 0; s < steps; s++ {
		rx, ry = -ry, rx
	}

	minX, minY := rotated[0].X, rotated[0].Y
	for _, c := range rotated[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
	}
	for i := range rotated {
		rotated[i].X -= minX
		rotated[i].Y -= minY
	}
	rx -= minX
	ry -= minY

	b.footprint = rotated
	b.refX, b.refY = rx, ry
	b.rotation = (b.rotation + angle) % 360
	b.recomputeBounds()
}

// Clone yields an independent value with Position reset to nil, matching
// the spec's clone invariant.
func (b *VoxelBlock) Clone() *VoxelBlock {
	cp := &VoxelBlock{
		ID:       b.ID,
		footprint: append([]Cell(nil), b.footprint...),
		refX:     b.refX,
		refY:     b.refY,
		rotation: b.rotation,
		Type:     b.Type,
		width:    b.width,
		height:   b.height,
	}
	return cp
}

// boundaryCells returns the footprint cells with at least one 4-neighbour
// outside the footprint, in block-local coordinates (the same rule
// boundaryOf applies to world cells for spacing checks).
func (b *VoxelBlock) boundaryCells() []Cell {
	set := make(map[Cell]struct{}, len(b.footprint))
	for _, c := range b.footprint {
		set[c] = struct{}{}
	}
	var out []Cell
	for _, c := range b.footprint {
		neighbours := [4]Cell{{c.X + 1, c.Y}, {c.X - 1, c.Y}, {c.X, c.Y + 1}, {c.X, c.Y - 1}}
		boundary := false
		for _, n := range neighbours {
			if _, ok := set[n]; !ok {
				boundary = true
				break
			}
		}
		if boundary {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// rightEdgeByRow returns, per local y, the max local x.
func (b *VoxelBlock) rightEdgeByRow() map[int]int {
	m := make(map[int]int)
	for _, c := range b.footprint {
		if cur, ok := m[c.Y]; !ok || c.X > cur {
			m[c.Y] = c.X
		}
	}
	return m
}

// bottomEdgeByCol returns, per local x, the min local y.
func (b *VoxelBlock) bottomEdgeByCol() map[int]int {
	m := make(map[int]int)
	for _, c := range b.footprint {
		if cur, ok := m[c.X]; !ok || c.Y < cur {
			m[c.X] = c.Y
		}
	}
	return m
}

func (b *VoxelBlock) maxLocalX() int {
	mx := b.footprint[0].X
	for _, c := range b.footprint[1:] {
		if c.X > mx {
			mx = c.X
		}
	}
	return mx
}
