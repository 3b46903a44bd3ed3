// Package compact implements the post-placement compactor (C3): sliding a
// placed block right or down as far as obstacles and clearance allow, via
// scoped remove/place simulation that always restores the area on failure.
package compact

import "github.com/oceanfreight/blockvoyage/core"

// CompactRight computes the right-boundary cells of the block (per-row
// max-x), finds the minimum obstacle-limited shift across all rows, and
// tries that shift and smaller ones until place_block succeeds. Returns
// true iff the block moved.
func CompactRight(area *core.PlacementArea, block *core.VoxelBlock, spacing, bowClearance int) bool {
	if block.Position == nil {
		return false
	}
	px, py := block.Position.X, block.Position.Y
	rightEdges := perRowMaxX(block, px)

	bound := area.Width
	if block.Type == core.BlockTypeCrane {
		bound = area.Width + bowClearance
	}

	maxShift := -1
	for ey, ex := range rightEdges {
		obstacleX := area.ObstacleXScan(ex, ey, bound, block.ID)
		var rowShift int
		if obstacleX >= 0 {
			rowShift = obstacleX - ex - spacing
		} else {
			rowShift = bound - ex
		}
		if maxShift == -1 || rowShift < maxShift {
			maxShift = rowShift
		}
	}
	if maxShift <= 0 {
		return false
	}

	for d := maxShift; d >= 1; d-- {
		area.RemoveBlock(block.ID)
		if area.PlaceBlock(block, px+d, py) {
			return true
		}
	}
	// restore original position; guaranteed to succeed since it was valid before.
	area.PlaceBlock(block, px, py)
	return false
}

// CompactDown is symmetric over per-column min-y cells, scanning downward
// (toward y=0) for the nearest obstacle or the deck's bottom edge.
func CompactDown(area *core.PlacementArea, block *core.VoxelBlock, spacing int) bool {
	if block.Position == nil {
		return false
	}
	px, py := block.Position.X, block.Position.Y
	bottomEdges := perColMinY(block, py)

	maxShift := -1
	for ex, ey := range bottomEdges {
		obstacleY := area.ObstacleYScanDown(ex, ey, block.ID)
		var colShift int
		if obstacleY >= 0 {
			colShift = ey - obstacleY - spacing
		} else {
			colShift = ey
		}
		if maxShift == -1 || colShift < maxShift {
			maxShift = colShift
		}
	}
	if maxShift <= 0 {
		return false
	}

	for d := maxShift; d >= 1; d-- {
		area.RemoveBlock(block.ID)
		if area.PlaceBlock(block, px, py-d) {
			return true
		}
	}
	area.PlaceBlock(block, px, py)
	return false
}

// perRowMaxX returns, per world y, the block's world max-x cell.
func perRowMaxX(block *core.VoxelBlock, px int) map[int]int {
	world := block.FootprintAt(px, block.Position.Y)
	m := make(map[int]int)
	for _, c := range world {
		if cur, ok := m[c.Y]; !ok || c.X > cur {
			m[c.Y] = c.X
		}
	}
	return m
}

// perColMinY returns, per world x, the block's world min-y cell.
func perColMinY(block *core.VoxelBlock, py int) map[int]int {
	world := block.FootprintAt(block.Position.X, py)
	m := make(map[int]int)
	for _, c := range world {
		if cur, ok := m[c.X]; !ok || c.Y < cur {
			m[c.X] = c.Y
		}
	}
	return m
}
