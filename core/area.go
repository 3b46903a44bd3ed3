package core

import (
	"sort"

	"github.com/oceanfreight/blockvoyage/cmn/debug"
)

// PlacementArea is the sole owner of occupancy-grid mutation for one
// vessel's deck during one voyage. Every change to the grid goes through
// PlaceBlock/RemoveBlock so invariants 1-6 hold after every call.
type PlacementArea struct {
	Width  int // effective width: ship_width_grids - bow_clearance - stern_clearance
	Height int

	BowClearance     int
	SternClearance   int
	BlockSpacing     int
	RingBowClearance int

	grid           [][]string // "" = empty, else block_id
	placedBlocks   map[string]*VoxelBlock
	unplacedBlocks map[string]struct{}
	placementOrder []string
}

// NewPlacementArea derives effective width/height from the ship's raw grid
// dimensions and clearance policy.
func NewPlacementArea(shipWidthGrids, shipHeightGrids, bowClearance, sternClearance, blockSpacing, ringBowClearance int) *PlacementArea {
	w := shipWidthGrids - bowClearance - sternClearance
	h := shipHeightGrids
	grid := make([][]string, h)
	for y := range grid {
		// crane blocks may extend into the bow clearance zone, so the grid
		// carries those columns too.
		grid[y] = make([]string, w+bowClearance)
	}
	return &PlacementArea{
		Width:            w,
		Height:           h,
		BowClearance:     bowClearance,
		SternClearance:   sternClearance,
		BlockSpacing:     blockSpacing,
		RingBowClearance: ringBowClearance,
		grid:             grid,
		placedBlocks:     make(map[string]*VoxelBlock),
		unplacedBlocks:   make(map[string]struct{}),
	}
}

func (a *PlacementArea) inBounds(c Cell, crane bool) bool {
	if c.Y < 0 || c.Y >= a.Height || c.X < 0 {
		return false
	}
	bound := a.Width
	if crane {
		bound = a.Width + a.BowClearance
	}
	return c.X < bound
}

func (a *PlacementArea) cellAt(c Cell) string { return a.grid[c.Y][c.X] }
func (a *PlacementArea) setCellAt(c Cell, id string) { a.grid[c.Y][c.X] = id }

// ringBowOK enforces invariant 4: crane blocks must leave ring_bow_clearance
// cells clear at the bow even though they're allowed to intrude into the
// regular bow clearance zone.
func (a *PlacementArea) ringBowOK(cells []Cell) bool {
	maxX := cells[0].X
	for _, c := range cells[1:] {
		if c.X > maxX {
			maxX = c.X
		}
	}
	return maxX <= a.Width+a.BowClearance-a.RingBowClearance-1
}

// transporterAccess enforces invariant 5: an obstacle-free horizontal
// corridor from x=0 to the block's leftmost cell, across the block's
// entire y-span, excluding the block's own would-be cells.
func (a *PlacementArea) transporterAccess(cells []Cell, selfID string) bool {
	minX := cells[0].X
	ySpan := map[int]struct{}{}
	for _, c := range cells {
		if c.X < minX {
			minX = c.X
		}
		ySpan[c.Y] = struct{}{}
	}
	own := make(map[Cell]struct{}, len(cells))
	for _, c := range cells {
		own[c] = struct{}{}
	}
	for y := range ySpan {
		if y < 0 || y >= a.Height {
			return false
		}
		for x := 0; x < minX; x++ {
			c := Cell{X: x, Y: y}
			if _, isSelf := own[c]; isSelf {
				continue
			}
			id := a.grid[y][x]
			if id != "" && id != selfID {
				return false
			}
		}
	}
	return true
}

// chebyshev returns the Chebyshev distance between two cells.
func chebyshev(a, b Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func (a *PlacementArea) spacingOK(cells []Cell, selfID string) bool {
	if a.BlockSpacing <= 0 {
		return true
	}
	boundary := boundaryOf(cells)
	for id, other := range a.placedBlocks {
		if id == selfID {
			continue
		}
		otherBoundary := other.boundaryCellsWorld()
		for _, c1 := range boundary {
			for _, c2 := range otherBoundary {
				if chebyshev(c1, c2) < a.BlockSpacing {
					return false
				}
			}
		}
	}
	return true
}

// boundaryOf computes boundary cells (4-neighbour rule) over a world-cell set.
func boundaryOf(cells []Cell) []Cell {
	set := make(map[Cell]struct{}, len(cells))
	for _, c := range cells {
		set[c] = struct{}{}
	}
	var out []Cell
	for _, c := range cells {
		neighbours := [4]Cell{{c.X + 1, c.Y}, {c.X - 1, c.Y}, {c.X, c.Y + 1}, {c.X, c.Y - 1}}
		isBoundary := false
		for _, n := range neighbours {
			if _, ok := set[n]; !ok {
				isBoundary = true
				break
			}
		}
		if isBoundary {
			out = append(out, c)
		}
	}
	return out
}

// boundaryCellsWorld returns a placed block's boundary cells in world space.
func (b *VoxelBlock) boundaryCellsWorld() []Cell {
	if b.Position == nil {
		return nil
	}
	world := b.FootprintAt(b.Position.X, b.Position.Y)
	return boundaryOf(world)
}

// CanPlace checks, in order, bounds+emptiness, transporter access (non-crane
// only), and inter-block spacing. It never mutates state.
func (a *PlacementArea) CanPlace(block *VoxelBlock, px, py int) bool {
	crane := block.Type == BlockTypeCrane
	cells := block.FootprintAt(px, py)

	for _, c := range cells {
		if !a.inBounds(c, crane) {
			return false
		}
		if id := a.cellAt(c); id != "" && id != block.ID {
			return false
		}
	}

	if crane {
		if !a.ringBowOK(cells) {
			return false
		}
	} else {
		if !a.transporterAccess(cells, block.ID) {
			return false
		}
	}

	if !a.spacingOK(cells, block.ID) {
		return false
	}
	return true
}

// PlaceBlock writes the block's world footprint into the grid after
// re-validating with CanPlace, matching the spec's "place_block is atomic;
// it calls can_place first" rule.
func (a *PlacementArea) PlaceBlock(block *VoxelBlock, px, py int) bool {
	if !a.CanPlace(block, px, py) {
		return false
	}
	cells := block.FootprintAt(px, py)
	for _, c := range cells {
		debug.Assert(a.cellAt(c) == "" || a.cellAt(c) == block.ID, "cell already owned by another block")
		a.setCellAt(c, block.ID)
	}
	block.Position = &Point{X: px, Y: py}
	if _, already := a.placedBlocks[block.ID]; !already {
		a.placementOrder = append(a.placementOrder, block.ID)
	}
	a.placedBlocks[block.ID] = block
	delete(a.unplacedBlocks, block.ID)
	return true
}

// RemoveBlock clears a placed block's cells and moves it back to unplaced.
// Idempotent for absent IDs. placement_order is left intact.
func (a *PlacementArea) RemoveBlock(blockID string) bool {
	block, ok := a.placedBlocks[blockID]
	if !ok {
		return false
	}
	debug.Assert(block.Position != nil, "placed block missing a position")
	cells := block.FootprintAt(block.Position.X, block.Position.Y)
	for _, c := range cells {
		a.setCellAt(c, "")
	}
	block.Position = nil
	delete(a.placedBlocks, blockID)
	a.unplacedBlocks[blockID] = struct{}{}
	return true
}

func (a *PlacementArea) PlacedBlocks() map[string]*VoxelBlock { return a.placedBlocks }
func (a *PlacementArea) PlacementOrder() []string             { return append([]string(nil), a.placementOrder...) }
func (a *PlacementArea) UnplacedCount() int                   { return len(a.unplacedBlocks) }

// MarkUnplaced records a block that the caller decided could not be fit,
// without ever having gone through PlaceBlock.
func (a *PlacementArea) MarkUnplaced(blockID string) { a.unplacedBlocks[blockID] = struct{}{} }

// ColumnTops returns, for every occupied x-column, the highest occupied y+1 —
// the per-column frontier that C5's tight_candidates scans.
func (a *PlacementArea) ColumnTops() map[int]int {
	tops := make(map[int]int)
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.grid[y][x] != "" {
				if cur, ok := tops[x]; !ok || y+1 > cur {
					tops[x] = y + 1
				}
			}
		}
	}
	return tops
}

// LeftmostColumn returns the smallest x with any occupied cell, or Width if
// the area is empty.
func (a *PlacementArea) LeftmostColumn() int {
	min := a.Width
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.grid[y][x] != "" && x < min {
				min = x
			}
		}
	}
	return min
}

// ObstacleXScan scans cells strictly between (ex,ey) exclusive and the
// bound along +x, returning the first obstacle's x, or -1 if none found.
func (a *PlacementArea) ObstacleXScan(ex, ey, bound int, selfID string) int {
	for x := ex + 1; x < bound; x++ {
		id := a.grid[ey][x]
		if id != "" && id != selfID {
			return x
		}
	}
	return -1
}

// ObstacleYScanDown scans cells strictly below (ex,ey) towards y=0 — used by
// compact_down, which moves blocks toward lower y.
func (a *PlacementArea) ObstacleYScanDown(ex, ey int, selfID string) int {
	for y := ey - 1; y >= 0; y-- {
		id := a.grid[y][ex]
		if id != "" && id != selfID {
			return y
		}
	}
	return -1
}

// Metrics holds the enhanced_metrics() result.
type Metrics struct {
	PlacementRate     float64
	ClusterLeft       int
	ClusterTop        int
	ClusterRight      int
	ClusterBottom     int
	ClusterEfficiency float64
	DeadSpaceRatio    float64
	SpaceSavingRatio  float64
}

// EnhancedMetrics computes the cluster bounding box (occupied cells expanded
// by block_spacing, left boundary smoothed by a trimmed mean over per-row
// leftmost columns discarding the top 20% rightmost rows) and derived ratios.
func (a *PlacementArea) EnhancedMetrics(totalBlocks int) Metrics {
	var occupied []Cell
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.grid[y][x] != "" {
				occupied = append(occupied, Cell{X: x, Y: y})
			}
		}
	}
	m := Metrics{}
	if totalBlocks > 0 {
		m.PlacementRate = float64(len(a.placedBlocks)) / float64(totalBlocks)
	}
	if len(occupied) == 0 {
		m.SpaceSavingRatio = 0
		return m
	}

	rowLeftmost := make(map[int]int)
	top, bottom := occupied[0].Y, occupied[0].Y
	right := occupied[0].X
	for _, c := range occupied {
		if cur, ok := rowLeftmost[c.Y]; !ok || c.X < cur {
			rowLeftmost[c.Y] = c.X
		}
		if c.Y < top {
			top = c.Y
		}
		if c.Y > bottom {
			bottom = c.Y
		}
		if c.X > right {
			right = c.X
		}
	}

	left := trimmedMeanLeft(rowLeftmost)

	sp := a.BlockSpacing
	clusterLeft := left - sp
	clusterTop := top - sp
	clusterRight := right + sp
	clusterBottom := bottom + sp
	if clusterLeft < 0 {
		clusterLeft = 0
	}
	if clusterTop < 0 {
		clusterTop = 0
	}
	if clusterRight > a.Width-1 {
		clusterRight = a.Width - 1
	}
	if clusterBottom > a.Height-1 {
		clusterBottom = a.Height - 1
	}

	clusterW := clusterRight - clusterLeft + 1
	clusterH := clusterBottom - clusterTop + 1
	clusterArea := clusterW * clusterH

	totalBlockArea := 0
	for _, b := range a.placedBlocks {
		totalBlockArea += b.Area()
	}

	m.ClusterLeft, m.ClusterTop, m.ClusterRight, m.ClusterBottom = clusterLeft, clusterTop, clusterRight, clusterBottom
	if clusterArea > 0 {
		m.ClusterEfficiency = float64(totalBlockArea) / float64(clusterArea)
	}
	m.DeadSpaceRatio = 1 - m.ClusterEfficiency
	totalArea := a.Width * a.Height
	if totalArea > 0 {
		m.SpaceSavingRatio = float64(clusterArea) / float64(totalArea)
	}
	return m
}

// trimmedMeanLeft resolves the spec's Open Question on the cluster-box left
// boundary: sort per-row leftmost values ascending, drop the top 20%
// rightmost (i.e. the tail with the largest x, the least restrictive rows),
// and average what remains. See DESIGN.md's Open Question decisions.
func trimmedMeanLeft(rowLeftmost map[int]int) int {
	vals := make([]int, 0, len(rowLeftmost))
	for _, v := range rowLeftmost {
		vals = append(vals, v)
	}
	sort.Ints(vals)
	drop := len(vals) * 20 / 100
	keep := vals[:len(vals)-drop]
	if len(keep) == 0 {
		keep = vals
	}
	sum := 0
	for _, v := range keep {
		sum += v
	}
	return sum / len(keep)
}
