package placer

import (
	"context"
	"sort"
	"time"

	"github.com/oceanfreight/blockvoyage/compact"
	"github.com/oceanfreight/blockvoyage/core"
)

// greedyPlacer implements C5: two passes of tight-candidate generation plus
// immediate right/down/right compaction, with a 90° rotation fallback for
// crane blocks that don't fit in their initial orientation.
type greedyPlacer struct {
	spacing      int
	bowClearance int
}

func newGreedyPlacer() *greedyPlacer { return &greedyPlacer{} }

func (p *greedyPlacer) Kind() Kind { return KindGreedyCompact }

func (p *greedyPlacer) Place(ctx context.Context, area *core.PlacementArea, blocks []*core.VoxelBlock, budget time.Duration) *Result {
	p.spacing = area.BlockSpacing
	p.bowClearance = area.BowClearance
	deadline := time.Now().Add(budget)

	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}

	timedOut := false

	// Pass 1: descending area, small candidate cap.
	pass1 := sortByAreaDesc(blocks)
	var unplaced []*core.VoxelBlock
	for _, b := range pass1 {
		if deadlineExceeded(ctx, deadline) {
			timedOut = true
			unplaced = append(unplaced, b)
			continue
		}
		if !p.placeOne(area, b, 1) {
			unplaced = append(unplaced, b)
		}
	}

	// Pass 2: ascending area (small fillers first), larger candidate cap.
	if !timedOut && len(unplaced) > 0 {
		pass2 := sortByAreaAsc(unplaced)
		unplaced = nil
		for _, b := range pass2 {
			if deadlineExceeded(ctx, deadline) {
				timedOut = true
				unplaced = append(unplaced, b)
				continue
			}
			if !p.placeOne(area, b, 2) {
				unplaced = append(unplaced, b)
			}
		}
	}

	res := reconcileUnplaced(ids, area)
	res.TimedOut = timedOut
	return res
}

// placeOne tries the tight candidates for one block, with a 90° rotation
// fallback for crane blocks, restoring original rotation on total failure.
func (p *greedyPlacer) placeOne(area *core.PlacementArea, b *core.VoxelBlock, pass int) bool {
	if p.tryPlace(area, b, pass) {
		return true
	}
	if b.Type == core.BlockTypeCrane {
		b.Rotate(90)
		if p.tryPlace(area, b, pass) {
			return true
		}
		b.Rotate(270) // undo: net rotation back to original
	}
	return false
}

func (p *greedyPlacer) tryPlace(area *core.PlacementArea, b *core.VoxelBlock, pass int) bool {
	candidates := tightCandidates(area, b, p.spacing, pass)
	for _, c := range candidates {
		if !area.CanPlace(b, c.X, c.Y) {
			continue
		}
		if !area.PlaceBlock(b, c.X, c.Y) {
			continue
		}
		compact.CompactRight(area, b, p.spacing, p.bowClearance)
		compact.CompactDown(area, b, p.spacing)
		compact.CompactRight(area, b, p.spacing, p.bowClearance)
		return true
	}
	return false
}

// tightCandidates implements the spec's candidate generation: seed the
// first block at the rightmost-bottom corner on an empty area; otherwise
// scan column_tops right-to-left plus one "new leftmost column" candidate,
// filter by can_place, sort by (-x, y), and cap per pass.
func tightCandidates(area *core.PlacementArea, b *core.VoxelBlock, spacing, pass int) []core.Cell {
	placedCount := len(area.PlacedBlocks())

	if placedCount == 0 {
		x := area.Width - b.Width()
		if b.Type == core.BlockTypeCrane {
			x = area.Width + area.BowClearance - area.RingBowClearance - b.Width()
		}
		if x < 0 {
			x = 0
		}
		return []core.Cell{{X: x, Y: 0}}
	}

	tops := area.ColumnTops()
	leftmost := area.LeftmostColumn()
	actualWidth := b.Width()

	var candidates []core.Cell
	for x := area.Width - 1; x >= 0; x-- {
		y := tops[x] + spacing
		candidates = append(candidates, core.Cell{X: x, Y: y})
	}
	newLeftX := leftmost - actualWidth - spacing
	candidates = append(candidates, core.Cell{X: newLeftX, Y: 0})

	var valid []core.Cell
	for _, c := range candidates {
		if c.X < 0 || !area.CanPlace(b, c.X, c.Y) {
			continue
		}
		valid = append(valid, c)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].X != valid[j].X {
			return valid[i].X > valid[j].X
		}
		return valid[i].Y < valid[j].Y
	})

	limit := maxCandidates(placedCount, pass)
	if len(valid) > limit {
		valid = valid[:limit]
	}
	return valid
}

// maxCandidates implements pass-dependent candidate caps: min(25, 6*n+15)
// on pass 1, min(50, 10*n+30) on pass 2.
func maxCandidates(placedCount, pass int) int {
	if pass == 1 {
		c := 6*placedCount + 15
		if c > 25 {
			c = 25
		}
		return c
	}
	c := 10*placedCount + 30
	if c > 50 {
		c = 50
	}
	return c
}
