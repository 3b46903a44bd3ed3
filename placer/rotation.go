package placer

import (
	"context"
	"time"

	"github.com/oceanfreight/blockvoyage/compact"
	"github.com/oceanfreight/blockvoyage/core"
)

// rotationPlacer composes greedyPlacer by delegation (not inheritance): for
// trestle blocks it additionally trials a 180° rotation at the top-N
// candidates and keeps whichever orientation yields the lower dead-space
// ratio, ties going to 0°.
type rotationPlacer struct {
	inner *greedyPlacer

	rotationAttempts    int
	rotationImprovements int
}

const rotationTopN = 3

func newRotationPlacer() *rotationPlacer { return &rotationPlacer{inner: newGreedyPlacer()} }

func (p *rotationPlacer) Kind() Kind { return KindRotationOptimized }

func (p *rotationPlacer) ImprovementRate() float64 {
	if p.rotationAttempts == 0 {
		return 0
	}
	return float64(p.rotationImprovements) / float64(p.rotationAttempts)
}

func (p *rotationPlacer) Place(ctx context.Context, area *core.PlacementArea, blocks []*core.VoxelBlock, budget time.Duration) *Result {
	p.inner.spacing = area.BlockSpacing
	p.inner.bowClearance = area.BowClearance
	deadline := time.Now().Add(budget)

	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}

	ordered := sortByAreaDesc(blocks)
	var remaining []*core.VoxelBlock
	for _, b := range ordered {
		if deadlineExceeded(ctx, deadline) {
			remaining = append(remaining, b)
			continue
		}
		if b.Type != core.BlockTypeTrestle {
			if !p.inner.placeOne(area, b, 1) {
				remaining = append(remaining, b)
			}
			continue
		}
		if !p.placeTrestle(area, b) {
			remaining = append(remaining, b)
		}
	}

	timedOut := false
	if len(remaining) > 0 {
		if deadlineExceeded(ctx, deadline) {
			timedOut = true
		} else {
			remaining2 := sortByAreaAsc(remaining)
			remaining = nil
			for _, b := range remaining2 {
				if deadlineExceeded(ctx, deadline) {
					timedOut = true
					remaining = append(remaining, b)
					continue
				}
				if !p.inner.placeOne(area, b, 2) {
					remaining = append(remaining, b)
				}
			}
		}
	}

	res := reconcileUnplaced(ids, area)
	res.TimedOut = timedOut
	return res
}

// placeTrestle simulates 0° and 180° at the top-N tight candidates,
// comparing dead_space_ratio after the standard compaction triple, and
// keeps the best by lowest ratio (ties preferring 0°). Any simulation
// exception restores state via remove_block and skips that trial; if
// nothing improved, falls back to the plain greedy placement.
func (p *rotationPlacer) placeTrestle(area *core.PlacementArea, b *core.VoxelBlock) bool {
	candidates := tightCandidates(area, b, p.inner.spacing, 1)
	if len(candidates) > rotationTopN {
		candidates = candidates[:rotationTopN]
	}

	var best *rotationTrial

	for _, c := range candidates {
		p.rotationAttempts++

		if t := p.simulate(area, b, c.X, c.Y, false); t.ok {
			if best == nil || t.ratio < best.ratio {
				tt := t
				best = &tt
			}
		}

		refX, refY := b.Reference()
		b.Rotate(180)
		rx2, ry2 := b.Reference()
		// Adjust the candidate offset by the reference-point delta so the
		// block's bounding-box anchor stays at the same world cell.
		dx, dy := rx2-refX, ry2-refY
		if t := p.simulate(area, b, c.X+dx, c.Y+dy, true); t.ok {
			if best == nil || t.ratio < best.ratio {
				tt := t
				best = &tt
			}
		}
		b.Rotate(180) // restore 0° orientation before the next candidate
	}

	if best == nil {
		return p.inner.placeOne(area, b, 1)
	}
	if best.rotate {
		b.Rotate(180)
	}
	ok := area.PlaceBlock(b, best.x, best.y)
	if ok {
		compact.CompactRight(area, b, p.inner.spacing, p.inner.bowClearance)
		compact.CompactDown(area, b, p.inner.spacing)
		compact.CompactRight(area, b, p.inner.spacing, p.inner.bowClearance)
		if best.rotate {
			p.rotationImprovements++
		}
	}
	return ok
}

type rotationTrial struct {
	x, y   int
	rotate bool
	ratio  float64
	ok     bool
}

func (p *rotationPlacer) simulate(area *core.PlacementArea, b *core.VoxelBlock, x, y int, rotated bool) rotationTrial {
	t := rotationTrial{x: x, y: y, rotate: rotated}
	if !area.PlaceBlock(b, x, y) {
		return t
	}
	compact.CompactRight(area, b, p.inner.spacing, p.inner.bowClearance)
	compact.CompactDown(area, b, p.inner.spacing)
	compact.CompactRight(area, b, p.inner.spacing, p.inner.bowClearance)
	m := area.EnhancedMetrics(len(area.PlacedBlocks()))
	t.ratio = m.DeadSpaceRatio
	t.ok = true
	area.RemoveBlock(b.ID)
	return t
}
