package placer

import (
	"context"
	"time"

	"github.com/oceanfreight/blockvoyage/core"
)

// brdPlacer is the deterministic bottom-right-descending baseline (C4):
// single pass, no backtracking, no compaction.
type brdPlacer struct{}

func (p *brdPlacer) Kind() Kind { return KindBRD }

func (p *brdPlacer) Place(ctx context.Context, area *core.PlacementArea, blocks []*core.VoxelBlock, budget time.Duration) *Result {
	deadline := time.Now().Add(budget)
	ordered := sortByAreaDesc(blocks)
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}

	timedOut := false
	for _, b := range ordered {
		if deadlineExceeded(ctx, deadline) {
			timedOut = true
			break
		}
		placed := false
		for y := 0; y < area.Height && !placed; y++ {
			for x := area.Width - 1; x >= 0 && !placed; x-- {
				if area.CanPlace(b, x, y) {
					area.PlaceBlock(b, x, y)
					placed = true
				}
			}
		}
	}

	res := reconcileUnplaced(ids, area)
	res.TimedOut = timedOut
	return res
}
