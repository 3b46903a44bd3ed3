// Package placer implements the three placement strategies (C4/C5/C6) as
// interchangeable variants of a single capability, registered by kind the
// way the teacher's extended-action layer registers xaction constructors
// by Kind rather than relying on subclassing.
package placer

import (
	"context"
	"sort"
	"time"

	"github.com/oceanfreight/blockvoyage/core"
)

// Kind names one of the three placement strategies.
type Kind string

const (
	KindBRD              Kind = "brd"
	KindGreedyCompact     Kind = "greedy-compact"
	KindRotationOptimized Kind = "rotation-optimized"
)

// Result is the outcome of one placement run against one PlacementArea.
type Result struct {
	Placed   []string
	Unplaced []string
	// TimedOut is set when the wall-clock budget cut the run short; the
	// area still reflects a valid partial placement in that case.
	TimedOut bool
}

// Placer lays out blocks onto an area within a wall-clock budget.
type Placer interface {
	Kind() Kind
	Place(ctx context.Context, area *core.PlacementArea, blocks []*core.VoxelBlock, budget time.Duration) *Result
}

// registry mirrors the teacher's xreg.Renewable factory-by-Kind table:
// variants register a constructor at init time and callers resolve by Kind
// string rather than switching on a concrete type.
var registry = map[Kind]func() Placer{}

func register(k Kind, ctor func() Placer) { registry[k] = ctor }

// New resolves a Placer by kind, the way xreg.RenewByID resolves an
// xaction constructor. Returns nil for an unknown kind.
func New(k Kind) Placer {
	ctor, ok := registry[k]
	if !ok {
		return nil
	}
	return ctor()
}

func init() {
	register(KindBRD, func() Placer { return &brdPlacer{} })
	register(KindGreedyCompact, func() Placer { return newGreedyPlacer() })
	register(KindRotationOptimized, func() Placer { return newRotationPlacer() })
}

// sortByAreaDesc sorts blocks by descending footprint area, the common
// ordering used by BRD and pass 1 of the greedy placer.
func sortByAreaDesc(blocks []*core.VoxelBlock) []*core.VoxelBlock {
	out := append([]*core.VoxelBlock(nil), blocks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Area() > out[j].Area() })
	return out
}

func sortByAreaAsc(blocks []*core.VoxelBlock) []*core.VoxelBlock {
	out := append([]*core.VoxelBlock(nil), blocks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Area() < out[j].Area() })
	return out
}

// reconcileUnplaced derives unplaced_blocks as input_ids - placed_ids
// rather than accumulating it across passes, matching C5's result semantics.
func reconcileUnplaced(inputIDs []string, area *core.PlacementArea) *Result {
	placedSet := area.PlacedBlocks()
	res := &Result{}
	for _, id := range inputIDs {
		if _, ok := placedSet[id]; ok {
			res.Placed = append(res.Placed, id)
		} else {
			res.Unplaced = append(res.Unplaced, id)
			area.MarkUnplaced(id)
		}
	}
	return res
}

func deadlineExceeded(ctx context.Context, deadline time.Time) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return time.Now().After(deadline)
	}
}
