// Package cmn holds process-wide types, configuration, and error kinds shared
// by every other package, the way the teacher's cmn package anchors its tree.
/*
 * Copyright (c) 2024-2026
 */
package cmn

import (
	"sync/atomic"
	"time"
)

// Config collects every tunable named by the spec: clearances and spacing
// policy, placer time budgets, loader paging/timeout policy, and scheduler
// windowing/rescue constants. A single process owns one Config at a time,
// swapped atomically through GCO.
type Config struct {
	Placement PlacementConfig
	Placer    PlacerConfig
	Loader    LoaderConfig
	Scheduler SchedulerConfig
	API       APIConfig
}

type PlacementConfig struct {
	BowClearance     int
	SternClearance   int
	BlockSpacing     int
	RingBowClearance int
}

type PlacerConfig struct {
	DefaultBudget time.Duration
}

type LoaderConfig struct {
	CapacityRatio      float64 // 1.05
	StandardTimeout    time.Duration
	SingleWindowTimeout time.Duration
	MaxStowageDays     int // 14
}

type SchedulerConfig struct {
	MaxRounds     int // 3
	TopKPeaks     int // 30
	GridStepDays  int // 3
	RescueK       int // 5
	RescueOffsets []int
}

// APIConfig holds the HTTP surface's own tunables: the teacher's ambient
// config pattern covers server wiring the same way it covers algorithm
// constants, so the listen address and JWT secret live here too rather
// than as bare flags in cmd/.
type APIConfig struct {
	ListenAddr string
	JWTSecret  string
}

// PageLimit returns the per-vessel candidate-count cap named in spec §4.7.
func (c *LoaderConfig) PageLimit(vesselID int) int {
	switch vesselID {
	case 1:
		return 80
	case 2, 4:
		return 44
	default:
		return 40
	}
}

// DefaultConfig mirrors the constants resolved against original_source/
// (LV2_TIMEOUT=60/180, CAPACITY_RATIO=1.05, MAX_STOWAGE_DAYS=14,
// MAX_ROUNDS=3, TOP_K_PEAKS=30, GRID_STEP_DAYS=3, rescue deltas).
func DefaultConfig() *Config {
	return &Config{
		Placement: PlacementConfig{
			BowClearance:     0,
			SternClearance:   0,
			BlockSpacing:     0,
			RingBowClearance: 0,
		},
		Placer: PlacerConfig{
			DefaultBudget: 60 * time.Second,
		},
		Loader: LoaderConfig{
			CapacityRatio:       1.05,
			StandardTimeout:     60 * time.Second,
			SingleWindowTimeout: 180 * time.Second,
			MaxStowageDays:      14,
		},
		Scheduler: SchedulerConfig{
			MaxRounds:     3,
			TopKPeaks:     30,
			GridStepDays:  3,
			RescueK:       5,
			RescueOffsets: []int{0, 2, 4, 7, 10}, // + {cycle_len, cycle_len+3} appended per-vessel
		},
		API: APIConfig{
			ListenAddr: ":8443",
		},
	}
}

// GCO ("global config owner") holds the live Config behind an atomic pointer,
// the way the teacher's cmn.GCO lets every xaction read a consistent
// snapshot without locking.
var GCO = newGco()

type gco struct {
	v atomic.Value
}

func newGco() *gco {
	g := &gco{}
	g.v.Store(DefaultConfig())
	return g
}

func (g *gco) Get() *Config { return g.v.Load().(*Config) }
func (g *gco) Put(c *Config) { g.v.Store(c) }
