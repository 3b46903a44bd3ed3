// Command blockvoyage wires ingest, placement, loading, and scheduling
// into one long-running process serving the HTTP surface. It carries no
// flag-parsing CLI surface; runtime inputs come from environment-resolved
// paths and the process config, the way a scheduled batch service is
// configured rather than invoked interactively.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oceanfreight/blockvoyage/api"
	"github.com/oceanfreight/blockvoyage/cmn"
	"github.com/oceanfreight/blockvoyage/cmn/nlog"
	"github.com/oceanfreight/blockvoyage/core"
	"github.com/oceanfreight/blockvoyage/idgen"
	"github.com/oceanfreight/blockvoyage/ingest"
	"github.com/oceanfreight/blockvoyage/loader"
	"github.com/oceanfreight/blockvoyage/scheduler"
	"github.com/oceanfreight/blockvoyage/stats"
	"github.com/oceanfreight/blockvoyage/store"
)

func main() {
	cfg := cmn.GCO.Get()

	vesselSpecPath := envOrDefault("BLOCKVOYAGE_VESSEL_SPECS", "./data/vessel_specs.json")
	labelingPath := envOrDefault("BLOCKVOYAGE_LABELING", "./data/labeling.json")
	deadlinesPath := envOrDefault("BLOCKVOYAGE_DEADLINES", "./data/deadlines.json")
	voxelCacheDir := envOrDefault("BLOCKVOYAGE_VOXEL_CACHE_DIR", "./data/voxel_cache")
	storePath := envOrDefault("BLOCKVOYAGE_STORE_PATH", "./data/state.db")
	jwtSecret := envOrDefault("BLOCKVOYAGE_JWT_SECRET", "dev-secret-change-me")
	metricsAddr := envOrDefault("BLOCKVOYAGE_METRICS_ADDR", ":9090")

	vessels, pools, err := loadFleet(vesselSpecPath, labelingPath, deadlinesPath, voxelCacheDir)
	if err != nil {
		nlog.Errorf("blockvoyage: fleet load failed: %v", err)
		os.Exit(1)
	}

	st, err := store.Open(storePath)
	if err != nil {
		nlog.Errorf("blockvoyage: store open failed: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	tracker := stats.NewTracker(reg)
	ioHealth := stats.NewIOHealth(reg)
	stop := make(chan struct{})
	go ioHealth.Run(30*time.Second, stop)
	defer close(stop)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		nlog.Infof("blockvoyage: metrics listening on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			nlog.Errorf("blockvoyage: metrics server exited: %v", err)
		}
	}()

	loaders := restoreLoaders(st, vessels, pools)

	sched := &scheduler.Scheduler{
		Vessels: vessels,
		NewArea: func(v *core.VesselSpec) *core.PlacementArea {
			return core.NewPlacementArea(
				int(v.WidthM), int(v.HeightM),
				cfg.Placement.BowClearance, cfg.Placement.SternClearance,
				cfg.Placement.BlockSpacing, cfg.Placement.RingBowClearance,
			)
		},
		Loaders: loaders,
		Pools:   pools,
	}

	srv := api.NewServer(sched, api.NewAuthenticator([]byte(jwtSecret)))

	go persistAssignmentsPeriodically(st, sched, tracker, stop)

	nlog.Infof("blockvoyage: listening on %s", cfg.API.ListenAddr)
	if err := srv.ListenAndServe(cfg.API.ListenAddr); err != nil {
		nlog.Errorf("blockvoyage: server exited: %v", err)
		os.Exit(1)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// restoreLoaders builds one Loader per vessel and replays each vessel's
// last-end day from the durable store, so a restarted process keeps its
// cooldown state. Stored block assignments are not reloaded; every Loader
// starts with empty BlockAssignments and VoyageBlocks.
func restoreLoaders(st *store.Store, vessels []*core.VesselSpec, pools *loader.Pools) map[string]*loader.Loader {
	loaders := make(map[string]*loader.Loader, len(vessels))
	for _, v := range vessels {
		lastEnd := int64(-1)
		if end, ok := st.LastEnd(v.Name); ok {
			lastEnd = end
		}
		loaders[v.Name] = &loader.Loader{
			Vessel:           v,
			Pools:            pools,
			BlockAssignments: map[string]string{},
			VoyageBlocks:     map[string][]string{},
			LastEnd:          map[string]int64{v.Name: lastEnd},
			UsedEndDates:     map[string][]int64{},
		}
	}
	return loaders
}

// persistAssignmentsPeriodically flushes committed assignments into the
// durable store and reports fleet-wide throughput on the tracker, the way
// a long-running scheduler checkpoints rather than writing synchronously
// on every commit.
func persistAssignmentsPeriodically(st *store.Store, sched *scheduler.Scheduler, tracker *stats.Tracker, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			assigned := 0
			cost := 0.0
			for _, l := range sched.Loaders {
				for blockID, voyageID := range l.BlockAssignments {
					if err := st.PutAssignment(blockID, voyageID); err != nil {
						nlog.Warningf("blockvoyage: persist assignment %s failed: %v", blockID, err)
						continue
					}
					assigned++
				}
				if end, ok := l.LastEnd[l.Vessel.Name]; ok && end >= 0 {
					if err := st.PutLastEnd(l.Vessel.Name, end); err != nil {
						nlog.Warningf("blockvoyage: persist last_end for %s failed: %v", l.Vessel.Name, err)
					}
				}
				cost += float64(len(l.VoyageBlocks)) * l.Vessel.VoyageCost
			}
			// Pools is shared by every loader, so the unassigned remainder is
			// counted once.
			total := assigned + len(sched.Pools.VIP) + len(sched.Pools.Normal)
			if total > 0 {
				tracker.ReportRound(0, float64(assigned)/float64(total), cost)
			}
			if err := st.Checkpoint(); err != nil {
				nlog.Warningf("blockvoyage: checkpoint failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}

// loadFleet reads vessel specs, the labeling file, the deadlines file, and
// the voxel-cache directory, partitioning blocks into VIP/normal pools (each
// carrying its L1 geometry and deadline) and wiring a cuckoofilter
// pre-filter over the VIP set, the way loader.Pools expects to be
// constructed. A block missing either its voxel cache entry or its deadline
// is dropped with a warning rather than handed to the scheduler half-built.
func loadFleet(vesselSpecPath, labelingPath, deadlinesPath, voxelCacheDir string) ([]*core.VesselSpec, *loader.Pools, error) {
	specData, err := os.ReadFile(vesselSpecPath)
	if err != nil {
		return nil, nil, cmn.Wrapf(err, "blockvoyage: read %s", vesselSpecPath)
	}
	vessels, err := ingest.DecodeVesselSpecs(specData)
	if err != nil {
		return nil, nil, err
	}

	labelData, err := os.ReadFile(labelingPath)
	if err != nil {
		return nil, nil, cmn.Wrapf(err, "blockvoyage: read %s", labelingPath)
	}
	labeling, err := ingest.DecodeLabeling(labelData)
	if err != nil {
		return nil, nil, err
	}

	deadlineData, err := os.ReadFile(deadlinesPath)
	if err != nil {
		return nil, nil, cmn.Wrapf(err, "blockvoyage: read %s", deadlinesPath)
	}
	deadlines, err := ingest.DecodeDeadlines(deadlineData)
	if err != nil {
		return nil, nil, err
	}

	voxels, err := loadVoxelCache(voxelCacheDir)
	if err != nil {
		return nil, nil, err
	}

	vipSet := make(map[string]struct{}, len(labeling.Classification.VIPBlocks))
	for _, id := range labeling.Classification.VIPBlocks {
		vipSet[id] = struct{}{}
	}

	filter := idgen.NewMembershipFilter(uint(len(labeling.Blocks) + 1))
	vip := make(map[string]*loader.Block)
	normal := make(map[string]*loader.Block)
	for _, row := range labeling.Blocks {
		vox, ok := voxels[row.BlockID]
		if !ok {
			nlog.Warningf("blockvoyage: block %s has no voxel cache entry, skipping", row.BlockID)
			continue
		}
		deadline, ok := deadlines[row.BlockID]
		if !ok {
			nlog.Warningf("blockvoyage: block %s has no deadline, skipping", row.BlockID)
			continue
		}

		_, isVIP := vipSet[row.BlockID]
		compatible := make(map[int]struct{}, len(row.CompatibleVessels))
		for _, vID := range row.CompatibleVessels {
			compatible[vID] = struct{}{}
		}
		b := &loader.Block{
			ID:         row.BlockID,
			Voxel:      vox,
			Deadline:   deadline,
			Compatible: compatible,
			VIP:        isVIP,
		}
		if row.BlockInfo != nil {
			b.AreaKnown = true
			b.Area = row.BlockInfo.Area
		}
		if isVIP {
			vip[row.BlockID] = b
			filter.Add(row.BlockID)
		} else {
			normal[row.BlockID] = b
		}
	}

	return vessels, &loader.Pools{VIP: vip, Normal: normal, VIPFilter: filter}, nil
}

// loadVoxelCache sweeps voxelCacheDir via a LocalSource and decodes every
// entry into its block_id-keyed VoxelBlock, the geometry PlanSynthesis needs
// to hand each candidate block to the placement engine.
func loadVoxelCache(voxelCacheDir string) (map[string]*core.VoxelBlock, error) {
	src := &ingest.LocalSource{Root: voxelCacheDir}
	keys, err := src.List(context.Background(), "")
	if err != nil {
		return nil, cmn.Wrapf(err, "blockvoyage: list voxel cache %s", voxelCacheDir)
	}
	out := make(map[string]*core.VoxelBlock, len(keys))
	for _, key := range keys {
		data, err := src.Get(context.Background(), key)
		if err != nil {
			return nil, cmn.Wrapf(err, "blockvoyage: read voxel cache entry %s", key)
		}
		vb, err := ingest.DecodeVoxelCache(data)
		if err != nil {
			return nil, err
		}
		out[vb.ID] = vb
	}
	return out, nil
}
