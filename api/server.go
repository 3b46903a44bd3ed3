// Package api exposes the visible failure surface over HTTP: plan
// triggering, assignment lookup, and per-voyage placement results.
package api

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/oceanfreight/blockvoyage/cmn/nlog"
	"github.com/oceanfreight/blockvoyage/core"
	"github.com/oceanfreight/blockvoyage/scheduler"
)

// Server wires a Scheduler and its per-vessel Loaders to HTTP handlers.
// It tracks the PlacementArea used by the most recent voyage per
// voyage_id so /v1/placement/{voyage_id} has something to report against.
type Server struct {
	Scheduler *scheduler.Scheduler
	Auth      *Authenticator

	Areas map[string]*core.PlacementArea
}

func NewServer(s *scheduler.Scheduler, auth *Authenticator) *Server {
	return &Server{Scheduler: s, Auth: auth, Areas: make(map[string]*core.PlacementArea)}
}

// ListenAndServe starts the fasthttp server on addr, blocking until it
// returns an error.
func (srv *Server) ListenAndServe(addr string) error {
	return fasthttp.ListenAndServe(addr, srv.Handler())
}

// RecordArea lets the scheduling wiring register the deck layout produced
// for a voyage, so the placement endpoint can report it afterward.
func (srv *Server) RecordArea(voyageID string, area *core.PlacementArea) {
	srv.Areas[voyageID] = area
}

// Handler returns the fasthttp request handler, method-switched per item
// count the way the teacher's own proxy s3Handler dispatches.
func (srv *Server) Handler() fasthttp.RequestHandler {
	mux := func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		items := splitPath(path)

		switch {
		case len(items) >= 2 && items[0] == "v1" && items[1] == "voyages" && len(items) == 3 && items[2] == "plan":
			if !ctx.IsPost() {
				writeMethodNotAllowed(ctx, fasthttp.MethodPost)
				return
			}
			srv.handlePlan(ctx)
		case len(items) == 2 && items[0] == "v1" && items[1] == "assignments":
			if !ctx.IsGet() {
				writeMethodNotAllowed(ctx, fasthttp.MethodGet)
				return
			}
			srv.handleAssignments(ctx)
		case len(items) == 3 && items[0] == "v1" && items[1] == "placement":
			if !ctx.IsGet() {
				writeMethodNotAllowed(ctx, fasthttp.MethodGet)
				return
			}
			srv.handlePlacement(ctx, items[2])
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}
	return srv.Auth.requireAuth(mux)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// handlePlan triggers a full scheduling run over the fleet's live pools: it
// snapshots current eligibility from the shared Pools and drives Run, so a
// POST here is the only thing that actually moves blocks onto voyages.
func (srv *Server) handlePlan(ctx *fasthttp.RequestCtx) {
	elig := srv.Scheduler.BuildEligibility()

	res := srv.Scheduler.Run(context.Background(), elig, nil)
	nlog.Infof("api: plan run rounds=%d placed=%d violations=%d",
		res.Rounds, res.TotalPlaced, len(res.CooldownViolations))
	writeJSON(ctx, fasthttp.StatusOK, planResponse{
		Rounds:             res.Rounds,
		TotalPlaced:        res.TotalPlaced,
		CooldownViolations: res.CooldownViolations,
		Unassigned:         res.Unassigned,
	})
}

func (srv *Server) handleAssignments(ctx *fasthttp.RequestCtx) {
	out := make(map[string]string)
	for _, l := range srv.Scheduler.Loaders {
		for blockID, voyageID := range l.BlockAssignments {
			out[blockID] = voyageID
		}
	}
	writeJSON(ctx, fasthttp.StatusOK, out)
}

func (srv *Server) handlePlacement(ctx *fasthttp.RequestCtx, voyageID string) {
	area, ok := srv.Areas[voyageID]
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, errVoyageNotFound(voyageID))
		return
	}

	placed := area.PlacedBlocks()
	resp := placementResponse{
		VoyageID:       voyageID,
		PlacementOrder: area.PlacementOrder(),
		UnplacedCount:  area.UnplacedCount(),
		Metrics:        area.EnhancedMetrics(len(placed) + area.UnplacedCount()),
	}
	for id, b := range placed {
		x, y := b.Reference()
		resp.Placed = append(resp.Placed, placedBlock{BlockID: id, RefX: x, RefY: y, Rotation: b.Rotation()})
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

type planResponse struct {
	Rounds             int                                     `json:"rounds"`
	TotalPlaced        int                                     `json:"total_placed"`
	CooldownViolations []string                                `json:"cooldown_violations"`
	Unassigned         map[string]scheduler.UnassignedReason    `json:"unassigned"`
}

type placedBlock struct {
	BlockID  string `json:"block_id"`
	RefX     int    `json:"ref_x"`
	RefY     int    `json:"ref_y"`
	Rotation int    `json:"rotation"`
}

type placementResponse struct {
	VoyageID       string        `json:"voyage_id"`
	Placed         []placedBlock `json:"placed"`
	PlacementOrder []string      `json:"placement_order"`
	UnplacedCount  int           `json:"unplaced_count"`
	Metrics        core.Metrics  `json:"metrics"`
}
