package ingest

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/oceanfreight/blockvoyage/cmn"
	"github.com/oceanfreight/blockvoyage/core"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// VesselSpecDoc mirrors the vessel-spec ingest row.
type VesselSpecDoc struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	WidthM     float64 `json:"width"`
	HeightM    float64 `json:"height"`
	VoyageCost float64 `json:"voyage_cost"`
	CyclePhases [4]int `json:"cycle_phases"`
}

// BlockLabelDoc mirrors the block-labeling ingest row.
type BlockLabelDoc struct {
	BlockID            string `json:"block_id"`
	BlockInfo          *struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Area   float64 `json:"area"`
	} `json:"block_info"`
	CompatibleVessels []int `json:"compatible_vessels"`
}

// LabelingFile is the top-level labeling document, carrying the VIP
// classification alongside the per-block rows.
type LabelingFile struct {
	Blocks         []BlockLabelDoc `json:"blocks"`
	Classification struct {
		VIPBlocks []string `json:"vip_blocks"`
	} `json:"classification"`
}

// VoxelDoc mirrors one voxel-cache entry: a block's 3D voxel column,
// projected to 2D by dropping the z-range (L1 only reasons about footprints).
type VoxelDoc struct {
	BlockID   string `json:"block_id"`
	BlockType string `json:"block_type"`
	VoxelData struct {
		Resolution    float64           `json:"resolution"`
		VoxelPositions []VoxelPosition `json:"voxel_positions"`
	} `json:"voxel_data"`
}

// VoxelPosition is one (x, y, [zmin, zmax]) entry in the raw cache.
type VoxelPosition struct {
	X, Y int
	ZMin, ZMax float64
}

// UnmarshalJSON decodes the source's [(x, y, [zmin, zmax])] tuple shape
// into VoxelPosition fields.
func (p *VoxelPosition) UnmarshalJSON(data []byte) error {
	var raw []jsoniter.RawMessage
	if err := jsonAPI.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("ingest: voxel position expects 3 elements, got %d", len(raw))
	}
	if err := jsonAPI.Unmarshal(raw[0], &p.X); err != nil {
		return err
	}
	if err := jsonAPI.Unmarshal(raw[1], &p.Y); err != nil {
		return err
	}
	var zrange [2]float64
	if err := jsonAPI.Unmarshal(raw[2], &zrange); err != nil {
		return err
	}
	p.ZMin, p.ZMax = zrange[0], zrange[1]
	return nil
}

// DecodeVesselSpecs parses a vessel-spec document into VesselSpec values.
func DecodeVesselSpecs(data []byte) ([]*core.VesselSpec, error) {
	var docs []VesselSpecDoc
	if err := jsonAPI.Unmarshal(data, &docs); err != nil {
		return nil, cmn.Wrap(err, "ingest: decode vessel specs")
	}
	out := make([]*core.VesselSpec, 0, len(docs))
	for _, d := range docs {
		out = append(out, &core.VesselSpec{
			ID:         d.ID,
			Name:       d.Name,
			WidthM:     d.WidthM,
			HeightM:    d.HeightM,
			VoyageCost: d.VoyageCost,
			Phases: core.CyclePhases{
				MoveOut: d.CyclePhases[0],
				Load:    d.CyclePhases[1],
				MoveIn:  d.CyclePhases[2],
				Unload:  d.CyclePhases[3],
			},
		})
	}
	return out, nil
}

// DecodeLabeling parses the labeling file into per-block compatibility and
// area metadata plus the VIP set.
func DecodeLabeling(data []byte) (*LabelingFile, error) {
	var doc LabelingFile
	if err := jsonAPI.Unmarshal(data, &doc); err != nil {
		return nil, cmn.Wrap(err, "ingest: decode labeling")
	}
	return &doc, nil
}

// DecodeVoxelCache parses one voxel-cache entry into a core.VoxelBlock,
// projecting the 3D voxel column to its 2D footprint and choosing the
// lowest-(y,x) cell as the reference voxel — the source's convention for a
// stable anchor when block data doesn't carry an explicit reference.
func DecodeVoxelCache(data []byte) (*core.VoxelBlock, error) {
	var doc VoxelDoc
	if err := jsonAPI.Unmarshal(data, &doc); err != nil {
		return nil, cmn.Wrap(err, "ingest: decode voxel cache")
	}
	if len(doc.VoxelData.VoxelPositions) == 0 {
		return nil, cmn.NewErrConfig(fmt.Sprintf("block %s has an empty voxel cache", doc.BlockID))
	}

	seen := make(map[core.Cell]struct{})
	var footprint []core.Cell
	for _, v := range doc.VoxelData.VoxelPositions {
		c := core.Cell{X: v.X, Y: v.Y}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		footprint = append(footprint, c)
	}

	refX, refY := footprint[0].X, footprint[0].Y
	for _, c := range footprint[1:] {
		if c.Y < refY || (c.Y == refY && c.X < refX) {
			refX, refY = c.X, c.Y
		}
	}

	return core.NewVoxelBlock(doc.BlockID, footprint, refX, refY, decodeBlockType(doc.BlockType)), nil
}

func decodeBlockType(s string) core.BlockType {
	switch s {
	case "crane":
		return core.BlockTypeCrane
	case "trestle":
		return core.BlockTypeTrestle
	case "height_aware":
		return core.BlockTypeHeightAware
	default:
		return core.BlockTypeUnknown
	}
}

const yymmddLayout = "060102"

// DecodeDeadline parses a deadline in either accepted form: bare YYMMDD or
// full ISO (2006-01-02).
func DecodeDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(yymmddLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, cmn.Wrapf(err, "ingest: unparseable deadline %q", s)
	}
	return t, nil
}

// DecodeDeadlines parses the deadlines file, a flat block_id -> date map,
// into parsed dates via DecodeDeadline.
func DecodeDeadlines(data []byte) (map[string]time.Time, error) {
	var raw map[string]string
	if err := jsonAPI.Unmarshal(data, &raw); err != nil {
		return nil, cmn.Wrap(err, "ingest: decode deadlines")
	}
	out := make(map[string]time.Time, len(raw))
	for blockID, s := range raw {
		t, err := DecodeDeadline(s)
		if err != nil {
			return nil, err
		}
		out[blockID] = t
	}
	return out, nil
}

// VoyageScheduleRow is one optional pre-seeded voyage row.
type VoyageScheduleRow struct {
	VesselName string `json:"vessel_name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func DecodeVoyageSchedule(data []byte) ([]VoyageScheduleRow, error) {
	var rows []VoyageScheduleRow
	if err := jsonAPI.Unmarshal(data, &rows); err != nil {
		return nil, cmn.Wrap(err, "ingest: decode voyage schedule")
	}
	return rows, nil
}
