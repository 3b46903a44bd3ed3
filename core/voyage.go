package core

import (
	"fmt"
	"time"
)

const dateLayout = "060102" // YYMMDD, matching the source ingest format

// Voyage is one scheduled transport leg of a single vessel between a start
// and end date, carrying a mutable set of assigned block IDs.
type Voyage struct {
	VesselName string
	StartDate  time.Time
	EndDate    time.Time

	blockIDs []string
	blockSet map[string]struct{}
}

// NewVoyage constructs a voyage and derives its ID per the "{vessel}_{start}_{end}" grammar.
func NewVoyage(vesselName string, start, end time.Time) *Voyage {
	return &Voyage{
		VesselName: vesselName,
		StartDate:  start,
		EndDate:    end,
		blockSet:   make(map[string]struct{}),
	}
}

// ID renders the voyage_id grammar: "{vessel}_{start}_{end}" with dates in
// ISO form (2006-01-02), the same grammar the scheduler's voyage ids use.
func (v *Voyage) ID() string {
	return fmt.Sprintf("%s_%s_%s", v.VesselName, v.StartDate.Format("2006-01-02"), v.EndDate.Format("2006-01-02"))
}

// Attach adds a block to this voyage's assignment set, idempotently.
func (v *Voyage) Attach(blockID string) {
	if _, ok := v.blockSet[blockID]; ok {
		return
	}
	v.blockSet[blockID] = struct{}{}
	v.blockIDs = append(v.blockIDs, blockID)
}

// Detach removes a block from this voyage's assignment set.
func (v *Voyage) Detach(blockID string) {
	if _, ok := v.blockSet[blockID]; !ok {
		return
	}
	delete(v.blockSet, blockID)
	for i, id := range v.blockIDs {
		if id == blockID {
			v.blockIDs = append(v.blockIDs[:i], v.blockIDs[i+1:]...)
			break
		}
	}
}

// Blocks returns the ordered set of assigned block IDs.
func (v *Voyage) Blocks() []string { return append([]string(nil), v.blockIDs...) }

func (v *Voyage) Len() int { return len(v.blockIDs) }

// ParseDate parses a YYMMDD date, the format used throughout ingest records.
func ParseDate(s string) (time.Time, error) { return time.Parse(dateLayout, s) }

// FormatDate renders a date in the same YYMMDD convention.
func FormatDate(t time.Time) string { return t.Format(dateLayout) }
