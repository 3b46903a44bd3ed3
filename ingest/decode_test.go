package ingest

import "testing"

func TestDecodeVesselSpecs(t *testing.T) {
	data := []byte(`[{"id":1,"name":"V1","width":40,"height":10,"voyage_cost":1000,"cycle_phases":[1,2,1,2]}]`)
	specs, err := DecodeVesselSpecs(data)
	if err != nil {
		t.Fatalf("DecodeVesselSpecs error: %v", err)
	}
	if len(specs) != 1 || specs[0].Name != "V1" {
		t.Fatalf("unexpected specs: %+v", specs)
	}
	if specs[0].CycleLen() != 6 {
		t.Fatalf("CycleLen() = %d, want 6", specs[0].CycleLen())
	}
}

func TestDecodeVoxelCacheProjectsFootprintAndPicksReference(t *testing.T) {
	data := []byte(`{"block_id":"A","block_type":"crane","voxel_data":{"resolution":1,"voxel_positions":[[1,1,[0,2]],[0,0,[0,2]],[1,0,[0,2]]]}}`)
	b, err := DecodeVoxelCache(data)
	if err != nil {
		t.Fatalf("DecodeVoxelCache error: %v", err)
	}
	if b.Type.String() != "crane" {
		t.Fatalf("expected crane type, got %v", b.Type)
	}
	rx, ry := b.Reference()
	if rx != 0 || ry != 0 {
		t.Fatalf("expected reference (0,0), got (%d,%d)", rx, ry)
	}
}

func TestDecodeDeadlineAcceptsBothForms(t *testing.T) {
	t1, err := DecodeDeadline("260115")
	if err != nil {
		t.Fatalf("unexpected error for YYMMDD: %v", err)
	}
	if t1.Year() != 2026 || t1.Month() != 1 || t1.Day() != 15 {
		t.Fatalf("parsed YYMMDD wrong: %v", t1)
	}
	t2, err := DecodeDeadline("2026-01-15")
	if err != nil {
		t.Fatalf("unexpected error for ISO: %v", err)
	}
	if !t1.Equal(t2) {
		t.Fatalf("expected both forms to parse to the same date, got %v and %v", t1, t2)
	}
}

func TestDecodeDeadlinesParsesMap(t *testing.T) {
	data := []byte(`{"A":"260115","B":"2026-02-01"}`)
	deadlines, err := DecodeDeadlines(data)
	if err != nil {
		t.Fatalf("DecodeDeadlines error: %v", err)
	}
	if len(deadlines) != 2 {
		t.Fatalf("expected 2 deadlines, got %v", deadlines)
	}
	if deadlines["A"].Year() != 2026 || deadlines["A"].Month() != 1 || deadlines["A"].Day() != 15 {
		t.Fatalf("unexpected deadline for A: %v", deadlines["A"])
	}
	if deadlines["B"].Month() != 2 || deadlines["B"].Day() != 1 {
		t.Fatalf("unexpected deadline for B: %v", deadlines["B"])
	}
}

func TestDecodeLabelingCapturesVIPSet(t *testing.T) {
	data := []byte(`{"blocks":[{"block_id":"A","compatible_vessels":[1]}],"classification":{"vip_blocks":["A"]}}`)
	doc, err := DecodeLabeling(data)
	if err != nil {
		t.Fatalf("DecodeLabeling error: %v", err)
	}
	if len(doc.Classification.VIPBlocks) != 1 || doc.Classification.VIPBlocks[0] != "A" {
		t.Fatalf("unexpected vip set: %+v", doc.Classification.VIPBlocks)
	}
}
