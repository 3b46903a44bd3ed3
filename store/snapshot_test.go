package store

import (
	"os"
	"testing"
)

func TestSnapshotMsgpRoundTrip(t *testing.T) {
	s := &Snapshot{
		RunID: "run-1",
		BlockAssignments: map[string]string{
			"A": "V1_260101_260105",
		},
		VoyageBlocks: map[string][]string{
			"V1_260101_260105": {"A", "B"},
		},
		LastEnd: map[string]int64{"V1": 19000},
	}
	raw, err := s.MarshalMsg(nil)
	if err != nil {
		t.Fatalf("MarshalMsg error: %v", err)
	}

	got := &Snapshot{}
	if _, err := got.UnmarshalMsg(raw); err != nil {
		t.Fatalf("UnmarshalMsg error: %v", err)
	}
	if got.RunID != s.RunID {
		t.Fatalf("RunID = %q, want %q", got.RunID, s.RunID)
	}
	if got.BlockAssignments["A"] != "V1_260101_260105" {
		t.Fatalf("BlockAssignments[A] = %q, want V1_260101_260105", got.BlockAssignments["A"])
	}
	if len(got.VoyageBlocks["V1_260101_260105"]) != 2 {
		t.Fatalf("VoyageBlocks = %v, want 2 entries", got.VoyageBlocks)
	}
	if got.LastEnd["V1"] != 19000 {
		t.Fatalf("LastEnd[V1] = %d, want 19000", got.LastEnd["V1"])
	}
}

func TestWriteReadSnapshotShardsTolerateMissingShard(t *testing.T) {
	dir := t.TempDir()
	s := &Snapshot{
		RunID:            "run-2",
		BlockAssignments: map[string]string{"A": "V1_260101_260105", "B": "V2_260102_260106"},
		VoyageBlocks:     map[string][]string{"V1_260101_260105": {"A"}},
		LastEnd:          map[string]int64{"V1": 19000, "V2": 19010},
	}
	raw, err := s.MarshalMsg(nil)
	if err != nil {
		t.Fatalf("MarshalMsg error: %v", err)
	}
	compressed, err := lz4Compress(raw)
	if err != nil {
		t.Fatalf("lz4Compress error: %v", err)
	}
	originalLen := len(compressed)

	if err := WriteSnapshotShards(dir, s); err != nil {
		t.Fatalf("WriteSnapshotShards error: %v", err)
	}

	// simulate losing one parity shard: still within snapshotParityShards tolerance.
	if err := os.Remove(shardPath(dir, s.RunID, snapshotDataShards)); err != nil {
		t.Fatalf("remove shard error: %v", err)
	}

	got, err := ReadSnapshotShards(dir, s.RunID, originalLen)
	if err != nil {
		t.Fatalf("ReadSnapshotShards error: %v", err)
	}
	if got.RunID != s.RunID {
		t.Fatalf("RunID = %q, want %q", got.RunID, s.RunID)
	}
	if got.LastEnd["V2"] != 19010 {
		t.Fatalf("LastEnd[V2] = %d, want 19010", got.LastEnd["V2"])
	}
}
