package store

import "testing"

func TestPutAndGetAssignment(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()

	if err := s.PutAssignment("block-1", "V1_260101_260105"); err != nil {
		t.Fatalf("PutAssignment error: %v", err)
	}
	got, ok := s.Assignment("block-1")
	if !ok || got != "V1_260101_260105" {
		t.Fatalf("Assignment() = (%q, %v), want (V1_260101_260105, true)", got, ok)
	}
	if _, ok := s.Assignment("missing"); ok {
		t.Fatalf("expected no assignment for missing block")
	}
}

func TestLastEndRoundTrip(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()

	if err := s.PutLastEnd("V1", 19000); err != nil {
		t.Fatalf("PutLastEnd error: %v", err)
	}
	got, ok := s.LastEnd("V1")
	if !ok || got != 19000 {
		t.Fatalf("LastEnd() = (%d, %v), want (19000, true)", got, ok)
	}
}

func TestAppendVoyageBlockAccumulates(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()

	voyageID := "V1_260101_260105"
	for _, b := range []string{"A", "B", "C"} {
		if err := s.AppendVoyageBlock(voyageID, b); err != nil {
			t.Fatalf("AppendVoyageBlock(%s) error: %v", b, err)
		}
	}
	got := s.VoyageBlocks(voyageID)
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("VoyageBlocks() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("VoyageBlocks()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFormatParseInt64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 19000, -19000, 123456789} {
		s := formatInt64(v)
		got := parseInt64(s)
		if got != v {
			t.Fatalf("formatInt64/parseInt64(%d) round-trip = %d", v, got)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV("A,B,C")
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("splitCSV() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitCSV()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if got := splitCSV(""); got != nil {
		t.Fatalf("splitCSV(\"\") = %v, want nil", got)
	}
}
