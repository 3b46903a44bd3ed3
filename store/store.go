// Package store persists scheduling state (block_assignments, voyage_blocks,
// last_end) across process restarts in an embedded key-value store, and
// durably snapshots it with erasure-coded shards so a single corrupted
// shard doesn't lose a scheduling run.
package store

import (
	"github.com/tidwall/buntdb"

	"github.com/oceanfreight/blockvoyage/cmn"
	"github.com/oceanfreight/blockvoyage/cmn/nlog"
)

// Store wraps a buntdb database holding the scheduler's durable state:
// one key per block_assignment, one key per voyage's block list, one key
// per vessel's last_end.
type Store struct {
	db *buntdb.DB
}

const (
	prefixAssignment = "assign:"
	prefixVoyage      = "voyage:"
	prefixLastEnd     = "lastend:"
)

// Open opens (creating if absent) a buntdb file at path. Pass ":memory:"
// for an ephemeral store, matching buntdb's own convention.
func Open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, cmn.Wrapf(err, "store: open %s", path)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// PutAssignment records block_id -> voyage_id.
func (s *Store) PutAssignment(blockID, voyageID string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(prefixAssignment+blockID, voyageID, nil)
		return err
	})
}

// Assignment looks up a block's committed voyage, if any.
func (s *Store) Assignment(blockID string) (string, bool) {
	var val string
	found := false
	s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(prefixAssignment + blockID)
		if err == nil {
			val, found = v, true
		}
		return nil
	})
	return val, found
}

// PutLastEnd records a vessel's most recent used end-date as an epoch-day
// integer, rendered as decimal text (buntdb values are strings).
func (s *Store) PutLastEnd(vesselName string, endDay int64) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(prefixLastEnd+vesselName, formatInt64(endDay), nil)
		return err
	})
}

// LastEnd returns a vessel's last committed end-day, if any.
func (s *Store) LastEnd(vesselName string) (int64, bool) {
	var val string
	found := false
	s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(prefixLastEnd + vesselName)
		if err == nil {
			val, found = v, true
		}
		return nil
	})
	if !found {
		return 0, false
	}
	return parseInt64(val), true
}

// AppendVoyageBlock appends a block to a voyage's recorded block list,
// storing the list as a comma-joined value — buntdb has no native
// list type, so this mirrors the flat-string convention the teacher's own
// xattr-backed metadata uses for small ordered sets.
func (s *Store) AppendVoyageBlock(voyageID, blockID string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		existing, err := tx.Get(prefixVoyage + voyageID)
		if err != nil && err != buntdb.ErrNotFound {
			return err
		}
		next := blockID
		if existing != "" {
			next = existing + "," + blockID
		}
		_, _, err = tx.Set(prefixVoyage+voyageID, next, nil)
		return err
	})
}

func (s *Store) VoyageBlocks(voyageID string) []string {
	var out []string
	s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(prefixVoyage + voyageID)
		if err != nil {
			return nil
		}
		out = splitCSV(v)
		return nil
	})
	return out
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func formatInt64(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func parseInt64(s string) int64 {
	neg := false
	i := 0
	if len(s) > 0 && s[0] == '-' {
		neg = true
		i = 1
	}
	var v int64
	for ; i < len(s); i++ {
		v = v*10 + int64(s[i]-'0')
	}
	if neg {
		v = -v
	}
	return v
}

// Checkpoint flushes a shrink/compaction pass, the way a long-running
// scheduler periodically compacts its durable log.
func (s *Store) Checkpoint() error {
	if err := s.db.Shrink(); err != nil {
		nlog.Warningf("store: shrink failed: %v", err)
		return cmn.Wrap(err, "store: shrink")
	}
	return nil
}
