package store

import (
	"os"

	"github.com/klauspost/reedsolomon"
	"github.com/pierrec/lz4/v3"
	"golang.org/x/sys/unix"

	"github.com/oceanfreight/blockvoyage/cmn"
)

// Snapshot is the wire-compact, hand-written-msgp form of one scheduling
// run's committed state, taken before a durability checkpoint.
type Snapshot struct {
	RunID            string
	BlockAssignments map[string]string
	VoyageBlocks     map[string][]string
	LastEnd          map[string]int64
}

const (
	snapshotDataShards   = 4
	snapshotParityShards = 2
)

// WriteSnapshotShards serializes s via its hand-written msgp codec,
// compresses it with lz4, erasure-codes the result into data+parity
// shards, and writes each shard to its own file under dir so any two lost
// shards (up to snapshotParityShards) are still recoverable.
func WriteSnapshotShards(dir string, s *Snapshot) error {
	raw, err := s.MarshalMsg(nil)
	if err != nil {
		return cmn.Wrap(err, "store: marshal snapshot")
	}

	compressed, err := lz4Compress(raw)
	if err != nil {
		return cmn.Wrap(err, "store: compress snapshot")
	}

	enc, err := reedsolomon.New(snapshotDataShards, snapshotParityShards)
	if err != nil {
		return cmn.Wrap(err, "store: init erasure encoder")
	}
	shards, err := enc.Split(padToShardMultiple(compressed, snapshotDataShards))
	if err != nil {
		return cmn.Wrap(err, "store: split shards")
	}
	if err := enc.Encode(shards); err != nil {
		return cmn.Wrap(err, "store: encode parity shards")
	}

	unlock, err := lockDir(dir)
	if err != nil {
		return err
	}
	defer unlock()

	for i, shard := range shards {
		path := shardPath(dir, s.RunID, i)
		if err := os.WriteFile(path, shard, 0o644); err != nil {
			return cmn.Wrapf(err, "store: write shard %d", i)
		}
	}
	return nil
}

// ReadSnapshotShards reconstructs a Snapshot from on-disk shards,
// tolerating up to snapshotParityShards missing or corrupt files.
func ReadSnapshotShards(dir, runID string, originalLen int) (*Snapshot, error) {
	total := snapshotDataShards + snapshotParityShards
	shards := make([][]byte, total)
	for i := 0; i < total; i++ {
		data, err := os.ReadFile(shardPath(dir, runID, i))
		if err == nil {
			shards[i] = data
		}
	}

	enc, err := reedsolomon.New(snapshotDataShards, snapshotParityShards)
	if err != nil {
		return nil, cmn.Wrap(err, "store: init erasure encoder")
	}
	if ok, _ := enc.Verify(shards); !ok {
		if err := enc.Reconstruct(shards); err != nil {
			return nil, cmn.Wrap(err, "store: reconstruct shards")
		}
	}

	var compressed []byte
	for i := 0; i < snapshotDataShards; i++ {
		compressed = append(compressed, shards[i]...)
	}

	raw, err := lz4Decompress(compressed, originalLen)
	if err != nil {
		return nil, cmn.Wrap(err, "store: decompress snapshot")
	}

	snap := &Snapshot{}
	if _, err := snap.UnmarshalMsg(raw); err != nil {
		return nil, cmn.Wrap(err, "store: unmarshal snapshot")
	}
	return snap, nil
}

func lz4Compress(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	var ht [1 << 16]int
	n, err := lz4.CompressBlock(data, buf, ht[:])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// incompressible input: lz4 signals this by returning n==0
		return data, nil
	}
	return buf[:n], nil
}

func lz4Decompress(data []byte, originalLen int) ([]byte, error) {
	out := make([]byte, originalLen)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

func padToShardMultiple(data []byte, shards int) []byte {
	rem := len(data) % shards
	if rem == 0 {
		return data
	}
	return append(data, make([]byte, shards-rem)...)
}

func shardPath(dir, runID string, idx int) string {
	return dir + "/" + runID + ".shard" + formatInt64(int64(idx))
}

// lockDir takes an exclusive flock on a per-directory lockfile so two
// scheduler processes never write overlapping shard sets concurrently.
func lockDir(dir string) (unlockFn func(), err error) {
	path := dir + "/.snapshot.lock"
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, cmn.Wrapf(err, "store: open lockfile %s", path)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, cmn.Wrap(err, "store: flock")
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
