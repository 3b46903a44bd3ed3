package core

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a stable content hash of a block's footprint and
// reference cell, used to detect when re-ingested voxel data actually
// changed a block's geometry versus a no-op re-import.
func Fingerprint(footprint []Cell, refX, refY int, typ BlockType) string {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	for _, c := range footprint {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(c.X))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(c.Y))
		h.Write(buf[:])
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(refX))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(refY))
	h.Write(buf[:])
	h.Write([]byte{byte(typ)})
	return hex.EncodeToString(h.Sum(nil))
}
