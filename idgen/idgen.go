// Package idgen mints internal run identifiers and provides fast
// approximate-membership pre-filters used ahead of exact eligibility and
// VIP lookups in the loader and scheduler.
package idgen

import (
	"github.com/OneOfOne/xxhash"
	cuckoo "github.com/seiflotfy/cuckoofilter"
	"github.com/teris-io/shortid"
)

// RunID generates a short, URL-safe identifier for one scheduling run
// (used in logs and the durable store's run-scoped keys), not for any
// externally visible voyage_id — those follow the spec's own grammar.
func RunID() (string, error) { return shortid.Generate() }

// FootprintHash hashes a block's serialized footprint bytes for quick
// equality checks, a cheaper test than the blake2b content fingerprint in
// core (core.Fingerprint).
func FootprintHash(data []byte) uint64 { return xxhash.Checksum64(data) }

// MembershipFilter is a probabilistic pre-filter over a block ID set:
// VIP status and eligibility pools only need a cheap "definitely not in
// here" answer before paying for the exact map lookup.
type MembershipFilter struct {
	cf *cuckoo.Filter
}

// NewMembershipFilter builds a filter sized for an expected element count.
func NewMembershipFilter(expectedElements uint) *MembershipFilter {
	return &MembershipFilter{cf: cuckoo.NewFilter(expectedElements)}
}

func (m *MembershipFilter) Add(id string) bool    { return m.cf.InsertUnique([]byte(id)) }
func (m *MembershipFilter) Remove(id string) bool { return m.cf.Delete([]byte(id)) }

// MaybeContains reports false only if id is definitely absent; a true
// result still requires the exact map lookup the caller already has.
func (m *MembershipFilter) MaybeContains(id string) bool { return m.cf.Lookup([]byte(id)) }

func (m *MembershipFilter) Count() uint { return m.cf.Count() }
