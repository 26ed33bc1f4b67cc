// Package metastore implements the server's FileInfoMap: the sole
// authority for filenames, versions and hashlists, and the sole point of
// conflict detection in the whole system.
//
// The map is sharded by filename so that update_file calls against
// different files never contend, while the conditional read-modify-write
// for a single file stays atomic. Each shard is a puzpuzpuz/xsync MapOf,
// whose Compute method gives us that atomicity without a separate mutex.
package metastore

import (
	"hash/fnv"
	"runtime"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/surfsync/surfsync/internal/surfproto"
)

const maxShards = 64

type shard struct {
	m *xsync.MapOf[string, surfproto.FileInfo]
}

func newShard() *shard {
	return &shard{m: xsync.NewMapOf[string, surfproto.FileInfo]()}
}

// updateFile applies the update_file rule: accept unconditionally if
// filename is new, accept iff the new version is exactly one greater than
// the current version otherwise.
//
// The "accept unconditionally for a new filename, even at a version other
// than 1" laxity matches the source server's behavior verbatim (see
// DESIGN.md open question #1) — it is not tightened here.
func (s *shard) updateFile(filename string, fi surfproto.FileInfo) bool {
	accepted := false
	s.m.Compute(filename, func(old surfproto.FileInfo, loaded bool) (surfproto.FileInfo, bool) {
		if !loaded {
			accepted = true
			return fi, false
		}
		if fi.Version != old.Version+1 {
			accepted = false
			return old, false
		}
		accepted = true
		return fi, false
	})
	return accepted
}

// Store is the server's sharded FileInfoMap.
type Store struct {
	shards []*shard
}

// New creates a Store with n shards. n <= 0 picks a shard count derived
// from GOMAXPROCS, capped at maxShards.
func New(n int) *Store {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0) * 4
	}
	if n <= 0 {
		n = 1
	}
	if n > maxShards {
		n = maxShards
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = newShard()
	}
	return &Store{shards: shards}
}

func (s *Store) shardFor(filename string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(filename))
	idx := h.Sum32() % uint32(len(s.shards))
	return s.shards[idx]
}

// UpdateFile is the sole mutator of the FileInfoMap. It returns true if
// the update was accepted and applied, false on a version conflict (the
// map is left untouched in that case).
func (s *Store) UpdateFile(filename string, fi surfproto.FileInfo) bool {
	return s.shardFor(filename).updateFile(filename, fi)
}

// Snapshot returns a FileInfoMap where every filename's entry was, at some
// instant during the call, the server's binding for that filename. Each
// shard is read independently, so cross-shard joint atomicity is not
// promised — only per-filename atomicity, matching spec.
func (s *Store) Snapshot() surfproto.FileInfoMap {
	out := make(surfproto.FileInfoMap)
	for _, sh := range s.shards {
		sh.m.Range(func(key string, value surfproto.FileInfo) bool {
			out[key] = value
			return true
		})
	}
	return out
}

// Get returns the current FileInfo for filename, if any.
func (s *Store) Get(filename string) (surfproto.FileInfo, bool) {
	return s.shardFor(filename).m.Load(filename)
}
