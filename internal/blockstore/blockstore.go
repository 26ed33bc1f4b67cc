// Package blockstore implements the server's hash -> block mapping over a
// gocloud.dev blob bucket, the same abstraction the teacher's
// lib/blockstorage.GoCloudUrlStorage uses for content-addressed block
// data, simplified to the spec's insert-only, no-reservation, no-GC
// contract: keys are never removed, inserting an existing key is a no-op.
package blockstore

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/surfsync/surfsync/internal/logger"
)

const blockKeyPrefix = "blocks/"

// Store is the server's BlockStore. It is purely in-memory and stateless
// across restarts: OpenMemory always opens a fresh, empty mem:// bucket.
type Store struct {
	bucket *blob.Bucket
}

// OpenMemory opens a fresh in-memory bucket for the lifetime of this
// process, matching the spec's "purely in-memory and stateless across
// restarts" requirement for the server.
func OpenMemory(ctx context.Context) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		return nil, fmt.Errorf("blockstore: open mem bucket: %w", err)
	}
	return &Store{bucket: bucket}, nil
}

func key(hash string) string {
	return blockKeyPrefix + hash
}

// Get returns the bytes bound to hash. found is false if no such binding
// exists, which the RPC layer surfaces as an empty byte sequence per
// spec, while this layer itself still distinguishes "no block" from "an
// empty block" (blocks are never legitimately zero-length, since an empty
// file produces an empty hashlist, not a hashlist containing one empty
// block).
func (s *Store) Get(ctx context.Context, hash string) (data []byte, found bool) {
	data, err := s.bucket.ReadAll(ctx, key(hash))
	if err != nil {
		logger.DefaultLogger.Warnf("blockstore: get_block miss for hash %s: %v", hash, err)
		return nil, false
	}
	return data, true
}

// Put binds hash to data. If hash is already bound the call is a no-op —
// content addressing makes the two bindings equivalent, and the server
// never verifies the claimed hash actually matches data (trust-the-client,
// per spec's recorded design).
func (s *Store) Put(ctx context.Context, hash string, data []byte) error {
	k := key(hash)
	exists, err := s.bucket.Exists(ctx, k)
	if err != nil {
		return fmt.Errorf("blockstore: checking existence of %s: %w", hash, err)
	}
	if exists {
		return nil
	}
	if err := s.bucket.WriteAll(ctx, k, data, nil); err != nil {
		return fmt.Errorf("blockstore: writing block %s: %w", hash, err)
	}
	return nil
}

// Has reports whether hash is bound, without fetching its data.
func (s *Store) Has(ctx context.Context, hash string) (bool, error) {
	return s.bucket.Exists(ctx, key(hash))
}

func (s *Store) Close() error {
	return s.bucket.Close()
}
