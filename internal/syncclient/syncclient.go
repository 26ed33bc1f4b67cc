// Package syncclient implements one reconciliation pass of the client
// side of the protocol: scan the watched directory, fetch the server's
// file-info map, and decide/act per filename according to the decision
// table in the design notes (R1 through R6, plus first-time uploads).
package syncclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/surfsync/surfsync/internal/blockcache"
	"github.com/surfsync/surfsync/internal/blocksplit"
	"github.com/surfsync/surfsync/internal/ignore"
	"github.com/surfsync/surfsync/internal/localindex"
	"github.com/surfsync/surfsync/internal/logger"
	"github.com/surfsync/surfsync/internal/rpc"
	"github.com/surfsync/surfsync/internal/surfproto"
)

// Client drives one sync pass between baseDir and a server reached
// through an rpc.Client.
type Client struct {
	baseDir   string
	blockSize int
	rpc       rpc.Client
	index     *localindex.Index
	ignore    *ignore.Matcher
	cache     *blockcache.Cache
}

// New builds a Client. ignoreMatcher may be nil, in which case nothing
// beyond index.txt and dot-files is excluded from the scan.
func New(baseDir string, blockSize int, client rpc.Client, ignoreMatcher *ignore.Matcher) *Client {
	if ignoreMatcher == nil {
		ignoreMatcher = &ignore.Matcher{}
	}
	return &Client{
		baseDir:   baseDir,
		blockSize: blockSize,
		rpc:       client,
		index:     localindex.Open(baseDir),
		ignore:    ignoreMatcher,
		cache:     blockcache.New(),
	}
}

// localState is Phase A's classification for one on-disk file.
type localState struct {
	filename    string
	present     bool // file currently exists on disk
	newHashlist []string
	localv      int
	localHash   []string
}

// Sync performs exactly one reconciliation pass.
func (c *Client) Sync(ctx context.Context) error {
	locals, err := c.scan()
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	remoteMap, err := c.rpc.GetFileInfoMap(ctx)
	if err != nil {
		return fmt.Errorf("fetch remote map: %w", err)
	}

	seen := make(map[string]bool, len(locals))
	for _, st := range locals {
		seen[st.filename] = true
		if _, inRemote := remoteMap[st.filename]; inRemote {
			continue
		}
		if st.localv == surfproto.NoVersion {
			if err := c.handleNewLocal(ctx, st); err != nil {
				if errors.Is(err, rpc.ErrTransport) {
					return fmt.Errorf("sync(%s): %w", st.filename, err)
				}
				logger.DefaultLogger.Errorf("sync(%s): %v", st.filename, err)
			}
		}
	}

	// entries only in the index (file deleted from disk since last sync)
	// are not produced by scan(); fold them in as "absent" local states.
	indexedNames, err := c.index.Filenames()
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	for _, name := range indexedNames {
		if seen[name] {
			continue
		}
		localv, localHash, found := c.index.Lookup(name)
		_ = found
		locals = append(locals, localState{filename: name, present: false, localv: localv, localHash: localHash})
	}

	for filename, remote := range remoteMap {
		st := findLocal(locals, filename)
		if err := c.reconcileOne(ctx, filename, st, remote); err != nil {
			if errors.Is(err, rpc.ErrTransport) {
				return fmt.Errorf("sync(%s): %w", filename, err)
			}
			logger.DefaultLogger.Errorf("sync(%s): %v", filename, err)
		}
	}

	return nil
}

func findLocal(locals []localState, filename string) localState {
	for _, st := range locals {
		if st.filename == filename {
			return st
		}
	}
	return localState{filename: filename, present: false, localv: surfproto.NoVersion}
}

// scan implements Phase A: enumerate the watched directory, excluding
// index.txt, dot-prefixed names, and anything the ignore matcher rejects.
func (c *Client) scan() ([]localState, error) {
	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []localState
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == "index.txt" || name == "index.txt.new" {
			continue
		}
		if len(name) > 0 && name[0] == '.' {
			continue
		}
		if c.ignore.Match(name) {
			continue
		}

		hashlist, err := c.hashFile(name)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", name, err)
		}
		localv, localHash, _ := c.index.Lookup(name)
		out = append(out, localState{
			filename:    name,
			present:     true,
			newHashlist: hashlist,
			localv:      localv,
			localHash:   localHash,
		})
	}
	return out, nil
}

func (c *Client) hashFile(name string) ([]string, error) {
	f, err := os.Open(filepath.Join(c.baseDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	blocks, err := blocksplit.Split(f, c.blockSize)
	if err != nil {
		return nil, err
	}
	return blocksplit.Hashlist(blocks), nil
}

// isModified reports whether a present local file's content diverges
// from what the index last recorded.
func (st localState) isModified() bool {
	return st.localv != surfproto.NoVersion && !surfproto.HashlistsEqual(st.localHash, st.newHashlist)
}

// reconcileOne applies the R1-R6 decision table for one filename present
// in the remote map.
func (c *Client) reconcileOne(ctx context.Context, filename string, st localState, remote surfproto.FileInfo) error {
	switch {
	case st.localv == surfproto.NoVersion:
		// R1: remote-only.
		return c.download(ctx, filename, remote)

	case !st.present:
		// R2: locally deleted.
		accepted, err := c.rpc.UpdateFile(ctx, filename, surfproto.Tombstone(st.localv+1))
		if err != nil {
			return err
		}
		if accepted {
			return c.index.Set(filename, st.localv+1, []string{surfproto.TombstoneHash})
		}
		// version conflict: refetch and fall through to R1 with the
		// refreshed entry.
		refreshed, err := c.rpc.GetFileInfoMap(ctx)
		if err != nil {
			return err
		}
		fi, ok := refreshed[filename]
		if !ok {
			return nil
		}
		return c.download(ctx, filename, fi)

	case !st.isModified() && remote.Version > st.localv:
		// R3: unchanged local, newer remote.
		return c.download(ctx, filename, remote)

	case !st.isModified() && remote.Version <= st.localv:
		// R4: no-op.
		return nil

	case st.isModified() && remote.Version == st.localv:
		// R5: modified local, equal version.
		return c.upload(ctx, filename, st, remote)

	case st.isModified() && remote.Version > st.localv:
		// R6: remote wins.
		return c.download(ctx, filename, remote)
	}
	return nil
}

// handleNewLocal uploads a file the local scan found that the remote map
// does not yet know about.
func (c *Client) handleNewLocal(ctx context.Context, st localState) error {
	if err := c.pushBlocks(ctx, st.filename, st.newHashlist); err != nil {
		return err
	}
	accepted, err := c.rpc.UpdateFile(ctx, st.filename, surfproto.FileInfo{Version: 1, Hashlist: st.newHashlist})
	if err != nil {
		return err
	}
	if accepted {
		return c.index.Set(st.filename, 1, st.newHashlist)
	}

	// Another client created the file first: refetch and resolve as R1.
	refreshed, err := c.rpc.GetFileInfoMap(ctx)
	if err != nil {
		return err
	}
	fi, ok := refreshed[st.filename]
	if !ok {
		return nil
	}
	return c.download(ctx, st.filename, fi)
}

// upload pushes every block of the modified file, then publishes the new
// FileInfo. On a version conflict it falls back to R6 using the current
// server entry (update_file does not return that entry, so upload
// refetches the map itself).
func (c *Client) upload(ctx context.Context, filename string, st localState, remote surfproto.FileInfo) error {
	if err := c.pushBlocks(ctx, filename, st.newHashlist); err != nil {
		return err
	}
	newVersion := st.localv + 1
	accepted, err := c.rpc.UpdateFile(ctx, filename, surfproto.FileInfo{Version: newVersion, Hashlist: st.newHashlist})
	if err != nil {
		return err
	}
	if accepted {
		return c.index.Set(filename, newVersion, st.newHashlist)
	}

	refreshed, err := c.rpc.GetFileInfoMap(ctx)
	if err != nil {
		return err
	}
	fi, ok := refreshed[filename]
	if !ok {
		return nil
	}
	return c.download(ctx, filename, fi)
}

// pushBlocks re-splits the file on disk and stores each block, using the
// client-side cache to skip blocks already known to be bound remotely in
// this process lifetime.
func (c *Client) pushBlocks(ctx context.Context, filename string, hashlist []string) error {
	f, err := os.Open(filepath.Join(c.baseDir, filename))
	if err != nil {
		return err
	}
	defer f.Close()

	blocks, err := blocksplit.Split(f, c.blockSize)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if _, cached := c.cache.Get(b.Hash); cached {
			continue
		}
		if err := c.rpc.StoreBlock(ctx, b.Hash, b.Data); err != nil {
			return err
		}
		c.cache.Set(b.Hash, b.Data)
	}
	return nil
}

// download reconstitutes filename from remote's hashlist, or removes it
// from disk if remote is a tombstone, then records the new local index
// entry.
func (c *Client) download(ctx context.Context, filename string, remote surfproto.FileInfo) error {
	if remote.IsTombstone() {
		path := filepath.Join(c.baseDir, filename)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return c.index.Set(filename, remote.Version, remote.Hashlist)
	}

	var buf bytes.Buffer
	for _, hash := range remote.Hashlist {
		if data, ok := c.cache.Get(hash); ok {
			buf.Write(data)
			continue
		}
		data, err := c.rpc.GetBlock(ctx, hash)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("get_block(%s) for %s: empty response for referenced hash", hash, filename)
		}
		c.cache.Set(hash, data)
		buf.Write(data)
	}

	if err := os.MkdirAll(c.baseDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.baseDir, filename), buf.Bytes(), 0o644); err != nil {
		return err
	}
	return c.index.Set(filename, remote.Version, remote.Hashlist)
}
