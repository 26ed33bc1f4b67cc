// Package rpc defines the transport-agnostic contract between a SurfSync
// client and server: the five operations of spec.md §6, as a Go
// interface. Any bidirectional request/response mechanism that can
// marshal strings, integers, byte sequences, pairs and maps can implement
// it — see the httptransport subpackage for one concrete realization.
package rpc

import (
	"context"
	"errors"

	"github.com/surfsync/surfsync/internal/surfproto"
)

// ErrTransport wraps any failure to complete an RPC (connection refused,
// timeout, malformed response). It is always fatal to the current sync
// pass, never to the process — re-running sync is the recovery path.
var ErrTransport = errors.New("rpc: transport error")

// Client is everything a SyncClient needs from the network.
type Client interface {
	Ping(ctx context.Context) error
	GetBlock(ctx context.Context, hash string) (data []byte, err error)
	StoreBlock(ctx context.Context, hash string, data []byte) error
	GetFileInfoMap(ctx context.Context) (surfproto.FileInfoMap, error)
	UpdateFile(ctx context.Context, filename string, fi surfproto.FileInfo) (accepted bool, err error)
}
