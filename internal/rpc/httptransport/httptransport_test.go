package httptransport

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/surfsync/surfsync/internal/blockstore"
	"github.com/surfsync/surfsync/internal/metastore"
	"github.com/surfsync/surfsync/internal/surfproto"
)

func newTestPair(t *testing.T) (*Client, func()) {
	t.Helper()
	ctx := context.Background()
	blocks, err := blockstore.OpenMemory(ctx)
	assert.NoError(t, err)
	files := metastore.New(4)
	srv := NewServer(blocks, files, nil)
	ts := httptest.NewServer(srv)
	client := NewClient(ts.URL, ts.Client())
	return client, func() { ts.Close(); blocks.Close() }
}

func TestPing(t *testing.T) {
	client, closeFn := newTestPair(t)
	defer closeFn()
	assert.NoError(t, client.Ping(context.Background()))
}

func TestStoreAndGetBlock(t *testing.T) {
	client, closeFn := newTestPair(t)
	defer closeFn()
	ctx := context.Background()

	assert.NoError(t, client.StoreBlock(ctx, "h1", []byte("payload")))
	data, err := client.GetBlock(ctx, "h1")
	assert.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestGetBlockMissingReturnsEmptyNoError(t *testing.T) {
	client, closeFn := newTestPair(t)
	defer closeFn()

	data, err := client.GetBlock(context.Background(), "absent")
	assert.NoError(t, err)
	assert.Zero(t, len(data))
}

func TestUpdateFileAndFetchMap(t *testing.T) {
	client, closeFn := newTestPair(t)
	defer closeFn()
	ctx := context.Background()

	accepted, err := client.UpdateFile(ctx, "a.txt", surfproto.FileInfo{Version: 1, Hashlist: []string{"h1"}})
	assert.NoError(t, err)
	assert.True(t, accepted)

	m, err := client.GetFileInfoMap(ctx)
	assert.NoError(t, err)
	fi, ok := m["a.txt"]
	assert.True(t, ok)
	assert.Equal(t, 1, fi.Version)
}

func TestUpdateFileRejectsStaleVersion(t *testing.T) {
	client, closeFn := newTestPair(t)
	defer closeFn()
	ctx := context.Background()

	_, err := client.UpdateFile(ctx, "a.txt", surfproto.FileInfo{Version: 1, Hashlist: []string{"h1"}})
	assert.NoError(t, err)

	accepted, err := client.UpdateFile(ctx, "a.txt", surfproto.FileInfo{Version: 1, Hashlist: []string{"h2"}})
	assert.NoError(t, err)
	assert.False(t, accepted)
}
