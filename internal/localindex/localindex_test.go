package localindex

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/surfsync/surfsync/internal/surfproto"
)

func TestLookupMissingReturnsSentinel(t *testing.T) {
	idx := Open(t.TempDir())
	v, hl, found := idx.Lookup("a.txt")
	assert.False(t, found)
	assert.Equal(t, surfproto.NoVersion, v)
	assert.Zero(t, len(hl))
}

func TestSetThenLookup(t *testing.T) {
	idx := Open(t.TempDir())
	assert.NoError(t, idx.Set("a.txt", 1, []string{"h1", "h2"}))

	v, hl, found := idx.Lookup("a.txt")
	assert.True(t, found)
	assert.Equal(t, 1, v)
	assert.True(t, surfproto.HashlistsEqual(hl, []string{"h1", "h2"}))
}

func TestSetOverwritesInPlace(t *testing.T) {
	idx := Open(t.TempDir())
	assert.NoError(t, idx.Set("a.txt", 1, []string{"h1"}))
	assert.NoError(t, idx.Set("b.txt", 1, []string{"h2"}))
	assert.NoError(t, idx.Set("a.txt", 2, []string{"h1", "h3"}))

	v, hl, found := idx.Lookup("a.txt")
	assert.True(t, found)
	assert.Equal(t, 2, v)
	assert.True(t, surfproto.HashlistsEqual(hl, []string{"h1", "h3"}))

	v, hl, found = idx.Lookup("b.txt")
	assert.True(t, found)
	assert.Equal(t, 1, v)
	assert.True(t, surfproto.HashlistsEqual(hl, []string{"h2"}))
}

func TestSetTombstone(t *testing.T) {
	idx := Open(t.TempDir())
	assert.NoError(t, idx.Set("a.txt", 2, []string{surfproto.TombstoneHash}))

	v, hl, found := idx.Lookup("a.txt")
	assert.True(t, found)
	assert.Equal(t, 2, v)
	assert.True(t, surfproto.HashlistsEqual(hl, []string{"0"}))
}

func TestSetEmptyHashlist(t *testing.T) {
	idx := Open(t.TempDir())
	assert.NoError(t, idx.Set("empty.txt", 1, nil))

	v, hl, found := idx.Lookup("empty.txt")
	assert.True(t, found)
	assert.Equal(t, 1, v)
	assert.Zero(t, len(hl))
}

func TestFilenamesListsAllTrackedEntries(t *testing.T) {
	idx := Open(t.TempDir())
	assert.NoError(t, idx.Set("a.txt", 1, []string{"h1"}))
	assert.NoError(t, idx.Set("b.txt", 1, []string{"h2"}))

	names, err := idx.Filenames()
	assert.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)
}

func TestFilenamesOnMissingIndexIsEmpty(t *testing.T) {
	idx := Open(t.TempDir())
	names, err := idx.Filenames()
	assert.NoError(t, err)
	assert.Zero(t, len(names))
}
