package blocksplit

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestSplitEmpty(t *testing.T) {
	blocks, err := Split(bytes.NewReader(nil), 4)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(blocks))
}

func TestSplitBoundaries(t *testing.T) {
	cases := []struct {
		name      string
		data      string
		blockSize int
		wantLens  []int
	}{
		{"one over block", "hello", 4, []int{4, 1}},
		{"one short of block", "hel", 4, []int{3}},
		{"two over block", "hellox", 4, []int{4, 2}},
		{"exactly one block", "helo", 4, []int{4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			blocks, err := Split(bytes.NewReader([]byte(c.data)), c.blockSize)
			assert.NoError(t, err)
			assert.Equal(t, len(c.wantLens), len(blocks))
			for i, want := range c.wantLens {
				assert.Equal(t, want, len(blocks[i].Data))
			}
			assert.Equal(t, c.data, string(Concat(blocks)))
		})
	}
}

func TestSplitAllIdenticalBlocksDedup(t *testing.T) {
	data := bytes.Repeat([]byte("abcd"), 3)
	blocks, err := Split(bytes.NewReader(data), 4)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(blocks))
	for i := 1; i < len(blocks); i++ {
		assert.Equal(t, blocks[0].Hash, blocks[i].Hash)
	}
}

func TestHashlistAndConcatRoundtrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	blocks, err := Split(bytes.NewReader(data), 4)
	assert.NoError(t, err)
	hl := Hashlist(blocks)
	assert.Equal(t, len(blocks), len(hl))
	assert.Equal(t, data, Concat(blocks))
}
