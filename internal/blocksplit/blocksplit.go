// Package blocksplit implements the file <-> fixed-size-block <-> hashlist
// conversions used by both the client and the server's invariants: a file
// is read in order as a sequence of blocks of size at most blockSize, the
// final block possibly short, and each block is identified by the hex
// SHA-256 of its bytes.
package blocksplit

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Block is one fixed-size (except possibly the last) chunk of file
// content, paired with its content hash.
type Block struct {
	Hash string
	Data []byte
}

// HashBlock returns the hex SHA-256 digest of a block's bytes. This is the
// content-address used everywhere a hash string identifies a block.
func HashBlock(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Split reads r to completion, producing ordered blocks of at most
// blockSize bytes each. An empty reader produces a nil/empty slice, never
// a single empty block — this is what distinguishes an empty file's
// hashlist from the tombstone.
func Split(r io.Reader, blockSize int) ([]Block, error) {
	if blockSize <= 0 {
		blockSize = 4096
	}

	var blocks []Block
	buf := make([]byte, blockSize)
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			blocks = append(blocks, Block{Hash: HashBlock(data), Data: data})
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n < blockSize {
			break
		}
	}
	return blocks, nil
}

// Hashlist extracts the ordered hash sequence from a block list.
func Hashlist(blocks []Block) []string {
	hashlist := make([]string, len(blocks))
	for i, b := range blocks {
		hashlist[i] = b.Hash
	}
	return hashlist
}

// Concat reconstitutes a file's bytes by concatenating blocks in order.
func Concat(blocks []Block) []byte {
	total := 0
	for _, b := range blocks {
		total += len(b.Data)
	}
	out := make([]byte, 0, total)
	for _, b := range blocks {
		out = append(out, b.Data...)
	}
	return out
}
