// Package allocator implements the block map and first-fit allocator:
// a parallel array, one tag per block, classifying each block as empty,
// reserved filesystem metadata, a file's metadata block, or a file's data
// block. Shaped after drivers/common/allocatormap.go's Allocator, but over
// a tagged byte array instead of a bitmap since the spec's block map
// carries four states rather than a single allocated/free bit.
package allocator

import "github.com/ertancg/Comp304-FatFileSystem/errs"

// BlockType is the tag stored per block in the block map.
type BlockType byte

const (
	EmptyBlock     BlockType = 0
	MetadataBlock  BlockType = 1
	FileEntryBlock BlockType = 2
	FileDataBlock  BlockType = 3
)

// Map is the block map: one BlockType per block. Index 0 is always
// MetadataBlock, reserved for the filesystem's own metadata.
type Map struct {
	blocks []BlockType
}

// New creates a Map of the given size, with block 0 reserved as metadata
// and every other block empty.
func New(blockCount int) *Map {
	m := &Map{blocks: make([]BlockType, blockCount)}
	m.blocks[0] = MetadataBlock
	return m
}

// FromBytes reconstructs a Map from raw on-disk bytes, as read back by the
// serializer.
func FromBytes(raw []byte) *Map {
	blocks := make([]BlockType, len(raw))
	for i, b := range raw {
		blocks[i] = BlockType(b)
	}
	return &Map{blocks: blocks}
}

// Bytes returns the raw on-disk representation of the block map.
func (m *Map) Bytes() []byte {
	raw := make([]byte, len(m.blocks))
	for i, t := range m.blocks {
		raw[i] = byte(t)
	}
	return raw
}

// Len returns the number of blocks tracked by the map.
func (m *Map) Len() int {
	return len(m.blocks)
}

// At returns the tag of the given block.
func (m *Map) At(index int) BlockType {
	return m.blocks[index]
}

// FindEmptyBlock performs a deterministic linear scan from index 0 and
// returns the first empty block, or false if the disk is full.
func (m *Map) FindEmptyBlock() (int, bool) {
	for i, t := range m.blocks {
		if t == EmptyBlock {
			return i, true
		}
	}
	return 0, false
}

// AllocateBlock finds an empty block via FindEmptyBlock, stamps it with
// the given type, and returns its index. Block 0 is never handed out
// because it is already tagged MetadataBlock at construction time.
func (m *Map) AllocateBlock(t BlockType) (int, error) {
	index, ok := m.FindEmptyBlock()
	if !ok {
		return 0, errs.ErrNoSpace
	}
	m.blocks[index] = t
	return index, nil
}

// FreeBlock marks a block as empty again. It does not touch the
// underlying data bytes; stale content is considered unallocated garbage.
func (m *Map) FreeBlock(index int) {
	m.blocks[index] = EmptyBlock
}
