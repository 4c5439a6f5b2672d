// Package format houses the byte-level layout of the heap region and of the
// on-disk image that carries it. Higher-level packages (arena, image, kit)
// only ever talk in the offsets and sizes defined here.
package format

const (
	// WordSize is the width of every header field in the region.
	WordSize = 8

	// FrontierOffset is the region offset of the bump allocator's cursor cell.
	// A stored value of 0 means the cursor has never been set.
	FrontierOffset = 0

	// BaseOffset is the first offset a block may occupy. It doubles as the
	// root slot: block 1's self-locator field always lives here.
	BaseOffset = FrontierOffset + WordSize

	// LocatorFieldSize is the size of a block's self-locator field.
	LocatorFieldSize = WordSize

	// LengthFieldSize is the size of a block's length field.
	LengthFieldSize = WordSize

	// BlockHeaderSize is the number of bytes preceding every payload:
	//
	//	0x00  self-locator (offset of the length field)
	//	0x08  length
	//	0x10  payload...
	BlockHeaderSize = LocatorFieldSize + LengthFieldSize

	// MinCapacity is the smallest region that can hold the frontier cell and
	// one empty block.
	MinCapacity = BaseOffset + BlockHeaderSize

	// MaxCapacity bounds regions so every offset fits comfortably in an int.
	MaxCapacity = 1 << 40
)

const (
	// MaxBatchCommands is the largest command batch the dispatcher executes.
	// Larger batches are skipped as a whole.
	MaxBatchCommands = 6

	// MaxEditBytes is the absolute cap on bytes written by a single edit,
	// independent of the target block's length.
	MaxEditBytes = 40

	// SpillWindow is how far past a block's declared length an edit may write.
	// Those bytes land in the continuation slot of the next block.
	SpillWindow = WordSize
)
