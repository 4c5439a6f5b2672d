// Package arena implements the fixed-capacity heap region: a bump allocator,
// an index-addressed block chain, and an in-place block editor.
//
// # Layout
//
// The region is an untyped byte slice addressed by offsets (Ref). Offset 0
// holds the frontier cell, the allocator's cursor. Blocks follow from
// BaseOffset (8):
//
//	+0x00  self-locator  offset of this block's length field
//	+0x08  length        payload size in bytes
//	+0x10  payload       length bytes
//
// There is no explicit next pointer. The word immediately after a payload is
// the next block's self-locator field, so the chain is discovered by reading
// the word at payload+length and treating its value as the next length-field
// offset. Block 1's self-locator always lives at BaseOffset, which is why
// BaseOffset is also called the root slot.
//
// # Operations
//
//   - Alloc(size): append a block at the frontier. Never reclaims.
//   - Search(index): walk the chain from block 1 to the 1-based index.
//   - Blocks(): the same walk as a lazy iterator ending in io.EOF.
//   - Edit(ref, data, truncate): overwrite a payload in place, optionally
//     shrinking the block and moving the continuation slot.
//
// Edit accepts up to SpillWindow (8) bytes past a block's declared length,
// capped at MaxEditBytes (40). Those extra bytes overwrite the next block's
// self-locator field and can desynchronize the chain. This is part of the
// contract; writeLimit is the single place that sets the window.
//
// # Thread Safety
//
// An Arena is not safe for concurrent use. Callers serialize access; the kit
// dispatcher holds one lock for a whole command batch.
package arena
