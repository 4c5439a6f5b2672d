package kit

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/wire"
)

// Op identifies a command variant. The values are the wire tags.
type Op uint8

const (
	OpAllocate Op = 0
	OpEdit     Op = 1
	OpSearch   Op = 2
)

func (o Op) String() string {
	switch o {
	case OpAllocate:
		return "allocate"
	case OpEdit:
		return "edit"
	case OpSearch:
		return "search"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// minCommandSize is the smallest encoded command: a tag plus one u64.
const minCommandSize = 1 + 8

// Command is one entry of a batch. Only the fields of its Op are meaningful.
type Command struct {
	Op       Op
	Size     uint64 // OpAllocate
	Index    uint64 // OpEdit, OpSearch
	Data     []byte // OpEdit
	Truncate bool   // OpEdit
}

// Allocate returns a command that allocates a block with a size-byte payload.
func Allocate(size uint64) Command {
	return Command{Op: OpAllocate, Size: size}
}

// Edit returns a command that overwrites the payload of the block at index.
func Edit(index uint64, data []byte, truncate bool) Command {
	return Command{Op: OpEdit, Index: index, Data: data, Truncate: truncate}
}

// Search returns a command that resolves the block at index.
func Search(index uint64) Command {
	return Command{Op: OpSearch, Index: index}
}

func (c Command) String() string {
	switch c.Op {
	case OpAllocate:
		return fmt.Sprintf("allocate(%d)", c.Size)
	case OpEdit:
		return fmt.Sprintf("edit(%d, %d bytes, truncate=%t)", c.Index, len(c.Data), c.Truncate)
	case OpSearch:
		return fmt.Sprintf("search(%d)", c.Index)
	default:
		return c.Op.String()
	}
}

func (c Command) encode(e *wire.Encoder) {
	e.PutU8(uint8(c.Op))
	switch c.Op {
	case OpAllocate:
		e.PutU64(c.Size)
	case OpEdit:
		e.PutU64(c.Index)
		e.PutBytes(c.Data)
		e.PutBool(c.Truncate)
	case OpSearch:
		e.PutU64(c.Index)
	}
}

func decodeCommand(d *wire.Decoder) (Command, error) {
	tag, err := d.U8()
	if err != nil {
		return Command{}, err
	}
	switch Op(tag) {
	case OpAllocate:
		size, err := d.U64()
		if err != nil {
			return Command{}, err
		}
		return Allocate(size), nil

	case OpEdit:
		index, err := d.U64()
		if err != nil {
			return Command{}, err
		}
		data, err := d.Bytes()
		if err != nil {
			return Command{}, err
		}
		truncate, err := d.Bool()
		if err != nil {
			return Command{}, err
		}
		return Edit(index, data, truncate), nil

	case OpSearch:
		index, err := d.U64()
		if err != nil {
			return Command{}, err
		}
		return Search(index), nil

	default:
		return Command{}, fmt.Errorf("%w: command tag %d at offset %d", wire.ErrUnknownTag, tag, d.Offset()-1)
	}
}

// EncodeBatch serializes cmds as a u32 count followed by each command.
func EncodeBatch(cmds []Command) []byte {
	e := wire.NewEncoder(4 + len(cmds)*minCommandSize)
	e.PutU32(uint32(len(cmds)))
	for _, c := range cmds {
		c.encode(e)
	}
	return e.Data()
}

// DecodeBatch parses a batch produced by EncodeBatch. The whole input must be
// consumed. Batches longer than MaxBatchCommands decode fine; the dispatcher
// decides what to do with them.
func DecodeBatch(data []byte) ([]Command, error) {
	d := wire.NewDecoder(data)
	count, err := d.U32()
	if err != nil {
		return nil, fmt.Errorf("batch count: %w", err)
	}
	if uint64(count)*minCommandSize > uint64(d.Remaining()) {
		return nil, fmt.Errorf("%w: %d commands cannot fit in %d bytes", wire.ErrTruncated, count, d.Remaining())
	}

	cmds := make([]Command, 0, count)
	for i := range count {
		c, err := decodeCommand(d)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		cmds = append(cmds, c)
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return cmds, nil
}
