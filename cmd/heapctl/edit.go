package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/kit"
)

var (
	editHex      bool
	editTruncate bool
)

func init() {
	cmd := newEditCmd()
	cmd.Flags().BoolVar(&editHex, "hex", false, "Data is hex-encoded")
	cmd.Flags().BoolVar(&editTruncate, "truncate", false, "Shrink the block to the data length")
	rootCmd.AddCommand(cmd)
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <image> <index> <data>",
		Short: "Overwrite the payload of a block",
		Long: `The edit command resolves the block at index and writes data over its
payload. With --truncate a shorter write shrinks the block and moves the
chain link so later blocks stay reachable. Writes may run up to 8 bytes
past the block length, to a maximum of 40 bytes.

Example:
  heapctl edit board.heap 2 AAAAAAAA --truncate
  heapctl edit board.heap 2 4141414141414141 --hex`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(args)
		},
	}
	return cmd
}

func runEdit(args []string) error {
	index, err := parseUint("index", args[1])
	if err != nil {
		return err
	}
	data := []byte(args[2])
	if editHex {
		if data, err = hex.DecodeString(args[2]); err != nil {
			return fmt.Errorf("invalid hex data: %w", err)
		}
	}
	return runCommands(args[0], []kit.Command{kit.Edit(index, data, editTruncate)})
}
