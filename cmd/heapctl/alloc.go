package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/kit"
)

func init() {
	rootCmd.AddCommand(newAllocCmd())
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc <image> <size>...",
		Short: "Allocate blocks at the frontier",
		Long: `The alloc command appends one block per size to the chain and prints
each block's payload pointer. A failed allocation reports no space and
leaves the frontier where it was.

Example:
  heapctl alloc board.heap 16 16 16`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(args)
		},
	}
	return cmd
}

func runAlloc(args []string) error {
	cmds := make([]kit.Command, 0, len(args)-1)
	for _, s := range args[1:] {
		size, err := parseUint("size", s)
		if err != nil {
			return err
		}
		cmds = append(cmds, kit.Allocate(size))
	}
	return runCommands(args[0], cmds)
}
