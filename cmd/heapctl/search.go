package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newSearchCmd())
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <image> <index>",
		Short: "Resolve a block by its 1-based chain index",
		Long: `The search command walks the chain from block 1 and prints the length
and payload pointer of the block at index. Index 0 resolves block 1.

Example:
  heapctl search board.heap 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args)
		},
	}
	return cmd
}

func runSearch(args []string) error {
	index, err := parseUint("index", args[1])
	if err != nil {
		return err
	}
	length, ref, err := searchOnly(args[0], index)
	if err != nil {
		return err
	}

	if jsonOut {
		out := map[string]interface{}{"index": index, "length": length, "found": !ref.IsNull()}
		if !ref.IsNull() {
			out["ptr"] = ref.String()
		}
		return printJSON(out)
	}
	if ref.IsNull() {
		printInfo("Block %d: not found\n", index)
		return nil
	}
	printInfo("Block %d: length %d, ptr %s\n", index, length, ref)
	return nil
}
