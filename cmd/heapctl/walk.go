package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/preview"
)

var (
	walkHex   bool
	walkWidth int
)

func init() {
	cmd := newWalkCmd()
	cmd.Flags().BoolVar(&walkHex, "hex", false, "Hex dump each payload")
	cmd.Flags().IntVar(&walkWidth, "width", 48, "Preview at most this many payload bytes (0 for all)")
	rootCmd.AddCommand(cmd)
}

func newWalkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk <image>",
		Short: "List every block in chain order",
		Long: `The walk command follows the chain from block 1 and prints each block's
index, pointer, length, and a payload preview. A chain that loops is cut
off at the most blocks the region can hold and reported.

Example:
  heapctl walk board.heap
  heapctl walk board.heap --hex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(args)
		},
	}
	return cmd
}

type blockJSON struct {
	Index   uint64 `json:"index"`
	Ptr     string `json:"ptr"`
	Length  uint64 `json:"length"`
	Preview string `json:"preview"`
}

func runWalk(args []string) error {
	img, err := openImage(args[0], true)
	if err != nil {
		return err
	}
	defer img.Close()

	a := img.Arena()
	blocks, chainErr := a.Blocks().Collect()

	if jsonOut {
		out := make([]blockJSON, 0, len(blocks))
		for _, b := range blocks {
			out = append(out, blockJSON{
				Index:   b.Index,
				Ptr:     b.Payload.String(),
				Length:  b.Length,
				Preview: preview.Text(payloadOf(a, b), walkWidth),
			})
		}
		result := map[string]interface{}{"blocks": out}
		if chainErr != nil {
			result["error"] = chainErr.Error()
		}
		return printJSON(result)
	}

	for _, b := range blocks {
		p := payloadOf(a, b)
		printInfo("%4d  ptr %-8s len %-6d %s\n", b.Index, b.Payload, b.Length, preview.Text(p, walkWidth))
		if walkHex && len(p) > 0 {
			printInfo("%s", preview.Dump(p))
		}
	}
	if chainErr != nil {
		printInfo("chain stopped: %v\n", chainErr)
	}
	return nil
}

// payloadOf returns the block's payload, clipped to the region for blocks
// whose stored length runs past it.
func payloadOf(a *arena.Arena, b arena.Block) []byte {
	if p, err := a.Payload(b.Payload); err == nil {
		return p
	}
	region := a.Bytes()
	if uint64(b.Payload) >= uint64(len(region)) {
		return nil
	}
	return region[b.Payload:]
}
