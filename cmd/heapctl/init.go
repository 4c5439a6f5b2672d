package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/image"
)

var (
	initCapacity uint64
	initForce    bool
)

func init() {
	cmd := newInitCmd()
	cmd.Flags().Uint64Var(&initCapacity, "capacity", 64*1024, "Region size in bytes")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(cmd)
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <image>",
		Short: "Create an empty image",
		Long: `The init command creates a new image file holding an empty region.

Example:
  heapctl init board.heap
  heapctl init board.heap --capacity 1048576 --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args)
		},
	}
	return cmd
}

func runInit(args []string) error {
	path := args[0]

	img, err := image.Create(path, image.CreateOptions{Capacity: initCapacity, Overwrite: initForce})
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	defer img.Close()

	if jsonOut {
		return printJSON(map[string]interface{}{
			"image":    path,
			"capacity": initCapacity,
			"id":       img.ID().String(),
		})
	}
	printInfo("Created %s (%d bytes, id %s)\n", path, initCapacity, img.ID())
	return nil
}
