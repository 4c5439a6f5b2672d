package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/image"
)

var exportCompression string

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVar(&exportCompression, "compression", "zstd", "Snapshot compression (none, lz4, zstd)")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <image> <snapshot>",
		Short: "Write the region to a portable snapshot",
		Long: `The export command writes the image's region to a snapshot file,
optionally compressed. Regions that do not compress are stored as is.

Example:
  heapctl export board.heap board.snap
  heapctl export board.heap board.snap --compression lz4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
	return cmd
}

func runExport(args []string) error {
	c, err := image.ParseCompression(exportCompression)
	if err != nil {
		return err
	}

	img, err := openImage(args[0], true)
	if err != nil {
		return err
	}
	defer img.Close()

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := image.WriteSnapshot(f, img.Arena(), c); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	stat, err := os.Stat(args[1])
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]interface{}{
			"snapshot": args[1],
			"capacity": img.Arena().Capacity(),
			"size":     stat.Size(),
		})
	}
	printInfo("Exported %s to %s (%d bytes)\n", args[0], args[1], stat.Size())
	return nil
}
