package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/image"
)

var importForce bool

func init() {
	cmd := newImportCmd()
	cmd.Flags().BoolVar(&importForce, "force", false, "Overwrite an existing image")
	rootCmd.AddCommand(cmd)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <snapshot> <image>",
		Short: "Create an image from a snapshot",
		Long: `The import command verifies a snapshot and writes its region into a new
image of the same capacity.

Example:
  heapctl import board.snap restored.heap`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args)
		},
	}
	return cmd
}

func runImport(args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	src, err := image.ReadSnapshot(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	img, err := image.Create(args[1], image.CreateOptions{Capacity: src.Capacity(), Overwrite: importForce})
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	id := img.ID()
	if err := img.Close(); err != nil {
		return err
	}

	err = update(args[1], func(img *image.Image) error {
		return img.Restore(src)
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"image":    args[1],
			"capacity": src.Capacity(),
			"frontier": src.Frontier(),
			"id":       id.String(),
		})
	}
	printInfo("Imported %s into %s (%d bytes)\n", args[0], args[1], src.Capacity())
	return nil
}
