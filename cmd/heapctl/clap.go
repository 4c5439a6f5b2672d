package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/board"
	"github.com/joshuapare/heapkit/heap/image"
	"github.com/joshuapare/heapkit/heap/kit"
)

func init() {
	rootCmd.AddCommand(newClapCmd())
}

func newClapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clap <image> <id> [commands...]",
		Short: "Clap for a post or comment and run its batch",
		Long: `The clap command increments the claps of a post or comment, then runs
the attached commands as one batch. Commands use the same syntax as run.

Example:
  heapctl clap board.heap 0x18
  heapctl clap board.heap 0x18 alloc=16 search=2`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClap(args)
		},
	}
	return cmd
}

func runClap(args []string) error {
	id, err := parseRef(args[1])
	if err != nil {
		return err
	}
	cmds, err := parseCommands(args[2:])
	if err != nil {
		return err
	}

	var rep *kit.Report
	err = update(args[0], func(img *image.Image) error {
		var err error
		rep, err = board.New(img.Arena(), board.Options{}).Clap(id, kit.EncodeBatch(cmds))
		return err
	})
	if err != nil {
		return fmt.Errorf("clap: %w", err)
	}

	if !jsonOut {
		printInfo("Clapped %s\n", id)
	}
	return printReport(rep)
}
