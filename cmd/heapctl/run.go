package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/kit"
)

var (
	runFile   string
	runEncode bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runFile, "file", "", "Read an encoded batch from this file (- for stdin)")
	cmd.Flags().BoolVar(&runEncode, "encode", false, "Print the encoded batch as hex instead of running it")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <image> [command]...",
		Short: "Run a batch of arena commands",
		Long: `The run command executes a batch of up to 6 commands in order inside one
transaction. Larger batches are skipped as a whole. Commands are given as
arguments or read from an encoded batch file.

Command syntax:
  alloc=<size>
  search=<index>
  edit=<index>:<hex data>[:truncate]

Example:
  heapctl run board.heap alloc=16 alloc=16 alloc=16 edit=2:4141414141414141:truncate search=3
  heapctl run board.heap --file batch.bin
  heapctl run - alloc=16 search=1 --encode`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

func runRun(args []string) error {
	cmds, err := loadBatch(args[1:], runFile)
	if err != nil {
		return err
	}

	if runEncode {
		enc := hex.EncodeToString(kit.EncodeBatch(cmds))
		if jsonOut {
			return printJSON(map[string]interface{}{"batch": enc, "commands": len(cmds)})
		}
		printInfo("%s\n", enc)
		return nil
	}
	return runCommands(args[0], cmds)
}

// loadBatch builds a batch from textual commands, or decodes one from file
// when it is set. The file may hold raw bytes or hex text.
func loadBatch(args []string, file string) ([]kit.Command, error) {
	if file == "" {
		return parseCommands(args)
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("give commands as arguments or --file, not both")
	}

	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}
	if raw, herr := hex.DecodeString(strings.TrimSpace(string(data))); herr == nil {
		data = raw
	}

	cmds, err := kit.DecodeBatch(data)
	if err != nil {
		return nil, fmt.Errorf("invalid batch: %w", err)
	}
	return cmds, nil
}
