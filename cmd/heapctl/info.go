package main

import (
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Validate an image header and report basic metadata",
		Long: `The info command validates an image file and displays its header,
allocation frontier, and chain length.

Example:
  heapctl info board.heap
  heapctl info board.heap --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type imageInfo struct {
	Image        string `json:"image"`
	ID           string `json:"id"`
	Version      uint32 `json:"version"`
	PrimarySeq   uint32 `json:"primary_seq"`
	SecondarySeq uint32 `json:"secondary_seq"`
	Clean        bool   `json:"clean"`
	LastCommit   string `json:"last_commit"`
	Capacity     uint64 `json:"capacity"`
	Frontier     uint64 `json:"frontier"`
	Remaining    uint64 `json:"remaining"`
	Blocks       int    `json:"blocks"`
	ChainError   string `json:"chain_error,omitempty"`
	Heapctl      string `json:"heapctl_version"`
}

func runInfo(args []string) error {
	path := args[0]

	img, err := openImage(path, true)
	if err != nil {
		return err
	}
	defer img.Close()

	hdr := img.Header()
	a := img.Arena()
	blocks, chainErr := a.Blocks().Collect()

	info := imageInfo{
		Image:        path,
		ID:           hdr.ID.String(),
		Version:      hdr.Version,
		PrimarySeq:   hdr.PrimarySeq,
		SecondarySeq: hdr.SecondarySeq,
		Clean:        hdr.Clean(),
		LastCommit:   hdr.Timestamp.Format(time.RFC3339),
		Capacity:     a.Capacity(),
		Frontier:     a.Frontier(),
		Remaining:    a.Remaining(),
		Blocks:       len(blocks),
		Heapctl:      currentBuild().Version,
	}
	if chainErr != nil {
		info.ChainError = chainErr.Error()
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nImage Information:\n")
	printInfo("  File: %s\n", path)
	printInfo("  ID: %s\n", info.ID)
	printInfo("  Version: %d\n", info.Version)
	printInfo("  Sequence: %d/%d\n", info.PrimarySeq, info.SecondarySeq)
	printInfo("  Last commit: %s\n", info.LastCommit)
	printInfo("  Capacity: %d bytes\n", info.Capacity)
	printInfo("  Frontier: %#x (%d bytes free)\n", info.Frontier, info.Remaining)
	printInfo("  Blocks: %d\n", info.Blocks)

	printInfo("\nValidation:\n")
	if info.Clean {
		printInfo("  ✓ Last transaction committed\n")
	} else {
		printInfo("  ✗ Uncommitted transaction (sequence mismatch)\n")
	}
	if chainErr != nil {
		printInfo("  ✗ Chain: %s\n", chainErr)
	} else {
		printInfo("  ✓ Chain terminates\n")
	}
	return nil
}
