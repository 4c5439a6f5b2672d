package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/image"
	"github.com/joshuapare/heapkit/heap/kit"
)

// parseCommand reads one command in the form
//
//	alloc=<size>
//	search=<index>
//	edit=<index>:<hex data>[:truncate]
func parseCommand(s string) (kit.Command, error) {
	op, arg, ok := strings.Cut(s, "=")
	if !ok {
		return kit.Command{}, fmt.Errorf("command %q: want op=args", s)
	}

	switch op {
	case "alloc", "allocate":
		size, err := parseUint("size", arg)
		if err != nil {
			return kit.Command{}, err
		}
		return kit.Allocate(size), nil

	case "search":
		index, err := parseUint("index", arg)
		if err != nil {
			return kit.Command{}, err
		}
		return kit.Search(index), nil

	case "edit":
		parts := strings.Split(arg, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return kit.Command{}, fmt.Errorf("command %q: want edit=<index>:<hex>[:truncate]", s)
		}
		index, err := parseUint("index", parts[0])
		if err != nil {
			return kit.Command{}, err
		}
		data, err := hex.DecodeString(parts[1])
		if err != nil {
			return kit.Command{}, fmt.Errorf("command %q: data: %w", s, err)
		}
		truncate := false
		if len(parts) == 3 {
			if parts[2] != "truncate" {
				return kit.Command{}, fmt.Errorf("command %q: unknown edit flag %q", s, parts[2])
			}
			truncate = true
		}
		return kit.Edit(index, data, truncate), nil

	default:
		return kit.Command{}, fmt.Errorf("command %q: unknown op %q", s, op)
	}
}

func parseCommands(args []string) ([]kit.Command, error) {
	cmds := make([]kit.Command, 0, len(args))
	for _, a := range args {
		c, err := parseCommand(a)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

type resultJSON struct {
	Command string `json:"command"`
	Ptr     string `json:"ptr,omitempty"`
	Length  uint64 `json:"length"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

type reportJSON struct {
	Skipped bool         `json:"skipped"`
	Results []resultJSON `json:"results"`
}

func toReportJSON(rep *kit.Report) reportJSON {
	out := reportJSON{Skipped: rep.Skipped, Results: make([]resultJSON, 0, len(rep.Results))}
	for _, r := range rep.Results {
		rj := resultJSON{Command: r.Command.String(), Length: r.Length}
		if !r.Ref.IsNull() {
			rj.Ptr = r.Ref.String()
		}
		if r.Command.Op == kit.OpEdit {
			rj.Status = r.Edit.Status.String()
		}
		if r.Err != nil {
			rj.Error = r.Err.Error()
		}
		out.Results = append(out.Results, rj)
	}
	return out
}

// printReport writes a batch report in text or JSON.
func printReport(rep *kit.Report) error {
	if jsonOut {
		return printJSON(toReportJSON(rep))
	}
	if rep.Skipped {
		printInfo("Batch skipped: more than the command limit\n")
		return nil
	}
	for i, r := range rep.Results {
		switch r.Command.Op {
		case kit.OpAllocate:
			if r.Err != nil {
				printInfo("%d. %s: %v\n", i+1, r.Command, r.Err)
			} else {
				printInfo("%d. %s: ptr %s\n", i+1, r.Command, r.Ref)
			}
		case kit.OpEdit:
			printInfo("%d. %s: %s (block length %d at %s)\n", i+1, r.Command, r.Edit.Status, r.Length, r.Ref)
		case kit.OpSearch:
			if r.Ref.IsNull() {
				printInfo("%d. %s: not found\n", i+1, r.Command)
			} else {
				printInfo("%d. %s: length %d, ptr %s\n", i+1, r.Command, r.Length, r.Ref)
			}
		}
	}
	return nil
}

// runCommands executes cmds against the image at path inside one
// transaction and prints the report.
func runCommands(path string, cmds []kit.Command) error {
	var rep *kit.Report
	err := update(path, func(img *image.Image) error {
		rep = kit.New(img.Arena(), kit.Options{}).RunBatch(cmds)
		return nil
	})
	if err != nil {
		return err
	}
	return printReport(rep)
}

// searchOnly resolves index without opening a transaction.
func searchOnly(path string, index uint64) (uint64, arena.Ref, error) {
	img, err := openImage(path, true)
	if err != nil {
		return 0, arena.NullRef, err
	}
	defer img.Close()
	length, ref := img.Arena().Search(index)
	return length, ref, nil
}
