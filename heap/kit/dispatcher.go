// Package kit runs batches of arena commands.
//
// A batch is a short ordered list of Allocate, Edit and Search commands. The
// Dispatcher executes it against one arena as a single critical section and
// reports a tagged Result per command. Rejected commands never abort the
// batch, and an oversized batch is skipped in full without failing.
package kit

import (
	"log/slog"
	"sync"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Result is the outcome of one executed command.
type Result struct {
	Command Command

	// Ref is the allocated payload (OpAllocate) or the resolved block
	// (OpEdit, OpSearch). NullRef when allocation failed or the chain ended.
	Ref arena.Ref

	// Length is the resolved block length for OpEdit and OpSearch.
	Length uint64

	// Edit holds the editor's status for OpEdit.
	Edit arena.EditResult

	// Err is set when an Allocate ran out of space or an Edit was rejected.
	Err error
}

// OK reports whether the command completed without a rejection.
func (r Result) OK() bool { return r.Err == nil }

// Report collects the results of one batch.
type Report struct {
	Skipped bool // batch exceeded the command cap; nothing ran
	Results []Result
}

// Options configures a Dispatcher.
type Options struct {
	// Logger receives per-command diagnostics. Default: logger.L.
	Logger *slog.Logger

	// MaxCommands caps the batch length. Default: format.MaxBatchCommands.
	MaxCommands int
}

// Dispatcher executes batches against one arena.
type Dispatcher struct {
	mu    sync.Mutex
	arena *arena.Arena
	log   *slog.Logger
	max   int
}

// New returns a Dispatcher bound to a.
func New(a *arena.Arena, opts Options) *Dispatcher {
	if opts.MaxCommands <= 0 {
		opts.MaxCommands = format.MaxBatchCommands
	}
	return &Dispatcher{
		arena: a,
		log:   logger.Or(opts.Logger),
		max:   opts.MaxCommands,
	}
}

// Arena returns the arena the dispatcher writes to.
func (d *Dispatcher) Arena() *arena.Arena { return d.arena }

// Run decodes a wire-encoded batch and executes it. Only a malformed
// encoding is an error; command rejections are reported in the Report.
func (d *Dispatcher) Run(data []byte) (*Report, error) {
	cmds, err := DecodeBatch(data)
	if err != nil {
		return nil, err
	}
	return d.RunBatch(cmds), nil
}

// RunBatch executes cmds in order. A batch longer than the command cap is
// skipped entirely and reported with Skipped set.
func (d *Dispatcher) RunBatch(cmds []Command) *Report {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(cmds) > d.max {
		d.log.Warn("too many commands, skip", "count", len(cmds), "max", d.max)
		return &Report{Skipped: true}
	}

	rep := &Report{Results: make([]Result, 0, len(cmds))}
	for _, c := range cmds {
		rep.Results = append(rep.Results, d.exec(c))
	}
	return rep
}

func (d *Dispatcher) exec(c Command) Result {
	res := Result{Command: c}
	a := d.arena

	switch c.Op {
	case OpAllocate:
		ref, err := a.Alloc(c.Size)
		res.Ref, res.Err = ref, err
		if err != nil {
			d.log.Debug("allocate failed", "size", c.Size, "error", err)
		} else {
			d.log.Debug("allocate", "size", c.Size, "ptr", ref.String())
		}

	case OpEdit:
		res.Length, res.Ref = a.Search(c.Index)
		res.Edit = a.Edit(res.Ref, c.Data, c.Truncate)
		res.Err = res.Edit.Err()
		if res.Err != nil {
			d.log.Debug("edit rejected", "index", c.Index, "status", res.Edit.Status.String())
		}

	case OpSearch:
		res.Length, res.Ref = a.Search(c.Index)
		d.log.Info("search", "index", c.Index, "length", res.Length, "ptr", res.Ref.String())
	}
	return res
}
