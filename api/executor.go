package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"ttdmap/command"
	"ttdmap/game"
	"ttdmap/tile"
)

var (
	ErrStopped = errors.New("executor stopped")
	ErrBroken  = errors.New("world is inconsistent after a failed request")
)

// LayoutChange is one track layout notification raised by a command.
type LayoutChange struct {
	Tile  tile.Index `json:"tile"`
	Track tile.Track `json:"track"`
}

// Update is what changed while one request ran.
type Update struct {
	Event  string         `json:"event"`
	Dirty  []tile.Index   `json:"dirty,omitempty"`
	Layout []LayoutChange `json:"layout,omitempty"`
}

// Publisher receives the updates of the executor.
type Publisher interface {
	Publish(u Update)
}

type request struct {
	fn   func(w *game.World) error
	done chan error
}

// Executor is the single writer of a world.
type Executor struct {
	w      *game.World
	reqs   chan request
	pub    Publisher
	log    *slog.Logger
	layout []LayoutChange
	quit   chan struct{}
	// broken is set once a request panicked; the world may be half mutated.
	broken error
}

func NewExecutor(w *game.World, pub Publisher, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	e := &Executor{
		w:    w,
		reqs: make(chan request),
		pub:  pub,
		log:  log.With("game", w.ID.String()),
		quit: make(chan struct{}),
	}
	w.AddObserver(game.LayoutObserverFunc(func(t tile.Index, track tile.Track) {
		e.layout = append(e.layout, LayoutChange{t, track})
	}))
	return e
}

// Run serves requests until ctx is done.
func (e *Executor) Run(ctx context.Context) {
	defer close(e.quit)
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-e.reqs:
			r.done <- e.run(r.fn)
		}
	}
}

func (e *Executor) run(fn func(w *game.World) error) (err error) {
	if e.broken != nil {
		return e.broken
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("request panicked", "panic", r, "stack", string(debug.Stack()))
			e.broken = fmt.Errorf("%w: %v", ErrBroken, r)
			err = e.broken
		}
		e.flush()
	}()
	return fn(e.w)
}

func (e *Executor) flush() {
	u := Update{Event: "changes", Dirty: e.w.TakeDirty(), Layout: e.layout}
	e.layout = nil
	if e.pub != nil && (len(u.Dirty) > 0 || len(u.Layout) > 0) {
		e.pub.Publish(u)
	}
}

// Do runs fn on the executor goroutine and waits for it.
func (e *Executor) Do(ctx context.Context, fn func(w *game.World) error) error {
	r := request{fn: fn, done: make(chan error, 1)}
	select {
	case e.reqs <- r:
	case <-e.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-r.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CommandRequest names a command and its parameters.
type CommandRequest struct {
	Command string     `json:"command"`
	Tile    tile.Index `json:"tile"`
	P1      uint32     `json:"p1"`
	P2      uint32     `json:"p2"`
	Company tile.Owner `json:"company"`
	Exec    bool       `json:"exec"`
	Text    string     `json:"text,omitempty"`
}

type CommandResult struct {
	Command string     `json:"command"`
	Expense uint8      `json:"expense"`
	Cost    game.Money `json:"cost"`
	Error   string     `json:"error,omitempty"`
}

var ErrUnknownCommand = errors.New("unknown command")

// Command runs one command for the requested company.
func (e *Executor) Command(ctx context.Context, req CommandRequest) (CommandResult, error) {
	id, ok := command.ParseID(req.Command)
	if !ok {
		return CommandResult{}, fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command)
	}
	var res CommandResult
	err := e.Do(ctx, func(w *game.World) error {
		if req.Company.IsCompany() && w.Company(req.Company) == nil {
			return fmt.Errorf("%w: company %d does not exist", errBadRequest, req.Company)
		}
		var flags command.Flags
		if req.Exec {
			flags |= command.Exec
		}
		prev := w.CurrentCompany
		w.CurrentCompany = req.Company
		defer func() { w.CurrentCompany = prev }()

		cost := command.DoCommand(w, req.Tile, req.P1, req.P2, flags, id, req.Text)
		res = CommandResult{Command: id.String(), Expense: uint8(cost.Expense), Cost: cost.Cost}
		if cost.Failed() {
			res.Error = cost.Err.Error()
		}
		e.log.Info("command", "command", id, "tile", req.Tile, "company", req.Company, "exec", req.Exec, "cost", cost.Cost, "err", cost.Err)
		return nil
	})
	return res, err
}
