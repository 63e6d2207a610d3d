package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/draftwizard/internal/logging"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/go-co-op/gocron"
)

// Autosave defaults.
const (
	DefaultDebounce = 2 * time.Second
	DefaultBackstop = 30 * time.Second
)

// Timer is a handle to a scheduled call.
type Timer interface {
	// Stop cancels the call if it has not started yet.
	Stop() bool
}

// Scheduler runs fn once after delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Timer
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(delay time.Duration, fn func()) Timer

func (f SchedulerFunc) Schedule(delay time.Duration, fn func()) Timer {
	return f(delay, fn)
}

// RealScheduler schedules on the runtime timer heap.
var RealScheduler Scheduler = SchedulerFunc(func(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
})

// Source is the live draft an Autosaver persists.
type Source interface {
	// Snapshot returns a copy of the current draft, taken under the owner's lock.
	Snapshot() *domain.CampaignDraft
	// Saved is called after a successful write with the written draft.
	Saved(*domain.CampaignDraft)
}

// Autosaver coalesces mutations into debounced writes and runs a periodic
// backstop save. Failures are logged and never reach the mutating caller.
type Autosaver struct {
	ctrl   *Controller
	source Source

	debounce  time.Duration
	backstop  time.Duration
	scheduler Scheduler
	logger    *slog.Logger

	mu      sync.Mutex
	pending Timer
	// gen identifies the scheduled save. Touch, Flush and Cancel bump it, so
	// a timer callback that already started cannot act for a newer one.
	gen     uint64
	cron    *gocron.Scheduler
	stopped bool
	touched bool

	// writeMu keeps at most one write in flight so a first save cannot
	// race another into assigning two ids. It is taken before mu.
	writeMu sync.Mutex
}

// AutosaveOption configures the Autosaver.
type AutosaveOption func(*Autosaver)

// WithDebounce sets the quiet period after the last mutation.
func WithDebounce(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		if d > 0 {
			a.debounce = d
		}
	}
}

// WithBackstop sets the periodic save interval. Zero disables the backstop.
func WithBackstop(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		a.backstop = d
	}
}

// WithScheduler replaces the debounce timer source.
func WithScheduler(s Scheduler) AutosaveOption {
	return func(a *Autosaver) {
		a.scheduler = s
	}
}

// WithAutosaveLogger sets the logger.
func WithAutosaveLogger(logger *slog.Logger) AutosaveOption {
	return func(a *Autosaver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAutosaver creates an Autosaver writing source through ctrl.
func NewAutosaver(ctrl *Controller, source Source, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		ctrl:      ctrl,
		source:    source,
		debounce:  DefaultDebounce,
		backstop:  DefaultBackstop,
		scheduler: RealScheduler,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Touch records a mutation: any scheduled save is cancelled and a new one is
// scheduled after the debounce delay.
func (a *Autosaver) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}
	if a.pending != nil {
		a.pending.Stop()
	}
	a.touched = true
	a.gen++
	gen := a.gen
	a.pending = a.scheduler.Schedule(a.debounce, func() { a.fire(gen) })
}

// fire runs the debounced save scheduled as generation gen. It does nothing
// once a later Touch, Flush or Cancel has superseded it.
func (a *Autosaver) fire(gen uint64) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	if gen != a.gen || a.stopped {
		a.mu.Unlock()
		return
	}
	a.pending = nil
	a.mu.Unlock()

	a.write(context.Background(), TriggerDebounce)
}

// Start launches the backstop scheduler. Calling Start twice is a no-op.
func (a *Autosaver) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cron != nil || a.backstop <= 0 || a.stopped {
		return nil
	}

	cron := gocron.NewScheduler(time.Local)
	cron.SingletonModeAll()
	cron.WaitForScheduleAll()
	if _, err := cron.Every(a.backstop).Do(func() {
		a.run(context.Background(), TriggerBackstop)
	}); err != nil {
		return fmt.Errorf("failed to schedule autosave backstop: %w", err)
	}
	cron.StartAsync()
	a.cron = cron

	a.logger.Debug("autosave backstop started", "interval", a.backstop)
	return nil
}

// Flush cancels any scheduled save and writes now. Unlike the timers it
// returns the error, for callers that asked for the save explicitly.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	a.gen++
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	a.mu.Unlock()

	return a.run(ctx, TriggerFlush)
}

// Cancel drops the scheduled save and waits for a write in progress, so the
// caller can replace or delete the record without a stale write landing
// afterwards. A debounce callback that has already started finds its
// generation superseded and writes nothing. The backstop keeps running.
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	a.gen++
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	a.touched = false
	a.mu.Unlock()

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
}

// Stop cancels the pending save and the backstop. A write already in
// progress runs to completion.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	a.stopped = true
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	cron := a.cron
	a.cron = nil
	a.mu.Unlock()

	// A running backstop job needs a.mu, so the scheduler is stopped outside it.
	if cron != nil {
		cron.Stop()
	}
}

// Pending reports whether a debounced save is scheduled.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

func (a *Autosaver) run(ctx context.Context, trigger string) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return a.write(ctx, trigger)
}

// write saves a snapshot of the source. The caller holds writeMu.
func (a *Autosaver) write(ctx context.Context, trigger string) error {
	snap := a.source.Snapshot()
	if trigger == TriggerBackstop && snap.ID == "" && !a.wasTouched() {
		// Never-edited draft: nothing worth a record yet.
		return nil
	}
	saved, err := a.ctrl.save(ctx, snap, trigger)
	if err != nil {
		a.logger.Error("autosave failed", "draft_id", snap.ID, "trigger", trigger, "err", err)
		return err
	}
	a.source.Saved(saved)
	return nil
}

func (a *Autosaver) wasTouched() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.touched
}
