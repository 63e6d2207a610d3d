package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/draftwizard/internal/logging"
	"github.com/aretw0/draftwizard/internal/runtime"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/persistence"
)

// Listener is notified after a mutation changed the draft.
type Listener func(diff *domain.DraftDiff)

type listenerEntry struct {
	id int
	fn Listener
}

// Session owns one in-progress draft. All edits and cursor moves go through
// it; it serializes them, notifies listeners and schedules autosaves.
// Mutations never return errors: a refused move reports false.
type Session struct {
	mu    sync.Mutex
	draft *domain.CampaignDraft

	ctrl     *persistence.Controller
	engine   *runtime.Engine
	autosave *persistence.Autosaver

	listeners []listenerEntry
	nextID    int

	logger       *slog.Logger
	now          func() time.Time
	engineOpts   []runtime.EngineOption
	autosaveOpts []persistence.AutosaveOption
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp edits.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithLifecycleHooks reports transitions to hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.engineOpts = append(s.engineOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithEngineOptions passes options to the navigation engine.
func WithEngineOptions(opts ...runtime.EngineOption) Option {
	return func(s *Session) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithAutosave passes options to the autosaver.
func WithAutosave(opts ...persistence.AutosaveOption) Option {
	return func(s *Session) {
		s.autosaveOpts = append(s.autosaveOpts, opts...)
	}
}

// New starts a session on a fresh draft.
func New(ctrl *persistence.Controller, opts ...Option) *Session {
	return start(ctrl, domain.NewDraft(), opts)
}

// Open starts a session on the draft stored under id, or on a fresh draft if
// there is none.
func Open(ctx context.Context, ctrl *persistence.Controller, id string, opts ...Option) *Session {
	return start(ctrl, ctrl.Load(ctx, id), opts)
}

// Resume starts a session on a draft the caller already loaded. The session
// takes ownership of d.
func Resume(ctrl *persistence.Controller, d *domain.CampaignDraft, opts ...Option) *Session {
	if d == nil {
		d = domain.NewDraft()
	}
	return start(ctrl, d, opts)
}

func start(ctrl *persistence.Controller, d *domain.CampaignDraft, opts []Option) *Session {
	s := &Session{
		draft:  d,
		ctrl:   ctrl,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = runtime.NewEngine(append([]runtime.EngineOption{runtime.WithLogger(s.logger)}, s.engineOpts...)...)
	s.engine.Normalize(s.draft)

	s.autosave = persistence.NewAutosaver(ctrl, s,
		append([]persistence.AutosaveOption{persistence.WithAutosaveLogger(s.logger)}, s.autosaveOpts...)...)
	if err := s.autosave.Start(); err != nil {
		s.logger.Error("autosave backstop disabled", "err", err)
	}
	return s
}

// ID returns the draft id, empty until the first save.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.ID
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() *domain.CampaignDraft {
	return s.Snapshot()
}

// Snapshot returns a copy of the current draft for the autosaver.
func (s *Session) Snapshot() *domain.CampaignDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Saved adopts the id and timestamp of a successful write.
func (s *Session) Saved(saved *domain.CampaignDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.ID != "" && s.draft.ID != saved.ID {
		return
	}
	s.draft.ID = saved.ID
	s.draft.LastSaved = saved.LastSaved
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(l listenerEntry) bool { return l.id == id })
	}
}

// UpdateProfile merges p into the profile.
func (s *Session) UpdateProfile(p domain.ProfilePatch) {
	s.edit(func(d *domain.CampaignDraft) { d.ApplyProfile(p) })
}

// UpdateChannels merges p into the channel slots.
func (s *Session) UpdateChannels(p domain.ChannelsPatch) {
	s.edit(func(d *domain.CampaignDraft) { d.ApplyChannels(p) })
}

// UpdateContent merges p into the ad content.
func (s *Session) UpdateContent(p domain.ContentPatch) {
	s.edit(func(d *domain.CampaignDraft) { d.ApplyContent(p) })
}

// UpdateImage replaces the image. nil clears it.
func (s *Session) UpdateImage(img *domain.ImageRef) {
	s.edit(func(d *domain.CampaignDraft) { d.SetImage(img) })
}

// UpdateBudget merges p into the budget.
func (s *Session) UpdateBudget(p domain.BudgetPatch) {
	s.edit(func(d *domain.CampaignDraft) { d.ApplyBudget(p) })
}

// ToggleTargetingArea adds area if absent and removes it otherwise.
func (s *Session) ToggleTargetingArea(area string) {
	s.edit(func(d *domain.CampaignDraft) {
		d.Profile.TargetingAreas = domain.ToggleArea(d.Profile.TargetingAreas, area)
	})
}

// ApplyGeneratedContent writes a copywriting result into the content section.
func (s *Session) ApplyGeneratedContent(g domain.GeneratedContent) {
	s.UpdateContent(g.Patch())
}

// ApplyExportedImage writes a design export into the image slot.
func (s *Session) ApplyExportedImage(img domain.ExportedImage) {
	s.UpdateImage(img.Ref())
}

// ApplyChannelLink merges a connection result into the named slot.
func (s *Session) ApplyChannelLink(name domain.ChannelName, l domain.ChannelLink) {
	s.UpdateChannels(l.Patch(name))
}

// AdvanceStep moves the outer cursor forward if the current step is valid.
func (s *Session) AdvanceStep(ctx context.Context) bool {
	return s.navigate(func(d *domain.CampaignDraft) bool { return s.engine.Advance(ctx, d, s.engine.Outer()) })
}

// RetreatStep moves the outer cursor back; it never goes below 1.
func (s *Session) RetreatStep(ctx context.Context) bool {
	return s.navigate(func(d *domain.CampaignDraft) bool { return s.engine.Retreat(ctx, d, s.engine.Outer()) })
}

// JumpToStep moves the outer cursor to n: any earlier step, or the next one
// when the current step is valid.
func (s *Session) JumpToStep(ctx context.Context, n int) bool {
	return s.navigate(func(d *domain.CampaignDraft) bool { return s.engine.JumpTo(ctx, d, s.engine.Outer(), n) })
}

// SetStep writes the outer cursor directly, bypassing gates.
func (s *Session) SetStep(ctx context.Context, n int) bool {
	return s.navigate(func(d *domain.CampaignDraft) bool { return s.engine.Set(ctx, d, s.engine.Outer(), n) })
}

// AdvanceSubStep moves the profile cursor forward if the current page is valid.
func (s *Session) AdvanceSubStep(ctx context.Context) bool {
	return s.navigate(func(d *domain.CampaignDraft) bool { return s.engine.Advance(ctx, d, runtime.ProfileFlow) })
}

// RetreatSubStep moves the profile cursor back.
func (s *Session) RetreatSubStep(ctx context.Context) bool {
	return s.navigate(func(d *domain.CampaignDraft) bool { return s.engine.Retreat(ctx, d, runtime.ProfileFlow) })
}

// JumpToSubStep moves the profile cursor to n under the same rule as JumpToStep.
func (s *Session) JumpToSubStep(ctx context.Context, n int) bool {
	return s.navigate(func(d *domain.CampaignDraft) bool { return s.engine.JumpTo(ctx, d, runtime.ProfileFlow, n) })
}

// SetSubStep writes the profile cursor directly, bypassing gates.
func (s *Session) SetSubStep(ctx context.Context, n int) bool {
	return s.navigate(func(d *domain.CampaignDraft) bool { return s.engine.Set(ctx, d, runtime.ProfileFlow, n) })
}

// MarkProfileComplete confirms the profile wizard. See runtime.Engine.MarkProfileComplete.
func (s *Session) MarkProfileComplete(ctx context.Context) bool {
	return s.navigate(func(d *domain.CampaignDraft) bool { return s.engine.MarkProfileComplete(ctx, d) })
}

// Reset discards the draft and starts over on a fresh one. The stored record
// is left alone.
func (s *Session) Reset() {
	s.autosave.Cancel()
	s.replace(domain.NewDraft())
}

// Save writes the draft now and returns the outcome.
func (s *Session) Save(ctx context.Context) error {
	return s.autosave.Flush(ctx)
}

// Delete removes the stored record and resets the session to a fresh draft.
func (s *Session) Delete(ctx context.Context) error {
	s.autosave.Cancel()
	id := s.ID()
	s.replace(domain.NewDraft())
	if id == "" {
		return nil
	}
	return s.ctrl.Delete(ctx, id)
}

// Close stops autosaving. Pending edits that were not flushed are dropped.
func (s *Session) Close() {
	s.autosave.Stop()
}

// edit applies a data mutation, stamps it and schedules a save.
func (s *Session) edit(fn func(d *domain.CampaignDraft)) {
	s.mutate(func(d *domain.CampaignDraft) bool {
		fn(d)
		d.Touch(s.now())
		return true
	})
}

// navigate applies a cursor operation; refusals change nothing.
func (s *Session) navigate(fn func(d *domain.CampaignDraft) bool) bool {
	return s.mutate(fn)
}

func (s *Session) mutate(fn func(d *domain.CampaignDraft) bool) bool {
	s.mu.Lock()
	before := s.draft.Clone()
	changed := fn(s.draft)
	var diff *domain.DraftDiff
	if changed {
		diff = domain.Diff(before, s.draft.Clone())
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if !changed {
		return false
	}
	s.autosave.Touch()
	notify(listeners, diff)
	return true
}

func (s *Session) replace(d *domain.CampaignDraft) {
	s.mu.Lock()
	before := s.draft
	s.draft = d
	diff := domain.Diff(before, d.Clone())
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, diff)
}

func notify(listeners []listenerEntry, diff *domain.DraftDiff) {
	if diff == nil {
		return
	}
	for _, l := range listeners {
		l.fn(diff)
	}
}
