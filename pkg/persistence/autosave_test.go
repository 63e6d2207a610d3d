package persistence_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/draftwizard/internal/testutils"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// liveDraft is a minimal Source guarding a single draft.
type liveDraft struct {
	mu sync.Mutex
	d  *domain.CampaignDraft
}

func (l *liveDraft) Snapshot() *domain.CampaignDraft {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.d.Clone()
}

func (l *liveDraft) Saved(saved *domain.CampaignDraft) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.d.ID = saved.ID
	l.d.LastSaved = saved.LastSaved
}

func (l *liveDraft) edit(fn func(d *domain.CampaignDraft)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.d)
}

func fakeScheduler(fs *testutils.FakeScheduler) persistence.Scheduler {
	return persistence.SchedulerFunc(func(delay time.Duration, fn func()) persistence.Timer {
		return fs.Schedule(delay, fn)
	})
}

func TestAutosaver_CoalescesMutations(t *testing.T) {
	store := testutils.NewRecordingStore()
	ctrl := persistence.NewController(store)
	live := &liveDraft{d: domain.NewDraft()}
	fs := &testutils.FakeScheduler{}

	a := persistence.NewAutosaver(ctrl, live,
		persistence.WithScheduler(fakeScheduler(fs)),
		persistence.WithDebounce(3*time.Second),
	)

	for _, name := range []string{"A", "Ac", "Acm", "Acme"} {
		live.edit(func(d *domain.CampaignDraft) { d.Profile.CompanyName = name })
		a.Touch()
	}

	assert.Equal(t, 4, fs.Scheduled())
	require.Len(t, fs.Active(), 1, "each touch cancels the previous timer")
	assert.Equal(t, 3*time.Second, fs.Active()[0].Delay)
	assert.True(t, a.Pending())

	assert.Equal(t, 1, fs.FireAll())
	assert.Equal(t, 1, store.Saves())
	assert.False(t, a.Pending())

	id := live.Snapshot().ID
	require.NotEmpty(t, id)
	assert.Equal(t, "Acme", ctrl.Load(context.Background(), id).Profile.CompanyName)
}

func TestAutosaver_FailureIsSwallowedAndRetried(t *testing.T) {
	store := testutils.NewRecordingStore()
	ctrl := persistence.NewController(store)
	live := &liveDraft{d: domain.NewDraft()}
	fs := &testutils.FakeScheduler{}
	a := persistence.NewAutosaver(ctrl, live, persistence.WithScheduler(fakeScheduler(fs)))

	store.SetFailing(true)
	live.edit(func(d *domain.CampaignDraft) { d.Content.Headline = "first" })
	a.Touch()
	fs.FireAll()

	assert.Empty(t, live.Snapshot().ID, "failed write leaves the in-memory draft untouched")
	assert.Equal(t, "first", live.Snapshot().Content.Headline)

	store.SetFailing(false)
	live.edit(func(d *domain.CampaignDraft) { d.Content.Headline = "second" })
	a.Touch()
	fs.FireAll()

	id := live.Snapshot().ID
	require.NotEmpty(t, id)
	assert.Equal(t, "second", ctrl.Load(context.Background(), id).Content.Headline)
	assert.Equal(t, 2, store.Saves())
}

func TestAutosaver_FlushCancelsPending(t *testing.T) {
	store := testutils.NewRecordingStore()
	ctrl := persistence.NewController(store)
	live := &liveDraft{d: domain.NewDraft()}
	fs := &testutils.FakeScheduler{}
	a := persistence.NewAutosaver(ctrl, live, persistence.WithScheduler(fakeScheduler(fs)))

	a.Touch()
	require.NoError(t, a.Flush(context.Background()))

	assert.Equal(t, 1, store.Saves())
	assert.Empty(t, fs.Active())
	assert.Equal(t, 0, fs.FireAll())

	store.SetFailing(true)
	assert.ErrorIs(t, a.Flush(context.Background()), testutils.ErrInjected)
}

func TestAutosaver_StopIgnoresLaterTouches(t *testing.T) {
	store := testutils.NewRecordingStore()
	live := &liveDraft{d: domain.NewDraft()}
	fs := &testutils.FakeScheduler{}
	a := persistence.NewAutosaver(persistence.NewController(store), live, persistence.WithScheduler(fakeScheduler(fs)))

	a.Touch()
	a.Stop()
	a.Touch()

	assert.Empty(t, fs.Active())
	assert.Equal(t, 1, fs.Scheduled())
	assert.Equal(t, 0, store.Saves())
}

func TestAutosaver_Backstop(t *testing.T) {
	store := testutils.NewRecordingStore()
	d := domain.NewDraft()
	d.ID = "backstop"
	live := &liveDraft{d: d}
	a := persistence.NewAutosaver(persistence.NewController(store), live,
		persistence.WithBackstop(50*time.Millisecond),
	)

	require.NoError(t, a.Start())
	require.NoError(t, a.Start())
	defer a.Stop()

	assert.Eventually(t, func() bool { return store.Saves() >= 2 }, 2*time.Second, 10*time.Millisecond,
		"backstop should save without any mutation")

	a.Stop()
	n := store.Saves()
	time.Sleep(150 * time.Millisecond)
	assert.LessOrEqual(t, store.Saves(), n+1, "at most one in-flight save completes after Stop")
}

func TestAutosaver_RealTimerDebounce(t *testing.T) {
	store := testutils.NewRecordingStore()
	live := &liveDraft{d: domain.NewDraft()}
	a := persistence.NewAutosaver(persistence.NewController(store), live,
		persistence.WithDebounce(30*time.Millisecond),
		persistence.WithBackstop(0),
	)
	defer a.Stop()

	for i := 0; i < 5; i++ {
		a.Touch()
	}

	assert.Eventually(t, func() bool { return store.Saves() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, store.Saves())
}

func TestAutosaver_BackstopSkipsPristineDraft(t *testing.T) {
	store := testutils.NewRecordingStore()
	live := &liveDraft{d: domain.NewDraft()}
	a := persistence.NewAutosaver(persistence.NewController(store), live,
		persistence.WithBackstop(20*time.Millisecond),
	)
	require.NoError(t, a.Start())
	defer a.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, store.Saves())
}

func TestAutosaver_CancelDropsPending(t *testing.T) {
	store := testutils.NewRecordingStore()
	live := &liveDraft{d: domain.NewDraft()}
	fs := &testutils.FakeScheduler{}
	a := persistence.NewAutosaver(persistence.NewController(store), live, persistence.WithScheduler(fakeScheduler(fs)))

	a.Touch()
	a.Cancel()
	assert.False(t, a.Pending())
	assert.Equal(t, 0, fs.FireAll())

	a.Touch()
	assert.True(t, a.Pending(), "Cancel does not stop the autosaver")
}

func TestAutosaver_LateCallbackKeepsNewerTimer(t *testing.T) {
	store := testutils.NewRecordingStore()
	ctrl := persistence.NewController(store)
	live := &liveDraft{d: domain.NewDraft()}
	fs := &testutils.FakeScheduler{}
	a := persistence.NewAutosaver(ctrl, live, persistence.WithScheduler(fakeScheduler(fs)))

	live.edit(func(d *domain.CampaignDraft) { d.Profile.CompanyName = "A" })
	a.Touch()
	live.edit(func(d *domain.CampaignDraft) { d.Profile.CompanyName = "Acme" })
	a.Touch()

	// The first timer fired before the second Touch could stop it.
	fs.All()[0].Run()
	assert.Equal(t, 0, store.Saves(), "superseded callback writes nothing")
	assert.True(t, a.Pending(), "second save is still scheduled")

	a.Touch()
	active := fs.Active()
	require.Len(t, active, 1, "the second timer was cancelled by the next touch")
	assert.Same(t, fs.All()[2], active[0])

	assert.Equal(t, 1, fs.FireAll())
	assert.Equal(t, 1, store.Saves())
	assert.False(t, a.Pending())
}

func TestAutosaver_CallbackAfterCancelWritesNothing(t *testing.T) {
	store := testutils.NewRecordingStore()
	live := &liveDraft{d: domain.NewDraft()}
	fs := &testutils.FakeScheduler{}
	a := persistence.NewAutosaver(persistence.NewController(store), live, persistence.WithScheduler(fakeScheduler(fs)))

	live.edit(func(d *domain.CampaignDraft) { d.Profile.CompanyName = "Acme" })
	a.Touch()
	timer := fs.All()[0]

	a.Cancel()
	timer.Run()
	assert.Equal(t, 0, store.Saves())

	require.NoError(t, a.Flush(context.Background()))
	a.Touch()
	require.NoError(t, a.Flush(context.Background()))
	fs.All()[1].Run()
	assert.Equal(t, 2, store.Saves(), "a flush supersedes the scheduled save")
}
