package testutils

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/draftwizard/internal/logging"
	"github.com/aretw0/draftwizard/pkg/adapters/file"
	"github.com/aretw0/draftwizard/pkg/adapters/memory"
	"github.com/aretw0/draftwizard/pkg/ports"
	"github.com/stretchr/testify/require"
)

// ErrInjected is returned by a RecordingStore while failing is switched on.
var ErrInjected = errors.New("injected store failure")

// SetupFileStore creates a temporary directory and a file store rooted in it.
// It returns the absolute path to the temp dir and the store.
func SetupFileStore(t *testing.T) (string, *file.Store) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	return absPath, file.New(absPath)
}

// RecordingStore wraps a DraftStore, counts writes and can be told to fail.
type RecordingStore struct {
	ports.DraftStore

	mu      sync.Mutex
	saves   int
	failing bool
}

// NewRecordingStore wraps an in-memory store.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{DraftStore: memory.NewStore()}
}

func (s *RecordingStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.saves++
	failing := s.failing
	s.mu.Unlock()

	if failing {
		return ErrInjected
	}
	return s.DraftStore.Save(ctx, key, data)
}

// Saves returns the number of Save calls, failed ones included.
func (s *RecordingStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// SetFailing toggles injected failures.
func (s *RecordingStore) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// FakeScheduler records scheduled calls and runs them only when told to.
type FakeScheduler struct {
	mu     sync.Mutex
	timers []*FakeTimer
}

// FakeTimer is a call registered on a FakeScheduler.
type FakeTimer struct {
	Delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// Stop cancels the call if it has not fired.
func (t *FakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Run invokes the call regardless of Stop, the way a runtime timer behaves
// when Stop arrives after the callback has started.
func (t *FakeTimer) Run() {
	t.fn()
}

// Schedule registers fn. The returned value satisfies persistence.Timer.
func (s *FakeScheduler) Schedule(delay time.Duration, fn func()) *FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &FakeTimer{Delay: delay, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Scheduled returns the number of calls ever registered.
func (s *FakeScheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// All returns every call ever registered, in scheduling order.
func (s *FakeScheduler) All() []*FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*FakeTimer(nil), s.timers...)
}

// Active returns the calls that are neither stopped nor fired.
func (s *FakeScheduler) Active() []*FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*FakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// FireAll runs every active call, as if the clock passed all their deadlines.
// It returns how many ran.
func (s *FakeScheduler) FireAll() int {
	active := s.Active()
	for _, t := range active {
		s.mu.Lock()
		t.fired = true
		s.mu.Unlock()
		t.fn()
	}
	return len(active)
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// NewTestLogger returns a debug logger writing through t.Log.
func NewTestLogger(t testing.TB) *slog.Logger {
	return logging.NewWithWriter(testWriter{t}, slog.LevelDebug, logging.FormatText)
}
