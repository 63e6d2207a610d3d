package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/draftwizard/internal/logging"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/ports"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// IDLength is the length of generated draft ids.
const IDLength = 12

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Save triggers reported on SaveEvent.
const (
	TriggerExplicit = "explicit"
	TriggerDebounce = "debounce"
	TriggerBackstop = "backstop"
	TriggerFlush    = "flush"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Controller reads and writes draft records through a DraftStore.
// Writes to the same key are serialized; unused locks are garbage collected
// by reference counting.
type Controller struct {
	store ports.DraftStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
	newID   func() (string, error)
}

// Option configures the Controller.
type Option func(*Controller)

// WithLocker enables distributed locking around writes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *Controller) {
		c.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		if ttl > 0 {
			c.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers save hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithClock overrides the time source used for LastSaved.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIDGenerator overrides nanoid id assignment.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(c *Controller) {
		c.newID = gen
	}
}

// NewController creates a Controller over the given store.
func NewController(store ports.DraftStore, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
		newID: func() (string, error) {
			return gonanoid.Generate(idAlphabet, IDLength)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the underlying draft store.
func (c *Controller) Store() ports.DraftStore {
	return c.store
}

// Save assigns an id if the draft has none, stamps LastSaved and writes the
// full record under draft-<id>. The argument is not modified; the returned
// draft is the one that was written.
func (c *Controller) Save(ctx context.Context, d *domain.CampaignDraft) (*domain.CampaignDraft, error) {
	return c.save(ctx, d, TriggerExplicit)
}

func (c *Controller) save(ctx context.Context, d *domain.CampaignDraft, trigger string) (*domain.CampaignDraft, error) {
	start := c.now()
	out := d.Clone()
	if out.Version == 0 {
		out.Version = domain.SchemaVersion
	}

	err := c.write(ctx, out)
	ev := &domain.SaveEvent{
		EventBase: domain.EventBase{Timestamp: c.now(), Type: domain.EventSave, DraftID: out.ID},
		Trigger:   trigger,
		Elapsed:   c.now().Sub(start),
		Err:       err,
	}
	if err != nil {
		ev.Type = domain.EventSaveError
		if c.hooks.OnSaveError != nil {
			c.hooks.OnSaveError(ctx, ev)
		}
		return nil, err
	}

	c.logger.Debug("draft saved", "draft_id", out.ID, "trigger", trigger)
	if c.hooks.OnSave != nil {
		c.hooks.OnSave(ctx, ev)
	}
	return out, nil
}

func (c *Controller) write(ctx context.Context, d *domain.CampaignDraft) error {
	if d.ID == "" {
		id, err := c.newID()
		if err != nil {
			return fmt.Errorf("failed to generate draft id: %w", err)
		}
		d.ID = id
	}
	d.Touch(c.now())

	data, err := domain.Marshal(d)
	if err != nil {
		return err
	}

	key := domain.RecordKey(d.ID)
	return c.WithLock(ctx, key, func(ctx context.Context) error {
		if err := c.store.Save(ctx, key, data); err != nil {
			return fmt.Errorf("failed to save draft %s: %w", d.ID, err)
		}
		return nil
	})
}

// Get reads a record and reports why it could not, for callers that need to
// tell a missing draft from a broken one.
func (c *Controller) Get(ctx context.Context, id string) (*domain.CampaignDraft, error) {
	if id == "" {
		return nil, domain.ErrEmptyID
	}
	data, err := c.store.Load(ctx, domain.RecordKey(id))
	if err != nil {
		return nil, err
	}
	d, err := domain.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if d.ID == "" {
		d.ID = id
	}
	return d, nil
}

// Load returns the stored draft, or a freshly initialized one when the record
// is absent, malformed or unreadable. It never fails.
func (c *Controller) Load(ctx context.Context, id string) *domain.CampaignDraft {
	d, err := c.Get(ctx, id)
	switch {
	case err == nil:
		return d
	case errors.Is(err, domain.ErrDraftNotFound), errors.Is(err, domain.ErrEmptyID):
		c.logger.Debug("draft not found, starting fresh", "draft_id", id)
	case errors.Is(err, domain.ErrMalformedDraft):
		c.logger.Warn("discarding malformed draft record", "draft_id", id, "err", err)
	default:
		c.logger.Error("failed to load draft, starting fresh", "draft_id", id, "err", err)
	}
	return domain.NewDraft()
}

// Delete removes the record. Deleting a missing record is not an error.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrEmptyID
	}
	key := domain.RecordKey(id)
	return c.WithLock(ctx, key, func(ctx context.Context) error {
		if err := c.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete draft %s: %w", id, err)
		}
		return nil
	})
}

// List returns the ids of every persisted draft.
func (c *Controller) List(ctx context.Context) ([]string, error) {
	keys, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id, ok := domain.IDFromKey(k); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (c *Controller) acquire(key string) *lockEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.locks[key]
	if !exists {
		entry = &lockEntry{}
		c.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (c *Controller) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(c.locks, key)
	}
}

// WithLock executes fn while holding the lock for key.
func (c *Controller) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := c.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		c.release(key)
	}()

	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, key, c.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				c.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
