package draftwizard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/draftwizard/internal/logging"
	httpadapter "github.com/aretw0/draftwizard/pkg/adapters/http"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/observability"
	"github.com/aretw0/draftwizard/pkg/onboarding"
	"github.com/aretw0/draftwizard/pkg/persistence"
	"github.com/aretw0/draftwizard/pkg/persistence/middleware"
	"github.com/aretw0/draftwizard/pkg/ports"
	"github.com/aretw0/draftwizard/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the release version, set at build time with -ldflags.
var Version = "dev"

// Wizard is the high-level entry point. It wires a store, the persistence
// controller, observability and session defaults together.
type Wizard struct {
	store   ports.DraftStore
	ctrl    *persistence.Controller
	metrics *observability.Metrics
	reg     *prometheus.Registry

	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	locker       ports.DistributedLocker
	middlewares  []middleware.Middleware
	autosaveOpts []persistence.AutosaveOption
	closers      []io.Closer
}

// Option configures the Wizard.
type Option func(*Wizard)

// WithLogger sets the structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithLifecycleHooks registers hooks in addition to the built-in metrics.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = observability.Combine(w.hooks, hooks)
	}
}

// WithLocker serializes writes across processes.
func WithLocker(l ports.DistributedLocker) Option {
	return func(w *Wizard) {
		w.locker = l
	}
}

// WithMiddleware wraps the store. The first middleware is the outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(w *Wizard) {
		w.middlewares = append(w.middlewares, mws...)
	}
}

// WithAutosave sets the autosave options of every session.
func WithAutosave(opts ...persistence.AutosaveOption) Option {
	return func(w *Wizard) {
		w.autosaveOpts = append(w.autosaveOpts, opts...)
	}
}

// WithCloser registers a resource released by Close, such as a store client.
func WithCloser(c io.Closer) Option {
	return func(w *Wizard) {
		w.closers = append(w.closers, c)
	}
}

// New creates a Wizard persisting to store.
func New(store ports.DraftStore, opts ...Option) *Wizard {
	w := &Wizard{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(w)
	}

	w.reg = prometheus.NewRegistry()
	w.metrics = observability.NewMetrics(w.reg)
	hooks := observability.Combine(w.metrics.Hooks(), observability.LoggingHooks(w.logger), w.hooks)

	w.store = middleware.Chain(store, w.middlewares...)
	ctrlOpts := []persistence.Option{
		persistence.WithLogger(w.logger),
		persistence.WithLifecycleHooks(hooks),
	}
	if w.locker != nil {
		ctrlOpts = append(ctrlOpts, persistence.WithLocker(w.locker))
	}
	w.ctrl = persistence.NewController(w.store, ctrlOpts...)
	w.hooks = hooks
	return w
}

// Controller returns the persistence controller.
func (w *Wizard) Controller() *persistence.Controller {
	return w.ctrl
}

// Store returns the store after middleware.
func (w *Wizard) Store() ports.DraftStore {
	return w.store
}

// Gatherer exposes the wizard metrics.
func (w *Wizard) Gatherer() prometheus.Gatherer {
	return w.reg
}

// SessionOptions returns the options every session is started with.
func (w *Wizard) SessionOptions() []session.Option {
	return []session.Option{
		session.WithLogger(w.logger),
		session.WithLifecycleHooks(w.hooks),
		session.WithAutosave(w.autosaveOpts...),
	}
}

// NewSession starts a session on a fresh draft.
func (w *Wizard) NewSession() *session.Session {
	return session.New(w.ctrl, w.SessionOptions()...)
}

// OpenSession starts a session on the draft stored under id. Unknown or
// unreadable records yield a fresh draft.
func (w *Wizard) OpenSession(ctx context.Context, id string) *session.Session {
	return session.Open(ctx, w.ctrl, id, w.SessionOptions()...)
}

// Onboarding derives the onboarding overview of a stored draft.
func (w *Wizard) Onboarding(ctx context.Context, id string) (domain.OnboardingState, error) {
	d, err := w.ctrl.Get(ctx, id)
	if err != nil {
		return domain.OnboardingState{}, err
	}
	return onboarding.Derive(d), nil
}

// Handler returns the HTTP surface together with the registry backing it.
// Close the registry on shutdown so pending edits are flushed.
func (w *Wizard) Handler() (http.Handler, *httpadapter.Registry) {
	reg := httpadapter.NewRegistry(w.ctrl, w.SessionOptions()...)
	h := httpadapter.NewHandler(reg,
		httpadapter.WithGatherer(w.reg),
		httpadapter.WithLogger(w.logger),
	)
	return h, reg
}

// Close releases the registered resources.
func (w *Wizard) Close() error {
	var errs []error
	for _, c := range w.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
