package http

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/draftwizard/pkg/persistence"
	"github.com/aretw0/draftwizard/pkg/session"
)

// Registry keeps the live session of every draft a client touched, keyed by
// draft id. A draft is opened from the store on first access.
type Registry struct {
	ctrl *persistence.Controller
	opts []session.Option

	mu       sync.Mutex
	sessions map[string]*session.Session

	onOpen func(s *session.Session)
}

// NewRegistry creates a registry opening sessions through ctrl.
func NewRegistry(ctrl *persistence.Controller, opts ...session.Option) *Registry {
	return &Registry{
		ctrl:     ctrl,
		opts:     opts,
		sessions: make(map[string]*session.Session),
	}
}

// Controller returns the persistence controller sessions write through.
func (r *Registry) Controller() *persistence.Controller {
	return r.ctrl
}

// Create starts a session on a fresh draft and saves it once so it has an id.
func (r *Registry) Create(ctx context.Context) (*session.Session, error) {
	s := session.New(r.ctrl, r.opts...)
	if err := s.Save(ctx); err != nil {
		s.Close()
		return nil, err
	}
	r.register(s.ID(), s)
	return s, nil
}

// Get returns the session for id, loading the draft if no session is open.
// It returns domain.ErrDraftNotFound when there is no such record.
func (r *Registry) Get(ctx context.Context, id string) (*session.Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		return s, nil
	}

	d, err := r.ctrl.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		// Another request opened it while we were loading.
		return s, nil
	}
	s = session.Resume(r.ctrl, d, r.opts...)
	r.sessions[id] = s
	if r.onOpen != nil {
		r.onOpen(s)
	}
	return s, nil
}

// Delete removes the record and closes its session. Deleting an id that was
// never stored is not an error.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return r.ctrl.Delete(ctx, id)
	}
	defer s.Close()
	return s.Delete(ctx)
}

// Close flushes and stops every open session.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session.Session)
	r.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Save(ctx); err != nil {
			errs = append(errs, err)
		}
		s.Close()
	}
	return errors.Join(errs...)
}

// Len reports the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) register(id string, s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = s
	if r.onOpen != nil {
		r.onOpen(s)
	}
}
