package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/draftwizard/internal/logging"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/onboarding"
	"github.com/aretw0/draftwizard/pkg/session"
	"github.com/aretw0/draftwizard/pkg/validation"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes draft sessions to UI event handlers over JSON.
type Server struct {
	registry *Registry
	streams  *StreamManager
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer serves the gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server over the sessions of reg.
func NewServer(reg *Registry, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)

	reg.mu.Lock()
	reg.onOpen = func(sess *session.Session) {
		id := sess.ID()
		sess.Subscribe(func(diff *domain.DraftDiff) {
			s.streams.Broadcast(id, diff)
		})
	}
	reg.mu.Unlock()
	return s
}

// NewHandler creates the HTTP handler for reg.
func NewHandler(reg *Registry, opts ...Option) http.Handler {
	return NewServer(reg, opts...).Handler()
}

// Streams returns the SSE fan-out.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.health)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", s.createDraft)
		r.Get("/", s.listDrafts)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getDraft)
			r.Delete("/", s.deleteDraft)

			r.Patch("/profile", patch(s, func(sess *session.Session, p domain.ProfilePatch) error {
				sess.UpdateProfile(p)
				return nil
			}))
			r.Patch("/channels", patch(s, func(sess *session.Session, p domain.ChannelsPatch) error {
				var probe domain.Channels
				for name := range p {
					if probe.Slot(name) == nil {
						return fmt.Errorf("unknown channel %q", name)
					}
				}
				sess.UpdateChannels(p)
				return nil
			}))
			r.Patch("/content", patch(s, func(sess *session.Session, p domain.ContentPatch) error {
				sess.UpdateContent(p)
				return nil
			}))
			r.Patch("/budget", patch(s, func(sess *session.Session, p domain.BudgetPatch) error {
				sess.UpdateBudget(p)
				return nil
			}))
			r.Post("/profile/areas", patch(s, func(sess *session.Session, req areaRequest) error {
				if req.Area == "" {
					return errors.New("area is required")
				}
				sess.ToggleTargetingArea(req.Area)
				return nil
			}))
			r.Put("/image", patch(s, func(sess *session.Session, img domain.ExportedImage) error {
				if img.URL == "" {
					return errors.New("url is required")
				}
				sess.ApplyExportedImage(img)
				return nil
			}))
			r.Delete("/image", s.deleteImage)

			r.Post("/steps/{op}", s.move(outerCursor))
			r.Post("/substeps/{op}", s.move(profileCursor))
			r.Post("/profile/complete", s.completeProfile)

			r.Post("/save", s.save)
			r.Get("/validation", s.validation)
			r.Get("/onboarding", s.onboarding)
			r.Get("/events", s.events)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}

func (s *Server) createDraft(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Create(r.Context())
	if err != nil {
		s.fail(w, http.StatusServiceUnavailable, err)
		return
	}
	s.logger.Info("draft created", "draft_id", sess.ID())
	s.writeJSON(w, http.StatusCreated, sess.Draft())
}

func (s *Server) listDrafts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.registry.Controller().List(r.Context())
	if err != nil {
		s.fail(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
}

func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Draft())
}

func (s *Server) deleteDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.registry.Delete(r.Context(), id); err != nil {
		s.fail(w, http.StatusServiceUnavailable, err)
		return
	}
	s.logger.Info("draft deleted", "draft_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.UpdateImage(nil)
	s.writeJSON(w, http.StatusOK, sess.Draft())
}

type areaRequest struct {
	Area string `mapstructure:"area"`
}

type jumpRequest struct {
	Step *int `mapstructure:"step"`
}

// moveResponse answers every navigation call; refusals are not errors.
type moveResponse struct {
	Moved bool                  `json:"moved"`
	Draft *domain.CampaignDraft `json:"draft"`
}

type cursor struct {
	advance func(*session.Session, context.Context) bool
	retreat func(*session.Session, context.Context) bool
	jump    func(*session.Session, context.Context, int) bool
}

var (
	outerCursor = cursor{
		advance: (*session.Session).AdvanceStep,
		retreat: (*session.Session).RetreatStep,
		jump:    (*session.Session).JumpToStep,
	}
	profileCursor = cursor{
		advance: (*session.Session).AdvanceSubStep,
		retreat: (*session.Session).RetreatSubStep,
		jump:    (*session.Session).JumpToSubStep,
	}
)

func (s *Server) move(c cursor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}

		var moved bool
		switch op := chi.URLParam(r, "op"); op {
		case "advance":
			moved = c.advance(sess, r.Context())
		case "retreat":
			moved = c.retreat(sess, r.Context())
		case "jump":
			var req jumpRequest
			if err := decodeBody(r, &req); err != nil {
				s.fail(w, http.StatusBadRequest, err)
				return
			}
			if req.Step == nil {
				s.fail(w, http.StatusBadRequest, errors.New("step is required"))
				return
			}
			moved = c.jump(sess, r.Context(), *req.Step)
		default:
			s.fail(w, http.StatusNotFound, fmt.Errorf("unknown operation %q", op))
			return
		}
		s.writeJSON(w, http.StatusOK, moveResponse{Moved: moved, Draft: sess.Draft()})
	}
}

func (s *Server) completeProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	moved := sess.MarkProfileComplete(r.Context())
	s.writeJSON(w, http.StatusOK, moveResponse{Moved: moved, Draft: sess.Draft()})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Save(r.Context()); err != nil {
		s.fail(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Draft())
}

// Gate is the state of one validation gate.
type Gate struct {
	Step    int      `json:"step"`
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

// ValidationReport lists every campaign and profile gate of a draft.
type ValidationReport struct {
	Steps           []Gate `json:"steps"`
	ProfileSubSteps []Gate `json:"profileSubSteps"`
	ProfileValid    bool   `json:"profileValid"`
}

// Report evaluates every gate of d.
func Report(d *domain.CampaignDraft) ValidationReport {
	rep := ValidationReport{ProfileValid: validation.IsProfileValid(d.Profile)}
	for step := 1; step <= domain.CampaignSteps; step++ {
		rep.Steps = append(rep.Steps, Gate{
			Step:    step,
			Valid:   validation.IsStepValid(d, step),
			Missing: orEmpty(validation.MissingFields(d, step)),
		})
	}
	for sub := 1; sub <= domain.ProfileSubSteps; sub++ {
		rep.ProfileSubSteps = append(rep.ProfileSubSteps, Gate{
			Step:    sub,
			Valid:   validation.IsProfileSubStepValid(d.Profile, sub),
			Missing: orEmpty(validation.MissingProfileFields(d.Profile, sub)),
		})
	}
	return rep
}

func (s *Server) validation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, Report(sess.Draft()))
}

func (s *Server) onboarding(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, onboarding.Derive(sess.Draft()))
}

// patch decodes the body into P and applies it to the session.
func patch[P any](s *Server, apply func(*session.Session, P) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		var p P
		if err := decodeBody(r, &p); err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
		if err := apply(sess, p); err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
		s.writeJSON(w, http.StatusOK, sess.Draft())
	}
}

// decodeBody reads a JSON body and maps it onto out. Input is weakly typed so
// form-ish clients may send "25" for 25 or a single string for a list.
// Unknown fields are rejected.
func decodeBody(r *http.Request, out any) error {
	var raw any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// session resolves the {id} parameter, answering 404 or 500 itself.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.registry.Get(r.Context(), id)
	switch {
	case err == nil:
		return sess, true
	case errors.Is(err, domain.ErrDraftNotFound), errors.Is(err, domain.ErrEmptyID):
		s.fail(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrMalformedDraft):
		s.fail(w, http.StatusUnprocessableEntity, err)
	default:
		s.fail(w, http.StatusServiceUnavailable, err)
	}
	return nil, false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
