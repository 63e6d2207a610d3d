package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/draftwizard/pkg/domain"
)

// Watch filters accepted by the events endpoint besides the section names.
const (
	WatchCursor = "cursor"
)

// StreamManager fans draft diffs out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- *domain.DraftDiff]struct{} // draft id -> set of channels
	logger      *slog.Logger
}

// NewStreamManager returns an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- *domain.DraftDiff]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for draftID. The returned function
// unregisters and closes it.
func (sm *StreamManager) Subscribe(draftID string) (<-chan *domain.DraftDiff, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan *domain.DraftDiff, 10)
	if _, ok := sm.subscribers[draftID]; !ok {
		sm.subscribers[draftID] = make(map[chan<- *domain.DraftDiff]struct{})
	}
	sm.subscribers[draftID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[draftID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, draftID)
			}
		}
	}
}

// Broadcast sends diff to every subscriber of draftID. Slow clients miss
// messages rather than block the session.
func (sm *StreamManager) Broadcast(draftID string, diff *domain.DraftDiff) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[draftID] {
		select {
		case ch <- diff:
		default:
			sm.logger.Warn("sse client buffer full, dropping diff", "draft_id", draftID)
		}
	}
}

// Subscribers reports how many clients follow draftID.
func (sm *StreamManager) Subscribers(draftID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[draftID])
}

// Matches reports whether diff touches any entry of the watch list. An empty
// list matches everything.
func Matches(diff *domain.DraftDiff, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	for _, field := range watch {
		field = strings.TrimSpace(field)
		if field == WatchCursor {
			if diff.CurrentStep != nil || diff.ProfileSubStep != nil || diff.IsProfileComplete != nil {
				return true
			}
			continue
		}
		if diff.Touches(field) {
			return true
		}
	}
	return false
}

// events streams the diffs of one draft as server-sent events.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := sess.ID()

	var watch []string
	if v := r.URL.Query().Get("watch"); v != "" {
		watch = strings.Split(v, ",")
	}

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("sse client subscribed", "draft_id", id)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "draft_id", id)
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			if !Matches(diff, watch) {
				continue
			}
			payload, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("sse diff encode failed", "draft_id", id, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
