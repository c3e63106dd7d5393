package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/pkg/viz"
)

// SessionCookie names the cookie that identifies a browser session.
const SessionCookie = "robodash_session"

// session is one browser's dashboard panel.
type session struct {
	panel *viz.Panel

	// started and finished are the generations of the latest load begun and
	// the latest load completed.
	started  atomic.Uint64
	finished atomic.Uint64

	// lastSeen is guarded by Server.mu.
	lastSeen time.Time
}

func (sess *session) loading() bool {
	return sess.started.Load() != sess.finished.Load()
}

// session returns the caller's session, creating it and setting the cookie
// when the request carries none or an unknown one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok {
			sess.lastSeen = now
			return sess
		}
	}

	s.pruneSessionsLocked(now)
	id := uuid.NewString()
	sess := &session{panel: viz.NewPanel(s.pipeline), lastSeen: now}
	s.sessions[id] = sess
	s.collector.SetGauge("server.sessions", float64(len(s.sessions)))

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// pruneSessionsLocked drops sessions idle for longer than sessionIdle. Their
// in-flight loads finish on their own.
func (s *Server) pruneSessionsLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.sessionIdle {
			delete(s.sessions, id)
		}
	}
}

// startLoad begins loading ref into the session panel in the background.
// The previous load is not cancelled; the panel discards its results.
func (s *Server) startLoad(sess *session, ref robodash.DatasetRef) {
	if s.loadCtx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.loadCtx, s.loadTimeout)

	s.loads.Add(1)
	key := sess.panel.Start(ctx, ref, func(key viz.Key) {
		defer s.loads.Done()
		cancel()
		// Loads finish in any order; keep the highest generation.
		for {
			cur := sess.finished.Load()
			if key.Generation <= cur || sess.finished.CompareAndSwap(cur, key.Generation) {
				return
			}
		}
	})
	for {
		cur := sess.started.Load()
		if key.Generation <= cur || sess.started.CompareAndSwap(cur, key.Generation) {
			break
		}
	}
}
