package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/internal/catalog"
	"github.com/jdziat/robodash/internal/prefs"
	"github.com/jdziat/robodash/internal/render"
	"github.com/jdziat/robodash/pkg/viz"
)

func (s *Server) handleCatalogPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := s.preferences(r)
	search := strings.TrimSpace(q.Get("q"))

	view := render.CatalogView{
		Namespace: s.client.Namespace(),
		Search:    search,
		Prefs:     st,
	}
	all, err := s.datasets(r.Context(), q.Has("refresh"))
	if err != nil {
		s.logger.Error("could not list datasets", "error", err)
		view.Err = "could not list datasets: " + err.Error()
	} else {
		// An exact name jumps straight to the dashboard.
		if search != "" {
			if d, ok := catalog.Resolve(all, search); ok {
				http.Redirect(w, r, "/dataset/"+d.ID+"?"+st.Query().Encode(), http.StatusSeeOther)
				return
			}
		}
		view.Datasets = catalog.Filter(all, st.CatalogQuery(search))
		view.Suggestions = catalog.Suggestions(all, search, catalog.DefaultSuggestions)
	}

	writeHTML(w, func(buf *bytes.Buffer) error { return render.Catalog(buf, view) })
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathRef(w, r)
	if !ok {
		return
	}
	st := s.preferences(r)

	ctx, cancel := context.WithTimeout(r.Context(), s.loadTimeout)
	defer cancel()

	var (
		snap   *viz.Snapshot
		videos []robodash.Video
		g      errgroup.Group
	)
	g.Go(func() error {
		snap = s.pipeline.Build(ctx, ref)
		return nil
	})
	g.Go(func() error {
		videos = s.client.Datasets().Videos(ctx, ref)
		return nil
	})
	_ = g.Wait()

	writeHTML(w, func(buf *bytes.Buffer) error {
		return render.Dashboard(buf, render.DashboardView{Snapshot: snap, Videos: videos, Prefs: st})
	})
}

type listResponse struct {
	Datasets []robodash.Dataset `json:"datasets"`
	Total    int                `json:"total"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	all, err := s.datasets(r.Context(), q.Has("refresh"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	query := catalog.Query{
		Search:  q.Get("q"),
		Version: q.Get(prefs.ParamVersion),
		Order:   q.Get(prefs.ParamOrder),
	}.Normalize()

	matches := catalog.Filter(all, query)
	writeJSON(w, http.StatusOK, listResponse{Datasets: matches, Total: len(matches)})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathRef(w, r)
	if !ok {
		return
	}
	d, err := s.client.Datasets().Get(r.Context(), ref)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathRef(w, r)
	if !ok {
		return
	}
	doc, err := s.client.Files().Info(r.Context(), ref)
	if err != nil {
		s.writeError(w, err)
		return
	}
	pretty, err := doc.Pretty()
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(pretty, '\n'))
}

func (s *Server) handleViz(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathRef(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.loadTimeout)
	defer cancel()
	writeJSON(w, http.StatusOK, s.pipeline.Build(ctx, ref))
}

type videosResponse struct {
	Videos []robodash.Video `json:"videos"`
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathRef(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, videosResponse{Videos: s.client.Datasets().Videos(r.Context(), ref)})
}

type panelResponse struct {
	Snapshot viz.Snapshot `json:"snapshot"`
	Loading  bool         `json:"loading"`
	Fallback string       `json:"fallback,omitempty"`
}

// handlePanel reports the caller's session panel. A dataset parameter
// different from the panel's current one starts a new load; so does reload.
func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	q := r.URL.Query()
	if raw := q.Get("dataset"); raw != "" {
		ref, err := robodash.ParseRef(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if sess.panel.Key().Ref != ref || q.Has("reload") {
			s.startLoad(sess, ref)
		}
	}

	snap := sess.panel.Snapshot()
	writeJSON(w, http.StatusOK, panelResponse{
		Snapshot: snap,
		Loading:  sess.loading(),
		Fallback: snap.Fallback(),
	})
}

func (s *Server) handlePrefsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.prefs.State())
}

func (s *Server) handlePrefsSet(w http.ResponseWriter, r *http.Request) {
	st := s.prefs.State()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&st); err != nil {
		s.writeError(w, robodash.NewValidationErrorWithCause("body", "invalid preferences", err))
		return
	}
	if err := s.prefs.Save(st); err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.prefs.State())
}

func pathRef(w http.ResponseWriter, r *http.Request) (robodash.DatasetRef, bool) {
	ref, err := robodash.ParseRef(r.PathValue("owner") + "/" + r.PathValue("name"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return robodash.DatasetRef{}, false
	}
	return ref, true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "status", status)
	} else {
		s.logger.Debug("request rejected", "error", err, "status", status)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: string(robodash.CodeOf(err))})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// statusOf maps an error to the status returned to the browser. Upstream
// failures are reported as gateway errors.
func statusOf(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch robodash.CodeOf(err) {
	case robodash.ErrCodeValidation:
		return http.StatusBadRequest
	case robodash.ErrCodeNotFound:
		return http.StatusNotFound
	case robodash.ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case robodash.ErrCodeNetwork, robodash.ErrCodeAPI, robodash.ErrCodeAuth, robodash.ErrCodeDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal json"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
