// Package server exposes the catalog over HTTP: paginated listing, grouped
// browse views driven by shareable URL state, per-stamp detail (the stable
// shape the assistant backend consumes), refresh, and view sessions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"philately/catalog/internal/debounce"
	"philately/catalog/internal/grouping"
	"philately/catalog/internal/loader"
	"philately/catalog/internal/session"
	"philately/catalog/internal/store"
	"philately/catalog/internal/view"
)

// Server wires the load controller, record store and session cache behind a
// chi router.
type Server struct {
	store      store.Store
	controller *loader.Controller
	sessions   *session.Cache
	escalate   *debounce.Debouncer
	router     chi.Router
}

func New(st store.Store, ctrl *loader.Controller, sessions *session.Cache, clk clock.Clock) *Server {
	s := &Server{
		store:      st,
		controller: ctrl,
		sessions:   sessions,
	}

	// Keystroke-driven view requests arrive per character; the full-corpus
	// escalation they need is coalesced so the store full-scan runs once the
	// input settles, not per keystroke.
	s.escalate = debounce.New(clk, debounce.DefaultWait, func(string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := ctrl.EnsureFullCorpus(ctx); err != nil {
			log.Errorf("❌ Deferred full-corpus load failed: %v", err)
		}
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/stamps", s.handleListStamps)
		r.Get("/stamps/{id}", s.handleStampDetail)
		r.Get("/view", s.handleView)
		r.Get("/progress", s.handleProgress)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/session", s.handleCreateSession)
		r.Get("/session/{id}", s.handleGetSession)
	})

	s.router = r
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

type listResponse struct {
	Records any  `json:"records"`
	HasMore bool `json:"hasMore"`
	Total   int  `json:"total"`
}

func (s *Server) handleListStamps(w http.ResponseWriter, r *http.Request) {
	offset := intParam(r, "offset", 0)
	limit := intParam(r, "limit", 50)

	records, hasMore, err := s.store.GetPage(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read catalog page")
		return
	}
	total, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count catalog")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Records: records, HasMore: hasMore, Total: total})
}

func (s *Server) handleStampDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.GetByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "stamp not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read stamp")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type groupEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type viewResponse struct {
	Path        []string     `json:"path"`
	Groups      []groupEntry `json:"groups,omitempty"`
	Records     any          `json:"records,omitempty"`
	LevelTotal  int          `json:"levelTotal"`
	TotalCount  int          `json:"totalCount"`
	Provisional bool         `json:"provisional"`
	Source      string       `json:"source,omitempty"`
	ShareURL    string       `json:"shareUrl"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q, err := view.DecodeQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid view parameters")
		return
	}
	limit := intParam(r, "limit", view.InitialDisplayCount)

	snap := s.controller.Snapshot()

	// Search and grouping need the full corpus for accurate results. While
	// the working set is partial, results go out marked provisional and the
	// escalation is scheduled behind the debouncer.
	if !snap.Complete && (q.Search != "" || len(q.Levels) > 0) {
		s.escalate.Trigger(q.Search)
	}

	tree := grouping.Group(snap.Records, q.Levels, q.Search, q.GroupSearch)

	state := view.NewState()
	state.NavigateTo(q.Path)
	level := state.CurrentLevel(tree)

	resp := viewResponse{
		Path:        state.Path,
		LevelTotal:  level.Len(),
		TotalCount:  grouping.CountStamps(tree),
		Provisional: !snap.Complete,
		Source:      snap.Source,
	}
	if resp.Path == nil {
		resp.Path = []string{}
	}

	if level.IsLeaf() {
		records := level.Records
		if len(records) > limit {
			records = records[:limit]
		}
		resp.Records = records
	} else {
		keys := level.SortedKeys()
		if len(keys) > limit {
			keys = keys[:limit]
		}
		entries := make([]groupEntry, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, groupEntry{Key: key, Count: grouping.CountStamps(level.Groups[key])})
		}
		resp.Groups = entries
	}

	// Echo the canonical shareable form of this view.
	shared := q
	shared.Path = state.Path
	if values, err := shared.Encode(); err == nil {
		resp.ShareURL = r.URL.Path + "?" + values.Encode()
	}

	writeJSON(w, http.StatusOK, resp)
}

type progressResponse struct {
	State    loader.State `json:"state"`
	Complete bool         `json:"complete"`
	HasMore  bool         `json:"hasMore"`
	Source   string       `json:"source,omitempty"`
	Loaded   int          `json:"loaded"`
	Progress any          `json:"progress"`
	Error    string       `json:"error,omitempty"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	resp := progressResponse{
		State:    snap.State,
		Complete: snap.Complete,
		HasMore:  snap.HasMore,
		Source:   snap.Source,
		Loaded:   len(snap.Records),
		Progress: snap.Progress,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.controller.Refresh(r.Context())
	if errors.Is(err, loader.ErrReseedInFlight) {
		writeError(w, http.StatusConflict, "a catalog refresh is already running")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "catalog refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	q, err := view.DecodeQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid view parameters")
		return
	}
	sess := s.sessions.Create(q)
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("❌ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
