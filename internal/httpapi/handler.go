package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkline/writing-service/internal/analytics"
	"github.com/inkline/writing-service/internal/dateutil"
	"github.com/inkline/writing-service/internal/writing"
)

const (
	serviceTimeout  = 10 * time.Second
	maxPayloadBytes = 1 << 20 // 1MB
)

type handler struct {
	service *writing.Service
	clock   writing.Clock
}

type createSessionRequest struct {
	Date      string `json:"date"`
	Project   string `json:"project"`
	WordCount int    `json:"word_count"`
	Note      string `json:"note"`
}

type updateSessionRequest struct {
	Date      *string `json:"date"`
	Project   *string `json:"project"`
	WordCount *int    `json:"word_count"`
	Note      *string `json:"note"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type createProjectRequest struct {
	Name string `json:"name"`
}

// RegisterRoutes mounts the session, project, and analytics endpoints.
// Mutating routes additionally pass through the rate limiter when one is
// provided.
func RegisterRoutes(r chi.Router, svc *writing.Service, clock writing.Clock, limiter *RateLimiter) {
	h := &handler{service: svc, clock: clock}

	limit := func(r chi.Router) chi.Router {
		if limiter != nil {
			return r.With(limiter.Handler)
		}
		return r
	}

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Get("/", h.listSessions)
		limit(r).Post("/", h.createSession)
		limit(r).Post("/bulk-delete", h.bulkDeleteSessions)
		limit(r).Patch("/{id}", h.updateSession)
		limit(r).Delete("/{id}", h.deleteSession)
	})

	r.Route("/v1/projects", func(r chi.Router) {
		r.Get("/", h.listProjects)
		limit(r).Post("/", h.createProject)
		limit(r).Delete("/{name}", h.deleteProject)
	})

	r.Route("/v1/analytics", func(r chi.Router) {
		r.Get("/", h.getAnalytics)
		r.Get("/chart", h.getChart)
	})
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	sessions, err := h.service.ListSessions(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": sessions})
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	var req createSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	session, err := h.service.CreateSession(ctx, writing.CreateSessionInput{
		UserID:    userID,
		Date:      req.Date,
		Project:   req.Project,
		WordCount: req.WordCount,
		Note:      req.Note,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *handler) updateSession(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	var req updateSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	session, err := h.service.UpdateSession(ctx, userID, chi.URLParam(r, "id"), writing.UpdateSessionInput{
		Date:      req.Date,
		Project:   req.Project,
		WordCount: req.WordCount,
		Note:      req.Note,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	if err := h.service.DeleteSession(ctx, userID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) bulkDeleteSessions(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	var req bulkDeleteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	deleted, err := h.service.BulkDeleteSessions(ctx, userID, req.IDs)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *handler) listProjects(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	// Reconciling here keeps orphaned session projects visible in the
	// sidebar with a stable color.
	projects, err := h.service.ReconcileProjects(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": projects})
}

func (h *handler) createProject(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	var req createProjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	project, err := h.service.CreateProject(ctx, userID, req.Name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	if err := h.service.DeleteProject(ctx, userID, chi.URLParam(r, "name")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	sessions, err := h.service.ListSessions(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	today := dateutil.Format(h.clock.Now())
	sessions = filterProjects(sessions, queryList(r, "projects"))
	sessions = analytics.FilterRange(sessions, analytics.ParseWindow(r.URL.Query().Get("range")), today)

	summary := analytics.Compute(sessions, queryBool(r, "include_empty_days"), today)
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) getChart(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	sessions, err := h.service.ListSessions(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	projects, err := h.service.ReconcileProjects(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	selected := queryList(r, "projects")
	visible := selectProjects(projects, selected)
	sessions = filterProjects(sessions, selected)

	today := dateutil.Format(h.clock.Now())
	sessions = analytics.FilterRange(sessions, analytics.ParseWindow(r.URL.Query().Get("range")), today)

	chart := analytics.BuildChart(sessions, visible, queryBool(r, "hide_empty"))
	writeJSON(w, http.StatusOK, map[string]any{
		"points":       chart.Points,
		"y_axis_max":   chart.YAxisMax,
		"y_axis_ticks": chart.YAxisTicks,
		"projects":     visible,
	})
}

// filterProjects keeps sessions whose project matches the selection,
// case-insensitively. An empty selection keeps everything.
func filterProjects(sessions []writing.Session, selected []string) []writing.Session {
	if len(selected) == 0 {
		return sessions
	}
	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		wanted[strings.ToLower(name)] = struct{}{}
	}
	filtered := make([]writing.Session, 0, len(sessions))
	for _, s := range sessions {
		if _, ok := wanted[strings.ToLower(s.Project)]; ok {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// selectProjects narrows the project list to the selection, preserving
// order. An empty selection means all projects are visible.
func selectProjects(projects []writing.Project, selected []string) []writing.Project {
	if len(selected) == 0 {
		return projects
	}
	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		wanted[strings.ToLower(name)] = struct{}{}
	}
	visible := make([]writing.Project, 0, len(projects))
	for _, p := range projects {
		if _, ok := wanted[strings.ToLower(p.Name)]; ok {
			visible = append(visible, p)
		}
	}
	return visible
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
