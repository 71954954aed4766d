package contexts

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/pkg/handlers"
	"github.com/JaimeStill/lectern/pkg/routes"
)

// Handler provides HTTP endpoints for context session operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "contexts"),
	}
}

// Routes returns the route group definition for context session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/contexts",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/reload", Handler: h.Reload},
			{Method: "PUT", Pattern: "/{id}/mode", Handler: h.SetMode},
			{Method: "PUT", Pattern: "/{id}/data-files", Handler: h.SetDataFiles},
			{Method: "PUT", Pattern: "/{id}/facets/{facet}", Handler: h.SetFacet},
			{Method: "GET", Pattern: "/{id}/facets/{facet}/candidates", Handler: h.Candidates},
			{Method: "POST", Pattern: "/{id}/documents/{doc}/toggle", Handler: h.Toggle},
			{Method: "GET", Pattern: "/{id}/selection", Handler: h.Selection},
			{Method: "GET", Pattern: "/{id}/intersections", Handler: h.Intersections},
		},
	}
}

// Create opens a new context session over a fresh catalog snapshot.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session := h.sys.Create(r.Context())
	handlers.RespondJSON(w, http.StatusCreated, session.View())
}

// Find returns the full session state.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, session.View())
}

// Delete closes a session, discarding all selection state.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSessionID)
		return
	}

	if err := h.sys.Delete(id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reload refetches the catalog snapshot and resets the session.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	session.Reload(r.Context())
	handlers.RespondJSON(w, http.StatusOK, session.View())
}

// SetMode switches the selection mode, clearing all overrides.
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Mode string `json:"mode"`
	}
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	mode, err := ParseMode(req.Mode)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	session.SetMode(mode)
	handlers.RespondJSON(w, http.StatusOK, session.View())
}

// SetDataFiles toggles the hide-data-files flag.
func (h *Handler) SetDataFiles(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Hide bool `json:"hide"`
	}
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	session.SetHideDataFiles(req.Hide)
	handlers.RespondJSON(w, http.StatusOK, session.View())
}

// SetFacet replaces a facet selection, resolving any dependent candidate
// fetch before responding. A facet edit arriving while an earlier fetch is
// in flight supersedes it; the stale result is discarded on completion.
func (h *Handler) SetFacet(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	facet, err := ParseFacet(r.PathValue("facet"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var req struct {
		Values []string `json:"values"`
	}
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := session.ResolveFacet(r.Context(), facet, req.Values); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session.View())
}

// Candidates returns a dependent facet's domain state.
func (h *Handler) Candidates(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	facet, err := ParseFacet(r.PathValue("facet"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	phase, values, err := session.Candidates(facet)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Candidates{Phase: phase, Values: values})
}

// Toggle flips one document's selection.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Toggle(r.PathValue("doc")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session.View())
}

// Selection returns the resolved document set with its status summary.
func (h *Handler) Selection(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, session.Selection())
}

// Intersections returns per-facet-value student coverage.
func (h *Handler) Intersections(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, session.Intersections())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSessionID)
		return nil, false
	}

	session, err := h.sys.Find(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	return session, true
}
