package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trailcast/internal/core"
	"trailcast/internal/types"
)

// ActivityHandler serves the activity catalog.
type ActivityHandler struct {
	repo   types.ActivityRepository
	logger *slog.Logger
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(repo types.ActivityRepository, logger *slog.Logger) *ActivityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityHandler{repo: repo, logger: logger}
}

// RegisterRoutes mounts the catalog endpoints.
func (h *ActivityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Get("/{slug}", h.HandleGet)
}

// HandleList handles GET /v1/activities.
func (h *ActivityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	activities, err := h.repo.ListActive(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: activities,
		Meta: map[string]any{"count": len(activities)},
	})
}

// HandleGet handles GET /v1/activities/{slug}.
func (h *ActivityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	activity, err := h.repo.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: activity})
}
