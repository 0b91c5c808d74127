package handler

import (
	"encoding/json"
	"net/http"

	"github.com/DragonRU1/silentauth/internal/http/middleware"
	"github.com/DragonRU1/silentauth/internal/http/response"
	"github.com/DragonRU1/silentauth/internal/observability"
	"github.com/DragonRU1/silentauth/internal/service"

	"github.com/go-chi/chi/v5"
)

type ProjectHandler struct {
	projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name string `json:"name"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity", nil)
		return
	}
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if req.Name == "" || len(req.Name) > 255 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "name must be 1-255 characters", nil)
		return
	}

	created, err := h.projects.Create(r.Context(), req.Name, claims.OrgID)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	observability.Audit(r, "project.created", "project_id", created.Project.ID, "org_id", claims.OrgID)
	response.JSON(w, r, http.StatusCreated, created)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity", nil)
		return
	}
	projects, err := h.projects.List(r.Context(), claims.OrgID)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity", nil)
		return
	}
	detail, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"), claims.OrgID)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, detail)
}

// RotateKey swaps the project's active credentials. The response carries the
// only plaintext appearance of the replacement key.
func (h *ProjectHandler) RotateKey(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity", nil)
		return
	}
	projectID := chi.URLParam(r, "id")
	issued, err := h.projects.RotateKey(r.Context(), projectID, claims.OrgID)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	observability.Audit(r, "apikey.rotated", "project_id", projectID, "key_id", issued.Key.ID)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"id":      issued.Key.ID,
		"api_key": issued.RawKey,
		"scopes":  issued.Key.ScopeList(),
	})
}
