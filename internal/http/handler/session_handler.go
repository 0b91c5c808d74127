package handler

import (
	"encoding/json"
	"net/http"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/http/middleware"
	"github.com/DragonRU1/silentauth/internal/http/response"
	"github.com/DragonRU1/silentauth/internal/observability"
	"github.com/DragonRU1/silentauth/internal/service"

	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	sessions service.SessionManager
}

func NewSessionHandler(sessions service.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type createSessionRequest struct {
	CallbackURL string `json:"callback_url,omitempty"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	key, ok := middleware.ApiKeyFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing API key", nil)
		return
	}
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
	}

	session, err := h.sessions.Create(r.Context(), key.ProjectID, req.CallbackURL)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	observability.Audit(r, "session.created", "session_id", session.ID, "project_id", session.ProjectID)
	response.JSON(w, r, http.StatusCreated, session)
}

func (h *SessionHandler) GetByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	session, err := h.sessions.GetByToken(r.Context(), token)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, session)
}

type verifySessionRequest struct {
	Token     string         `json:"token"`
	ProofData map[string]any `json:"proof_data,omitempty"`
}

func (h *SessionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if req.Token == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "token is required", nil)
		return
	}

	session, err := h.sessions.Verify(r.Context(), req.Token, req.ProofData)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	observability.Audit(r, "session.verified", "session_id", session.ID, "project_id", session.ProjectID)
	response.JSON(w, r, http.StatusOK, session)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	key, ok := middleware.ApiKeyFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing API key", nil)
		return
	}
	var status *domain.SessionStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.SessionStatus(v)
		if !s.Valid() {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "unknown status filter", nil)
			return
		}
		status = &s
	}

	sessions, err := h.sessions.List(r.Context(), key.ProjectID, status)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, sessions)
}
