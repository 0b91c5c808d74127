package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/DragonRU1/silentauth/internal/http/response"
	"github.com/DragonRU1/silentauth/internal/observability"
	"github.com/DragonRU1/silentauth/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Name          string `json:"name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if req.Name == "" || len(req.Name) > 255 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "name must be 1-255 characters", nil)
		return
	}
	if !strings.Contains(req.AdminEmail, "@") {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "admin_email must be a valid email", nil)
		return
	}
	if len(req.AdminPassword) < 8 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "admin_password must be at least 8 characters", nil)
		return
	}

	result, err := h.auth.RegisterOrganization(r.Context(), req.Name, req.AdminEmail, req.AdminPassword)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	observability.Audit(r, "org.registered", "org_id", result.Organization.ID)
	response.JSON(w, r, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email and password are required", nil)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user.login", "user_id", result.User.ID)
	response.JSON(w, r, http.StatusOK, result)
}
