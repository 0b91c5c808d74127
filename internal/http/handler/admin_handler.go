package handler

import (
	"net/http"
	"strconv"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/http/response"
	"github.com/DragonRU1/silentauth/internal/repository"
	"github.com/DragonRU1/silentauth/internal/service"
)

type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetStats(r.Context())
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, stats)
}

func (h *AdminHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	var status *domain.SessionStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.SessionStatus(v)
		if !s.Valid() {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "unknown status filter", nil)
			return
		}
		status = &s
	}
	req := repository.PageRequest{
		Page:     atoiOrZero(r.URL.Query().Get("page")),
		PageSize: atoiOrZero(r.URL.Query().Get("page_size")),
	}

	page, err := h.admin.ListSessions(r.Context(), status, req)
	if err != nil {
		response.ServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func atoiOrZero(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
