package rbac

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// Handler manages role permission endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPermissions)
	r.Post("/", h.createPermission)
	r.Get("/check", h.checkAccess)
	r.Get("/{id}", h.getPermission)
	r.Put("/{id}", h.updatePermission)
	r.Delete("/{id}", h.deletePermission)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	roleID, err := ParseRoleFilter(query.Get("roleId"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, err := h.service.List(r.Context(), Filter{RoleID: roleID}, shared.ParsePageRequest(query))
	if err != nil {
		h.logger.Error("list role permissions failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) checkAccess(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	roleID, err := ParseRoleFilter(query.Get("roleId"))
	if err == nil && roleID == nil {
		err = shared.ErrInvalidRoleID
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	capability, err := ParseCapability(query.Get("capability"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	module := strings.TrimSpace(query.Get("module"))
	if module == "" {
		httpx.RespondError(w, fmt.Errorf("%w: module is required", shared.ErrValidation))
		return
	}
	allowed, err := h.service.Allows(r.Context(), *roleID, module, capability)
	if err != nil {
		h.logger.Error("check role access failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, AccessCheck{RoleID: *roleID, Module: module, Capability: capability, Allowed: allowed})
}

func (h *Handler) getPermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var in PermissionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create role permission failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) updatePermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in PermissionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.logger.Warn("update role permission failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete role permission failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
