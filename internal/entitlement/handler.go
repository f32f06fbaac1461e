package entitlement

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/internal/transport"
	"github.com/frahmantamala/tenant-admin/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// MyModules lists the caller's currently enabled modules.
func (h *Handler) MyModules(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteAppError(w, internal.ErrUnauthenticated)
		return
	}

	modules, err := h.Service.ListEnabledModules(r.Context(), principal.TenantID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"modules": modules})
}

// CheckModuleAccess answers whether the caller may use one module right now.
// Gateways and feature services call this before serving module traffic.
func (h *Handler) CheckModuleAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteAppError(w, internal.ErrUnauthenticated)
		return
	}

	moduleKey := chi.URLParam(r, "moduleKey")
	enabled, err := h.Service.IsModuleEnabled(r.Context(), principal.TenantID, moduleKey)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if !enabled {
		h.WriteAppError(w, internal.ErrModuleNotEntitled)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"module": moduleKey, "access": true})
}

// TenantModuleOverview returns the full module matrix for a tenant.
func (h *Handler) TenantModuleOverview(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	overview, err := h.Service.TenantModuleOverview(r.Context(), tenantID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"modules": overview})
}

type overrideDTO struct {
	Enabled    bool       `json:"enabled"`
	UsageLimit *int       `json:"usage_limit,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// OverrideTenantModule enables or disables one module for one tenant by hand.
func (h *Handler) OverrideTenantModule(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	moduleID, err := strconv.ParseInt(chi.URLParam(r, "moduleID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid module id")
		return
	}

	var dto overrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.OverrideTenantModule(r.Context(), Override{
		TenantID:   tenantID,
		ModuleID:   moduleID,
		Enabled:    dto.Enabled,
		UsageLimit: dto.UsageLimit,
		ExpiresAt:  dto.ExpiresAt,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}
