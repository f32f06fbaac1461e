package subscription

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

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

type assignPlanDTO struct {
	PlanID   int64  `json:"plan_id"`
	SyncMode string `json:"sync_mode,omitempty"`
}

// AssignPlan puts a tenant on a plan, replacing any current subscription.
func (h *Handler) AssignPlan(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	var dto assignPlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.PlanID == 0 {
		h.WriteError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	mode := h.Service.DefaultSyncMode()
	if dto.SyncMode != "" {
		parsed, ok := ParseSyncMode(dto.SyncMode)
		if !ok {
			h.WriteError(w, http.StatusBadRequest, "sync_mode must be SAFE or STRICT")
			return
		}
		mode = parsed
	}

	view, err := h.Service.AssignPlan(r.Context(), tenantID, dto.PlanID, mode)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

type syncPlanDTO struct {
	SyncMode string `json:"sync_mode,omitempty"`
}

// SyncPlan pushes a plan's current module set to every tenant on it.
func (h *Handler) SyncPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := strconv.ParseInt(chi.URLParam(r, "planID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	var dto syncPlanDTO
	if r.Body != nil {
		// body is optional; an empty body means the configured default mode
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	mode := h.Service.DefaultSyncMode()
	if dto.SyncMode != "" {
		parsed, ok := ParseSyncMode(dto.SyncMode)
		if !ok {
			h.WriteError(w, http.StatusBadRequest, "sync_mode must be SAFE or STRICT")
			return
		}
		mode = parsed
	}

	report, err := h.Service.SyncPlanToAllTenants(r.Context(), planID, mode)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}

// MySubscription returns the caller tenant's current subscription, if any.
func (h *Handler) MySubscription(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteAppError(w, internal.ErrUnauthenticated)
		return
	}

	view, err := h.Service.ActiveSubscription(r.Context(), principal.TenantID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"subscription": view})
}

// TenantSubscription returns one tenant's current subscription for platform
// operators.
func (h *Handler) TenantSubscription(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	view, err := h.Service.ActiveSubscription(r.Context(), tenantID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"subscription": view})
}
