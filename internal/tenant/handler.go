package tenant

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

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

type onboardDTO struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// CreateTenant onboards a tenant with its first admin and a trial plan.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var dto onboardDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Onboard(r.Context(), OnboardParams{
		Name:          dto.Name,
		Category:      dto.Category,
		AdminEmail:    dto.AdminEmail,
		AdminPassword: dto.AdminPassword,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListTenants(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"tenants": items})
}

type tenantStatusDTO struct {
	IsActive bool `json:"is_active"`
}

// SetTenantStatus activates or deactivates a tenant. Deactivation locks out
// every user of the tenant on their next request.
func (h *Handler) SetTenantStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	var dto tenantStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.SetTenantStatus(r.Context(), tenantID, dto.IsActive); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":        tenantID,
		"is_active": dto.IsActive,
	})
}
