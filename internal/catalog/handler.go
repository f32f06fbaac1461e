package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

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

type createModuleDTO struct {
	Key              string   `json:"key"`
	Name             string   `json:"name"`
	IsCommon         bool     `json:"is_common"`
	TenantCategories []string `json:"tenant_categories,omitempty"`
}

func (h *Handler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var dto createModuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.CreateModule(r.Context(), CreateModuleParams{
		Key:              dto.Key,
		Name:             dto.Name,
		IsCommon:         dto.IsCommon,
		TenantCategories: dto.TenantCategories,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.ListModules(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"modules": views})
}
