package plan

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

func (h *Handler) planIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	planID, err := strconv.ParseInt(chi.URLParam(r, "planID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid plan id")
		return 0, false
	}
	return planID, true
}

type createPlanDTO struct {
	Name         string  `json:"name"`
	Price        int64   `json:"price"`
	DurationDays int     `json:"duration_days"`
	ModuleIDs    []int64 `json:"module_ids,omitempty"`
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var dto createPlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.CreatePlan(r.Context(), CreateParams{
		Name:         dto.Name,
		Price:        dto.Price,
		DurationDays: dto.DurationDays,
		ModuleIDs:    dto.ModuleIDs,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, view)
}

type updatePlanDTO struct {
	Price        *int64 `json:"price,omitempty"`
	DurationDays *int   `json:"duration_days,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planIDParam(w, r)
	if !ok {
		return
	}

	var dto updatePlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.UpdatePlan(r.Context(), planID, UpdateParams{
		Price:        dto.Price,
		DurationDays: dto.DurationDays,
		IsActive:     dto.IsActive,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.ListPlans(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"plans": views})
}

func (h *Handler) PlanDetails(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.Service.PlanDetails(r.Context(), planID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

type planModulesDTO struct {
	ModuleIDs []int64 `json:"module_ids"`
}

func (h *Handler) AddModules(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planIDParam(w, r)
	if !ok {
		return
	}

	var dto planModulesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.AddModules(r.Context(), planID, dto.ModuleIDs)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) RemoveModules(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planIDParam(w, r)
	if !ok {
		return
	}

	var dto planModulesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.RemoveModules(r.Context(), planID, dto.ModuleIDs)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) AddCommonModules(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.Service.AddCommonModules(r.Context(), planID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) SetupDefaultPlans(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.SetupDefaultPlans(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"plans": views})
}
