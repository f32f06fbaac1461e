package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/tenant-admin/internal/transport"
	"github.com/frahmantamala/tenant-admin/pkg/logger"
)

type ServiceAPI interface {
	ListAuditLogs(ctx context.Context, filter Filter) ([]LogView, error)
}

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

// ListAuditLogs handles the platform audit query. Filters come from query
// parameters; limits are clamped by the service.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	var filter Filter

	if raw := r.URL.Query().Get("tenant_id"); raw != "" {
		tenantID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid tenant_id")
			return
		}
		filter.TenantID = &tenantID
	}
	filter.Action = r.URL.Query().Get("action")
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = offset
	}

	logs, err := h.Service.ListAuditLogs(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"audit_logs": logs})
}
