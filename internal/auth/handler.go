package auth

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

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

func originFromRequest(r *http.Request) Origin {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// first hop is the client
		if idx := strings.Index(ip, ","); idx > 0 {
			ip = ip[:idx]
		}
		ip = strings.TrimSpace(ip)
	} else {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}
	return Origin{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}

// TenantLogin authenticates a tenant user and issues a tenant session token.
func (h *Handler) TenantLogin(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.AuthenticateTenantUser(r.Context(), dto, originFromRequest(r))
	if err != nil {
		if _, ok := err.(ValidationError); ok {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// PlatformLogin authenticates a super admin and issues a platform token.
func (h *Handler) PlatformLogin(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.AuthenticateSuperAdmin(r.Context(), dto, originFromRequest(r))
	if err != nil {
		if _, ok := err.(ValidationError); ok {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// Me returns the resolved principal for the current request, with the
// normalized permission keys the client should gate its UI on.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	resp := map[string]interface{}{
		"type":        principal.Type,
		"permissions": principal.Permissions.Keys(),
	}
	if principal.IsSuperAdmin() {
		resp["super_admin_id"] = principal.SuperAdminID
	} else {
		resp["user_id"] = principal.UserID
		resp["email"] = principal.Email
		resp["role"] = principal.RoleName
		resp["tenant"] = principal.Tenant
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
