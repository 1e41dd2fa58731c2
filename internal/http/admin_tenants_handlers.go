package httpapi

import (
	"encoding/json"
	"net/http"

	"housecare-data/internal/domain"
	"housecare-data/internal/repository"
)

// TenantsHandler 租户管理 API（平台级，不做租户隔离）
type TenantsHandler struct {
	tenants repository.TenantsRepository
}

func NewTenantsHandler(tenants repository.TenantsRepository) *TenantsHandler {
	return &TenantsHandler{tenants: tenants}
}

type tenantRequest struct {
	TenantName string          `json:"tenant_name"`
	Domain     string          `json:"domain"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Metadata   json.RawMessage `json:"metadata"`
}

func (h *TenantsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *TenantsHandler) list(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.ListTenants(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("failed to list tenants"))
		return
	}

	items := make([]map[string]any, 0, len(tenants))
	for _, t := range tenants {
		items = append(items, map[string]any{
			"tenant_id":   t.TenantID,
			"tenant_name": t.TenantName,
			"domain":      t.Domain,
			"email":       t.Email,
			"phone":       t.Phone,
			"status":      t.Status,
			"metadata":    t.Metadata,
			"created_at":  t.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}

func (h *TenantsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	id, err := h.tenants.CreateTenant(r.Context(), &domain.Tenant{
		TenantName: req.TenantName,
		Domain:     req.Domain,
		Email:      req.Email,
		Phone:      req.Phone,
		Metadata:   req.Metadata,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"tenant_id": id}))
}
