package httpapi

import (
	"net/http"
	"strings"

	"housecare-data/internal/repository"
	"housecare-data/internal/service"

	"go.uber.org/zap"
)

// ComponentsHandler 部件管理 API（/admin/api/v1/components/...）
type ComponentsHandler struct {
	comps  repository.ComponentsRepository
	health *service.HealthService
	logger *zap.Logger
}

func NewComponentsHandler(
	comps repository.ComponentsRepository,
	health *service.HealthService,
	logger *zap.Logger,
) *ComponentsHandler {
	return &ComponentsHandler{comps: comps, health: health, logger: logger}
}

// ServeImportTemplate 处理 GET /admin/api/v1/components/import-template
func (h *ComponentsHandler) ServeImportTemplate(w http.ResponseWriter, r *http.Request, tenantID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := GenerateComponentImportTemplate()
	if err != nil {
		h.logger.Error("Failed to generate import template", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to generate import template"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="component_import_template.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ServeItem 处理 /admin/api/v1/components/{id}
func (h *ComponentsHandler) ServeItem(w http.ResponseWriter, r *http.Request, tenantID string) {
	componentID := strings.TrimPrefix(r.URL.Path, "/admin/api/v1/components/")
	if componentID == "" || strings.Contains(componentID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, tenantID, componentID)
	case http.MethodPut:
		h.update(w, r, tenantID, componentID)
	case http.MethodDelete:
		h.delete(w, r, tenantID, componentID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *ComponentsHandler) get(w http.ResponseWriter, r *http.Request, tenantID, componentID string) {
	comp, err := h.comps.GetComponent(r.Context(), tenantID, componentID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("component not found"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(componentView(comp)))
}

func (h *ComponentsHandler) update(w http.ResponseWriter, r *http.Request, tenantID, componentID string) {
	var req componentRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	comp, err := componentFromRequest("", &req)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	if err := h.comps.UpdateComponent(r.Context(), tenantID, componentID, comp); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	h.recomputeOwner(r, tenantID, componentID)
	writeJSON(w, http.StatusOK, Ok(map[string]any{"component_id": componentID}))
}

func (h *ComponentsHandler) delete(w http.ResponseWriter, r *http.Request, tenantID, componentID string) {
	// 删除前取 house_id，删除后才能重算
	comp, err := h.comps.GetComponent(r.Context(), tenantID, componentID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("component not found"))
		return
	}

	if err := h.comps.DeleteComponent(r.Context(), tenantID, componentID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	if _, err := h.health.RecomputeHouse(r.Context(), tenantID, comp.HouseID); err != nil {
		h.logger.Warn("Recompute after component delete failed",
			zap.String("house_id", comp.HouseID),
			zap.Error(err),
		)
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"component_id": componentID}))
}

func (h *ComponentsHandler) recomputeOwner(r *http.Request, tenantID, componentID string) {
	comp, err := h.comps.GetComponent(r.Context(), tenantID, componentID)
	if err != nil {
		return
	}
	if _, err := h.health.RecomputeHouse(r.Context(), tenantID, comp.HouseID); err != nil {
		h.logger.Warn("Recompute after component update failed",
			zap.String("house_id", comp.HouseID),
			zap.Error(err),
		)
	}
}
