package httpapi

import (
	"net/http"
	"strings"

	"housecare-data/internal/models"
	"housecare-data/internal/repository"
	"housecare-data/internal/service"

	"go.uber.org/zap"
)

// HealthHandler 住宅健康评分与维护建议 API
type HealthHandler struct {
	svc    *service.HealthService
	logger *zap.Logger
}

func NewHealthHandler(svc *service.HealthService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{svc: svc, logger: logger}
}

// ServeHouse 处理 /data/api/v1/houses/{id}/... 子路径
func (h *HealthHandler) ServeHouse(w http.ResponseWriter, r *http.Request, tenantID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/data/api/v1/houses/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	houseID := parts[0]
	tail := strings.Join(parts[1:], "/")

	switch {
	case tail == "health" && r.Method == http.MethodGet:
		h.getScore(w, r, tenantID, houseID)
	case tail == "health/recompute" && r.Method == http.MethodPost:
		h.recompute(w, r, tenantID, houseID)
	case tail == "recommendations" && r.Method == http.MethodGet:
		h.listRecommendations(w, r, tenantID, houseID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ServeRecommendation 处理 /data/api/v1/recommendations/{id}/resolve
func (h *HealthHandler) ServeRecommendation(w http.ResponseWriter, r *http.Request, tenantID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/data/api/v1/recommendations/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "resolve" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := h.svc.ResolveRecommendation(r.Context(), tenantID, parts[0]); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"recommendation_id": parts[0], "is_resolved": true}))
}

func (h *HealthHandler) getScore(w http.ResponseWriter, r *http.Request, tenantID, houseID string) {
	view, err := h.svc.GetHouseScore(r.Context(), tenantID, houseID)
	if err != nil {
		h.logger.Error("Failed to get house score",
			zap.String("house_id", houseID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to get house score"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

func (h *HealthHandler) recompute(w http.ResponseWriter, r *http.Request, tenantID, houseID string) {
	result, err := h.svc.RecomputeHouse(r.Context(), tenantID, houseID)
	if err != nil {
		h.logger.Error("Failed to recompute house",
			zap.String("house_id", houseID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to recompute house health"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

func (h *HealthHandler) listRecommendations(w http.ResponseWriter, r *http.Request, tenantID, houseID string) {
	q := r.URL.Query()
	filters := &repository.RecommendationFilters{
		RiskLevel: q.Get("risk_level"),
	}
	switch q.Get("status") {
	case "", "open":
		filters.Status = "open"
	case "resolved":
		filters.Status = "resolved"
	case "all":
		filters.Status = ""
	default:
		writeJSON(w, http.StatusOK, Fail("invalid status: expected open|resolved|all"))
		return
	}

	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	recs, total, err := h.svc.ListRecommendations(r.Context(), tenantID, houseID, filters, page, size)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("failed to list recommendations"))
		return
	}

	items := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		items = append(items, map[string]any{
			"recommendation_id":  rec.RecommendationID,
			"house_id":           rec.HouseID,
			"component_id":       rec.ComponentID,
			"risk_level":         rec.RiskLevel,
			"description":        rec.Description,
			"recommended_action": rec.RecommendedAction,
			"due_date":           rec.DueDate,
			"estimated_cost_min": rec.EstimatedCostMin,
			"estimated_cost_max": rec.EstimatedCostMax,
			"is_resolved":        rec.IsResolved,
			"resolved_at":        rec.ResolvedAt,
			"created_at":         rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": total,
		"pagination": models.BackendPagination{
			Size:  size,
			Page:  page,
			Count: total,
		},
	}))
}
