package httpapi

import (
	"net/http"
	"strings"
	"time"

	"housecare-data/internal/domain"
	"housecare-data/internal/models"
	"housecare-data/internal/repository"
	"housecare-data/internal/service"

	"go.uber.org/zap"
)

// HousesHandler 住宅管理 API
type HousesHandler struct {
	houses repository.HousesRepository
	comps  repository.ComponentsRepository
	health *service.HealthService
	logger *zap.Logger
}

func NewHousesHandler(
	houses repository.HousesRepository,
	comps repository.ComponentsRepository,
	health *service.HealthService,
	logger *zap.Logger,
) *HousesHandler {
	return &HousesHandler{houses: houses, comps: comps, health: health, logger: logger}
}

type houseRequest struct {
	CustomerID    string `json:"customer_id"`
	HouseName     string `json:"house_name"`
	Address       string `json:"address"`
	BuiltYear     *int   `json:"built_year"`
	StructureType string `json:"structure_type"`
}

type componentRequest struct {
	Category              string   `json:"category"`
	ComponentName         string   `json:"component_name"`
	ConditionScore        *int     `json:"condition_score"`
	InstalledDate         string   `json:"installed_date"` // "2006-01-02"
	ExpectedLifespanYears *float64 `json:"expected_lifespan_years"`
	WarrantyExpiryDate    string   `json:"warranty_expiry_date"`
	LastInspectionDate    string   `json:"last_inspection_date"`
}

// ServeCollection 处理 /admin/api/v1/houses
func (h *HousesHandler) ServeCollection(w http.ResponseWriter, r *http.Request, tenantID string) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, tenantID)
	case http.MethodPost:
		h.create(w, r, tenantID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ServeItem 处理 /admin/api/v1/houses/{id} 及其子路径
func (h *HousesHandler) ServeItem(w http.ResponseWriter, r *http.Request, tenantID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/api/v1/houses/")
	parts := strings.Split(rest, "/")
	if parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	houseID := parts[0]
	tail := strings.Join(parts[1:], "/")

	switch {
	case tail == "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, tenantID, houseID)
		case http.MethodPut:
			h.update(w, r, tenantID, houseID)
		case http.MethodDelete:
			h.delete(w, r, tenantID, houseID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case tail == "components":
		switch r.Method {
		case http.MethodGet:
			h.listComponents(w, r, tenantID, houseID)
		case http.MethodPost:
			h.createComponent(w, r, tenantID, houseID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case tail == "components/import" && r.Method == http.MethodPost:
		h.importComponents(w, r, tenantID, houseID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *HousesHandler) list(w http.ResponseWriter, r *http.Request, tenantID string) {
	q := r.URL.Query()
	filters := &repository.HouseFilters{
		CustomerID:    q.Get("customer_id"),
		StructureType: q.Get("structure_type"),
		Keyword:       q.Get("keyword"),
	}
	if v := q.Get("max_score"); v != "" {
		maxScore := parseInt(v, 100)
		filters.MaxScore = &maxScore
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	houses, total, err := h.houses.ListHouses(r.Context(), tenantID, filters, page, size)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("failed to list houses"))
		return
	}

	items := make([]map[string]any, 0, len(houses))
	for _, house := range houses {
		items = append(items, houseView(house))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":      items,
		"total":      total,
		"pagination": models.BackendPagination{Size: size, Page: page, Count: total},
	}))
}

func (h *HousesHandler) get(w http.ResponseWriter, r *http.Request, tenantID, houseID string) {
	house, err := h.houses.GetHouse(r.Context(), tenantID, houseID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("house not found"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(houseView(house)))
}

func (h *HousesHandler) create(w http.ResponseWriter, r *http.Request, tenantID string) {
	var req houseRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	id, err := h.houses.CreateHouse(r.Context(), tenantID, &domain.House{
		CustomerID:    req.CustomerID,
		HouseName:     req.HouseName,
		Address:       req.Address,
		BuiltYear:     req.BuiltYear,
		StructureType: domain.StructureType(req.StructureType),
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"house_id": id}))
}

func (h *HousesHandler) update(w http.ResponseWriter, r *http.Request, tenantID, houseID string) {
	var req houseRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	err := h.houses.UpdateHouse(r.Context(), tenantID, houseID, &domain.House{
		HouseName:     req.HouseName,
		Address:       req.Address,
		BuiltYear:     req.BuiltYear,
		StructureType: domain.StructureType(req.StructureType),
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	// 建龄/结构变更会影响评分
	h.triggerRecompute(r, tenantID, houseID)
	writeJSON(w, http.StatusOK, Ok(map[string]any{"house_id": houseID}))
}

func (h *HousesHandler) delete(w http.ResponseWriter, r *http.Request, tenantID, houseID string) {
	if err := h.houses.DeleteHouse(r.Context(), tenantID, houseID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"house_id": houseID}))
}

func (h *HousesHandler) listComponents(w http.ResponseWriter, r *http.Request, tenantID, houseID string) {
	comps, err := h.comps.ListComponentsByHouse(r.Context(), tenantID, houseID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("failed to list components"))
		return
	}
	items := make([]map[string]any, 0, len(comps))
	for _, c := range comps {
		items = append(items, componentView(c))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}

func (h *HousesHandler) createComponent(w http.ResponseWriter, r *http.Request, tenantID, houseID string) {
	var req componentRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	comp, err := componentFromRequest(houseID, &req)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	id, err := h.comps.CreateComponent(r.Context(), tenantID, comp)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	h.triggerRecompute(r, tenantID, houseID)
	writeJSON(w, http.StatusOK, Ok(map[string]any{"component_id": id}))
}

// triggerRecompute 写操作后的同步重算；失败只记日志，写操作本身已成功
func (h *HousesHandler) triggerRecompute(r *http.Request, tenantID, houseID string) {
	if _, err := h.health.RecomputeHouse(r.Context(), tenantID, houseID); err != nil {
		h.logger.Warn("Recompute after write failed",
			zap.String("house_id", houseID),
			zap.Error(err),
		)
	}
}

func houseView(house *domain.House) map[string]any {
	return map[string]any{
		"house_id":         house.HouseID,
		"customer_id":      house.CustomerID,
		"house_name":       house.HouseName,
		"address":          house.Address,
		"built_year":       house.BuiltYear,
		"structure_type":   house.StructureType,
		"overall_score":    house.OverallScore,
		"score_updated_at": house.ScoreUpdatedAt,
		"created_at":       house.CreatedAt,
		"updated_at":       house.UpdatedAt,
	}
}

func componentView(c *domain.Component) map[string]any {
	return map[string]any{
		"component_id":            c.ComponentID,
		"house_id":                c.HouseID,
		"category":                c.Category,
		"category_label":          c.Category.Label(),
		"component_name":          c.ComponentName,
		"condition_score":         c.ConditionScore,
		"installed_date":          formatDate(c.InstalledDate),
		"expected_lifespan_years": c.ExpectedLifespanYears,
		"warranty_expiry_date":    formatDate(c.WarrantyExpiryDate),
		"last_inspection_date":    formatDate(c.LastInspectionDate),
		"created_at":              c.CreatedAt,
		"updated_at":              c.UpdatedAt,
	}
}

func componentFromRequest(houseID string, req *componentRequest) (*domain.Component, error) {
	comp := &domain.Component{
		HouseID:               houseID,
		Category:              domain.ComponentCategory(req.Category),
		ComponentName:         req.ComponentName,
		ConditionScore:        req.ConditionScore,
		ExpectedLifespanYears: req.ExpectedLifespanYears,
	}

	var err error
	if comp.InstalledDate, err = parseDate(req.InstalledDate); err != nil {
		return nil, err
	}
	if comp.WarrantyExpiryDate, err = parseDate(req.WarrantyExpiryDate); err != nil {
		return nil, err
	}
	if comp.LastInspectionDate, err = parseDate(req.LastInspectionDate); err != nil {
		return nil, err
	}
	return comp, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
