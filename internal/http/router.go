package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 pprof 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes 注册健康评分与维护建议路由
func (r *Router) RegisterHealthRoutes(m *AuthMiddleware, h *HealthHandler) {
	r.Handle("/data/api/v1/houses/", m.WithTenant(h.ServeHouse))
	r.Handle("/data/api/v1/recommendations/", m.WithTenant(h.ServeRecommendation))
}

// RegisterAdminRoutes 注册管理端路由
func (r *Router) RegisterAdminRoutes(
	m *AuthMiddleware,
	houses *HousesHandler,
	comps *ComponentsHandler,
	customers *CustomersHandler,
	tenants *TenantsHandler,
) {
	r.Handle("/admin/api/v1/houses", m.WithTenant(houses.ServeCollection))
	r.Handle("/admin/api/v1/houses/", m.WithTenant(houses.ServeItem))

	// 精确路径优先于 /components/ 前缀匹配
	r.Handle("/admin/api/v1/components/import-template", m.WithTenant(comps.ServeImportTemplate))
	r.Handle("/admin/api/v1/components/", m.WithTenant(comps.ServeItem))

	r.Handle("/admin/api/v1/customers", m.WithTenant(customers.ServeCollection))
	r.Handle("/admin/api/v1/customers/", m.WithTenant(customers.ServeItem))

	r.Handle("/admin/api/v1/tenants", tenants.ServeHTTP)
}

// RegisterHealthz 进程存活探针
func (r *Router) RegisterHealthz() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	})
}
