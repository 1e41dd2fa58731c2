package httpapi

import (
	"net/http"
	"strings"

	"housecare-data/internal/service"

	"go.uber.org/zap"
)

// AuthMiddleware 请求租户解析
// auth 开启时委托身份提供方校验 Bearer token；
// 关闭时（本地联调）读 X-Tenant-Id 请求头直通
type AuthMiddleware struct {
	client *service.AuthClient // nil = 直通模式
	logger *zap.Logger
}

func NewAuthMiddleware(client *service.AuthClient, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{client: client, logger: logger}
}

// WithTenant 包装需要租户上下文的 handler
func (m *AuthMiddleware) WithTenant(next func(w http.ResponseWriter, r *http.Request, tenantID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := m.resolve(w, r)
		if !ok {
			return
		}
		next(w, r, tenantID)
	}
}

func (m *AuthMiddleware) resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	if m.client == nil {
		tenantID := r.Header.Get("X-Tenant-Id")
		if tenantID == "" {
			writeJSON(w, http.StatusBadRequest, Fail("X-Tenant-Id header is required"))
			return "", false
		}
		return tenantID, true
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		writeJSON(w, http.StatusUnauthorized, Result[any]{
			Code: ResultTokenExpired, Type: "error", Message: "missing bearer token",
		})
		return "", false
	}

	identity, err := m.client.Verify(r.Context(), token)
	if err != nil {
		m.logger.Warn("Token verification failed", zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, Result[any]{
			Code: ResultTokenExpired, Type: "error", Message: "token expired or invalid",
		})
		return "", false
	}
	return identity.TenantID, true
}
