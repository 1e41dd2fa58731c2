package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// AuthToken 身份提供方应用凭证
type AuthToken struct {
	AppId     string `json:"appId"`
	SecureKey string `json:"secureKey"`
}

// VerifyRequest token 校验请求
type VerifyRequest struct {
	Token       *AuthToken `json:"token"`
	AccessToken string     `json:"access_token"`
}

// VerifyResponse token 校验响应
type VerifyResponse struct {
	Status   int    `json:"status"`
	Msg      string `json:"msg"`
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
}

// Identity 校验通过后的请求者身份
type Identity struct {
	TenantID string
	UserID   string
	Role     string
}

// AuthClient 外部身份提供方客户端
// housecare-data 不自建账号体系，token 校验委托给统一身份服务
type AuthClient struct {
	httpClient *resty.Client
	token      *AuthToken
	logger     *zap.Logger
}

// NewAuthClient 创建身份提供方客户端
func NewAuthClient(baseURL, appID, secretKey string, logger *zap.Logger) *AuthClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &AuthClient{
		httpClient: client,
		token: &AuthToken{
			AppId:     appID,
			SecureKey: secretKey,
		},
		logger: logger,
	}
}

// Verify 校验访问 token，返回请求者身份
func (c *AuthClient) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	request := VerifyRequest{
		Token:       c.token,
		AccessToken: accessToken,
	}

	var response VerifyResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/auth/verify")

	if err != nil {
		c.logger.Error("Auth provider call failed",
			zap.Error(err),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("failed to call auth provider: %w", err)
	}

	if response.Status != 0 {
		c.logger.Warn("Auth provider rejected token",
			zap.Int("status", response.Status),
			zap.String("msg", response.Msg),
		)
		return nil, fmt.Errorf("auth provider error: %s (status: %d)", response.Msg, response.Status)
	}

	if response.TenantID == "" {
		return nil, fmt.Errorf("auth provider returned empty tenant_id")
	}

	return &Identity{
		TenantID: response.TenantID,
		UserID:   response.UserID,
		Role:     response.Role,
	}, nil
}
