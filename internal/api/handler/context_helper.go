package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/rioanand02/education-scheduler-api/internal/api/middleware"
	"github.com/rioanand02/education-scheduler-api/internal/policy"
	"github.com/rioanand02/education-scheduler-api/pkg/response"
)

// MustGetActor 从 Gin 上下文中安全提取当前操作者。
// 如果认证中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (policy.Actor, bool) {
	v, exists := c.Get(middleware.ActorKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	if !ok || actor.ID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return policy.Actor{}, false
	}
	return actor, true
}

// MustGetAccessToken 提取本次请求携带的 Access Token（用于登出）
func MustGetAccessToken(c *gin.Context) (string, bool) {
	token := c.GetString(middleware.AccessTokenKey)
	if token == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return token, true
}
