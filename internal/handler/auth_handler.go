package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hongyan02/ehs-new/internal/config"
	"github.com/hongyan02/ehs-new/internal/middleware"
	"github.com/hongyan02/ehs-new/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
	cfg *config.Config
}

func NewAuthHandler(svc *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// Login POST /auth/login
// 登录成功后把令牌种入 Permission-Token Cookie，同时在响应体返回
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}

	maxAge := int(h.svc.TokenExpire().Seconds())
	c.SetCookie(middleware.TokenCookieName, result.Token, maxAge, "/", "", false, true)

	Success(c, result)
}

// Logout POST /auth/logout
// 清除 Permission-Token Cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", false, true)
	Success(c, gin.H{"message": "已退出登录"})
}

// Me GET /auth/me
// 返回当前登录态
func (h *AuthHandler) Me(c *gin.Context) {
	claims, exists := c.Get("claims")
	if !exists {
		Unauthorized(c, "未登录")
		return
	}

	jwtClaims, ok := claims.(*middleware.JWTClaims)
	if !ok {
		Unauthorized(c, "未登录")
		return
	}

	Success(c, service.LoginUser{
		Name:        jwtClaims.Name,
		EmployeeID:  jwtClaims.Subject,
		Permissions: jwtClaims.Permissions,
	})
}
