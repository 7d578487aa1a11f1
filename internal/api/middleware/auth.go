package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/jwt"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/response"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
)

const (
	UserIDKey     = "userID"
	RoleKey       = "role"
	PromoterIDKey = "promoterID"
)

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, jwtSecret)
		if !ok {
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		if claims.PromoterID > 0 {
			c.Set(PromoterIDKey, claims.PromoterID)
		}
		c.Next()
	}
}

// OptionalAuth 可选认证中间件（不强制要求登录）
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.Next()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err == nil {
			c.Set(UserIDKey, claims.UserID)
			c.Set(RoleKey, claims.Role)
		}

		c.Next()
	}
}

// RequireAdmin 管理端中间件，必须先经过 Auth
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(RoleKey)
		if role != jwt.RoleAdmin {
			response.PermissionError(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// PromoterAuth 推广员后台中间件：校验令牌携带推广员身份，且推广员仍可运营
func PromoterAuth(jwtSecret string, promoterRepo *repository.PromoterRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, jwtSecret)
		if !ok {
			return
		}
		if claims.Role != jwt.RolePromoter || claims.PromoterID == 0 {
			response.PermissionError(c, "需要推广员身份")
			c.Abort()
			return
		}

		promoter, err := promoterRepo.GetByID(claims.PromoterID)
		if err != nil || !promoter.CanOperate() {
			response.PermissionError(c, "推广员不可用")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Set(PromoterIDKey, claims.PromoterID)
		c.Next()
	}
}

func parseBearer(c *gin.Context, jwtSecret string) (*jwt.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.AuthError(c, "请提供认证信息")
		c.Abort()
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		response.AuthError(c, "认证格式错误")
		c.Abort()
		return nil, false
	}

	claims, err := jwt.ParseToken(tokenString, jwtSecret)
	if err != nil {
		response.AuthError(c, "认证失败或已过期")
		c.Abort()
		return nil, false
	}
	return claims, true
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetPromoterID 从上下文获取推广员 ID
func GetPromoterID(c *gin.Context) (int64, bool) {
	promoterID, exists := c.Get(PromoterIDKey)
	if !exists {
		return 0, false
	}
	id, ok := promoterID.(int64)
	return id, ok
}
