package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// 角色常量：普通用户 / 推广员后台 / 管理员
const (
	RoleUser     = "user"
	RolePromoter = "promoter"
	RoleAdmin    = "admin"
)

type Claims struct {
	UserID     int64  `json:"user_id"`
	Role       string `json:"role,omitempty"`
	PromoterID int64  `json:"promoter_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken 签发普通用户 token
func GenerateToken(userID int64, secret string, expireHours int) (string, error) {
	return GenerateRoleToken(userID, RoleUser, 0, secret, expireHours)
}

// GenerateRoleToken 签发带角色的 token；promoterID 仅推广员角色使用
func GenerateRoleToken(userID int64, role string, promoterID int64, secret string, expireHours int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     userID,
		Role:       role,
		PromoterID: promoterID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken 解析并校验 token
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
