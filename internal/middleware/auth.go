package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/logger"
)

const (
	ContextUserId = "user_id"
	ContextRole   = "role"

	RoleAdmin = "admin"
)

// Claims 访问令牌载荷
type Claims struct {
	UserId int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Auth 解析 Bearer 令牌; 没有令牌时作为匿名请求放行, 令牌无效时拒绝
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			abort(c, appErrors.ErrUnauthorized.WithMessage("无效的认证头"))
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			logger.Debug("Rejected bearer token: %v", err)
			message := "令牌无效"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "令牌已过期"
			}
			abort(c, appErrors.ErrUnauthorized.WithMessage(message))
			return
		}

		c.Set(ContextUserId, claims.UserId)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireUser 需要登录
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserId(c); !ok {
			abort(c, appErrors.ErrUnauthorized.WithMessage("请先登录"))
			return
		}
		c.Next()
	}
}

// RequireAdmin 需要管理员
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserId(c); !ok {
			abort(c, appErrors.ErrUnauthorized.WithMessage("请先登录"))
			return
		}
		if !IsAdmin(c) {
			abort(c, appErrors.ErrForbidden.WithMessage("需要管理员权限"))
			return
		}
		c.Next()
	}
}

// UserId 当前用户 id, 匿名请求返回 false
func UserId(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserId)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextRole) == RoleAdmin
}

// IssueToken 签发令牌, 供命令行与测试使用
func IssueToken(secret string, userId int64, role string, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserId:           userId,
		Role:             role,
		RegisteredClaims: claims,
	})
	return token.SignedString([]byte(secret))
}

func abort(c *gin.Context, err *appErrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, gin.H{
		"success": false,
		"message": err.Message,
		"code":    err.Code,
		"data":    nil,
	})
}
