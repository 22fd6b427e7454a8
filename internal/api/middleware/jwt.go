package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yoockh/journai/internal/utils"
)

type apiError struct {
	Success bool       `json:"success"`
	Error   string     `json:"error"`
	Code    utils.Code `json:"code"`
}

func abort(c *gin.Context, status int, code utils.Code, msg string) {
	c.AbortWithStatusJSON(status, apiError{Success: false, Error: msg, Code: code})
}

type AuthConfig struct {
	Secret   string
	Issuer   string // optional
	Audience string // optional
}

// Claims accepts the role either top level or under app_metadata.role.
type Claims struct {
	jwt.RegisteredClaims
	Role        string         `json:"role"`
	AppMetadata map[string]any `json:"app_metadata"`
}

func (c *Claims) appRole() string {
	if c.AppMetadata != nil {
		if s, ok := c.AppMetadata["role"].(string); ok && s != "" {
			return s
		}
	}
	if c.Role == "admin" {
		return c.Role
	}
	return "user"
}

// JWTAuth verifies an HS256 bearer token and stores its subject as user_id.
func JWTAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Secret == "" {
			abort(c, http.StatusInternalServerError, utils.CodeInternal, "AUTH_JWT_SECRET is not set")
			return
		}

		auth := c.GetHeader("Authorization")
		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if !strings.HasPrefix(auth, "Bearer ") || raw == "" {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "missing bearer token")
			return
		}

		claims := &Claims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(cfg.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || tok == nil || !tok.Valid {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "invalid token")
			return
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "invalid token issuer")
			return
		}
		if cfg.Audience != "" && !slices.Contains([]string(claims.Audience), cfg.Audience) {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "invalid token audience")
			return
		}
		if claims.Subject == "" {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "missing subject")
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.appRole())
		c.Next()
	}
}
