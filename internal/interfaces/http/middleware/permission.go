package middleware

import (
	"net/http"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionDeniedMessage is shown whenever a permission check fails
const PermissionDeniedMessage = "You do not have permission to access this page."

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
}

// RequirePermission creates middleware that requires a specific permission.
// Superusers always pass.
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permission)
}

// RequireAnyPermission creates middleware that requires any of the specified permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig creates middleware that requires any of the specified permissions with custom config
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			log.Warn("Permission denied: no authentication claims", zap.Strings("required_any", permissions))
			abortForbidden(c)
			return
		}

		if !claims.HasAnyPermission(permissions...) {
			log.Warn("Permission denied",
				zap.Int64("user_id", claims.UserID),
				zap.Strings("required_any", permissions),
				zap.String("path", c.Request.URL.Path),
			)
			abortForbidden(c)
			return
		}

		c.Next()
	}
}

// RequireBasicAccess requires the shopping cart's basic access permission
func RequireBasicAccess() gin.HandlerFunc {
	return RequirePermission(cart.PermBasicAccess)
}

func abortForbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, PermissionDeniedMessage, c.GetString(RequestIDKey)))
}
