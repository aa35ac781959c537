package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Eddy007Saive/serverlog/internal/http/response"
	"github.com/Eddy007Saive/serverlog/internal/platform/ctxutil"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			am.log.Debug("Missing bearer token", "path", c.Request.URL.Path)
			abortError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "path", c.Request.URL.Path, "error", err)
			abortError(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission passes when the principal holds every listed permission.
// It must run after RequireAuth.
func (am *AuthMiddleware) RequirePermission(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == "" {
			abortError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		for _, p := range perms {
			if p == "" || rd.HasPermission(p) {
				continue
			}
			am.log.Info("Permission denied", "user_id", rd.UserID, "path", c.Request.URL.Path, "required", perms)
			abortError(c, http.StatusForbidden, "forbidden", "required permissions: "+strings.Join(perms, ", "))
			return
		}
		c.Next()
	}
}

func abortError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, response.ErrorEnvelope{
		Error: response.APIError{Message: msg, Code: code},
	})
}

// EventSource cannot set headers, so stream endpoints also accept ?token=.
func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
