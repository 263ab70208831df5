package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-listings/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			response.Abort(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, apperror.ErrUnauthorized.Message)
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		userID, role, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			response.Abort(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, apperror.ErrUnauthorized.Message)
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// RequireRole пропускает только пользователей с указанной ролью. Ставится после AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRoleKey) != role {
			response.Abort(c, http.StatusForbidden, apperror.ErrCodeForbidden, apperror.ErrForbidden.Message)
			return
		}
		c.Next()
	}
}

// CurrentUserID достаёт userID, положенный AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	return id, nil
}
