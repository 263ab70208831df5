package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/interface/http/dto"
	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/service"
)

// AuthHandler выпускает токены для локальной разработки. Вход и регистрация
// живут в отдельном сервисе, здесь их нет.
type AuthHandler struct {
	tokens *service.TokenManager
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(tokens *service.TokenManager) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// DevToken обрабатывает POST /dev/token.
func (h *AuthHandler) DevToken(c *gin.Context) {
	var req dto.DevTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "некорректные данные запроса")
			return
		}
	}

	role := req.Role
	if role == "" {
		role = service.RoleSeller
	}
	if role != service.RoleSeller && role != service.RoleAdmin {
		response.BadRequest(c, "роль должна быть seller или admin")
		return
	}

	userID := uuid.New()
	if req.UserID != nil && *req.UserID != uuid.Nil {
		userID = *req.UserID
	}

	token, expiresAt, err := h.tokens.GenerateAccess(userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		UserID:      userID,
		Role:        role,
	})
}
