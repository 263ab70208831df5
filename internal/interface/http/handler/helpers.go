package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/http/middleware"
	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

func getUserID(c *gin.Context) (uuid.UUID, error) {
	return middleware.CurrentUserID(c)
}

func parseIDParam(c *gin.Context, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		return uuid.Nil, apperror.New(apperror.ErrCodeBadRequest, "некорректный идентификатор")
	}
	return id, nil
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// ownerAndProduct достаёт продавца из токена и id товара из пути.
func ownerAndProduct(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	sellerID, err := getUserID(c)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	productID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return sellerID, productID, true
}
